// Package api contains the HTTP handlers and error mapping for the REST
// surface: authentication, task submission, XP/progress reads and the admin
// topic config sync. Handlers decode and validate requests, delegate to the
// service layer, and translate service errors into sanitized responses.
package api
