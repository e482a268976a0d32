// Package postgres contains PostgreSQL implementations of the store
// interfaces. Each store accepts a DBTX so the same implementation works
// against a plain connection or inside a transaction, and maps database
// errors onto the store package's sentinel errors.
package postgres
