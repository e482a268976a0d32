package api

import (
	"net/http"

	"github.com/praxislabs/praxis-api/internal/api/shared"
	"github.com/praxislabs/praxis-api/internal/service/topicsync"
)

// SyncHandler exposes the topic config sync as an admin endpoint.
type SyncHandler struct {
	syncService *topicsync.Service
	configDir   string
}

// NewSyncHandler creates a new SyncHandler syncing from the given directory.
func NewSyncHandler(syncService *topicsync.Service, configDir string) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		configDir:   configDir,
	}
}

// SyncTopics handles POST /api/admin/sync-topics. Individual topic failures
// are reported in the result body, not as an HTTP error.
func (h *SyncHandler) SyncTopics(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	if h.configDir == "" {
		shared.RespondWithError(w, r, http.StatusNotFound, "Topic config directory not configured")
		return
	}

	result, err := h.syncService.SyncDir(r.Context(), h.configDir)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Topic config sync failed", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
