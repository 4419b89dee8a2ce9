package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/famdo/internal/backup"
)

type BackupHandler struct {
	mgr    *backup.Manager
	logger *slog.Logger
}

func NewBackupHandler(mgr *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{mgr: mgr, logger: logger}
}

// Status reports the manager state plus this process's recent attempts.
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  h.mgr.Status(),
		"history": h.mgr.History(),
	})
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.mgr.List(r.Context())
	if err != nil {
		h.fail(w, "list backups", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	rec, err := h.mgr.RunNow(r.Context())
	if err != nil {
		h.fail(w, "run backup", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "backup key is required"})
		return
	}
	if err := h.mgr.Restore(r.Context(), key); err != nil {
		h.fail(w, "restore backup", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *BackupHandler) fail(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, backup.ErrNotConfigured) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	h.logger.Error(action, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to " + action})
}
