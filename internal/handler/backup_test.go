package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/famdo/internal/backup"
)

func TestBackupHandlerNotConfigured(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewBackupHandler(backup.NewManager(backup.Config{ScheduleHour: -1}, nil, nil, logger), logger)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		req     *http.Request
	}{
		{"run", h.Run, httptest.NewRequest("POST", "/api/backups", nil)},
		{"list", h.List, httptest.NewRequest("GET", "/api/backups", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.handler(rr, tt.req)
			if rr.Code != http.StatusServiceUnavailable {
				t.Errorf("expected 503, got %d", rr.Code)
			}
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/backups/{key...}", h.Restore)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("POST", "/api/backups/famdo/backup-x.json.enc", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("restore: expected 503, got %d", rr.Code)
	}
}

func TestBackupHandlerStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewBackupHandler(backup.NewManager(backup.Config{}, nil, nil, logger), logger)

	rr := httptest.NewRecorder()
	h.Status(rr, httptest.NewRequest("GET", "/api/backups/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Status backup.Status `json:"status"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status.State != backup.StateDisabled {
		t.Errorf("state = %q, want disabled", body.Status.State)
	}
}
