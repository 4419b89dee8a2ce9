package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dukerupert/famdo/internal/websocket"
)

const maxCommandBytes = 1 << 20

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Data returns the whole household document.
func (d *Dispatcher) Data(w http.ResponseWriter, r *http.Request) {
	doc, err := d.coord.Data()
	if err != nil {
		d.logger.Error("load document", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load data"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Command runs one command posted as a JSON body and answers with the same
// envelope the websocket uses.
func (d *Dispatcher) Command(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, websocket.Failure(0, websocket.CodeInvalidFormat, "request body too large"))
		return
	}

	resp := d.HandleCommand(r.Context(), body)
	writeJSON(w, statusFor(resp), resp)
}

func statusFor(resp websocket.Response) int {
	if resp.Success {
		return http.StatusOK
	}
	switch resp.Error.Code {
	case websocket.CodeInvalidFormat, websocket.CodeUnknownCommand:
		return http.StatusBadRequest
	case websocket.CodeFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
