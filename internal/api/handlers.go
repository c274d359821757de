package api

import (
	"encoding/json"
	"net/http"

	"github.com/maxklyga/luci-presence/internal/log"
	"github.com/maxklyga/luci-presence/internal/tracker"
)

// Handler serves the tracker state.
type Handler struct {
	tracker *tracker.Tracker
}

// NewHandler creates a handler over the given tracker.
func NewHandler(t *tracker.Tracker) *Handler {
	return &Handler{tracker: t}
}

// GetDevices returns all known devices.
func (h *Handler) GetDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.tracker.Snapshot())
}

// GetPresentDevices returns only the devices inside the consider-home window.
func (h *Handler) GetPresentDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.tracker.Present())
}

// GetStatus returns the tracker health snapshot.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.tracker.Status())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}
