package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"novaremote/config"
)

type SettingsHandler struct {
	Manager *config.Manager

	// mu serialises read-modify-write cycles on the settings file.
	mu sync.Mutex
}

func NewSettingsHandler(m *config.Manager) *SettingsHandler {
	return &SettingsHandler{Manager: m}
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	s, err := h.Manager.Load()
	h.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// PutSettings replaces the whole document. Sections the payload does not
// carry are backfilled with defaults before validation.
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var s config.Settings
	dec := json.NewDecoder(r.Body)
	// Unknown sections are kept in Settings.Extra.
	if err := dec.Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s = config.Normalize(s)
	if err := s.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	err := h.Manager.Save(s)
	h.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[settings] saved global settings (%d usenet, %d indexers, %d scrapers)",
		len(s.Usenet), len(s.Indexers), len(s.TorrentScrapers))
	writeJSON(w, http.StatusOK, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
