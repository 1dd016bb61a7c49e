package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"novaremote/models"
	user_settings "novaremote/services/user_settings"
)

type userSettingsService interface {
	Get(userID string) (*models.UserSettings, error)
	Update(userID string, settings models.UserSettings) error
	Delete(userID string) error
}

var _ userSettingsService = (*user_settings.Service)(nil)

type UserSettingsHandler struct {
	Service userSettingsService
}

func NewUserSettingsHandler(service userSettingsService) *UserSettingsHandler {
	return &UserSettingsHandler{Service: service}
}

// GetSettings returns the stored override, or an empty object when the user
// has none. Fields the user never set are omitted.
func (h *UserSettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	settings, err := h.Service.Get(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if settings == nil {
		settings = &models.UserSettings{}
	}
	writeJSON(w, http.StatusOK, settings)
}

// PutSettings stores the override. An empty body or an override with no
// field set removes the entry.
func (h *UserSettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	settings, err := models.DecodeUserSettings(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.Update(userID, settings); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	log.Printf("[user-settings] saved override for %s (empty=%t)", userID, settings.IsEmpty())
	writeJSON(w, http.StatusOK, settings)
}

func (h *UserSettingsHandler) DeleteSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(userID); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserSettingsHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(mux.Vars(r)["userID"])
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return "", false
	}
	return userID, true
}

func statusFor(err error) int {
	if errors.Is(err, user_settings.ErrUserIDRequired) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
