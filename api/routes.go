package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"novaremote/handlers"
	"novaremote/utils"
)

// Handlers groups the endpoints mounted under /api.
type Handlers struct {
	Settings     *handlers.SettingsHandler
	UserSettings *handlers.UserSettingsHandler
}

// Options configures access control for the settings API.
type Options struct {
	APIKey  func() string
	Limiter *WriteLimiter
}

// NewRouter wires the settings endpoints:
//
//	GET|PUT        /api/settings
//	GET|PUT|DELETE /api/users/{userID}/settings
func NewRouter(h Handlers, opts Options) *mux.Router {
	r := utils.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	if opts.APIKey != nil {
		api.Use(APIKeyMiddleware(opts.APIKey))
	}
	if opts.Limiter != nil {
		api.Use(opts.Limiter.Middleware)
	}

	if h.Settings != nil {
		api.HandleFunc("/settings", h.Settings.GetSettings).Methods(http.MethodGet, http.MethodOptions)
		api.HandleFunc("/settings", h.Settings.PutSettings).Methods(http.MethodPut)
	}
	if h.UserSettings != nil {
		api.HandleFunc("/users/{userID}/settings", h.UserSettings.GetSettings).Methods(http.MethodGet, http.MethodOptions)
		api.HandleFunc("/users/{userID}/settings", h.UserSettings.PutSettings).Methods(http.MethodPut)
		api.HandleFunc("/users/{userID}/settings", h.UserSettings.DeleteSettings).Methods(http.MethodDelete)
	}
	return r
}
