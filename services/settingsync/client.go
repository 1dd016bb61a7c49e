package settingsync

import (
	"context"

	"novaremote/config"
	"novaremote/models"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks novaremote/services/settingsync SettingsClient,IdentityProvider

// SettingsClient fetches and stores the two server documents.
type SettingsClient interface {
	FetchGlobalConfig(ctx context.Context) (config.Settings, error)
	SaveGlobalConfig(ctx context.Context, settings config.Settings) error
	// FetchUserOverride returns nil when the profile has no override.
	FetchUserOverride(ctx context.Context, userID string) (*models.UserSettings, error)
	SaveUserOverride(ctx context.Context, userID string, override models.UserSettings) error
}

// IdentityProvider reports the profile whose override is being edited.
type IdentityProvider interface {
	CurrentUserID() (string, bool)
}
