package settings_client

import (
	"context"
	"fmt"
	"sync"

	"novaremote/config"
	"novaremote/models"
	"novaremote/services/settingsync"
	user_settings "novaremote/services/user_settings"
)

// LocalClient reads and writes the backend's files directly. It applies the
// same normalisation and validation as the HTTP API.
type LocalClient struct {
	manager *config.Manager
	users   *user_settings.Service

	mu sync.Mutex
}

var _ settingsync.SettingsClient = (*LocalClient)(nil)

func NewLocalClient(manager *config.Manager, users *user_settings.Service) *LocalClient {
	return &LocalClient{manager: manager, users: users}
}

func (c *LocalClient) FetchGlobalConfig(ctx context.Context) (config.Settings, error) {
	if err := ctx.Err(); err != nil {
		return config.Settings{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager.Load()
}

func (c *LocalClient) SaveGlobalConfig(ctx context.Context, settings config.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	settings = config.Normalize(settings)
	if err := settings.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager.Save(settings)
}

func (c *LocalClient) FetchUserOverride(ctx context.Context, userID string) (*models.UserSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.users == nil {
		return nil, nil
	}
	return c.users.Get(userID)
}

func (c *LocalClient) SaveUserOverride(ctx context.Context, userID string, override models.UserSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.users == nil {
		return fmt.Errorf("user settings storage not configured")
	}
	return c.users.Update(userID, override)
}
