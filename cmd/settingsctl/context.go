package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"novaremote/config"
	"novaremote/services/settings_client"
	"novaremote/services/settingsync"
	user_settings "novaremote/services/user_settings"
)

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     cliConfig
	configErr  error

	logCloser io.Closer
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the config file once. Flags override file and env values.
func (c *commandContext) ensureConfig() (cliConfig, error) {
	c.configOnce.Do(func() {
		cfg, err := loadCLIConfig(c.flags.config)
		if err != nil {
			c.configErr = err
			return
		}
		if v := strings.TrimSpace(c.flags.url); v != "" {
			cfg.Remote.URL = v
		}
		if v := strings.TrimSpace(c.flags.apiKey); v != "" {
			cfg.Remote.APIKey = v
		}
		if v := strings.TrimSpace(c.flags.user); v != "" {
			cfg.Remote.User = v
		}
		if v := strings.TrimSpace(c.flags.local); v != "" {
			cfg.Remote.LocalDir = v
		}
		if c.flags.tv {
			cfg.Remote.TV = true
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) close() {
	if c.logCloser != nil {
		c.logCloser.Close()
		c.logCloser = nil
	}
}

func (c *commandContext) layout() settingsync.Layout {
	if c.config.Remote.TV {
		return settingsync.TVLayout()
	}
	return settingsync.DefaultLayout()
}

func (c *commandContext) client() (settingsync.SettingsClient, error) {
	remote := c.config.Remote
	if remote.LocalDir != "" {
		users, err := user_settings.NewService(remote.LocalDir)
		if err != nil {
			return nil, err
		}
		manager := config.NewManager(filepath.Join(remote.LocalDir, settingsFileName))
		return settings_client.NewLocalClient(manager, users), nil
	}
	return settings_client.NewHTTPClient(remote.URL, remote.APIKey)
}

// openSession builds a session for the configured backend and profile and
// loads the current documents into it.
func (c *commandContext) openSession(ctx context.Context) (*settingsync.Session, error) {
	client, err := c.client()
	if err != nil {
		return nil, err
	}

	var identity settingsync.IdentityProvider
	if user := c.config.Remote.User; user != "" {
		identity = settings_client.StaticIdentity(user)
	}

	session := settingsync.NewSession(client, identity, c.layout())
	if err := session.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return session, nil
}
