package settings_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"novaremote/config"
	"novaremote/models"
	"novaremote/services/settingsync"
	"novaremote/utils"
)

const apiKeyHeader = "X-API-Key"

// StatusError is a non-2xx response. Its message is the server's error text.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithRetry sets the attempt count and the initial backoff delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *HTTPClient) {
		c.attempts = max(attempts, 1)
		c.delay = delay
	}
}

// HTTPClient talks to the settings API of a backend.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
}

var _ settingsync.SettingsClient = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the backend at baseURL.
func NewHTTPClient(baseURL, apiKey string, opts ...Option) (*HTTPClient, error) {
	normalized, err := utils.NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &HTTPClient{
		baseURL:    normalized,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		attempts:   3,
		delay:      500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized backend address.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) FetchGlobalConfig(ctx context.Context) (config.Settings, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/settings", nil)
	if err != nil {
		return config.Settings{}, err
	}
	var s config.Settings
	if err := json.Unmarshal(body, &s); err != nil {
		return config.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return config.Normalize(s), nil
}

func (c *HTTPClient) SaveGlobalConfig(ctx context.Context, settings config.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, "/api/settings", payload)
	return err
}

// FetchUserOverride returns nil when the backend has no override for userID.
func (c *HTTPClient) FetchUserOverride(ctx context.Context, userID string) (*models.UserSettings, error) {
	body, err := c.do(ctx, http.MethodGet, userPath(userID), nil)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	override, err := models.DecodeUserSettings(body)
	if err != nil {
		return nil, fmt.Errorf("decode user settings: %w", err)
	}
	if override.IsEmpty() {
		return nil, nil
	}
	return &override, nil
}

func (c *HTTPClient) SaveUserOverride(ctx context.Context, userID string, override models.UserSettings) error {
	payload, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("encode user settings: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, userPath(userID), payload)
	return err
}

func userPath(userID string) string {
	return "/api/users/" + url.PathEscape(strings.TrimSpace(userID)) + "/settings"
}

// do sends one request, retrying transport failures and 5xx/429 responses
// with exponential backoff.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			return c.once(ctx, method, path, payload)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[settings-client] %s %s failed (attempt %d/%d): %v", method, path, n+1, c.attempts, err)
		}),
	)
}

func (c *HTTPClient) once(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Status, data)}
	}
	return data, nil
}

// errorMessage prefers the {"error": "..."} body the backend writes.
func errorMessage(status string, data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(data)); text != "" && len(text) < 512 {
		return text
	}
	return status
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}
