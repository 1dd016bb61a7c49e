package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"novaremote/config"
	"novaremote/handlers"
	user_settings "novaremote/services/user_settings"
)

func newTestRouter(t *testing.T, key string, limiter *WriteLimiter) http.Handler {
	t.Helper()
	fs := afero.NewMemMapFs()
	svc, err := user_settings.NewServiceWithFs(fs, "/data")
	if err != nil {
		t.Fatalf("user settings service: %v", err)
	}
	return NewRouter(Handlers{
		Settings:     handlers.NewSettingsHandler(config.NewManagerWithFs(fs, "/data/settings.json")),
		UserSettings: handlers.NewUserSettingsHandler(svc),
	}, Options{
		APIKey:  func() string { return key },
		Limiter: limiter,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, "secret", nil)
	rec := do(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	h := newTestRouter(t, "secret", nil)

	if rec := do(t, h, http.MethodGet, "/api/settings", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no key: expected 401, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/settings", "", map[string]string{APIKeyHeader: "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: expected 401, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/settings", "", map[string]string{APIKeyHeader: "secret"}); rec.Code != http.StatusOK {
		t.Fatalf("header key: expected 200, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/settings", "", map[string]string{"Authorization": "Bearer secret"}); rec.Code != http.StatusOK {
		t.Fatalf("bearer key: expected 200, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/settings?apiKey=secret", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("query key: expected 200, got %d", rec.Code)
	}
}

func TestRouter_EmptyKeyDisablesAuth(t *testing.T) {
	h := newTestRouter(t, "", nil)
	if rec := do(t, h, http.MethodGet, "/api/settings", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_PreflightFromLAN(t *testing.T) {
	h := newTestRouter(t, "secret", nil)
	rec := do(t, h, http.MethodOptions, "/api/users/u1/settings", "", map[string]string{"Origin": "http://192.168.1.20:8081"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://192.168.1.20:8081" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), APIKeyHeader) {
		t.Fatalf("allow-headers should include %s", APIKeyHeader)
	}
}

func TestRouter_UserSettingsRoundTrip(t *testing.T) {
	h := newTestRouter(t, "secret", nil)
	auth := map[string]string{APIKeyHeader: "secret"}

	rec := do(t, h, http.MethodPut, "/api/users/u1/settings", `{"playback":{"preferredAudioLanguage":"jpn"}}`, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/users/u1/settings", "", auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var body map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["playback"]["preferredAudioLanguage"] != "jpn" {
		t.Fatalf("unexpected override %v", body)
	}

	if rec := do(t, h, http.MethodDelete, "/api/users/u1/settings", "", auth); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
}

func TestRouter_RejectsInvalidGlobalSettings(t *testing.T) {
	h := newTestRouter(t, "", nil)

	rec := do(t, h, http.MethodGet, "/api/settings", "", nil)
	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	doc["server"] = map[string]any{"host": "0.0.0.0", "port": 99999}
	payload, _ := json.Marshal(doc)

	rec = do(t, h, http.MethodPut, "/api/settings", string(payload), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if !strings.Contains(body["error"], "server.port") {
		t.Fatalf("unexpected error %q", body["error"])
	}
}

func TestRouter_LimitsWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := newTestRouter(t, "", NewWriteLimiter(ctx, rate.Every(time.Minute), 1))

	body := `{"filtering":{"maxResolution":"1080p"}}`
	if rec := do(t, h, http.MethodPut, "/api/users/u1/settings", body, nil); rec.Code != http.StatusOK {
		t.Fatalf("first put: expected 200, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/users/u1/settings", body, nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second put: expected 429, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/users/u1/settings", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("get after limit: expected 200, got %d", rec.Code)
	}
}
