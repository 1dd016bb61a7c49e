package user_settings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"novaremote/config"
	"novaremote/models"
)

func newMemService(t *testing.T) (*Service, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	svc, err := NewServiceWithFs(fs, "/data")
	if err != nil {
		t.Fatalf("NewServiceWithFs: %v", err)
	}
	return svc, fs
}

func TestNewServiceRequiresDir(t *testing.T) {
	if _, err := NewServiceWithFs(afero.NewMemMapFs(), "  "); !errors.Is(err, ErrStorageDirRequired) {
		t.Fatalf("err = %v, want ErrStorageDirRequired", err)
	}
}

func TestGetUnknownUserReturnsNil(t *testing.T) {
	svc, _ := newMemService(t)

	got, err := svc.Get("nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("Get = %+v, want nil", got)
	}
	if _, err := svc.Get(" "); !errors.Is(err, ErrUserIDRequired) {
		t.Fatalf("blank user err = %v", err)
	}
}

func TestUpdatePersistsSparseOverride(t *testing.T) {
	svc, fs := newMemService(t)

	settings := models.UserSettings{
		Playback: &models.PlaybackOverride{UseLoadingScreen: models.BoolPtr(false)},
		LiveTV:   &models.LiveTVOverride{HiddenChannels: models.StringsPtr([]string{})},
	}
	if err := svc.Update("profile-1", settings); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := NewServiceWithFs(fs, "/data")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Get("profile-1")
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.Playback == nil || got.Playback.UseLoadingScreen == nil || *got.Playback.UseLoadingScreen {
		t.Errorf("explicit false was not kept: %+v", got.Playback)
	}
	if got.Playback.PreferredPlayer != nil {
		t.Errorf("unset field came back set: %v", *got.Playback.PreferredPlayer)
	}
	if got.LiveTV == nil || got.LiveTV.HiddenChannels == nil || len(*got.LiveTV.HiddenChannels) != 0 {
		t.Errorf("explicit empty list was not kept: %+v", got.LiveTV)
	}
	if got.Filtering != nil {
		t.Errorf("absent section came back: %+v", got.Filtering)
	}
}

func TestUpdateWithEmptyOverrideDeletes(t *testing.T) {
	svc, _ := newMemService(t)

	shelves := []config.ShelfConfig{{ID: "watchlist", Name: "Watchlist", Enabled: true}}
	if err := svc.Update("kid", models.UserSettings{HomeShelves: &models.HomeShelvesOverride{Shelves: &shelves}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !svc.HasOverrides("kid") {
		t.Fatal("expected override to be stored")
	}

	if err := svc.Update("kid", models.UserSettings{Playback: &models.PlaybackOverride{}}); err != nil {
		t.Fatalf("Update empty: %v", err)
	}
	if svc.HasOverrides("kid") {
		t.Fatal("empty override should delete the entry")
	}
}

func TestDeleteAndList(t *testing.T) {
	svc, fs := newMemService(t)
	for _, id := range []string{"b", "a"} {
		if err := svc.Update(id, models.UserSettings{Filtering: &models.FilterOverride{MaxResolution: models.StringPtr("1080p")}}); err != nil {
			t.Fatalf("Update %s: %v", id, err)
		}
	}

	if got := svc.UsersWithOverrides(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("UsersWithOverrides = %v", got)
	}

	if err := svc.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete("missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}

	if ok, _ := afero.Exists(fs, filepath.Join("/data", "user_settings.json.tmp")); ok {
		t.Error("temp file left behind")
	}
	reloaded, err := NewServiceWithFs(fs, "/data")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.UsersWithOverrides(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("after delete = %v", got)
	}
}

func TestLoadToleratesMalformedFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `{
  "p1": {"playback": {"subtitleSize": "big", "preferredPlayer": "vlc"}},
  "p2": {"filtering": null}
}`
	if err := afero.WriteFile(fs, "/data/user_settings.json", []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	svc, err := NewServiceWithFs(fs, "/data")
	if err != nil {
		t.Fatalf("NewServiceWithFs: %v", err)
	}
	got, _ := svc.Get("p1")
	if got == nil || got.Playback.SubtitleSize != nil || models.StringVal(got.Playback.PreferredPlayer, "") != "vlc" {
		t.Fatalf("p1 = %+v", got)
	}
	if svc.HasOverrides("p2") {
		t.Error("all-null entry should be dropped")
	}
}
