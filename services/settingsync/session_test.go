package settingsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"novaremote/config"
	"novaremote/models"
	"novaremote/services/settingsync/mocks"
)

func newTestSession(t *testing.T, withProfile bool) (*Session, *mocks.MockSettingsClient, *mocks.MockIdentityProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	if !withProfile {
		s := NewSession(client, nil, DefaultLayout())
		s.Load(sampleGlobal(), nil)
		return s, client, nil
	}
	identity := mocks.NewMockIdentityProvider(ctrl)
	s := NewSession(client, identity, DefaultLayout())
	s.Load(sampleGlobal(), nil)
	return s, client, identity
}

func TestSessionRefreshFetchesBothDocuments(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	identity := mocks.NewMockIdentityProvider(ctrl)

	identity.EXPECT().CurrentUserID().Return("kid", true)
	client.EXPECT().FetchGlobalConfig(gomock.Any()).Return(sampleGlobal(), nil)
	client.EXPECT().FetchUserOverride(gomock.Any(), "kid").Return(&models.UserSettings{
		Playback: &models.PlaybackOverride{PreferredAudioLanguage: models.StringPtr("fra")},
	}, nil)

	s := NewSession(client, identity, nil)
	require.NoError(t, s.Set("server.port", "1"))
	require.NoError(t, s.Refresh(context.Background()))

	assert.False(t, s.Dirty())
	assert.Equal(t, "8080", s.Mirror().Server.Port)
	assert.Equal(t, "fra", s.Mirror().Playback.PreferredAudioLanguage)
}

func TestSessionRefreshFailureKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	client.EXPECT().FetchGlobalConfig(gomock.Any()).Return(config.Settings{}, errors.New("connection refused"))

	s := NewSession(client, nil, nil)
	s.Load(sampleGlobal(), nil)
	require.NoError(t, s.Set("server.port", "1"))

	err := s.Refresh(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.True(t, s.Dirty())
	assert.Equal(t, "1", s.Mirror().Server.Port)
}

func TestSessionDirtyFlag(t *testing.T) {
	s, _, _ := newTestSession(t, false)
	assert.False(t, s.Dirty())

	require.NoError(t, s.Set("playback.preferredPlayer", "vlc"))
	assert.True(t, s.Dirty())

	s.Load(sampleGlobal(), nil)
	assert.False(t, s.Dirty())

	assert.Error(t, s.Set("server.bogus", "1"))
	assert.False(t, s.Dirty(), "failed edits do not dirty the session")

	require.NoError(t, s.AddEntry("usenet"))
	assert.True(t, s.Dirty())
}

func TestSessionInvalidPortScenario(t *testing.T) {
	s, _, _ := newTestSession(t, false)

	require.NoError(t, s.Set("server.port", "99999"))
	err := s.Save(context.Background(), TabServer)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, ValidationErrors{"server.port": "Server port must be at most 65535"}, s.Errors())
	assert.True(t, s.Dirty())

	require.NoError(t, s.Set("server.port", "8443"))
	assert.Empty(t, s.Errors())
	assert.True(t, s.Dirty())
}

func TestSessionSaveSuccessClearsDirty(t *testing.T) {
	s, client, _ := newTestSession(t, false)
	client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).Return(nil)

	fixedKeys(t, "added")
	require.NoError(t, s.AddEntry("usenet"))
	require.NoError(t, s.Set("usenet.2.host", "third.example.com"))
	require.NoError(t, s.Save(context.Background(), TabSources))

	assert.False(t, s.Dirty())
	assert.Empty(t, s.Errors())
	assert.Equal(t, "usenet-2", s.Mirror().Usenet[2].Key)
	assert.False(t, s.Committing())
}

func TestSessionSaveFailureKeepsMirror(t *testing.T) {
	s, client, _ := newTestSession(t, false)
	client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	require.NoError(t, s.Set("server.host", "127.0.0.1"))
	before := s.Mirror()

	err := s.Save(context.Background(), TabServer)
	assert.EqualError(t, err, "disk full")
	assert.True(t, s.Dirty())
	assert.Equal(t, before, s.Mirror())
}

func TestSessionSaveRejectsConcurrentSave(t *testing.T) {
	s, client, _ := newTestSession(t, false)

	release := make(chan struct{})
	started := make(chan struct{})
	client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, config.Settings) error {
			close(started)
			<-release
			return nil
		})

	require.NoError(t, s.Set("server.host", "127.0.0.1"))
	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background(), TabServer) }()
	<-started

	assert.True(t, s.Committing())
	assert.True(t, errors.Is(s.Save(context.Background(), TabServer), ErrCommitInFlight))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Dirty())
}

func TestSessionStaleCommitDoesNotClearDirty(t *testing.T) {
	s, client, _ := newTestSession(t, false)

	release := make(chan struct{})
	started := make(chan struct{})
	client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, config.Settings) error {
			close(started)
			<-release
			return nil
		})

	require.NoError(t, s.Set("server.host", "127.0.0.1"))
	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background(), TabServer) }()
	<-started

	// A newer document arrives and the user edits it before the save lands.
	s.Load(sampleGlobal(), nil)
	require.NoError(t, s.Set("server.port", "9000"))

	close(release)
	require.NoError(t, <-done)
	assert.True(t, s.Dirty())
	assert.Equal(t, "9000", s.Mirror().Server.Port)
}

func TestSessionEditDuringCommitStaysDirty(t *testing.T) {
	s, client, _ := newTestSession(t, false)

	release := make(chan struct{})
	started := make(chan struct{})
	client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, config.Settings) error {
			close(started)
			<-release
			return nil
		})

	require.NoError(t, s.Set("server.host", "127.0.0.1"))
	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background(), TabServer) }()
	<-started
	require.NoError(t, s.Set("server.port", "9000"))
	close(release)

	require.NoError(t, <-done)
	assert.True(t, s.Dirty())
}

func TestSessionPerUserTabSavesOverride(t *testing.T) {
	s, client, identity := newTestSession(t, true)
	identity.EXPECT().CurrentUserID().Return("kid", true)
	client.EXPECT().SaveUserOverride(gomock.Any(), "kid", gomock.Any()).Return(nil)

	require.NoError(t, s.Set("playback.preferredAudioLanguage", "deu"))
	require.NoError(t, s.Save(context.Background(), TabPlayback))
	assert.False(t, s.Dirty())
	assert.Equal(t, "deu", s.Mirror().Playback.PreferredAudioLanguage)
}

func TestSessionProfilePlaybackKeepsSeekSteps(t *testing.T) {
	s, client, identity := newTestSession(t, true)
	identity.EXPECT().CurrentUserID().Return("kid", true)

	var sentGlobal config.Settings
	var sentOverride models.UserSettings
	gomock.InOrder(
		client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, g config.Settings) error {
				sentGlobal = g
				return nil
			}),
		client.EXPECT().SaveUserOverride(gomock.Any(), "kid", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, o models.UserSettings) error {
				sentOverride = o
				return nil
			}),
	)

	require.NoError(t, s.Set("playback.seekForwardSeconds", "45"))
	require.NoError(t, s.Set("playback.preferredAudioLanguage", "deu"))
	require.NoError(t, s.Save(context.Background(), TabPlayback))

	assert.Equal(t, 45, sentGlobal.Playback.SeekForwardSeconds)
	assert.Equal(t, 10, sentGlobal.Playback.SeekBackwardSeconds)
	assert.Equal(t, "eng", sentGlobal.Playback.PreferredAudioLanguage, "profile fields stay out of the global document")
	require.NotNil(t, sentOverride.Playback)
	assert.Equal(t, "deu", models.StringVal(sentOverride.Playback.PreferredAudioLanguage, ""))

	assert.False(t, s.Dirty())
	assert.Equal(t, "45", s.Mirror().Playback.SeekForwardSeconds)
}

func TestSessionProfilePlaybackWithoutSeekEditsSkipsGlobal(t *testing.T) {
	s, client, identity := newTestSession(t, true)
	identity.EXPECT().CurrentUserID().Return("kid", true)
	client.EXPECT().SaveUserOverride(gomock.Any(), "kid", gomock.Any()).Return(nil)

	require.NoError(t, s.Set("playback.seekForwardSeconds", "30"))
	require.NoError(t, s.Save(context.Background(), TabPlayback))
	assert.False(t, s.Dirty())
}

func TestSessionSaveSendsOnlyTabSections(t *testing.T) {
	s, client, _ := newTestSession(t, false)

	var sent config.Settings
	client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, g config.Settings) error {
			sent = g
			return nil
		})

	require.NoError(t, s.Set("streaming.maxDownloadWorkers", "0"))
	require.NoError(t, s.Set("server.port", "8443"))
	require.NoError(t, s.Save(context.Background(), TabServer))

	assert.Equal(t, 8443, sent.Server.Port)
	assert.Equal(t, 15, sent.Streaming.MaxDownloadWorkers)
	assert.True(t, s.Dirty(), "the streaming edit is still unsaved")
	assert.Equal(t, "0", s.Mirror().Streaming.MaxDownloadWorkers)

	err := s.Save(context.Background(), TabStreaming)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, s.Errors(), "streaming.maxDownloadWorkers")
}

func TestSessionPendingListSurvivesOtherTabSave(t *testing.T) {
	s, client, _ := newTestSession(t, false)

	var sent []config.Settings
	client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, g config.Settings) error {
			sent = append(sent, g)
			return nil
		}).Times(2)

	require.NoError(t, s.MoveEntry("usenet", 0, 1))
	require.NoError(t, s.Set("usenet.0.name", ""))
	require.NoError(t, s.Set("server.port", "8443"))

	require.NoError(t, s.Save(context.Background(), TabServer))
	assert.Equal(t, "Primary", sent[0].Usenet[0].Name)
	assert.True(t, s.Dirty())

	require.NoError(t, s.Save(context.Background(), TabSources))
	require.Len(t, sent[1].Usenet, 2)
	assert.Equal(t, "Backup", sent[1].Usenet[0].Name, "a blank name keeps the entry's stored value")
	assert.Equal(t, "Primary", sent[1].Usenet[1].Name)
	assert.Equal(t, 8443, sent[1].Server.Port)
	assert.False(t, s.Dirty())
}

func TestSessionPerUserTabValidatesNumerics(t *testing.T) {
	s, _, _ := newTestSession(t, true)

	require.NoError(t, s.Set("playback.subtitleSize", "-1"))
	err := s.Save(context.Background(), TabPlayback)
	assert.Error(t, err)
	assert.Equal(t, ValidationErrors{"playback.subtitleSize": "Subtitle size must be greater than 0"}, s.Errors())
}

func TestSessionProfileOnlyTabNeedsIdentity(t *testing.T) {
	s, _, _ := newTestSession(t, false)
	require.NoError(t, s.Set("liveTV.hiddenChannels", "a"))
	assert.True(t, errors.Is(s.Save(context.Background(), TabChannels), ErrMissingActiveUser))
	assert.True(t, s.Dirty())
}

func TestSessionUnknownTab(t *testing.T) {
	s, _, _ := newTestSession(t, false)
	assert.True(t, errors.Is(s.Save(context.Background(), Tab("nope")), ErrUnknownTab))
}

func TestSessionRemoveEntryClearsListErrors(t *testing.T) {
	s, _, _ := newTestSession(t, false)
	require.NoError(t, s.Set("usenet.1.connections", "0"))
	require.Error(t, s.Save(context.Background(), TabSources))
	require.Contains(t, s.Errors(), "usenet.1.connections")

	require.NoError(t, s.RemoveEntry("usenet", 1))
	assert.Empty(t, s.Errors())
}

func TestTVLayoutDropsDeviceSections(t *testing.T) {
	spec, ok := TVLayout().Tab(TabStreaming)
	require.True(t, ok)
	assert.Equal(t, []string{"streaming"}, spec.Sections)
	assert.Equal(t, DefaultLayout().Tabs(), TVLayout().Tabs())
}

func TestLayoutTabFor(t *testing.T) {
	spec, ok := DefaultLayout().TabFor("usenet.0.port")
	require.True(t, ok)
	assert.Equal(t, TabSources, spec.Tab)

	spec, ok = DefaultLayout().TabFor("streaming.debridProviders")
	require.True(t, ok)
	assert.Equal(t, TabStreaming, spec.Tab)

	spec, ok = DefaultLayout().TabFor("liveTV.hiddenChannels")
	require.True(t, ok)
	assert.True(t, spec.ProfileOnly)

	_, ok = TVLayout().TabFor("webdav.enabled")
	assert.False(t, ok)
}
