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
	"novaremote/utils/coerce"
)

func TestBuildGlobalPayloadBlankFallsBack(t *testing.T) {
	g := sampleGlobal()
	m := BuildMirror(g, nil)
	m.Server.Host = "  "
	m.Server.Port = ""
	m.Usenet[0].Host = ""
	m.Usenet[0].Password = ""
	m.Metadata.TMDBAPIKey = ""
	m.Indexers[0].APIKey = ""
	m.Cache.Directory = ""

	out, err := BuildGlobalPayload(m, g, false)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", out.Server.Host)
	assert.Equal(t, 8080, out.Server.Port)
	assert.Equal(t, "news.example.com", out.Usenet[0].Host)
	assert.Equal(t, "", out.Usenet[0].Password, "passwords may be cleared")
	assert.Equal(t, "", out.Indexers[0].APIKey, "api keys may be cleared")
	assert.Equal(t, "cache", out.Cache.Directory)
}

func TestBuildGlobalPayloadCoercesEdits(t *testing.T) {
	fixedKeys(t, "fresh")
	g := sampleGlobal()
	m := BuildMirror(g, nil)
	m.Server.Port = " 9090 "
	m.Usenet[1].Connections = "12.9"
	m.Filtering.FilterOutTerms = " cam ,, hdts,"
	m.Playback.SubtitleSize = "1.256"
	m = AddUsenet(m)
	m.Usenet[2].Host = "new.example.com"
	m.Usenet[2].Port = ""

	out, err := BuildGlobalPayload(m, g, false)
	require.NoError(t, err)

	assert.Equal(t, 9090, out.Server.Port)
	assert.Equal(t, 12, out.Usenet[1].Connections)
	assert.Equal(t, []string{"cam", "hdts"}, out.Filtering.FilterOutTerms)
	assert.Equal(t, 1.26, out.Playback.SubtitleSize)
	require.Len(t, out.Usenet, 3)
	assert.Equal(t, 563, out.Usenet[2].Port, "new entries fall back to their add defaults")
	assert.Equal(t, "new.example.com", out.Usenet[2].Host)
}

func TestBuildGlobalPayloadFollowsListKeys(t *testing.T) {
	g := sampleGlobal()
	m := BuildMirror(g, nil)
	m, err := RemoveUsenet(m, 0)
	require.NoError(t, err)
	m.Usenet[0].Host = ""

	out, err := BuildGlobalPayload(m, g, false)
	require.NoError(t, err)
	require.Len(t, out.Usenet, 1)
	assert.Equal(t, "backup.example.com", out.Usenet[0].Host)
}

func TestBuildGlobalPayloadRejectsBadNumbers(t *testing.T) {
	g := sampleGlobal()
	m := BuildMirror(g, nil)
	m.Streaming.MaxCacheSizeMB = "lots"

	_, err := BuildGlobalPayload(m, g, false)
	assert.True(t, errors.Is(err, coerce.ErrNotANumber))
	assert.EqualError(t, err, "Cache size must be a number")
}

func TestBuildGlobalPayloadKeepsProfileSections(t *testing.T) {
	g := sampleGlobal()
	override := &models.UserSettings{Playback: &models.PlaybackOverride{PreferredAudioLanguage: models.StringPtr("jpn")}}
	m := BuildMirror(g, override)
	m.Playback.PreferredPlayer = "vlc"
	m.Server.Port = "9000"

	out, err := BuildGlobalPayload(m, g, true)
	require.NoError(t, err)
	assert.Equal(t, 9000, out.Server.Port)
	assert.Equal(t, "eng", out.Playback.PreferredAudioLanguage)
	assert.Equal(t, "native", out.Playback.PreferredPlayer)
}

func TestBuildUserPayloadIsSparse(t *testing.T) {
	g := sampleGlobal()
	prior := &models.UserSettings{
		Playback: &models.PlaybackOverride{PreferredSubtitleMode: models.StringPtr("forced")},
	}
	m := BuildMirror(g, prior)
	m.Playback.PreferredAudioLanguage = "jpn"
	m.Filtering.MaxSizeEpisodeGB = "5"

	out, err := BuildUserPayload(m, g, prior)
	require.NoError(t, err)

	require.NotNil(t, out.Playback)
	assert.Equal(t, "jpn", *out.Playback.PreferredAudioLanguage)
	assert.Equal(t, "forced", *out.Playback.PreferredSubtitleMode, "prior overrides are kept even when equal to global")
	assert.Nil(t, out.Playback.PreferredPlayer)
	assert.Nil(t, out.Playback.SubtitleSize)

	require.NotNil(t, out.Filtering)
	assert.Equal(t, 5.0, *out.Filtering.MaxSizeEpisodeGB)
	assert.Nil(t, out.Filtering.MaxSizeMovieGB)
	assert.Nil(t, out.HomeShelves)
	assert.Nil(t, out.LiveTV)
}

func TestBuildUserPayloadShelvesAndChannels(t *testing.T) {
	g := sampleGlobal()
	m := BuildMirror(g, nil)
	m, err := MoveShelf(m, 0, 1)
	require.NoError(t, err)
	m.Live.HiddenChannels = "a, b,"

	out, err := BuildUserPayload(m, g, nil)
	require.NoError(t, err)

	require.NotNil(t, out.HomeShelves)
	require.NotNil(t, out.HomeShelves.Shelves)
	shelves := *out.HomeShelves.Shelves
	assert.Equal(t, "watchlist", shelves[0].ID)
	assert.Equal(t, 0, shelves[0].Order)
	assert.Nil(t, out.HomeShelves.TrendingMovieSource)

	require.NotNil(t, out.LiveTV)
	assert.Equal(t, []string{"a", "b"}, *out.LiveTV.HiddenChannels)
	assert.Nil(t, out.LiveTV.FavoriteChannels)
}

func TestBuildUserPayloadRejectsBadFloat(t *testing.T) {
	g := sampleGlobal()
	m := BuildMirror(g, nil)
	m.Playback.SubtitleSize = "huge"

	_, err := BuildUserPayload(m, g, nil)
	assert.EqualError(t, err, "Subtitle size must be a number")
}

func TestCommitPerUserRequiresIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	identity := mocks.NewMockIdentityProvider(ctrl)
	identity.EXPECT().CurrentUserID().Return("", false)

	c := &Committer{Client: client, Identity: identity}
	_, err := c.Commit(context.Background(), BuildMirror(sampleGlobal(), nil), Base{Global: sampleGlobal()}, true)
	assert.True(t, errors.Is(err, ErrMissingActiveUser))

	c = &Committer{Client: client}
	_, err = c.Commit(context.Background(), BuildMirror(sampleGlobal(), nil), Base{Global: sampleGlobal()}, true)
	assert.True(t, errors.Is(err, ErrMissingActiveUser))
}

func TestCommitPerUserSavesOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	identity := mocks.NewMockIdentityProvider(ctrl)
	identity.EXPECT().CurrentUserID().Return("profile-1", true)

	g := sampleGlobal()
	m := BuildMirror(g, nil)
	m.Playback.PreferredPlayer = "infuse"

	client.EXPECT().SaveUserOverride(gomock.Any(), "profile-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, o models.UserSettings) error {
			assert.Equal(t, "infuse", *o.Playback.PreferredPlayer)
			return nil
		})

	c := &Committer{Client: client, Identity: identity}
	res, err := c.Commit(context.Background(), m, Base{Global: g}, true)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", res.UserID)
	assert.Nil(t, res.Global)
	require.NotNil(t, res.Override)
}

func TestCommitGlobalWrapsTransportErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	rejected := errors.New("server.port must be between 1 and 65535, got 0")
	client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).Return(rejected)

	c := &Committer{Client: client}
	_, err := c.Commit(context.Background(), BuildMirror(sampleGlobal(), nil), Base{Global: sampleGlobal()}, false)

	var commitErr *CommitError
	require.True(t, errors.As(err, &commitErr))
	assert.Equal(t, rejected.Error(), err.Error())
	assert.True(t, errors.Is(err, rejected))
}

func TestCommitGlobalSendsPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	g := sampleGlobal()
	m := BuildMirror(g, nil)
	m.Server.Port = "8443"

	var sent config.Settings
	client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s config.Settings) error {
			sent = s
			return nil
		})

	c := &Committer{Client: client}
	res, err := c.Commit(context.Background(), m, Base{Global: g}, false)
	require.NoError(t, err)
	assert.Equal(t, 8443, sent.Server.Port)
	require.NotNil(t, res.Global)
	assert.Equal(t, sent, *res.Global)
}

func TestCommitDoesNotSendOnCoercionFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	m := BuildMirror(sampleGlobal(), nil)
	m.Live.ProbeSizeMB = "big"

	c := &Committer{Client: client}
	_, err := c.Commit(context.Background(), m, Base{Global: sampleGlobal()}, false)
	assert.True(t, errors.Is(err, coerce.ErrNotANumber))
}

func TestCommitPerUserStoresSeekStepsGlobally(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	identity := mocks.NewMockIdentityProvider(ctrl)
	identity.EXPECT().CurrentUserID().Return("profile-1", true)

	g := sampleGlobal()
	m := BuildMirror(g, nil)
	m.Playback.SeekBackwardSeconds = "5"

	gomock.InOrder(
		client.EXPECT().SaveGlobalConfig(gomock.Any(), gomock.Any()).Return(nil),
		client.EXPECT().SaveUserOverride(gomock.Any(), "profile-1", gomock.Any()).Return(errors.New("profile locked")),
	)

	c := &Committer{Client: client, Identity: identity}
	res, err := c.Commit(context.Background(), m, Base{Global: g}, true)
	assert.EqualError(t, err, "profile locked")
	require.NotNil(t, res.Global, "the stored global document is reported")
	assert.Equal(t, 5, res.Global.Playback.SeekBackwardSeconds)
	assert.Equal(t, 30, res.Global.Playback.SeekForwardSeconds)
	assert.Nil(t, res.Override)
}

func TestCommitPerUserRejectsBadSeekStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockSettingsClient(ctrl)
	identity := mocks.NewMockIdentityProvider(ctrl)
	identity.EXPECT().CurrentUserID().Return("profile-1", true)

	m := BuildMirror(sampleGlobal(), nil)
	m.Playback.SeekForwardSeconds = "fast"

	c := &Committer{Client: client, Identity: identity}
	_, err := c.Commit(context.Background(), m, Base{Global: sampleGlobal()}, true)
	assert.True(t, errors.Is(err, coerce.ErrNotANumber))
}

func TestScopeKeepsOtherSections(t *testing.T) {
	g := sampleGlobal()
	base := BuildMirror(g, nil)
	m := base
	m.Server.Port = "8443"
	m.Live.ProbeSizeMB = "64"
	m.Live.HiddenChannels = "news"

	out := Scope(m, base, "server", "liveTV")
	assert.Equal(t, "8443", out.Server.Port)
	assert.Equal(t, "news", out.Live.HiddenChannels)
	assert.Equal(t, base.Live.ProbeSizeMB, out.Live.ProbeSizeMB)
}
