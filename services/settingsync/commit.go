package settingsync

import (
	"context"
	"errors"
	"log"
	"maps"
	"slices"
	"strings"

	"novaremote/config"
	"novaremote/models"
	"novaremote/utils/coerce"
)

var ErrMissingActiveUser = errors.New("no active profile selected")

// CommitError wraps a transport failure or a server rejection. Its message is
// the underlying message unchanged so it can be shown as is.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string { return e.Err.Error() }

func (e *CommitError) Unwrap() error { return e.Err }

// Base is the pair of documents a mirror was built from.
type Base struct {
	Global   config.Settings
	Override *models.UserSettings
}

// Result carries the documents that were stored. A per-user commit sets
// Override, and also Global when playback leaves that only exist in the
// global document changed.
type Result struct {
	Global   *config.Settings
	Override *models.UserSettings
	UserID   string
}

type Committer struct {
	Client   SettingsClient
	Identity IdentityProvider
}

// Commit converts m into the payload for the destination picked by perUser
// and hands it to the settings client. Nothing is sent when conversion fails.
// A per-user commit stores changed seek steps in the global document first;
// if the override is then rejected, the returned Result still names the
// global document that was stored.
func (c *Committer) Commit(ctx context.Context, m Mirror, base Base, perUser bool) (Result, error) {
	if perUser {
		userID, ok := "", false
		if c.Identity != nil {
			userID, ok = c.Identity.CurrentUserID()
		}
		if !ok || strings.TrimSpace(userID) == "" {
			return Result{}, ErrMissingActiveUser
		}

		payload, err := BuildUserPayload(m, base.Global, base.Override)
		if err != nil {
			return Result{}, err
		}
		global, changed, err := globalPlayback(m, base.Global)
		if err != nil {
			return Result{}, err
		}

		var res Result
		if changed {
			if err := c.Client.SaveGlobalConfig(ctx, global); err != nil {
				log.Printf("[settings] save global playback settings failed: %v", err)
				return Result{}, &CommitError{Err: err}
			}
			res.Global = &global
		}
		if err := c.Client.SaveUserOverride(ctx, userID, payload); err != nil {
			log.Printf("[settings] save override for %s failed: %v", userID, err)
			return res, &CommitError{Err: err}
		}
		res.Override = &payload
		res.UserID = userID
		return res, nil
	}

	payload, err := BuildGlobalPayload(m, base.Global, c.Identity != nil)
	if err != nil {
		return Result{}, err
	}
	if err := c.Client.SaveGlobalConfig(ctx, payload); err != nil {
		log.Printf("[settings] save global settings failed: %v", err)
		return Result{}, &CommitError{Err: err}
	}
	return Result{Global: &payload}, nil
}

// BuildGlobalPayload coerces every mirror leaf into a full GlobalConfig.
// A blank text or integer field keeps the value from global, except for
// fields where blank is a real value (API keys, passwords, optional
// languages, term lists). When profile is set the overridable sections
// belong to the profile, so the payload keeps their global values. The seek
// steps have no per-profile field and always come from m.
func BuildGlobalPayload(m Mirror, global config.Settings, profile bool) (config.Settings, error) {
	base := config.Normalize(global)
	if profile {
		g := BuildMirror(global, nil)
		g.Playback.SeekForwardSeconds = m.Playback.SeekForwardSeconds
		g.Playback.SeekBackwardSeconds = m.Playback.SeekBackwardSeconds
		m.Playback = g.Playback
		m.HomeShelves = g.HomeShelves
		m.Filtering = g.Filtering
	}

	out := base.Clone()
	b := builder{}

	out.Server.Host = keep(m.Server.Host, base.Server.Host)
	out.Server.Port = b.integer(m.Server.Port, base.Server.Port, "Server port")

	out.Usenet = make([]config.UsenetSettings, 0, len(m.Usenet))
	prevUsenet := keyed(base.Usenet, "usenet")
	for _, u := range m.Usenet {
		prev, ok := prevUsenet[u.Key]
		if !ok {
			prev = config.UsenetSettings{Port: 563, SSL: true, Connections: 10, Enabled: true}
		}
		out.Usenet = append(out.Usenet, config.UsenetSettings{
			Name:        keep(u.Name, prev.Name),
			Host:        keep(u.Host, prev.Host),
			Port:        b.integer(u.Port, prev.Port, "Usenet server port"),
			SSL:         u.SSL,
			Username:    u.Username,
			Password:    u.Password,
			Connections: b.integer(u.Connections, prev.Connections, "Usenet server connections"),
			Enabled:     u.Enabled,
		})
	}

	out.Indexers = make([]config.IndexerConfig, 0, len(m.Indexers))
	prevIndexers := keyed(base.Indexers, "indexer")
	for _, idx := range m.Indexers {
		prev, ok := prevIndexers[idx.Key]
		if !ok {
			prev = config.IndexerConfig{Type: "newznab"}
		}
		out.Indexers = append(out.Indexers, config.IndexerConfig{
			Name:       keep(idx.Name, prev.Name),
			URL:        keep(idx.URL, prev.URL),
			APIKey:     idx.APIKey,
			Type:       keep(idx.Type, prev.Type),
			Categories: strings.TrimSpace(idx.Categories),
			Enabled:    idx.Enabled,
		})
	}

	out.TorrentScrapers = make([]config.TorrentScraperConfig, 0, len(m.Scrapers))
	prevScrapers := keyed(base.TorrentScrapers, "scraper")
	for _, sc := range m.Scrapers {
		prev, ok := prevScrapers[sc.Key]
		if !ok {
			prev = config.TorrentScraperConfig{Name: "Torrentio", Type: "torrentio"}
		}
		out.TorrentScrapers = append(out.TorrentScrapers, config.TorrentScraperConfig{
			Name:    keep(sc.Name, prev.Name),
			Type:    keep(sc.Type, prev.Type),
			URL:     strings.TrimSpace(sc.URL),
			APIKey:  sc.APIKey,
			Options: sc.Options,
			Enabled: sc.Enabled,
			Config:  maps.Clone(sc.Config),
		})
	}

	out.Metadata = config.MetadataSettings{
		TVDBAPIKey: m.Metadata.TVDBAPIKey,
		TMDBAPIKey: m.Metadata.TMDBAPIKey,
		Language:   keep(m.Metadata.Language, base.Metadata.Language),
	}
	out.Cache = config.CacheSettings{
		Directory:        keep(m.Cache.Directory, base.Cache.Directory),
		MetadataTTLHours: b.integer(m.Cache.MetadataTTLHours, base.Cache.MetadataTTLHours, "Metadata cache TTL"),
	}
	out.WebDAV = config.WebDAVSettings{
		Enabled:  m.WebDAV.Enabled,
		Prefix:   keep(m.WebDAV.Prefix, base.WebDAV.Prefix),
		Username: keep(m.WebDAV.Username, base.WebDAV.Username),
		Password: m.WebDAV.Password,
	}

	st := m.Streaming
	out.Streaming = config.StreamingSettings{
		MaxDownloadWorkers:         b.integer(st.MaxDownloadWorkers, base.Streaming.MaxDownloadWorkers, "Download workers"),
		MaxCacheSizeMB:             b.integer(st.MaxCacheSizeMB, base.Streaming.MaxCacheSizeMB, "Cache size"),
		ServiceMode:                st.ServiceMode,
		ServicePriority:            st.ServicePriority,
		MultiProviderMode:          st.MultiProviderMode,
		UsenetResolutionTimeoutSec: b.integer(st.UsenetResolutionTimeoutSec, base.Streaming.UsenetResolutionTimeoutSec, "Usenet resolution timeout"),
		DebridProviders:            make([]config.DebridProviderSettings, 0, len(st.DebridProviders)),
	}
	prevDebrid := keyed(base.Streaming.DebridProviders, "debrid")
	for _, p := range st.DebridProviders {
		prev, ok := prevDebrid[p.Key]
		if !ok {
			prev = config.DebridProviderSettings{Name: "Real Debrid", Provider: "realdebrid"}
		}
		out.Streaming.DebridProviders = append(out.Streaming.DebridProviders, config.DebridProviderSettings{
			Name:     keep(p.Name, prev.Name),
			Provider: keep(p.Provider, prev.Provider),
			APIKey:   p.APIKey,
			Enabled:  p.Enabled,
			Config:   maps.Clone(p.Config),
		})
	}

	out.Transmux = config.TransmuxSettings{
		Enabled:          m.Transmux.Enabled,
		FFmpegPath:       keep(m.Transmux.FFmpegPath, base.Transmux.FFmpegPath),
		FFprobePath:      keep(m.Transmux.FFprobePath, base.Transmux.FFprobePath),
		HLSTempDirectory: keep(m.Transmux.HLSTempDirectory, base.Transmux.HLSTempDirectory),
	}

	pb := m.Playback
	out.Playback = config.PlaybackSettings{
		PreferredPlayer:           keep(pb.PreferredPlayer, base.Playback.PreferredPlayer),
		PreferredAudioLanguage:    strings.TrimSpace(pb.PreferredAudioLanguage),
		PreferredSubtitleLanguage: strings.TrimSpace(pb.PreferredSubtitleLanguage),
		PreferredSubtitleMode:     strings.TrimSpace(pb.PreferredSubtitleMode),
		UseLoadingScreen:          pb.UseLoadingScreen,
		SubtitleSize:              b.float(pb.SubtitleSize, base.Playback.SubtitleSize, "Subtitle size"),
		SeekForwardSeconds:        b.integer(pb.SeekForwardSeconds, base.Playback.SeekForwardSeconds, "Seek forward"),
		SeekBackwardSeconds:       b.integer(pb.SeekBackwardSeconds, base.Playback.SeekBackwardSeconds, "Seek backward"),
	}

	out.Live = config.LiveSettings{
		PlaylistURL:           strings.TrimSpace(m.Live.PlaylistURL),
		PlaylistCacheTTLHours: b.integer(m.Live.PlaylistCacheTTLHours, base.Live.PlaylistCacheTTLHours, "Playlist cache TTL"),
		ProbeSizeMB:           b.integer(m.Live.ProbeSizeMB, base.Live.ProbeSizeMB, "Probe size"),
		AnalyzeDurationSec:    b.integer(m.Live.AnalyzeDurationSec, base.Live.AnalyzeDurationSec, "Analyze duration"),
		LowLatency:            m.Live.LowLatency,
	}

	out.HomeShelves = config.HomeShelvesSettings{
		Shelves:             shelfConfigs(m.HomeShelves.Shelves),
		TrendingMovieSource: m.HomeShelves.TrendingMovieSource,
	}

	f := m.Filtering
	out.Filtering = config.FilterSettings{
		MaxSizeMovieGB:                   b.float(f.MaxSizeMovieGB, base.Filtering.MaxSizeMovieGB, "Max movie size"),
		MaxSizeEpisodeGB:                 b.float(f.MaxSizeEpisodeGB, base.Filtering.MaxSizeEpisodeGB, "Max episode size"),
		MaxResolution:                    strings.TrimSpace(f.MaxResolution),
		HDRDVPolicy:                      f.HDRDVPolicy,
		PrioritizeHdr:                    f.PrioritizeHdr,
		FilterOutTerms:                   coerce.ToTermList(f.FilterOutTerms),
		PreferredTerms:                   coerce.ToTermList(f.PreferredTerms),
		BypassFilteringForAIOStreamsOnly: f.BypassFilteringForAIOStreamsOnly,
	}

	if b.err != nil {
		return config.Settings{}, b.err
	}
	return out, nil
}

// globalPlayback returns global with the seek steps taken from m, and whether
// either of them changed. The override document cannot carry them.
func globalPlayback(m Mirror, global config.Settings) (config.Settings, bool, error) {
	base := config.Normalize(global)
	b := builder{}
	fwd := b.integer(m.Playback.SeekForwardSeconds, base.Playback.SeekForwardSeconds, "Seek forward")
	back := b.integer(m.Playback.SeekBackwardSeconds, base.Playback.SeekBackwardSeconds, "Seek backward")
	if b.err != nil {
		return config.Settings{}, false, b.err
	}
	if fwd == base.Playback.SeekForwardSeconds && back == base.Playback.SeekBackwardSeconds {
		return config.Settings{}, false, nil
	}
	out := base.Clone()
	out.Playback.SeekForwardSeconds = fwd
	out.Playback.SeekBackwardSeconds = back
	return out, true, nil
}

// Scope returns base with the named sections replaced by the ones in m, so a
// payload built from it only carries edits made to those sections.
func Scope(m, base Mirror, sections ...string) Mirror {
	out := base
	for _, section := range sections {
		switch section {
		case "server":
			out.Server = m.Server
		case "usenet":
			out.Usenet = m.Usenet
		case "indexers":
			out.Indexers = m.Indexers
		case "torrentScrapers":
			out.Scrapers = m.Scrapers
		case "metadata":
			out.Metadata = m.Metadata
		case "cache":
			out.Cache = m.Cache
		case "webdav":
			out.WebDAV = m.WebDAV
		case "streaming":
			out.Streaming = m.Streaming
		case "transmux":
			out.Transmux = m.Transmux
		case "playback":
			out.Playback = m.Playback
		case "homeShelves":
			out.HomeShelves = m.HomeShelves
		case "filtering":
			out.Filtering = m.Filtering
		case "live":
			out.Live.PlaylistURL = m.Live.PlaylistURL
			out.Live.PlaylistCacheTTLHours = m.Live.PlaylistCacheTTLHours
			out.Live.ProbeSizeMB = m.Live.ProbeSizeMB
			out.Live.AnalyzeDurationSec = m.Live.AnalyzeDurationSec
			out.Live.LowLatency = m.Live.LowLatency
		case "liveTV":
			out.Live.HiddenChannels = m.Live.HiddenChannels
			out.Live.FavoriteChannels = m.Live.FavoriteChannels
			out.Live.SelectedCategories = m.Live.SelectedCategories
		}
	}
	return out
}

// BuildUserPayload converts the four overridable sections into a sparse
// override. A field is included when prior already overrode it or when it
// now differs from the global value; sections with nothing to say are left
// out. Blank numeric fields drop the override for that field.
func BuildUserPayload(m Mirror, global config.Settings, prior *models.UserSettings) (models.UserSettings, error) {
	g := BuildMirror(global, nil)
	if prior == nil {
		prior = &models.UserSettings{}
	}
	b := builder{}
	var out models.UserSettings

	pb, gpb, ppb := m.Playback, g.Playback, prior.Playback
	play := &models.PlaybackOverride{}
	if ppb == nil {
		ppb = &models.PlaybackOverride{}
	}
	play.PreferredPlayer = pickString(pb.PreferredPlayer, gpb.PreferredPlayer, ppb.PreferredPlayer != nil)
	play.PreferredAudioLanguage = pickString(pb.PreferredAudioLanguage, gpb.PreferredAudioLanguage, ppb.PreferredAudioLanguage != nil)
	play.PreferredSubtitleLanguage = pickString(pb.PreferredSubtitleLanguage, gpb.PreferredSubtitleLanguage, ppb.PreferredSubtitleLanguage != nil)
	play.PreferredSubtitleMode = pickString(pb.PreferredSubtitleMode, gpb.PreferredSubtitleMode, ppb.PreferredSubtitleMode != nil)
	play.UseLoadingScreen = pick(pb.UseLoadingScreen, gpb.UseLoadingScreen, ppb.UseLoadingScreen != nil)
	play.SubtitleSize = b.pickFloat(pb.SubtitleSize, gpb.SubtitleSize, ppb.SubtitleSize != nil, "Subtitle size")
	if !play.IsEmpty() {
		out.Playback = play
	}

	ph := prior.HomeShelves
	if ph == nil {
		ph = &models.HomeShelvesOverride{}
	}
	home := &models.HomeShelvesOverride{}
	if ph.Shelves != nil || !slices.Equal(m.HomeShelves.Shelves, g.HomeShelves.Shelves) {
		shelves := shelfConfigs(m.HomeShelves.Shelves)
		home.Shelves = &shelves
	}
	home.TrendingMovieSource = pick(m.HomeShelves.TrendingMovieSource, g.HomeShelves.TrendingMovieSource, ph.TrendingMovieSource != nil)
	if !home.IsEmpty() {
		out.HomeShelves = home
	}

	f, gf, pf := m.Filtering, g.Filtering, prior.Filtering
	if pf == nil {
		pf = &models.FilterOverride{}
	}
	filter := &models.FilterOverride{}
	filter.MaxSizeMovieGB = b.pickFloat(f.MaxSizeMovieGB, gf.MaxSizeMovieGB, pf.MaxSizeMovieGB != nil, "Max movie size")
	filter.MaxSizeEpisodeGB = b.pickFloat(f.MaxSizeEpisodeGB, gf.MaxSizeEpisodeGB, pf.MaxSizeEpisodeGB != nil, "Max episode size")
	filter.MaxResolution = pickString(f.MaxResolution, gf.MaxResolution, pf.MaxResolution != nil)
	filter.HDRDVPolicy = pick(f.HDRDVPolicy, gf.HDRDVPolicy, pf.HDRDVPolicy != nil)
	filter.PrioritizeHdr = pick(f.PrioritizeHdr, gf.PrioritizeHdr, pf.PrioritizeHdr != nil)
	filter.FilterOutTerms = pickTerms(f.FilterOutTerms, gf.FilterOutTerms, pf.FilterOutTerms != nil)
	filter.PreferredTerms = pickTerms(f.PreferredTerms, gf.PreferredTerms, pf.PreferredTerms != nil)
	filter.BypassFilteringForAIOStreamsOnly = pick(f.BypassFilteringForAIOStreamsOnly, gf.BypassFilteringForAIOStreamsOnly, pf.BypassFilteringForAIOStreamsOnly != nil)
	if !filter.IsEmpty() {
		out.Filtering = filter
	}

	pl := prior.LiveTV
	if pl == nil {
		pl = &models.LiveTVOverride{}
	}
	live := &models.LiveTVOverride{
		HiddenChannels:     pickTerms(m.Live.HiddenChannels, "", pl.HiddenChannels != nil),
		FavoriteChannels:   pickTerms(m.Live.FavoriteChannels, "", pl.FavoriteChannels != nil),
		SelectedCategories: pickTerms(m.Live.SelectedCategories, "", pl.SelectedCategories != nil),
	}
	if !live.IsEmpty() {
		out.LiveTV = live
	}

	if b.err != nil {
		return models.UserSettings{}, b.err
	}
	return out, nil
}

// builder collects the first coercion failure so a payload is built in one
// pass and rejected as a whole.
type builder struct {
	err error
}

func (b *builder) integer(text string, fallback int, label string) int {
	v, err := coerce.ToInteger(text, fallback, label)
	if err != nil && b.err == nil {
		b.err = err
	}
	return v
}

func (b *builder) float(text string, fallback float64, label string) float64 {
	v, blank, err := parseFloatField(text, label)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return fallback
	}
	if blank {
		return fallback
	}
	return v
}

func (b *builder) pickFloat(text, globalText string, overridden bool, label string) *float64 {
	v, blank, err := parseFloatField(text, label)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return nil
	}
	if blank {
		return nil
	}
	if gv, _, gerr := parseFloatField(globalText, label); !overridden && gerr == nil && gv == v {
		return nil
	}
	return &v
}

func keep(text, fallback string) string {
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	return fallback
}

func pick[T comparable](v, global T, overridden bool) *T {
	if !overridden && v == global {
		return nil
	}
	return &v
}

func pickString(v, global string, overridden bool) *string {
	return pick(strings.TrimSpace(v), strings.TrimSpace(global), overridden)
}

func pickTerms(text, globalText string, overridden bool) *[]string {
	terms := coerce.ToTermList(text)
	if !overridden && slices.Equal(terms, coerce.ToTermList(globalText)) {
		return nil
	}
	return &terms
}

func keyed[T any](entries []T, list string) map[string]T {
	out := make(map[string]T, len(entries))
	for i, e := range entries {
		out[entryKey(list, i)] = e
	}
	return out
}

func shelfConfigs(forms []ShelfForm) []config.ShelfConfig {
	out := make([]config.ShelfConfig, 0, len(forms))
	for _, s := range forms {
		out = append(out, config.ShelfConfig{ID: s.ID, Name: strings.TrimSpace(s.Name), Enabled: s.Enabled, Order: s.Order})
	}
	return out
}
