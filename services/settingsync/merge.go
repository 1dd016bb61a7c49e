package settingsync

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"novaremote/config"
	"novaremote/models"
	"novaremote/utils/coerce"
)

// entryKey derives the identity key of a list entry loaded from the server.
// Keys only need to be stable for one mirror; entries added later get a uuid.
func entryKey(list string, index int) string {
	return fmt.Sprintf("%s-%d", list, index)
}

// rekey moves the entries of the lists that belong to sections onto the keys
// BuildMirror would assign to the document stored from saved. Entries that
// were not part of saved keep their keys.
func rekey(m, saved Mirror, sections []string) Mirror {
	if slices.Contains(sections, "usenet") {
		m.Usenet = rekeyList(m.Usenet, saved.Usenet, "usenet",
			func(e UsenetForm) string { return e.Key }, func(e *UsenetForm, k string) { e.Key = k })
	}
	if slices.Contains(sections, "indexers") {
		m.Indexers = rekeyList(m.Indexers, saved.Indexers, "indexer",
			func(e IndexerForm) string { return e.Key }, func(e *IndexerForm, k string) { e.Key = k })
	}
	if slices.Contains(sections, "torrentScrapers") {
		m.Scrapers = rekeyList(m.Scrapers, saved.Scrapers, "scraper",
			func(e ScraperForm) string { return e.Key }, func(e *ScraperForm, k string) { e.Key = k })
	}
	if slices.Contains(sections, "streaming") {
		m.Streaming.DebridProviders = rekeyList(m.Streaming.DebridProviders, saved.Streaming.DebridProviders, "debrid",
			func(e DebridForm) string { return e.Key }, func(e *DebridForm, k string) { e.Key = k })
	}
	return m
}

func rekeyList[T any](entries, saved []T, list string, key func(T) string, setKey func(*T, string)) []T {
	moved := make(map[string]string, len(saved))
	for i, e := range saved {
		moved[key(e)] = entryKey(list, i)
	}
	out := slices.Clone(entries)
	for i := range out {
		if k, ok := moved[key(out[i])]; ok {
			setKey(&out[i], k)
		}
	}
	return out
}

// BuildMirror merges global and an optional per-profile override into a fully
// populated Mirror. Missing optional global fields take their documented
// defaults first. For the playback, home shelf, filtering and live TV sections
// every override field that is set replaces the global value one field at a
// time; the override is ignored everywhere else. The result depends only on
// the inputs.
func BuildMirror(global config.Settings, override *models.UserSettings) Mirror {
	g := config.Normalize(global)

	m := Mirror{
		Server: ServerForm{
			Host: g.Server.Host,
			Port: coerce.FormatInt(g.Server.Port),
		},
		Usenet:   make([]UsenetForm, 0, len(g.Usenet)),
		Indexers: make([]IndexerForm, 0, len(g.Indexers)),
		Scrapers: make([]ScraperForm, 0, len(g.TorrentScrapers)),
		Metadata: MetadataForm{
			TVDBAPIKey: g.Metadata.TVDBAPIKey,
			TMDBAPIKey: g.Metadata.TMDBAPIKey,
			Language:   g.Metadata.Language,
		},
		Cache: CacheForm{
			Directory:        g.Cache.Directory,
			MetadataTTLHours: coerce.FormatInt(g.Cache.MetadataTTLHours),
		},
		WebDAV: WebDAVForm{
			Enabled:  g.WebDAV.Enabled,
			Prefix:   g.WebDAV.Prefix,
			Username: g.WebDAV.Username,
			Password: g.WebDAV.Password,
		},
		Streaming: StreamingForm{
			MaxDownloadWorkers:         coerce.FormatInt(g.Streaming.MaxDownloadWorkers),
			MaxCacheSizeMB:             coerce.FormatInt(g.Streaming.MaxCacheSizeMB),
			ServiceMode:                g.Streaming.ServiceMode,
			ServicePriority:            g.Streaming.ServicePriority,
			MultiProviderMode:          g.Streaming.MultiProviderMode,
			UsenetResolutionTimeoutSec: coerce.FormatInt(g.Streaming.UsenetResolutionTimeoutSec),
			DebridProviders:            make([]DebridForm, 0, len(g.Streaming.DebridProviders)),
		},
		Transmux: TransmuxForm{
			Enabled:          g.Transmux.Enabled,
			FFmpegPath:       g.Transmux.FFmpegPath,
			FFprobePath:      g.Transmux.FFprobePath,
			HLSTempDirectory: g.Transmux.HLSTempDirectory,
		},
		Playback: PlaybackForm{
			PreferredPlayer:           g.Playback.PreferredPlayer,
			PreferredAudioLanguage:    g.Playback.PreferredAudioLanguage,
			PreferredSubtitleLanguage: g.Playback.PreferredSubtitleLanguage,
			PreferredSubtitleMode:     g.Playback.PreferredSubtitleMode,
			UseLoadingScreen:          g.Playback.UseLoadingScreen,
			SubtitleSize:              coerce.FormatFloat(g.Playback.SubtitleSize),
			SeekForwardSeconds:        coerce.FormatInt(g.Playback.SeekForwardSeconds),
			SeekBackwardSeconds:       coerce.FormatInt(g.Playback.SeekBackwardSeconds),
		},
		Live: LiveForm{
			PlaylistURL:           g.Live.PlaylistURL,
			PlaylistCacheTTLHours: coerce.FormatInt(g.Live.PlaylistCacheTTLHours),
			ProbeSizeMB:           coerce.FormatInt(g.Live.ProbeSizeMB),
			AnalyzeDurationSec:    coerce.FormatInt(g.Live.AnalyzeDurationSec),
			LowLatency:            g.Live.LowLatency,
		},
		HomeShelves: HomeShelvesForm{
			Shelves:             shelfForms(g.HomeShelves.Shelves),
			TrendingMovieSource: g.HomeShelves.TrendingMovieSource,
		},
		Filtering: FilterForm{
			MaxSizeMovieGB:                   coerce.FormatFloat(g.Filtering.MaxSizeMovieGB),
			MaxSizeEpisodeGB:                 coerce.FormatFloat(g.Filtering.MaxSizeEpisodeGB),
			MaxResolution:                    g.Filtering.MaxResolution,
			HDRDVPolicy:                      g.Filtering.HDRDVPolicy,
			PrioritizeHdr:                    g.Filtering.PrioritizeHdr,
			FilterOutTerms:                   coerce.JoinTerms(g.Filtering.FilterOutTerms),
			PreferredTerms:                   coerce.JoinTerms(g.Filtering.PreferredTerms),
			BypassFilteringForAIOStreamsOnly: g.Filtering.BypassFilteringForAIOStreamsOnly,
		},
	}

	for i, u := range g.Usenet {
		m.Usenet = append(m.Usenet, UsenetForm{
			Key:         entryKey("usenet", i),
			Name:        u.Name,
			Host:        u.Host,
			Port:        coerce.FormatInt(u.Port),
			SSL:         u.SSL,
			Username:    u.Username,
			Password:    u.Password,
			Connections: coerce.FormatInt(u.Connections),
			Enabled:     u.Enabled,
		})
	}
	for i, idx := range g.Indexers {
		m.Indexers = append(m.Indexers, IndexerForm{
			Key:        entryKey("indexer", i),
			Name:       idx.Name,
			URL:        idx.URL,
			APIKey:     idx.APIKey,
			Type:       idx.Type,
			Categories: idx.Categories,
			Enabled:    idx.Enabled,
		})
	}
	for i, sc := range g.TorrentScrapers {
		m.Scrapers = append(m.Scrapers, ScraperForm{
			Key:     entryKey("scraper", i),
			Name:    sc.Name,
			Type:    sc.Type,
			URL:     sc.URL,
			APIKey:  sc.APIKey,
			Options: sc.Options,
			Enabled: sc.Enabled,
			Config:  maps.Clone(sc.Config),
		})
	}
	for i, p := range g.Streaming.DebridProviders {
		m.Streaming.DebridProviders = append(m.Streaming.DebridProviders, DebridForm{
			Key:      entryKey("debrid", i),
			Name:     p.Name,
			Provider: p.Provider,
			APIKey:   p.APIKey,
			Enabled:  p.Enabled,
			Config:   maps.Clone(p.Config),
		})
	}

	if override != nil {
		applyOverride(&m, *override)
	}
	return m
}

func applyOverride(m *Mirror, o models.UserSettings) {
	if p := o.Playback; p != nil {
		pb := &m.Playback
		pb.PreferredPlayer = models.StringVal(p.PreferredPlayer, pb.PreferredPlayer)
		pb.PreferredAudioLanguage = models.StringVal(p.PreferredAudioLanguage, pb.PreferredAudioLanguage)
		pb.PreferredSubtitleLanguage = models.StringVal(p.PreferredSubtitleLanguage, pb.PreferredSubtitleLanguage)
		pb.PreferredSubtitleMode = models.StringVal(p.PreferredSubtitleMode, pb.PreferredSubtitleMode)
		pb.UseLoadingScreen = models.BoolVal(p.UseLoadingScreen, pb.UseLoadingScreen)
		if p.SubtitleSize != nil {
			pb.SubtitleSize = coerce.FormatFloat(*p.SubtitleSize)
		}
	}

	if h := o.HomeShelves; h != nil {
		if h.Shelves != nil {
			m.HomeShelves.Shelves = shelfForms(*h.Shelves)
		}
		if h.TrendingMovieSource != nil {
			m.HomeShelves.TrendingMovieSource = *h.TrendingMovieSource
		}
	}

	if f := o.Filtering; f != nil {
		fm := &m.Filtering
		if f.MaxSizeMovieGB != nil {
			fm.MaxSizeMovieGB = coerce.FormatFloat(*f.MaxSizeMovieGB)
		}
		if f.MaxSizeEpisodeGB != nil {
			fm.MaxSizeEpisodeGB = coerce.FormatFloat(*f.MaxSizeEpisodeGB)
		}
		fm.MaxResolution = models.StringVal(f.MaxResolution, fm.MaxResolution)
		if f.HDRDVPolicy != nil {
			fm.HDRDVPolicy = *f.HDRDVPolicy
		}
		fm.PrioritizeHdr = models.BoolVal(f.PrioritizeHdr, fm.PrioritizeHdr)
		if f.FilterOutTerms != nil {
			fm.FilterOutTerms = coerce.JoinTerms(*f.FilterOutTerms)
		}
		if f.PreferredTerms != nil {
			fm.PreferredTerms = coerce.JoinTerms(*f.PreferredTerms)
		}
		fm.BypassFilteringForAIOStreamsOnly = models.BoolVal(f.BypassFilteringForAIOStreamsOnly, fm.BypassFilteringForAIOStreamsOnly)
	}

	if l := o.LiveTV; l != nil {
		if l.HiddenChannels != nil {
			m.Live.HiddenChannels = coerce.JoinTerms(*l.HiddenChannels)
		}
		if l.FavoriteChannels != nil {
			m.Live.FavoriteChannels = coerce.JoinTerms(*l.FavoriteChannels)
		}
		if l.SelectedCategories != nil {
			m.Live.SelectedCategories = coerce.JoinTerms(*l.SelectedCategories)
		}
	}
}

// shelfForms copies shelves sorted by Order; ties keep document order.
func shelfForms(shelves []config.ShelfConfig) []ShelfForm {
	out := make([]ShelfForm, 0, len(shelves))
	for _, s := range shelves {
		out = append(out, ShelfForm{ID: s.ID, Name: s.Name, Enabled: s.Enabled, Order: s.Order})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
