package config

import "strings"

// Normalize backfills every optional field a document may be missing with the
// value DefaultSettings would have used. Explicit values are left untouched.
// Fields whose zero value is meaningful (API keys, "0 = no limit" sizes) are
// never backfilled.
func Normalize(s Settings) Settings {
	s = s.Clone()
	d := DefaultSettings()

	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if s.Usenet == nil {
		s.Usenet = []UsenetSettings{}
	}
	if s.Indexers == nil {
		s.Indexers = []IndexerConfig{}
	}
	// Usenet indexers speak newznab; torznab entries predate that split.
	for i := range s.Indexers {
		if strings.EqualFold(s.Indexers[i].Type, "torznab") {
			s.Indexers[i].Type = "newznab"
		}
	}
	if len(s.TorrentScrapers) == 0 {
		s.TorrentScrapers = d.TorrentScrapers
	}

	if strings.TrimSpace(s.Metadata.Language) == "" {
		s.Metadata.Language = d.Metadata.Language
	}
	if strings.TrimSpace(s.Cache.Directory) == "" {
		s.Cache.Directory = d.Cache.Directory
	}
	if s.Cache.MetadataTTLHours == 0 {
		s.Cache.MetadataTTLHours = d.Cache.MetadataTTLHours
	}

	if strings.TrimSpace(s.WebDAV.Prefix) == "" {
		s.WebDAV.Prefix = d.WebDAV.Prefix
	}
	if strings.TrimSpace(s.WebDAV.Username) == "" {
		s.WebDAV.Username = d.WebDAV.Username
	}

	if s.Streaming.MaxDownloadWorkers == 0 {
		s.Streaming.MaxDownloadWorkers = d.Streaming.MaxDownloadWorkers
	}
	if s.Streaming.MaxCacheSizeMB == 0 {
		s.Streaming.MaxCacheSizeMB = d.Streaming.MaxCacheSizeMB
	}
	if s.Streaming.ServiceMode == "" {
		s.Streaming.ServiceMode = d.Streaming.ServiceMode
	}
	if s.Streaming.ServicePriority == "" {
		s.Streaming.ServicePriority = d.Streaming.ServicePriority
	}
	if len(s.Streaming.DebridProviders) == 0 {
		s.Streaming.DebridProviders = DefaultDebridProviders()
	}
	if s.Streaming.MultiProviderMode == "" {
		s.Streaming.MultiProviderMode = d.Streaming.MultiProviderMode
	}

	// A document that predates transmux support has every field blank.
	if !s.Transmux.Enabled && strings.TrimSpace(s.Transmux.FFmpegPath) == "" && strings.TrimSpace(s.Transmux.FFprobePath) == "" {
		s.Transmux = d.Transmux
	} else {
		if strings.TrimSpace(s.Transmux.FFmpegPath) == "" {
			s.Transmux.FFmpegPath = d.Transmux.FFmpegPath
		}
		if strings.TrimSpace(s.Transmux.FFprobePath) == "" {
			s.Transmux.FFprobePath = d.Transmux.FFprobePath
		}
		if strings.TrimSpace(s.Transmux.HLSTempDirectory) == "" {
			s.Transmux.HLSTempDirectory = d.Transmux.HLSTempDirectory
		}
	}

	if strings.TrimSpace(s.Playback.PreferredPlayer) == "" {
		s.Playback.PreferredPlayer = d.Playback.PreferredPlayer
	}
	if s.Playback.SubtitleSize == 0 {
		s.Playback.SubtitleSize = d.Playback.SubtitleSize
	}
	if s.Playback.SeekForwardSeconds == 0 {
		s.Playback.SeekForwardSeconds = d.Playback.SeekForwardSeconds
	}
	if s.Playback.SeekBackwardSeconds == 0 {
		s.Playback.SeekBackwardSeconds = d.Playback.SeekBackwardSeconds
	}

	if s.Live.PlaylistCacheTTLHours == 0 {
		s.Live.PlaylistCacheTTLHours = d.Live.PlaylistCacheTTLHours
	}

	if len(s.HomeShelves.Shelves) == 0 {
		s.HomeShelves.Shelves = DefaultShelves()
	}
	if s.HomeShelves.TrendingMovieSource == "" {
		s.HomeShelves.TrendingMovieSource = d.HomeShelves.TrendingMovieSource
	}

	if s.Filtering.HDRDVPolicy == "" {
		s.Filtering.HDRDVPolicy = d.Filtering.HDRDVPolicy
	}
	if s.Filtering.FilterOutTerms == nil {
		s.Filtering.FilterOutTerms = []string{}
	}
	if s.Filtering.PreferredTerms == nil {
		s.Filtering.PreferredTerms = []string{}
	}

	if strings.TrimSpace(s.Log.File) == "" {
		s.Log.File = d.Log.File
	}
	if strings.TrimSpace(s.Log.Level) == "" {
		s.Log.Level = d.Log.Level
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = d.Log.MaxSize
	}
	if s.Log.MaxBackups == 0 {
		s.Log.MaxBackups = d.Log.MaxBackups
	}
	if s.Log.MaxAge == 0 {
		s.Log.MaxAge = d.Log.MaxAge
	}

	return s
}
