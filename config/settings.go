package config

import "encoding/json"

// Settings is the server-wide configuration document. Clients only ever
// replace it wholesale; list order is significant for the provider lists.
type Settings struct {
	Server          ServerSettings         `json:"server"`
	Usenet          []UsenetSettings       `json:"usenet"`
	Indexers        []IndexerConfig        `json:"indexers"`
	TorrentScrapers []TorrentScraperConfig `json:"torrentScrapers"`
	Metadata        MetadataSettings       `json:"metadata"`
	Cache           CacheSettings          `json:"cache"`
	WebDAV          WebDAVSettings         `json:"webdav"`
	Streaming       StreamingSettings      `json:"streaming"`
	Transmux        TransmuxSettings       `json:"transmux"`
	Playback        PlaybackSettings       `json:"playback"`
	Live            LiveSettings           `json:"live"`
	HomeShelves     HomeShelvesSettings    `json:"homeShelves"`
	Filtering       FilterSettings         `json:"filtering"`
	Log             LogConfig              `json:"log"`

	// Extra holds top-level sections this client does not model so that a
	// fetch followed by a save never drops them.
	Extra map[string]json.RawMessage `json:"-"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type UsenetSettings struct {
	Name        string `json:"name"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	SSL         bool   `json:"ssl"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Connections int    `json:"connections"`
	Enabled     bool   `json:"enabled"`
}

type IndexerConfig struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	APIKey     string `json:"apiKey"`
	Type       string `json:"type"`       // newznab | torznab
	Categories string `json:"categories"` // Comma-separated newznab category IDs
	Enabled    bool   `json:"enabled"`
}

type TorrentScraperConfig struct {
	Name    string            `json:"name"`
	Type    string            `json:"type"`    // "torrentio", "prowlarr", "jackett", "zilean", "aiostreams"
	URL     string            `json:"url"`     // For Prowlarr/Jackett/Zilean/AIOStreams
	APIKey  string            `json:"apiKey"`  // For Prowlarr/Jackett
	Options string            `json:"options"` // For Torrentio: URL path options
	Enabled bool              `json:"enabled"`
	Config  map[string]string `json:"config,omitempty"`
}

type MetadataSettings struct {
	TVDBAPIKey string `json:"tvdbApiKey"`
	TMDBAPIKey string `json:"tmdbApiKey"`
	Language   string `json:"language"`
}

type CacheSettings struct {
	Directory        string `json:"directory"`
	MetadataTTLHours int    `json:"metadataTtlHours"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// TransmuxSettings describes optional container conversion for browser playback
type TransmuxSettings struct {
	Enabled          bool   `json:"enabled"`
	FFmpegPath       string `json:"ffmpegPath"`
	FFprobePath      string `json:"ffprobePath"`
	HLSTempDirectory string `json:"hlsTempDirectory"`
}

// WebDAVSettings defines WebDAV server configuration
type WebDAVSettings struct {
	Enabled  bool   `json:"enabled"`
	Prefix   string `json:"prefix"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// StreamingSettings defines streaming and download configuration
type StreamingSettings struct {
	MaxDownloadWorkers         int                      `json:"maxDownloadWorkers"`
	MaxCacheSizeMB             int                      `json:"maxCacheSizeMB"`
	ServiceMode                StreamingServiceMode     `json:"serviceMode"`
	ServicePriority            StreamingServicePriority `json:"servicePriority"`
	DebridProviders            []DebridProviderSettings `json:"debridProviders,omitempty"`
	MultiProviderMode          MultiProviderMode        `json:"multiProviderMode,omitempty"`
	UsenetResolutionTimeoutSec int                      `json:"usenetResolutionTimeoutSec"` // 0 = no limit
}

type StreamingServicePriority string

const (
	StreamingServicePriorityNone   StreamingServicePriority = "none"
	StreamingServicePriorityUsenet StreamingServicePriority = "usenet"
	StreamingServicePriorityDebrid StreamingServicePriority = "debrid"
)

type StreamingServiceMode string

const (
	StreamingServiceModeUsenet StreamingServiceMode = "usenet"
	StreamingServiceModeDebrid StreamingServiceMode = "debrid"
	StreamingServiceModeHybrid StreamingServiceMode = "hybrid"
)

type DebridProviderSettings struct {
	Name     string            `json:"name"`
	Provider string            `json:"provider"`
	APIKey   string            `json:"apiKey"`
	Enabled  bool              `json:"enabled"`
	Config   map[string]string `json:"config,omitempty"` // Provider-specific settings
}

// MultiProviderMode determines how multiple debrid providers are used
type MultiProviderMode string

const (
	// MultiProviderModeFastest uses whichever provider returns a cached result first (race)
	MultiProviderModeFastest MultiProviderMode = "fastest"
	// MultiProviderModePreferred waits for all providers and uses the highest-priority cached result
	MultiProviderModePreferred MultiProviderMode = "preferred"
)

// PlaybackSettings controls how the client should launch resolved streams.
type PlaybackSettings struct {
	PreferredPlayer           string  `json:"preferredPlayer"`
	PreferredAudioLanguage    string  `json:"preferredAudioLanguage,omitempty"`
	PreferredSubtitleLanguage string  `json:"preferredSubtitleLanguage,omitempty"`
	PreferredSubtitleMode     string  `json:"preferredSubtitleMode,omitempty"`
	UseLoadingScreen          bool    `json:"useLoadingScreen,omitempty"`
	SubtitleSize              float64 `json:"subtitleSize,omitempty"` // 1.0 = default
	SeekForwardSeconds        int     `json:"seekForwardSeconds"`
	SeekBackwardSeconds       int     `json:"seekBackwardSeconds"`
}

// LiveSettings controls Live TV playlist caching behavior.
type LiveSettings struct {
	PlaylistURL           string `json:"playlistUrl"`
	PlaylistCacheTTLHours int    `json:"playlistCacheTtlHours"`
	ProbeSizeMB           int    `json:"probeSizeMb"`        // 0 = ffmpeg default
	AnalyzeDurationSec    int    `json:"analyzeDurationSec"` // 0 = ffmpeg default
	LowLatency            bool   `json:"lowLatency"`
}

// ShelfConfig represents a configurable home screen shelf.
type ShelfConfig struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Order   int    `json:"order"` // lower numbers appear first
}

// TrendingMovieSource determines which source to use for trending movies.
type TrendingMovieSource string

const (
	TrendingMovieSourceAll      TrendingMovieSource = "all"      // TMDB trending (includes unreleased)
	TrendingMovieSourceReleased TrendingMovieSource = "released" // MDBList top movies of the week
)

// HomeShelvesSettings controls which shelves appear on the home screen and their order.
type HomeShelvesSettings struct {
	Shelves             []ShelfConfig       `json:"shelves"`
	TrendingMovieSource TrendingMovieSource `json:"trendingMovieSource,omitempty"`
}

// HDRDVPolicy determines what HDR/DV content to exclude from search results.
type HDRDVPolicy string

const (
	HDRDVPolicyNoExclusion  HDRDVPolicy = "none"
	HDRDVPolicyIncludeHDR   HDRDVPolicy = "hdr"
	HDRDVPolicyIncludeHDRDV HDRDVPolicy = "hdr_dv"
)

// FilterSettings controls content filtering preferences.
type FilterSettings struct {
	MaxSizeMovieGB                   float64     `json:"maxSizeMovieGb"`   // 0 = no limit
	MaxSizeEpisodeGB                 float64     `json:"maxSizeEpisodeGb"` // 0 = no limit
	MaxResolution                    string      `json:"maxResolution"`    // empty = no limit
	HDRDVPolicy                      HDRDVPolicy `json:"hdrDvPolicy"`
	PrioritizeHdr                    bool        `json:"prioritizeHdr"`
	FilterOutTerms                   []string    `json:"filterOutTerms"`
	PreferredTerms                   []string    `json:"preferredTerms"`
	BypassFilteringForAIOStreamsOnly bool        `json:"bypassFilteringForAioStreamsOnly"`
}

// DefaultShelves returns the built-in home screen shelves in their default order.
func DefaultShelves() []ShelfConfig {
	return []ShelfConfig{
		{ID: "continue-watching", Name: "Continue Watching", Enabled: true, Order: 0},
		{ID: "watchlist", Name: "Your Watchlist", Enabled: true, Order: 1},
		{ID: "trending-movies", Name: "Trending Movies", Enabled: true, Order: 2},
		{ID: "trending-tv", Name: "Trending TV Shows", Enabled: true, Order: 3},
	}
}

// DefaultDebridProviders returns the provider slots offered on a fresh install.
func DefaultDebridProviders() []DebridProviderSettings {
	return []DebridProviderSettings{
		{Name: "Real Debrid", Provider: "realdebrid"},
		{Name: "Torbox", Provider: "torbox"},
		{Name: "AllDebrid", Provider: "alldebrid"},
	}
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 7777},
		Usenet:   []UsenetSettings{},
		Indexers: []IndexerConfig{},
		TorrentScrapers: []TorrentScraperConfig{
			{Name: "Torrentio", Type: "torrentio", Enabled: true, Options: "sort=qualitysize|qualityfilter=480p,scr,cam"},
		},
		Metadata: MetadataSettings{Language: "en"},
		Cache:    CacheSettings{Directory: "cache", MetadataTTLHours: 24},
		WebDAV:   WebDAVSettings{Enabled: true, Prefix: "/webdav", Username: "novastream"},
		Streaming: StreamingSettings{
			MaxDownloadWorkers: 15,
			MaxCacheSizeMB:     100,
			ServiceMode:        StreamingServiceModeUsenet,
			ServicePriority:    StreamingServicePriorityNone,
			DebridProviders:    DefaultDebridProviders(),
			MultiProviderMode:  MultiProviderModeFastest,
		},
		Transmux: TransmuxSettings{Enabled: true, FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", HLSTempDirectory: "/tmp/novastream-hls"},
		Playback: PlaybackSettings{PreferredPlayer: "native", SubtitleSize: 1.0, SeekForwardSeconds: 30, SeekBackwardSeconds: 10},
		Live:     LiveSettings{PlaylistCacheTTLHours: 24},
		HomeShelves: HomeShelvesSettings{
			Shelves:             DefaultShelves(),
			TrendingMovieSource: TrendingMovieSourceReleased,
		},
		Filtering: FilterSettings{
			HDRDVPolicy:    HDRDVPolicyIncludeHDRDV,
			PrioritizeHdr:  true,
			FilterOutTerms: []string{},
			PreferredTerms: []string{},
		},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}
