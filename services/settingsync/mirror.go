package settingsync

import "novaremote/config"

// Mirror is the editable projection of the merged configuration. Numeric and
// term-list leaves are text so a half-typed value never has to be rejected;
// booleans and enums keep their native types. A Mirror produced by
// BuildMirror is always fully populated: lists are non-nil and every text
// leaf holds either the document value or its documented default.
type Mirror struct {
	Server      ServerForm
	Usenet      []UsenetForm
	Indexers    []IndexerForm
	Scrapers    []ScraperForm
	Metadata    MetadataForm
	Cache       CacheForm
	WebDAV      WebDAVForm
	Streaming   StreamingForm
	Transmux    TransmuxForm
	Playback    PlaybackForm
	Live        LiveForm
	HomeShelves HomeShelvesForm
	Filtering   FilterForm
}

type ServerForm struct {
	Host string
	Port string
}

// UsenetForm is one usenet provider. Key identifies the entry for the
// lifetime of the mirror and is never sent to the server.
type UsenetForm struct {
	Key         string
	Name        string
	Host        string
	Port        string
	SSL         bool
	Username    string
	Password    string
	Connections string
	Enabled     bool
}

type IndexerForm struct {
	Key        string
	Name       string
	URL        string
	APIKey     string
	Type       string
	Categories string
	Enabled    bool
}

type ScraperForm struct {
	Key     string
	Name    string
	Type    string
	URL     string
	APIKey  string
	Options string
	Enabled bool
	Config  map[string]string
}

type MetadataForm struct {
	TVDBAPIKey string
	TMDBAPIKey string
	Language   string
}

type CacheForm struct {
	Directory        string
	MetadataTTLHours string
}

type WebDAVForm struct {
	Enabled  bool
	Prefix   string
	Username string
	Password string
}

// StreamingForm holds the streaming section. DebridProviders is ordered by
// priority, first entry highest.
type StreamingForm struct {
	MaxDownloadWorkers         string
	MaxCacheSizeMB             string
	ServiceMode                config.StreamingServiceMode
	ServicePriority            config.StreamingServicePriority
	MultiProviderMode          config.MultiProviderMode
	UsenetResolutionTimeoutSec string
	DebridProviders            []DebridForm
}

type DebridForm struct {
	Key      string
	Name     string
	Provider string
	APIKey   string
	Enabled  bool
	Config   map[string]string
}

type TransmuxForm struct {
	Enabled          bool
	FFmpegPath       string
	FFprobePath      string
	HLSTempDirectory string
}

type PlaybackForm struct {
	PreferredPlayer           string
	PreferredAudioLanguage    string
	PreferredSubtitleLanguage string
	PreferredSubtitleMode     string
	UseLoadingScreen          bool
	SubtitleSize              string
	SeekForwardSeconds        string
	SeekBackwardSeconds       string
}

// LiveForm merges the global playlist settings with the per-profile channel
// sets, which are comma separated channel or category ids.
type LiveForm struct {
	PlaylistURL           string
	PlaylistCacheTTLHours string
	ProbeSizeMB           string
	AnalyzeDurationSec    string
	LowLatency            bool

	HiddenChannels     string
	FavoriteChannels   string
	SelectedCategories string
}

// HomeShelvesForm lists shelves sorted by Order. Order stays numeric because
// only reorder operations assign it.
type HomeShelvesForm struct {
	Shelves             []ShelfForm
	TrendingMovieSource config.TrendingMovieSource
}

type ShelfForm struct {
	ID      string
	Name    string
	Enabled bool
	Order   int
}

type FilterForm struct {
	MaxSizeMovieGB                   string
	MaxSizeEpisodeGB                 string
	MaxResolution                    string
	HDRDVPolicy                      config.HDRDVPolicy
	PrioritizeHdr                    bool
	FilterOutTerms                   string
	PreferredTerms                   string
	BypassFilteringForAIOStreamsOnly bool
}
