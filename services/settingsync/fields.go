package settingsync

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"novaremote/config"
)

var ErrUnknownField = errors.New("unknown settings field")

// Field is one addressable mirror leaf.
type Field struct {
	Path  string // dotted path, e.g. "usenet.0.port"
	Label string
	Value string
}

type scalarField struct {
	path  string
	label string
	get   func(*Mirror) string
	set   func(*Mirror, string) error
}

func textField(path, label string, ptr func(*Mirror) *string) scalarField {
	return scalarField{
		path:  path,
		label: label,
		get:   func(m *Mirror) string { return *ptr(m) },
		set:   func(m *Mirror, v string) error { *ptr(m) = v; return nil },
	}
}

func boolField(path, label string, ptr func(*Mirror) *bool) scalarField {
	return scalarField{
		path:  path,
		label: label,
		get:   func(m *Mirror) string { return strconv.FormatBool(*ptr(m)) },
		set: func(m *Mirror, v string) error {
			b, err := parseBool(path, v)
			if err != nil {
				return err
			}
			*ptr(m) = b
			return nil
		},
	}
}

func enumField[T ~string](path, label string, ptr func(*Mirror) *T) scalarField {
	return scalarField{
		path:  path,
		label: label,
		get:   func(m *Mirror) string { return string(*ptr(m)) },
		set:   func(m *Mirror, v string) error { *ptr(m) = T(strings.TrimSpace(v)); return nil },
	}
}

func parseBool(path, v string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%s expects true or false, got %q", path, v)
	}
	return b, nil
}

var scalarFields = []scalarField{
	textField("server.host", "Server host", func(m *Mirror) *string { return &m.Server.Host }),
	textField("server.port", "Server port", func(m *Mirror) *string { return &m.Server.Port }),

	textField("metadata.tvdbApiKey", "TVDB API key", func(m *Mirror) *string { return &m.Metadata.TVDBAPIKey }),
	textField("metadata.tmdbApiKey", "TMDB API key", func(m *Mirror) *string { return &m.Metadata.TMDBAPIKey }),
	textField("metadata.language", "Metadata language", func(m *Mirror) *string { return &m.Metadata.Language }),

	textField("cache.directory", "Cache directory", func(m *Mirror) *string { return &m.Cache.Directory }),
	textField("cache.metadataTtlHours", "Metadata cache TTL", func(m *Mirror) *string { return &m.Cache.MetadataTTLHours }),

	boolField("webdav.enabled", "WebDAV enabled", func(m *Mirror) *bool { return &m.WebDAV.Enabled }),
	textField("webdav.prefix", "WebDAV prefix", func(m *Mirror) *string { return &m.WebDAV.Prefix }),
	textField("webdav.username", "WebDAV username", func(m *Mirror) *string { return &m.WebDAV.Username }),
	textField("webdav.password", "WebDAV password", func(m *Mirror) *string { return &m.WebDAV.Password }),

	textField("streaming.maxDownloadWorkers", "Download workers", func(m *Mirror) *string { return &m.Streaming.MaxDownloadWorkers }),
	textField("streaming.maxCacheSizeMB", "Cache size", func(m *Mirror) *string { return &m.Streaming.MaxCacheSizeMB }),
	enumField("streaming.serviceMode", "Service mode", func(m *Mirror) *config.StreamingServiceMode { return &m.Streaming.ServiceMode }),
	enumField("streaming.servicePriority", "Service priority", func(m *Mirror) *config.StreamingServicePriority { return &m.Streaming.ServicePriority }),
	enumField("streaming.multiProviderMode", "Multi-provider mode", func(m *Mirror) *config.MultiProviderMode { return &m.Streaming.MultiProviderMode }),
	textField("streaming.usenetResolutionTimeoutSec", "Usenet resolution timeout", func(m *Mirror) *string { return &m.Streaming.UsenetResolutionTimeoutSec }),

	boolField("transmux.enabled", "Transmux enabled", func(m *Mirror) *bool { return &m.Transmux.Enabled }),
	textField("transmux.ffmpegPath", "FFmpeg path", func(m *Mirror) *string { return &m.Transmux.FFmpegPath }),
	textField("transmux.ffprobePath", "FFprobe path", func(m *Mirror) *string { return &m.Transmux.FFprobePath }),
	textField("transmux.hlsTempDirectory", "HLS temp directory", func(m *Mirror) *string { return &m.Transmux.HLSTempDirectory }),

	textField("playback.preferredPlayer", "Preferred player", func(m *Mirror) *string { return &m.Playback.PreferredPlayer }),
	textField("playback.preferredAudioLanguage", "Audio language", func(m *Mirror) *string { return &m.Playback.PreferredAudioLanguage }),
	textField("playback.preferredSubtitleLanguage", "Subtitle language", func(m *Mirror) *string { return &m.Playback.PreferredSubtitleLanguage }),
	textField("playback.preferredSubtitleMode", "Subtitle mode", func(m *Mirror) *string { return &m.Playback.PreferredSubtitleMode }),
	boolField("playback.useLoadingScreen", "Loading screen", func(m *Mirror) *bool { return &m.Playback.UseLoadingScreen }),
	textField("playback.subtitleSize", "Subtitle size", func(m *Mirror) *string { return &m.Playback.SubtitleSize }),
	textField("playback.seekForwardSeconds", "Seek forward", func(m *Mirror) *string { return &m.Playback.SeekForwardSeconds }),
	textField("playback.seekBackwardSeconds", "Seek backward", func(m *Mirror) *string { return &m.Playback.SeekBackwardSeconds }),

	textField("live.playlistUrl", "Playlist URL", func(m *Mirror) *string { return &m.Live.PlaylistURL }),
	textField("live.playlistCacheTtlHours", "Playlist cache TTL", func(m *Mirror) *string { return &m.Live.PlaylistCacheTTLHours }),
	textField("live.probeSizeMb", "Probe size", func(m *Mirror) *string { return &m.Live.ProbeSizeMB }),
	textField("live.analyzeDurationSec", "Analyze duration", func(m *Mirror) *string { return &m.Live.AnalyzeDurationSec }),
	boolField("live.lowLatency", "Low latency", func(m *Mirror) *bool { return &m.Live.LowLatency }),
	textField("liveTV.hiddenChannels", "Hidden channels", func(m *Mirror) *string { return &m.Live.HiddenChannels }),
	textField("liveTV.favoriteChannels", "Favorite channels", func(m *Mirror) *string { return &m.Live.FavoriteChannels }),
	textField("liveTV.selectedCategories", "Selected categories", func(m *Mirror) *string { return &m.Live.SelectedCategories }),

	enumField("homeShelves.trendingMovieSource", "Trending movie source", func(m *Mirror) *config.TrendingMovieSource { return &m.HomeShelves.TrendingMovieSource }),

	textField("filtering.maxSizeMovieGb", "Max movie size", func(m *Mirror) *string { return &m.Filtering.MaxSizeMovieGB }),
	textField("filtering.maxSizeEpisodeGb", "Max episode size", func(m *Mirror) *string { return &m.Filtering.MaxSizeEpisodeGB }),
	textField("filtering.maxResolution", "Max resolution", func(m *Mirror) *string { return &m.Filtering.MaxResolution }),
	enumField("filtering.hdrDvPolicy", "HDR/DV policy", func(m *Mirror) *config.HDRDVPolicy { return &m.Filtering.HDRDVPolicy }),
	boolField("filtering.prioritizeHdr", "Prioritize HDR", func(m *Mirror) *bool { return &m.Filtering.PrioritizeHdr }),
	textField("filtering.filterOutTerms", "Filter out terms", func(m *Mirror) *string { return &m.Filtering.FilterOutTerms }),
	textField("filtering.preferredTerms", "Preferred terms", func(m *Mirror) *string { return &m.Filtering.PreferredTerms }),
	boolField("filtering.bypassFilteringForAioStreamsOnly", "Bypass filtering for AIOStreams", func(m *Mirror) *bool { return &m.Filtering.BypassFilteringForAIOStreamsOnly }),
}

var scalarIndex = func() map[string]scalarField {
	idx := make(map[string]scalarField, len(scalarFields))
	for _, f := range scalarFields {
		idx[f.path] = f
	}
	return idx
}()

type entryField[T any] struct {
	name  string
	label string
	get   func(*T) string
	set   func(*T, string) error
}

func entryText[T any](name, label string, ptr func(*T) *string) entryField[T] {
	return entryField[T]{
		name:  name,
		label: label,
		get:   func(e *T) string { return *ptr(e) },
		set:   func(e *T, v string) error { *ptr(e) = v; return nil },
	}
}

func entryBool[T any](name, label string, ptr func(*T) *bool) entryField[T] {
	return entryField[T]{
		name:  name,
		label: label,
		get:   func(e *T) string { return strconv.FormatBool(*ptr(e)) },
		set: func(e *T, v string) error {
			b, err := parseBool(name, v)
			if err != nil {
				return err
			}
			*ptr(e) = b
			return nil
		},
	}
}

// list is the type-erased view of one editable list in the mirror.
type list interface {
	path() string
	length(m *Mirror) int
	fields(m *Mirror) []Field
	set(m Mirror, i int, field, value string) (Mirror, error)
	add(m Mirror) Mirror
	remove(m Mirror, i int) (Mirror, error)
	move(m Mirror, i, delta int) (Mirror, error)
}

type entryList[T any] struct {
	listPath string
	label    string
	items    func(*Mirror) []T
	update   func(Mirror, int, func(*T)) (Mirror, error)
	addFn    func(Mirror) Mirror
	removeFn func(Mirror, int) (Mirror, error)
	moveFn   func(Mirror, int, int) (Mirror, error)
	entries  []entryField[T]
}

func (l entryList[T]) path() string { return l.listPath }

func (l entryList[T]) length(m *Mirror) int { return len(l.items(m)) }

func (l entryList[T]) fields(m *Mirror) []Field {
	items := l.items(m)
	out := make([]Field, 0, len(items)*len(l.entries))
	for i := range items {
		for _, f := range l.entries {
			out = append(out, Field{
				Path:  fmt.Sprintf("%s.%d.%s", l.listPath, i, f.name),
				Label: fmt.Sprintf("%s %d %s", l.label, i+1, f.label),
				Value: f.get(&items[i]),
			})
		}
	}
	return out
}

func (l entryList[T]) set(m Mirror, i int, name, value string) (Mirror, error) {
	for _, f := range l.entries {
		if f.name != name {
			continue
		}
		var setErr error
		out, err := l.update(m, i, func(e *T) { setErr = f.set(e, value) })
		if err != nil {
			return m, err
		}
		if setErr != nil {
			return m, setErr
		}
		return out, nil
	}
	return m, fmt.Errorf("%w: %s.%d.%s", ErrUnknownField, l.listPath, i, name)
}

func (l entryList[T]) add(m Mirror) Mirror { return l.addFn(m) }

func (l entryList[T]) remove(m Mirror, i int) (Mirror, error) { return l.removeFn(m, i) }

func (l entryList[T]) move(m Mirror, i, delta int) (Mirror, error) {
	if l.moveFn == nil {
		return m, fmt.Errorf("%w: %s is not orderable", ErrCannotMove, l.listPath)
	}
	return l.moveFn(m, i, delta)
}

var lists = []list{
	entryList[UsenetForm]{
		listPath: "usenet",
		label:    "Usenet provider",
		items:    func(m *Mirror) []UsenetForm { return m.Usenet },
		update:   UpdateUsenet,
		addFn:    AddUsenet,
		removeFn: RemoveUsenet,
		entries: []entryField[UsenetForm]{
			entryText("name", "name", func(e *UsenetForm) *string { return &e.Name }),
			entryText("host", "host", func(e *UsenetForm) *string { return &e.Host }),
			entryText("port", "port", func(e *UsenetForm) *string { return &e.Port }),
			entryBool("ssl", "SSL", func(e *UsenetForm) *bool { return &e.SSL }),
			entryText("username", "username", func(e *UsenetForm) *string { return &e.Username }),
			entryText("password", "password", func(e *UsenetForm) *string { return &e.Password }),
			entryText("connections", "connections", func(e *UsenetForm) *string { return &e.Connections }),
			entryBool("enabled", "enabled", func(e *UsenetForm) *bool { return &e.Enabled }),
		},
	},
	entryList[IndexerForm]{
		listPath: "indexers",
		label:    "Indexer",
		items:    func(m *Mirror) []IndexerForm { return m.Indexers },
		update:   UpdateIndexer,
		addFn:    AddIndexer,
		removeFn: RemoveIndexer,
		entries: []entryField[IndexerForm]{
			entryText("name", "name", func(e *IndexerForm) *string { return &e.Name }),
			entryText("url", "URL", func(e *IndexerForm) *string { return &e.URL }),
			entryText("apiKey", "API key", func(e *IndexerForm) *string { return &e.APIKey }),
			entryText("type", "type", func(e *IndexerForm) *string { return &e.Type }),
			entryText("categories", "categories", func(e *IndexerForm) *string { return &e.Categories }),
			entryBool("enabled", "enabled", func(e *IndexerForm) *bool { return &e.Enabled }),
		},
	},
	entryList[ScraperForm]{
		listPath: "torrentScrapers",
		label:    "Scraper",
		items:    func(m *Mirror) []ScraperForm { return m.Scrapers },
		update:   UpdateScraper,
		addFn:    AddScraper,
		removeFn: RemoveScraper,
		entries: []entryField[ScraperForm]{
			entryText("name", "name", func(e *ScraperForm) *string { return &e.Name }),
			entryText("type", "type", func(e *ScraperForm) *string { return &e.Type }),
			entryText("url", "URL", func(e *ScraperForm) *string { return &e.URL }),
			entryText("apiKey", "API key", func(e *ScraperForm) *string { return &e.APIKey }),
			entryText("options", "options", func(e *ScraperForm) *string { return &e.Options }),
			entryBool("enabled", "enabled", func(e *ScraperForm) *bool { return &e.Enabled }),
		},
	},
	entryList[DebridForm]{
		listPath: "streaming.debridProviders",
		label:    "Debrid provider",
		items:    func(m *Mirror) []DebridForm { return m.Streaming.DebridProviders },
		update:   UpdateDebridProvider,
		addFn:    AddDebridProvider,
		removeFn: RemoveDebridProvider,
		moveFn:   MoveDebridProvider,
		entries: []entryField[DebridForm]{
			entryText("name", "name", func(e *DebridForm) *string { return &e.Name }),
			entryText("provider", "provider", func(e *DebridForm) *string { return &e.Provider }),
			entryText("apiKey", "API key", func(e *DebridForm) *string { return &e.APIKey }),
			entryBool("enabled", "enabled", func(e *DebridForm) *bool { return &e.Enabled }),
		},
	},
	entryList[ShelfForm]{
		listPath: "homeShelves.shelves",
		label:    "Shelf",
		items:    func(m *Mirror) []ShelfForm { return m.HomeShelves.Shelves },
		update:   UpdateShelf,
		addFn:    AddShelf,
		removeFn: RemoveShelf,
		moveFn:   MoveShelf,
		entries: []entryField[ShelfForm]{
			entryText("name", "name", func(e *ShelfForm) *string { return &e.Name }),
			entryBool("enabled", "enabled", func(e *ShelfForm) *bool { return &e.Enabled }),
		},
	},
}

func findList(path string) (list, bool) {
	for _, l := range lists {
		if l.path() == path {
			return l, true
		}
	}
	return nil, false
}

// splitEntryPath resolves "usenet.2.port" into its list, index and field.
func splitEntryPath(path string) (list, int, string, bool) {
	for _, l := range lists {
		rest, ok := strings.CutPrefix(path, l.path()+".")
		if !ok {
			continue
		}
		idx, field, ok := strings.Cut(rest, ".")
		if !ok {
			return nil, 0, "", false
		}
		i, err := strconv.Atoi(idx)
		if err != nil {
			return nil, 0, "", false
		}
		return l, i, field, true
	}
	return nil, 0, "", false
}

// SetField replaces the leaf at path with value. Boolean leaves accept
// strconv.ParseBool syntax; every other leaf takes value verbatim.
func SetField(m Mirror, path, value string) (Mirror, error) {
	if f, ok := scalarIndex[path]; ok {
		if err := f.set(&m, value); err != nil {
			return m, err
		}
		return m, nil
	}
	if l, i, field, ok := splitEntryPath(path); ok {
		return l.set(m, i, field, value)
	}
	return m, fmt.Errorf("%w: %s", ErrUnknownField, path)
}

// GetField returns the current text of the leaf at path.
func GetField(m Mirror, path string) (string, error) {
	if f, ok := scalarIndex[path]; ok {
		return f.get(&m), nil
	}
	if l, i, field, ok := splitEntryPath(path); ok {
		if i < 0 || i >= l.length(&m) {
			return "", fmt.Errorf("%w: %s", ErrIndexOutOfRange, path)
		}
		prefix := fmt.Sprintf("%s.%d.%s", l.path(), i, field)
		for _, f := range l.fields(&m) {
			if f.Path == prefix {
				return f.Value, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, path)
}

// Fields lists every leaf belonging to the given sections, or all leaves when
// no section is named. A section is the first path segment ("usenet",
// "streaming", "homeShelves").
func Fields(m Mirror, sections ...string) []Field {
	want := func(path string) bool {
		if len(sections) == 0 {
			return true
		}
		head, _, _ := strings.Cut(path, ".")
		for _, s := range sections {
			if s == head {
				return true
			}
		}
		return false
	}

	var out []Field
	for _, f := range scalarFields {
		if want(f.path) {
			out = append(out, Field{Path: f.path, Label: f.label, Value: f.get(&m)})
		}
	}
	for _, l := range lists {
		if want(l.path()) {
			out = append(out, l.fields(&m)...)
		}
	}
	return out
}

// Lists returns the paths of the editable lists.
func Lists() []string {
	out := make([]string, 0, len(lists))
	for _, l := range lists {
		out = append(out, l.path())
	}
	return out
}

// EntryCount returns the number of entries in the named list.
func EntryCount(m Mirror, listPath string) (int, error) {
	l, ok := findList(listPath)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownField, listPath)
	}
	return l.length(&m), nil
}

// AddEntry appends a default entry to the named list.
func AddEntry(m Mirror, listPath string) (Mirror, error) {
	l, ok := findList(listPath)
	if !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownField, listPath)
	}
	return l.add(m), nil
}

// RemoveEntry deletes entry i of the named list.
func RemoveEntry(m Mirror, listPath string, i int) (Mirror, error) {
	l, ok := findList(listPath)
	if !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownField, listPath)
	}
	return l.remove(m, i)
}

// MoveEntry swaps entry i of an orderable list with its neighbour.
func MoveEntry(m Mirror, listPath string, i, delta int) (Mirror, error) {
	l, ok := findList(listPath)
	if !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownField, listPath)
	}
	return l.move(m, i, delta)
}
