package settingsync

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"novaremote/config"
	"novaremote/utils/coerce"
	"novaremote/utils/filter"
)

// ValidationErrors maps a dotted field path to a message naming the field and
// the bound it violates. A non-empty map blocks commit.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, e[p])
	}
	return "invalid settings: " + strings.Join(parts, "; ")
}

const noLimit = math.MaxInt

type intRule struct {
	path     string
	label    string
	min, max int
	required bool
}

type floatRule struct {
	path     string
	label    string
	min      float64
	positive bool // min is exclusive
}

// Validate checks the numeric and required fields of the named sections, or
// of every section when none is named. Every rule runs; the result holds one
// entry per failing field and is nil when the mirror is valid.
func Validate(m Mirror, sections ...string) ValidationErrors {
	in := func(section string) bool {
		if len(sections) == 0 {
			return true
		}
		for _, s := range sections {
			if s == section {
				return true
			}
		}
		return false
	}

	errs := ValidationErrors{}

	if in("server") {
		checkInt(errs, m.Server.Port, intRule{path: "server.port", label: "Server port", min: 1, max: 65535, required: true})
	}

	if in("usenet") {
		for i, u := range m.Usenet {
			n := i + 1
			checkRequired(errs, fmt.Sprintf("usenet.%d.host", i), fmt.Sprintf("Usenet server %d host", n), u.Host)
			checkInt(errs, u.Port, intRule{
				path:     fmt.Sprintf("usenet.%d.port", i),
				label:    fmt.Sprintf("Usenet server %d port", n),
				min:      1,
				max:      65535,
				required: true,
			})
			checkInt(errs, u.Connections, intRule{
				path:     fmt.Sprintf("usenet.%d.connections", i),
				label:    fmt.Sprintf("Usenet server %d connections", n),
				min:      1,
				max:      100,
				required: true,
			})
		}
	}

	if in("indexers") {
		for i, idx := range m.Indexers {
			checkRequired(errs, fmt.Sprintf("indexers.%d.url", i), fmt.Sprintf("Indexer %d URL", i+1), idx.URL)
		}
	}

	if in("cache") {
		checkInt(errs, m.Cache.MetadataTTLHours, intRule{path: "cache.metadataTtlHours", label: "Metadata cache TTL", min: 1, max: noLimit, required: true})
	}

	if in("streaming") {
		st := m.Streaming
		checkInt(errs, st.MaxDownloadWorkers, intRule{path: "streaming.maxDownloadWorkers", label: "Download workers", min: 1, max: 100, required: true})
		checkInt(errs, st.MaxCacheSizeMB, intRule{path: "streaming.maxCacheSizeMB", label: "Cache size", min: 1, max: noLimit, required: true})
		checkInt(errs, st.UsenetResolutionTimeoutSec, intRule{path: "streaming.usenetResolutionTimeoutSec", label: "Usenet resolution timeout", max: noLimit})
		checkEnum(errs, "streaming.serviceMode", "Service mode", string(st.ServiceMode),
			config.StreamingServiceModeUsenet, config.StreamingServiceModeDebrid, config.StreamingServiceModeHybrid)
		checkEnum(errs, "streaming.servicePriority", "Service priority", string(st.ServicePriority),
			config.StreamingServicePriorityNone, config.StreamingServicePriorityUsenet, config.StreamingServicePriorityDebrid)
		checkEnum(errs, "streaming.multiProviderMode", "Multi-provider mode", string(st.MultiProviderMode),
			config.MultiProviderModeFastest, config.MultiProviderModePreferred)
	}

	if in("playback") {
		pb := m.Playback
		checkFloat(errs, pb.SubtitleSize, floatRule{path: "playback.subtitleSize", label: "Subtitle size", positive: true})
		checkInt(errs, pb.SeekForwardSeconds, intRule{path: "playback.seekForwardSeconds", label: "Seek forward", max: noLimit})
		checkInt(errs, pb.SeekBackwardSeconds, intRule{path: "playback.seekBackwardSeconds", label: "Seek backward", max: noLimit})
	}

	if in("live") {
		lv := m.Live
		checkInt(errs, lv.PlaylistCacheTTLHours, intRule{path: "live.playlistCacheTtlHours", label: "Playlist cache TTL", max: noLimit})
		checkInt(errs, lv.ProbeSizeMB, intRule{path: "live.probeSizeMb", label: "Probe size", max: noLimit})
		checkInt(errs, lv.AnalyzeDurationSec, intRule{path: "live.analyzeDurationSec", label: "Analyze duration", max: noLimit})
	}

	if in("homeShelves") {
		seen := make(map[string]struct{}, len(m.HomeShelves.Shelves))
		for i, shelf := range m.HomeShelves.Shelves {
			path := fmt.Sprintf("homeShelves.shelves.%d.name", i)
			checkRequired(errs, path, fmt.Sprintf("Shelf %d name", i+1), shelf.Name)
			if _, dup := seen[shelf.ID]; dup {
				errs[fmt.Sprintf("homeShelves.shelves.%d", i)] = fmt.Sprintf("Shelf %d duplicates id %q", i+1, shelf.ID)
			}
			seen[shelf.ID] = struct{}{}
		}
		checkEnum(errs, "homeShelves.trendingMovieSource", "Trending movie source", string(m.HomeShelves.TrendingMovieSource),
			config.TrendingMovieSourceAll, config.TrendingMovieSourceReleased)
	}

	if in("filtering") {
		f := m.Filtering
		checkFloat(errs, f.MaxSizeMovieGB, floatRule{path: "filtering.maxSizeMovieGb", label: "Max movie size"})
		checkFloat(errs, f.MaxSizeEpisodeGB, floatRule{path: "filtering.maxSizeEpisodeGb", label: "Max episode size"})
		checkEnum(errs, "filtering.hdrDvPolicy", "HDR/DV policy", string(f.HDRDVPolicy),
			config.HDRDVPolicyNoExclusion, config.HDRDVPolicyIncludeHDR, config.HDRDVPolicyIncludeHDRDV)
		checkTerms(errs, "filtering.filterOutTerms", "Filter-out terms", f.FilterOutTerms)
		checkTerms(errs, "filtering.preferredTerms", "Preferred terms", f.PreferredTerms)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// checkTerms flags /pattern/ terms that are not valid regular expressions.
func checkTerms(errs ValidationErrors, path, label, text string) {
	bad := filter.InvalidPatterns(coerce.ToTermList(text))
	if len(bad) > 0 {
		errs[path] = fmt.Sprintf("%s contain invalid patterns: %s", label, strings.Join(bad, ", "))
	}
}

// checkInt runs the same coercion the commit engine uses, so a field that
// passes here always converts at commit time.
func checkInt(errs ValidationErrors, text string, r intRule) {
	if strings.TrimSpace(text) == "" {
		if r.required {
			errs[r.path] = r.label + " is required"
		}
		return
	}
	v, err := coerce.ToInteger(text, 0, r.label)
	if err != nil {
		errs[r.path] = err.Error()
		return
	}
	switch {
	case v < r.min:
		errs[r.path] = fmt.Sprintf("%s must be at least %d", r.label, r.min)
	case r.max != noLimit && v > r.max:
		errs[r.path] = fmt.Sprintf("%s must be at most %d", r.label, r.max)
	}
}

// checkFloat accepts blank input, which means "keep the current value".
func checkFloat(errs ValidationErrors, text string, r floatRule) {
	v, blank, err := parseFloatField(text, r.label)
	if blank {
		return
	}
	if err != nil {
		errs[r.path] = err.Error()
		return
	}
	switch {
	case r.positive && v <= r.min:
		errs[r.path] = fmt.Sprintf("%s must be greater than %s", r.label, coerce.FormatFloat(r.min))
	case !r.positive && v < r.min:
		errs[r.path] = fmt.Sprintf("%s must be at least %s", r.label, coerce.FormatFloat(r.min))
	}
}

func checkRequired(errs ValidationErrors, path, label, text string) {
	if strings.TrimSpace(text) == "" {
		errs[path] = label + " is required"
	}
}

func checkEnum[T ~string](errs ValidationErrors, path, label, value string, allowed ...T) {
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if string(a) == value {
			return
		}
		names = append(names, string(a))
	}
	errs[path] = fmt.Sprintf("%s must be one of %s", label, strings.Join(names, ", "))
}

// parseFloatField is the float coercion shared by the validator and the
// commit engine. Blank input reports blank; malformed input is an error.
func parseFloatField(text, label string) (v float64, blank bool, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, true, nil
	}
	v, ok := coerce.ParseFloat(trimmed)
	if !ok {
		return 0, false, &coerce.Error{Field: label, Text: trimmed}
	}
	return v, false, nil
}

// clearErrors drops the entries for path and everything below it.
func clearErrors(errs ValidationErrors, path string) {
	for key := range errs {
		if key == path || strings.HasPrefix(key, path+".") {
			delete(errs, key)
		}
	}
}
