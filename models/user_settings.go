package models

import (
	"bytes"
	"encoding/json"
	"log"

	"novaremote/config"
)

// Helper functions for creating pointers (exported for use by other packages)
func StringPtr(v string) *string      { return &v }
func FloatPtr(v float64) *float64     { return &v }
func BoolPtr(v bool) *bool            { return &v }
func StringsPtr(v []string) *[]string { return &v }

// Helper functions for safely dereferencing pointers with defaults
func StringVal(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func FloatVal(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func BoolVal(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// UserSettings is a sparse per-profile document overriding a fixed subset of
// the global configuration. A nil section or field inherits the global value;
// a present one wins, including explicit false and empty values.
type UserSettings struct {
	Playback    *PlaybackOverride    `json:"playback,omitempty"`
	HomeShelves *HomeShelvesOverride `json:"homeShelves,omitempty"`
	Filtering   *FilterOverride      `json:"filtering,omitempty"`
	LiveTV      *LiveTVOverride      `json:"liveTV,omitempty"`
}

// PlaybackOverride holds per-profile playback preferences.
type PlaybackOverride struct {
	PreferredPlayer           *string  `json:"preferredPlayer,omitempty"`
	PreferredAudioLanguage    *string  `json:"preferredAudioLanguage,omitempty"`
	PreferredSubtitleLanguage *string  `json:"preferredSubtitleLanguage,omitempty"`
	PreferredSubtitleMode     *string  `json:"preferredSubtitleMode,omitempty"`
	UseLoadingScreen          *bool    `json:"useLoadingScreen,omitempty"`
	SubtitleSize              *float64 `json:"subtitleSize,omitempty"`
}

// HomeShelvesOverride controls which shelves a profile sees and in what order.
type HomeShelvesOverride struct {
	Shelves             *[]config.ShelfConfig       `json:"shelves,omitempty"`
	TrendingMovieSource *config.TrendingMovieSource `json:"trendingMovieSource,omitempty"`
}

// FilterOverride holds per-profile content filtering thresholds.
type FilterOverride struct {
	MaxSizeMovieGB                   *float64            `json:"maxSizeMovieGb,omitempty"`
	MaxSizeEpisodeGB                 *float64            `json:"maxSizeEpisodeGb,omitempty"`
	MaxResolution                    *string             `json:"maxResolution,omitempty"`
	HDRDVPolicy                      *config.HDRDVPolicy `json:"hdrDvPolicy,omitempty"`
	PrioritizeHdr                    *bool               `json:"prioritizeHdr,omitempty"`
	FilterOutTerms                   *[]string           `json:"filterOutTerms,omitempty"`
	PreferredTerms                   *[]string           `json:"preferredTerms,omitempty"`
	BypassFilteringForAIOStreamsOnly *bool               `json:"bypassFilteringForAioStreamsOnly,omitempty"`
}

// LiveTVOverride contains per-profile Live TV preferences.
type LiveTVOverride struct {
	HiddenChannels     *[]string `json:"hiddenChannels,omitempty"`     // Channel IDs that are hidden
	FavoriteChannels   *[]string `json:"favoriteChannels,omitempty"`   // Channel IDs that are favorited
	SelectedCategories *[]string `json:"selectedCategories,omitempty"` // Selected category filters
}

// DecodeUserSettings parses an override document. Fields that are null or of
// the wrong JSON type are treated as absent rather than failing the decode.
func DecodeUserSettings(data []byte) (UserSettings, error) {
	var s UserSettings
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	err := json.Unmarshal(data, &s)
	return s, err
}

func (s *UserSettings) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	*s = UserSettings{
		Playback:    optional[PlaybackOverride](raw, "playback"),
		HomeShelves: optional[HomeShelvesOverride](raw, "homeShelves"),
		Filtering:   optional[FilterOverride](raw, "filtering"),
		LiveTV:      optional[LiveTVOverride](raw, "liveTV"),
	}
	return nil
}

func (p *PlaybackOverride) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	*p = PlaybackOverride{
		PreferredPlayer:           optional[string](raw, "preferredPlayer"),
		PreferredAudioLanguage:    optional[string](raw, "preferredAudioLanguage"),
		PreferredSubtitleLanguage: optional[string](raw, "preferredSubtitleLanguage"),
		PreferredSubtitleMode:     optional[string](raw, "preferredSubtitleMode"),
		UseLoadingScreen:          optional[bool](raw, "useLoadingScreen"),
		SubtitleSize:              optional[float64](raw, "subtitleSize"),
	}
	return nil
}

func (h *HomeShelvesOverride) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	*h = HomeShelvesOverride{
		Shelves:             optional[[]config.ShelfConfig](raw, "shelves"),
		TrendingMovieSource: optional[config.TrendingMovieSource](raw, "trendingMovieSource"),
	}
	return nil
}

func (f *FilterOverride) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	*f = FilterOverride{
		MaxSizeMovieGB:                   optional[float64](raw, "maxSizeMovieGb"),
		MaxSizeEpisodeGB:                 optional[float64](raw, "maxSizeEpisodeGb"),
		MaxResolution:                    optional[string](raw, "maxResolution"),
		HDRDVPolicy:                      optional[config.HDRDVPolicy](raw, "hdrDvPolicy"),
		PrioritizeHdr:                    optional[bool](raw, "prioritizeHdr"),
		FilterOutTerms:                   optional[[]string](raw, "filterOutTerms"),
		PreferredTerms:                   optional[[]string](raw, "preferredTerms"),
		BypassFilteringForAIOStreamsOnly: optional[bool](raw, "bypassFilteringForAioStreamsOnly"),
	}
	return nil
}

func (l *LiveTVOverride) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	*l = LiveTVOverride{
		HiddenChannels:     optional[[]string](raw, "hiddenChannels"),
		FavoriteChannels:   optional[[]string](raw, "favoriteChannels"),
		SelectedCategories: optional[[]string](raw, "selectedCategories"),
	}
	return nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// optional decodes raw[key] into a *T. Absent, null and mistyped values all
// yield nil.
func optional[T any](raw map[string]json.RawMessage, key string) *T {
	msg, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		log.Printf("[user-settings] ignoring malformed field %q: %v", key, err)
		return nil
	}
	return &v
}

// IsEmpty returns true if no field is overridden.
func (s UserSettings) IsEmpty() bool {
	return s.Playback.IsEmpty() &&
		s.HomeShelves.IsEmpty() &&
		s.Filtering.IsEmpty() &&
		s.LiveTV.IsEmpty()
}

func (p *PlaybackOverride) IsEmpty() bool {
	return p == nil ||
		(p.PreferredPlayer == nil &&
			p.PreferredAudioLanguage == nil &&
			p.PreferredSubtitleLanguage == nil &&
			p.PreferredSubtitleMode == nil &&
			p.UseLoadingScreen == nil &&
			p.SubtitleSize == nil)
}

func (h *HomeShelvesOverride) IsEmpty() bool {
	return h == nil || (h.Shelves == nil && h.TrendingMovieSource == nil)
}

func (f *FilterOverride) IsEmpty() bool {
	return f == nil ||
		(f.MaxSizeMovieGB == nil &&
			f.MaxSizeEpisodeGB == nil &&
			f.MaxResolution == nil &&
			f.HDRDVPolicy == nil &&
			f.PrioritizeHdr == nil &&
			f.FilterOutTerms == nil &&
			f.PreferredTerms == nil &&
			f.BypassFilteringForAIOStreamsOnly == nil)
}

func (l *LiveTVOverride) IsEmpty() bool {
	return l == nil || (l.HiddenChannels == nil && l.FavoriteChannels == nil && l.SelectedCategories == nil)
}
