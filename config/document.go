package config

import (
	"encoding/json"
	"maps"
	"slices"
)

// settingsDocument has the same fields as Settings without its JSON methods.
type settingsDocument Settings

var knownSections = map[string]struct{}{
	"server": {}, "usenet": {}, "indexers": {}, "torrentScrapers": {},
	"metadata": {}, "cache": {}, "webdav": {}, "streaming": {},
	"transmux": {}, "playback": {}, "live": {}, "homeShelves": {},
	"filtering": {}, "log": {},
}

// UnmarshalJSON decodes the modelled sections and keeps everything else in Extra.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var doc settingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if _, ok := knownSections[key]; ok {
			continue
		}
		if doc.Extra == nil {
			doc.Extra = make(map[string]json.RawMessage)
		}
		doc.Extra[key] = value
	}

	*s = Settings(doc)
	return nil
}

// MarshalJSON encodes the modelled sections followed by any preserved extras.
func (s Settings) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(settingsDocument(s))
	if err != nil || len(s.Extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range s.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// Clone returns a deep copy so callers can modify lists and maps freely.
func (s Settings) Clone() Settings {
	out := s
	out.Usenet = slices.Clone(s.Usenet)
	out.Indexers = slices.Clone(s.Indexers)
	out.TorrentScrapers = slices.Clone(s.TorrentScrapers)
	for i := range out.TorrentScrapers {
		out.TorrentScrapers[i].Config = maps.Clone(out.TorrentScrapers[i].Config)
	}
	out.Streaming.DebridProviders = slices.Clone(s.Streaming.DebridProviders)
	for i := range out.Streaming.DebridProviders {
		out.Streaming.DebridProviders[i].Config = maps.Clone(out.Streaming.DebridProviders[i].Config)
	}
	out.HomeShelves.Shelves = slices.Clone(s.HomeShelves.Shelves)
	out.Filtering.FilterOutTerms = slices.Clone(s.Filtering.FilterOutTerms)
	out.Filtering.PreferredTerms = slices.Clone(s.Filtering.PreferredTerms)
	out.Extra = maps.Clone(s.Extra)
	return out
}
