package settingsync

import (
	"slices"
	"strings"
)

// Tab names one page of the settings screen.
type Tab string

const (
	TabServer    Tab = "server"
	TabSources   Tab = "sources"
	TabMetadata  Tab = "metadata"
	TabStreaming Tab = "streaming"
	TabPlayback  Tab = "playback"
	TabHome      Tab = "home"
	TabFiltering Tab = "filtering"
	TabLive      Tab = "live"
	TabChannels  Tab = "channels"
)

// TabSpec describes what a tab edits. Sections are first path segments as
// used by Fields and Validate. A PerUser tab commits to the active profile's
// override when the session has an identity provider. A ProfileOnly tab has
// no global counterpart and cannot be saved without a profile.
type TabSpec struct {
	Tab         Tab
	Title       string
	Sections    []string
	PerUser     bool
	ProfileOnly bool
}

// Layout is the ordered set of tabs a platform shows.
type Layout []TabSpec

func (l Layout) Tab(tab Tab) (TabSpec, bool) {
	for _, spec := range l {
		if spec.Tab == tab {
			return spec, true
		}
	}
	return TabSpec{}, false
}

// TabFor returns the tab that edits the field or list at path.
func (l Layout) TabFor(path string) (TabSpec, bool) {
	head, _, _ := strings.Cut(path, ".")
	for _, spec := range l {
		if slices.Contains(spec.Sections, head) {
			return spec, true
		}
	}
	return TabSpec{}, false
}

// Tabs returns the tab names in display order.
func (l Layout) Tabs() []Tab {
	out := make([]Tab, 0, len(l))
	for _, spec := range l {
		out = append(out, spec.Tab)
	}
	return out
}

// DefaultLayout is the full settings screen.
func DefaultLayout() Layout {
	return Layout{
		{Tab: TabServer, Title: "Server", Sections: []string{"server"}},
		{Tab: TabSources, Title: "Sources", Sections: []string{"usenet", "indexers", "torrentScrapers"}},
		{Tab: TabMetadata, Title: "Metadata", Sections: []string{"metadata", "cache"}},
		{Tab: TabStreaming, Title: "Streaming", Sections: []string{"streaming", "webdav", "transmux"}},
		{Tab: TabPlayback, Title: "Playback", Sections: []string{"playback"}, PerUser: true},
		{Tab: TabHome, Title: "Home", Sections: []string{"homeShelves"}, PerUser: true},
		{Tab: TabFiltering, Title: "Filtering", Sections: []string{"filtering"}, PerUser: true},
		{Tab: TabLive, Title: "Live TV", Sections: []string{"live"}},
		{Tab: TabChannels, Title: "Channels", Sections: []string{"liveTV"}, PerUser: true, ProfileOnly: true},
	}
}

// TVLayout drops the pages that are impractical to edit with a remote.
func TVLayout() Layout {
	out := make(Layout, 0, 9)
	for _, spec := range DefaultLayout() {
		if spec.Tab == TabStreaming {
			spec.Sections = []string{"streaming"}
		}
		out = append(out, spec)
	}
	return out
}
