package settingsync

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

var (
	ErrIndexOutOfRange = errors.New("list index out of range")
	ErrCannotMove      = errors.New("entry cannot move in that direction")
)

// newKey issues identity keys for entries added during editing.
var newKey = uuid.NewString

// Every function in this file takes a Mirror by value and returns the edited
// copy. Slices that are edited are cloned first; untouched sections and lists
// keep sharing memory with the input. None of them validate.

func UpdateServer(m Mirror, fn func(*ServerForm)) Mirror {
	fn(&m.Server)
	return m
}

func UpdateMetadata(m Mirror, fn func(*MetadataForm)) Mirror {
	fn(&m.Metadata)
	return m
}

func UpdateCache(m Mirror, fn func(*CacheForm)) Mirror {
	fn(&m.Cache)
	return m
}

func UpdateWebDAV(m Mirror, fn func(*WebDAVForm)) Mirror {
	fn(&m.WebDAV)
	return m
}

// UpdateStreaming edits the scalar streaming fields. Debrid providers have
// their own setters.
func UpdateStreaming(m Mirror, fn func(*StreamingForm)) Mirror {
	providers := m.Streaming.DebridProviders
	fn(&m.Streaming)
	m.Streaming.DebridProviders = providers
	return m
}

func UpdateTransmux(m Mirror, fn func(*TransmuxForm)) Mirror {
	fn(&m.Transmux)
	return m
}

func UpdatePlayback(m Mirror, fn func(*PlaybackForm)) Mirror {
	fn(&m.Playback)
	return m
}

func UpdateLive(m Mirror, fn func(*LiveForm)) Mirror {
	fn(&m.Live)
	return m
}

func UpdateFiltering(m Mirror, fn func(*FilterForm)) Mirror {
	fn(&m.Filtering)
	return m
}

// UpdateHomeShelves edits the shelf-wide fields. Individual shelves have their
// own setters.
func UpdateHomeShelves(m Mirror, fn func(*HomeShelvesForm)) Mirror {
	shelves := m.HomeShelves.Shelves
	fn(&m.HomeShelves)
	m.HomeShelves.Shelves = shelves
	return m
}

// Usenet providers.

func UpdateUsenet(m Mirror, i int, fn func(*UsenetForm)) (Mirror, error) {
	list, err := updateEntry(m.Usenet, i, fn)
	if err != nil {
		return m, err
	}
	m.Usenet = list
	return m, nil
}

func AddUsenet(m Mirror) Mirror {
	m.Usenet = appendEntry(m.Usenet, UsenetForm{
		Key:         newKey(),
		Port:        "563",
		SSL:         true,
		Connections: "10",
		Enabled:     true,
	})
	return m
}

func RemoveUsenet(m Mirror, i int) (Mirror, error) {
	list, err := removeEntry(m.Usenet, i)
	if err != nil {
		return m, err
	}
	m.Usenet = list
	return m, nil
}

// Indexers.

func UpdateIndexer(m Mirror, i int, fn func(*IndexerForm)) (Mirror, error) {
	list, err := updateEntry(m.Indexers, i, fn)
	if err != nil {
		return m, err
	}
	m.Indexers = list
	return m, nil
}

func AddIndexer(m Mirror) Mirror {
	m.Indexers = appendEntry(m.Indexers, IndexerForm{
		Key:     newKey(),
		Type:    "newznab",
		Enabled: true,
	})
	return m
}

func RemoveIndexer(m Mirror, i int) (Mirror, error) {
	list, err := removeEntry(m.Indexers, i)
	if err != nil {
		return m, err
	}
	m.Indexers = list
	return m, nil
}

// Torrent scrapers.

func UpdateScraper(m Mirror, i int, fn func(*ScraperForm)) (Mirror, error) {
	list, err := updateEntry(m.Scrapers, i, func(s *ScraperForm) {
		s.Config = maps.Clone(s.Config)
		fn(s)
	})
	if err != nil {
		return m, err
	}
	m.Scrapers = list
	return m, nil
}

func AddScraper(m Mirror) Mirror {
	m.Scrapers = appendEntry(m.Scrapers, ScraperForm{
		Key:     newKey(),
		Name:    "Torrentio",
		Type:    "torrentio",
		Enabled: true,
	})
	return m
}

func RemoveScraper(m Mirror, i int) (Mirror, error) {
	list, err := removeEntry(m.Scrapers, i)
	if err != nil {
		return m, err
	}
	m.Scrapers = list
	return m, nil
}

// Debrid providers. Position in the list is the provider priority.

func UpdateDebridProvider(m Mirror, i int, fn func(*DebridForm)) (Mirror, error) {
	list, err := updateEntry(m.Streaming.DebridProviders, i, func(d *DebridForm) {
		d.Config = maps.Clone(d.Config)
		fn(d)
	})
	if err != nil {
		return m, err
	}
	m.Streaming.DebridProviders = list
	return m, nil
}

func AddDebridProvider(m Mirror) Mirror {
	m.Streaming.DebridProviders = appendEntry(m.Streaming.DebridProviders, DebridForm{
		Key:      newKey(),
		Name:     "Real Debrid",
		Provider: "realdebrid",
	})
	return m
}

func RemoveDebridProvider(m Mirror, i int) (Mirror, error) {
	list, err := removeEntry(m.Streaming.DebridProviders, i)
	if err != nil {
		return m, err
	}
	m.Streaming.DebridProviders = list
	return m, nil
}

// MoveDebridProvider swaps provider i with its neighbour (delta -1 or +1).
func MoveDebridProvider(m Mirror, i, delta int) (Mirror, error) {
	list, err := swapEntries(m.Streaming.DebridProviders, i, delta, nil)
	if err != nil {
		return m, err
	}
	m.Streaming.DebridProviders = list
	return m, nil
}

// Home shelves. Shelves carry explicit Order values that follow their
// position.

func UpdateShelf(m Mirror, i int, fn func(*ShelfForm)) (Mirror, error) {
	list, err := updateEntry(m.HomeShelves.Shelves, i, func(s *ShelfForm) {
		order := s.Order
		fn(s)
		s.Order = order
	})
	if err != nil {
		return m, err
	}
	m.HomeShelves.Shelves = list
	return m, nil
}

func AddShelf(m Mirror) Mirror {
	order := 0
	for _, s := range m.HomeShelves.Shelves {
		if s.Order >= order {
			order = s.Order + 1
		}
	}
	m.HomeShelves.Shelves = appendEntry(m.HomeShelves.Shelves, ShelfForm{
		ID:      "custom-" + newKey(),
		Name:    "New Shelf",
		Enabled: true,
		Order:   order,
	})
	return m
}

func RemoveShelf(m Mirror, i int) (Mirror, error) {
	list, err := removeEntry(m.HomeShelves.Shelves, i)
	if err != nil {
		return m, err
	}
	m.HomeShelves.Shelves = list
	return m, nil
}

// MoveShelf swaps shelf i with its neighbour (delta -1 or +1). Both shelves
// exchange Order values in the same step, so no value is duplicated or
// skipped and no other shelf changes.
func MoveShelf(m Mirror, i, delta int) (Mirror, error) {
	list, err := swapEntries(m.HomeShelves.Shelves, i, delta, func(a, b *ShelfForm) {
		a.Order, b.Order = b.Order, a.Order
	})
	if err != nil {
		return m, err
	}
	m.HomeShelves.Shelves = list
	return m, nil
}

func updateEntry[T any](list []T, i int, fn func(*T)) ([]T, error) {
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfRange, i, len(list))
	}
	out := slices.Clone(list)
	fn(&out[i])
	return out, nil
}

func appendEntry[T any](list []T, entry T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, entry)
}

func removeEntry[T any](list []T, i int) ([]T, error) {
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfRange, i, len(list))
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}

// swapEntries exchanges entries i and i+delta. exchange, when set, runs on the
// two entries before they trade places.
func swapEntries[T any](list []T, i, delta int, exchange func(a, b *T)) ([]T, error) {
	if delta != -1 && delta != 1 {
		return nil, fmt.Errorf("%w: delta %d", ErrCannotMove, delta)
	}
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfRange, i, len(list))
	}
	j := i + delta
	if j < 0 || j >= len(list) {
		return nil, fmt.Errorf("%w: %d", ErrCannotMove, i)
	}
	out := slices.Clone(list)
	if exchange != nil {
		exchange(&out[i], &out[j])
	}
	out[i], out[j] = out[j], out[i]
	return out, nil
}
