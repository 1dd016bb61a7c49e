package settingsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"novaremote/config"
	"novaremote/models"
)

var (
	ErrCommitInFlight = errors.New("a save is already in progress")
	ErrUnknownTab     = errors.New("unknown settings tab")
)

// Session owns one settings screen's mirror, dirty flag and error map. The
// lock is never held across a call into the settings client.
type Session struct {
	client    SettingsClient
	identity  IdentityProvider
	committer *Committer
	layout    Layout

	mu         sync.Mutex
	mirror     Mirror
	dirty      bool
	errs       ValidationErrors
	version    uint64 // bumped by every Load
	edits      uint64 // bumped by every successful edit
	global     config.Settings
	override   *models.UserSettings
	committing bool

	pending map[string]struct{} // sections edited since the last load or save
}

// NewSession creates an empty session. identity may be nil, in which case
// every tab commits to the global document and profile-only tabs cannot be
// saved.
func NewSession(client SettingsClient, identity IdentityProvider, layout Layout) *Session {
	if layout == nil {
		layout = DefaultLayout()
	}
	s := &Session{
		client:    client,
		identity:  identity,
		committer: &Committer{Client: client, Identity: identity},
		layout:    layout,
	}
	s.mirror = BuildMirror(config.DefaultSettings(), nil)
	return s
}

func (s *Session) Layout() Layout { return s.layout }

// Refresh fetches the global document and, when a profile is active, its
// override in parallel, then loads them.
func (s *Session) Refresh(ctx context.Context) error {
	var (
		global   config.Settings
		override *models.UserSettings
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		g, err := s.client.FetchGlobalConfig(ctx)
		if err != nil {
			return fmt.Errorf("fetch global settings: %w", err)
		}
		global = g
		return nil
	})
	if s.identity != nil {
		if userID, ok := s.identity.CurrentUserID(); ok {
			p.Go(func(ctx context.Context) error {
				o, err := s.client.FetchUserOverride(ctx, userID)
				if err != nil {
					return fmt.Errorf("fetch settings for %s: %w", userID, err)
				}
				override = o
				return nil
			})
		}
	}
	if err := p.Wait(); err != nil {
		return err
	}

	s.Load(global, override)
	return nil
}

// Load replaces the mirror with a fresh merge of the documents and resets
// the dirty flag and error map.
func (s *Session) Load(global config.Settings, override *models.UserSettings) {
	m := BuildMirror(global, override)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = global.Clone()
	s.override = override
	s.mirror = m
	s.dirty = false
	s.pending = nil
	s.errs = nil
	s.version++
}

func (s *Session) Mirror() Mirror {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirror
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Errors returns a copy of the current error map.
func (s *Session) Errors() ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) == 0 {
		return nil
	}
	return maps.Clone(s.errs)
}

// Committing reports whether a save is outstanding.
func (s *Session) Committing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committing
}

// Set assigns one leaf by dotted path.
func (s *Session) Set(path, value string) error {
	return s.Update([]string{path}, func(m Mirror) (Mirror, error) {
		return SetField(m, path, value)
	})
}

// Update applies fn to the mirror. On success the session is dirty and the
// error entries at or below paths are cleared; on failure nothing changes.
func (s *Session) Update(paths []string, fn func(Mirror) (Mirror, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := fn(s.mirror)
	if err != nil {
		return err
	}
	s.mirror = m
	s.dirty = true
	s.edits++
	if s.pending == nil {
		s.pending = make(map[string]struct{})
	}
	for _, p := range paths {
		section, _, _ := strings.Cut(p, ".")
		s.pending[section] = struct{}{}
		clearErrors(s.errs, p)
	}
	return nil
}

func (s *Session) AddEntry(list string) error {
	return s.Update([]string{list}, func(m Mirror) (Mirror, error) {
		return AddEntry(m, list)
	})
}

func (s *Session) RemoveEntry(list string, i int) error {
	return s.Update([]string{list}, func(m Mirror) (Mirror, error) {
		return RemoveEntry(m, list, i)
	})
}

func (s *Session) MoveEntry(list string, i, delta int) error {
	return s.Update([]string{list}, func(m Mirror) (Mirror, error) {
		return MoveEntry(m, list, i, delta)
	})
}

// Save validates the sections of tab and commits them. Sections outside the
// tab are sent as last loaded, so their edits stay pending and keep the
// session dirty. A validation failure is returned as ValidationErrors and
// stored on the session. A result that arrives after a newer Load leaves the
// session alone, and a success only clears the tab's sections when the mirror
// was not edited while the commit was in flight. The mirror itself is never
// rolled back.
func (s *Session) Save(ctx context.Context, tab Tab) error {
	spec, ok := s.layout.Tab(tab)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	if spec.ProfileOnly && s.identity == nil {
		return ErrMissingActiveUser
	}

	s.mu.Lock()
	if s.committing {
		s.mu.Unlock()
		return ErrCommitInFlight
	}
	if errs := Validate(s.mirror, spec.Sections...); len(errs) > 0 {
		s.errs = errs
		s.mu.Unlock()
		return errs
	}
	s.errs = nil
	m := Scope(s.mirror, BuildMirror(s.global, s.override), spec.Sections...)
	base := Base{Global: s.global, Override: s.override}
	version, edits := s.version, s.edits
	s.committing = true
	s.mu.Unlock()

	res, err := s.committer.Commit(ctx, m, base, spec.PerUser && s.identity != nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.committing = false
	if s.version != version {
		if err == nil {
			log.Printf("[settings] %s saved after a reload; keeping the newer state", tab)
		}
		return err
	}
	if res.Global != nil {
		// The stored lists are in the order they were sent, so entry keys
		// move to their new positions.
		s.global = res.Global.Clone()
		s.mirror = rekey(s.mirror, m, spec.Sections)
	}
	if err != nil {
		return err
	}
	if res.Override != nil {
		o := *res.Override
		s.override = &o
	}
	if s.edits != edits {
		log.Printf("[settings] %s saved; edits made during the save remain unsaved", tab)
		return nil
	}
	for _, section := range spec.Sections {
		delete(s.pending, section)
	}
	s.dirty = len(s.pending) > 0
	if s.dirty {
		log.Printf("[settings] %s saved; other tabs still have unsaved edits", tab)
		return nil
	}
	log.Printf("[settings] %s saved", tab)
	return nil
}
