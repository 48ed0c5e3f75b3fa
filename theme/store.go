// Package theme holds the process-wide light/dark preference.
package theme

import (
	"encoding/json"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"marketdash/prefs"
)

// StorageKey is the preference key. The value is a JSON boolean.
const StorageKey = "darkTheme"

// DetectTerminal reports whether the terminal background is dark.
func DetectTerminal() bool {
	return lipgloss.HasDarkBackground()
}

// Store owns the dark-theme flag. Toggle is the only writer; reads are safe
// from any goroutine.
type Store struct {
	mu   sync.RWMutex
	dark bool

	storage prefs.Storage
	logger  *zap.Logger

	subMu  sync.Mutex
	subs   map[int]func(bool)
	nextID int
}

// New reads the stored preference once. When nothing usable is stored the
// result of detect is used; a nil detect means light.
func New(storage prefs.Storage, detect func() bool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		storage: storage,
		logger:  logger,
		subs:    make(map[int]func(bool)),
	}

	dark, ok := s.load()
	if !ok && detect != nil {
		dark = detect()
	}
	s.dark = dark
	lipgloss.SetHasDarkBackground(dark)
	return s
}

func (s *Store) load() (bool, bool) {
	if s.storage == nil {
		return false, false
	}
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.Warn("failed to read theme preference", zap.Error(err))
		return false, false
	}
	if !ok {
		return false, false
	}
	var dark bool
	if err := json.Unmarshal([]byte(raw), &dark); err != nil {
		s.logger.Warn("ignoring malformed theme preference", zap.String("value", raw), zap.Error(err))
		return false, false
	}
	return dark, true
}

// Preference reports whether the dark palette is active.
func (s *Store) Preference() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dark
}

// Tokens returns the active palette.
func (s *Store) Tokens() Tokens {
	return For(s.Preference())
}

// Toggle flips the preference, persists it, mirrors it into lipgloss and
// notifies subscribers. It returns the new value. A failed write is logged
// and otherwise ignored; the in-memory value still flips.
func (s *Store) Toggle() bool {
	s.mu.Lock()
	s.dark = !s.dark
	dark := s.dark
	s.mu.Unlock()

	if s.storage != nil {
		raw, _ := json.Marshal(dark)
		if err := s.storage.Set(StorageKey, string(raw)); err != nil {
			s.logger.Warn("failed to persist theme preference", zap.Bool("dark", dark), zap.Error(err))
		}
	}
	lipgloss.SetHasDarkBackground(dark)

	s.subMu.Lock()
	fns := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
	return dark
}

// Subscribe registers fn to run after every toggle. Call cancel to stop.
func (s *Store) Subscribe(fn func(dark bool)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}
