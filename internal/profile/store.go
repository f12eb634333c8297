// Package profile holds the game catalog and mediates every read and write of
// profile state against the key-value persistence boundary.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/axiskey/mapper/internal/kv"
	"github.com/axiskey/mapper/internal/mapping"
)

// Keys of the two persisted entries.
const (
	ConfigKey  = "axiskey_v13_cfg"
	CatalogKey = "axiskey_v13_games"
)

var defaultLogger = zerolog.New(os.Stdout).With().Str("subsystem", "profile").Logger()

// Store is the in-memory catalog of games plus the active game selection.
// Every mutation is written through to the backing kv.Store before returning.
type Store struct {
	kv    kv.Store
	clock clockwork.Clock
	log   *zerolog.Logger

	// onPersist is told about every write to the boundary.
	onPersist func(key string, err error)

	mu       sync.Mutex
	games    []mapping.Game
	config   mapping.AppConfig
	activeID string
}

type Option func(*Store)

func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithPersistHook registers fn to observe the outcome of every persistence write.
func WithPersistHook(fn func(key string, err error)) Option {
	return func(s *Store) { s.onPersist = fn }
}

// New returns an empty store. Call LoadSnapshot before editing.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:     backend,
		clock:  clockwork.NewRealClock(),
		config: mapping.DefaultAppConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := defaultLogger
		s.log = &l
	}
	return s
}

// LoadSnapshot reads both persisted entries. Missing or malformed data falls
// back to the built-in defaults; it is never reported as an error.
func (s *Store) LoadSnapshot() []mapping.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = s.loadCatalog()
	s.config = s.loadConfig()
	if _, ok := s.indexOf(s.activeID); !ok {
		s.activeID = ""
	}
	return cloneGames(s.games)
}

// Reload re-reads the persisted entries, keeping the active game when it still exists.
func (s *Store) Reload() {
	s.LoadSnapshot()
	s.log.Info().Msg("profile state reloaded from storage")
}

func (s *Store) loadCatalog() []mapping.Game {
	data, ok, err := s.kv.Get(CatalogKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read catalog, using defaults")
		return mapping.DefaultCatalog(s.clock.Now())
	}
	if !ok {
		return mapping.DefaultCatalog(s.clock.Now())
	}

	games, err := decodeCatalog(data, s.log)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored catalog is malformed, using defaults")
		return mapping.DefaultCatalog(s.clock.Now())
	}
	return games
}

// storedGame decodes controls one at a time so a control with an unknown
// type costs only that control.
type storedGame struct {
	mapping.Game
	Profile storedProfile `json:"profile"`
}

type storedProfile struct {
	mapping.Profile
	Controls []json.RawMessage `json:"controls"`
}

func decodeCatalog(data []byte, log *zerolog.Logger) ([]mapping.Game, error) {
	var stored []storedGame
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("catalog is null")
	}

	games := make([]mapping.Game, 0, len(stored))
	for _, sg := range stored {
		g := sg.Game
		g.Profile = sg.Profile.Profile
		g.Profile.Controls = make([]mapping.Control, 0, len(sg.Profile.Controls))
		for _, raw := range sg.Profile.Controls {
			var c mapping.Control
			if err := json.Unmarshal(raw, &c); err != nil {
				if !errors.Is(err, mapping.ErrUnknownControlType) {
					return nil, fmt.Errorf("game %s: %w", g.ID, err)
				}
				log.Warn().Err(err).Str("game", g.ID).Msg("dropping stored control")
				continue
			}
			g.Profile.Controls = append(g.Profile.Controls, c)
		}
		games = append(games, g)
	}
	return games, nil
}

func (s *Store) loadConfig() mapping.AppConfig {
	data, ok, err := s.kv.Get(ConfigKey)
	if err != nil || !ok {
		return mapping.DefaultAppConfig()
	}

	cfg := mapping.DefaultAppConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.log.Warn().Err(err).Msg("stored config is malformed, using defaults")
		return mapping.DefaultAppConfig()
	}
	return cfg
}

// Save writes the full catalog and config to the boundary.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist()
}

func (s *Store) persist() error {
	catalog, err := json.Marshal(s.games)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	cfg, err := json.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := s.write(ConfigKey, cfg); err != nil {
		return err
	}
	return s.write(CatalogKey, catalog)
}

func (s *Store) write(key string, data []byte) error {
	err := s.kv.Set(key, data)
	if s.onPersist != nil {
		s.onPersist(key, err)
	}
	if err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// persistOrLog keeps the in-memory change even when the boundary refuses it.
func (s *Store) persistOrLog() {
	if err := s.persist(); err != nil {
		s.log.Error().Err(err).Msg("failed to persist profile state")
	}
}

// Games returns a copy of the catalog.
func (s *Store) Games() []mapping.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneGames(s.games)
}

// Game returns a copy of the game with the given id.
func (s *Store) Game(id string) (mapping.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexOf(id)
	if !ok {
		return mapping.Game{}, false
	}
	return s.games[i].Clone(), true
}

// SetActiveGame selects the game whose profile later mutations target.
// An unknown id clears the selection and reports false.
func (s *Store) SetActiveGame(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexOf(id); !ok {
		s.activeID = ""
		return false
	}
	s.activeID = id
	s.log.Debug().Str("game", id).Msg("active game changed")
	return true
}

// ActiveGameID returns the selected game id, or "" when none is active.
func (s *Store) ActiveGameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// ActiveProfile returns a copy of the active game's profile.
func (s *Store) ActiveProfile() (mapping.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexOf(s.activeID)
	if !ok {
		return mapping.Profile{}, false
	}
	return s.games[i].Profile.Clone(), true
}

// MutateActiveProfile merges patch over the active profile, stamps
// lastModified and persists the whole state. It reports false, changing
// nothing, when no game is active.
func (s *Store) MutateActiveProfile(patch mapping.ProfilePatch) bool {
	_, ok := s.UpdateActiveProfile(func(p mapping.Profile) (mapping.ProfilePatch, bool) {
		return patch, true
	})
	return ok
}

// UpdateActiveProfile computes a patch from the current active profile and
// applies it under the same lock. build returning false aborts without a write.
func (s *Store) UpdateActiveProfile(build func(p mapping.Profile) (mapping.ProfilePatch, bool)) (mapping.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexOf(s.activeID)
	if !ok {
		return mapping.Profile{}, false
	}
	patch, ok := build(s.games[i].Profile.Clone())
	if !ok {
		return mapping.Profile{}, false
	}

	s.games[i].Profile = patch.Apply(s.games[i].Profile, s.clock.Now())
	s.persistOrLog()
	return s.games[i].Profile.Clone(), true
}

// Config returns the persisted user preferences.
func (s *Store) Config() mapping.AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// UpdateConfig merges patch over the preferences and persists the whole state.
func (s *Store) UpdateConfig(patch mapping.AppConfigPatch) mapping.AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = patch.Apply(s.config)
	s.persistOrLog()
	return s.config
}

func (s *Store) indexOf(id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i := range s.games {
		if s.games[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func cloneGames(games []mapping.Game) []mapping.Game {
	out := make([]mapping.Game, len(games))
	for i, g := range games {
		out[i] = g.Clone()
	}
	return out
}
