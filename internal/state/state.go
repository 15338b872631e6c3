// Package state holds the persisted application state: the system
// configuration, the WordPress credentials and the member list. Each is a
// JSON blob under a fixed key in a Backend.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/rs/zerolog"
)

// Blob keys.
const (
	KeyWordPress    = "wp_config"
	KeySystemConfig = "as_system_config"
	KeyMembers      = "as_members"
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Backend stores opaque blobs by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// AppState is the application-wide configuration loaded at startup. Reads
// never fail: a missing or corrupt blob yields the default. Writes are
// best-effort: failures are logged and never returned.
type AppState struct {
	backend Backend
	log     zerolog.Logger

	mu        sync.RWMutex
	system    models.SystemConfig
	wordpress models.WordPressConfig
}

// New creates an AppState holding defaults. Call Load to read persisted
// values.
func New(backend Backend) *AppState {
	return &AppState{
		backend: backend,
		log:     logger.Component("state"),
		system:  models.DefaultSystemConfig(),
	}
}

// Load reads the system and WordPress configuration from the backend.
func (s *AppState) Load(ctx context.Context) {
	system := models.DefaultSystemConfig()
	s.read(ctx, KeySystemConfig, &system)

	var wp models.WordPressConfig
	s.read(ctx, KeyWordPress, &wp)

	s.mu.Lock()
	s.system = system
	s.wordpress = wp
	s.mu.Unlock()

	s.log.Info().
		Bool("private_mode", system.IsPrivateMode).
		Bool("wordpress_configured", wp.Configured()).
		Msg("Application state loaded")
}

// SystemConfig returns the current system configuration.
func (s *AppState) SystemConfig() models.SystemConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.system
}

// UpdateSystemConfig replaces the system configuration and persists it.
func (s *AppState) UpdateSystemConfig(ctx context.Context, cfg models.SystemConfig) {
	s.mu.Lock()
	s.system = cfg
	s.mu.Unlock()
	s.write(ctx, KeySystemConfig, cfg)
}

// WordPressConfig returns the current CMS credentials.
func (s *AppState) WordPressConfig() models.WordPressConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wordpress
}

// UpdateWordPressConfig replaces the CMS credentials and persists them.
func (s *AppState) UpdateWordPressConfig(ctx context.Context, cfg models.WordPressConfig) {
	s.mu.Lock()
	s.wordpress = cfg
	s.mu.Unlock()
	s.write(ctx, KeyWordPress, cfg)
}

// Members reads the persisted member list. ok is false when nothing usable
// is stored.
func (s *AppState) Members(ctx context.Context) (members []models.Member, ok bool) {
	if !s.read(ctx, KeyMembers, &members) || len(members) == 0 {
		return nil, false
	}
	return members, true
}

// SaveMembers persists the member list.
func (s *AppState) SaveMembers(ctx context.Context, members []models.Member) {
	s.write(ctx, KeyMembers, members)
}

// Reset deletes every persisted blob and restores the defaults.
func (s *AppState) Reset(ctx context.Context) {
	for _, key := range []string{KeyWordPress, KeySystemConfig, KeyMembers} {
		if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str("key", key).Msg("Failed to delete state")
		}
	}

	s.mu.Lock()
	s.system = models.DefaultSystemConfig()
	s.wordpress = models.WordPressConfig{}
	s.mu.Unlock()

	s.log.Warn().Msg("Application state reset")
}

func (s *AppState) read(ctx context.Context, key string, v interface{}) bool {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str("key", key).Msg("Failed to read state")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Corrupt state, using default")
		return false
	}
	return true
}

func (s *AppState) write(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to encode state")
		return
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to persist state")
	}
}
