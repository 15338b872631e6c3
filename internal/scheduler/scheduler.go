// Package scheduler re-runs trend discovery on a fixed interval while
// auto-refresh is enabled.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Params selects what a refresh discovers.
type Params struct {
	Niche    string `json:"niche"`
	Country  string `json:"country"`
	Category string `json:"category"`
	// APIKey is the credential captured when auto-refresh was enabled.
	APIKey string `json:"-"`
}

// RefreshFunc performs one trend sync.
type RefreshFunc func(ctx context.Context, p Params) ([]models.Trend, error)

// Snapshot is the auto-refresh state and the result of the last run.
type Snapshot struct {
	Enabled   bool           `json:"enabled"`
	Interval  string         `json:"interval"`
	Params    Params         `json:"params"`
	Trends    []models.Trend `json:"trends"`
	LastSync  *time.Time     `json:"lastSync,omitempty"`
	LastError string         `json:"lastError,omitempty"`
}

// Scheduler owns at most one auto-refresh job.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	refresh  RefreshFunc
	ctx      context.Context
	cancel   context.CancelFunc
	log      zerolog.Logger

	mu       sync.Mutex
	entry    cron.EntryID
	enabled  bool
	params   Params
	trends   []models.Trend
	lastSync time.Time
	lastErr  string
}

func New(interval time.Duration, refresh RefreshFunc) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		// A slow sync delays the next tick instead of overlapping it.
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		interval: interval,
		refresh:  refresh,
		ctx:      ctx,
		cancel:   cancel,
		log:      logger.Component("scheduler"),
	}
}

// Start starts the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Debug().Dur("interval", s.interval).Msg("Scheduler started")
}

// Stop stops the loop, cancels a running sync and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// Enable schedules auto-refresh with p, replacing any existing job.
func (s *Scheduler) Enable(p Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		s.cron.Remove(s.entry)
		s.enabled = false
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.tick)
	if err != nil {
		return fmt.Errorf("failed to schedule auto-refresh: %w", err)
	}
	s.entry = id
	s.enabled = true
	s.params = p

	s.log.Info().
		Str("niche", p.Niche).
		Str("country", p.Country).
		Str("category", p.Category).
		Dur("interval", s.interval).
		Msg("Auto-refresh enabled")
	return nil
}

// Disable removes the auto-refresh job if there is one.
func (s *Scheduler) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return
	}
	s.cron.Remove(s.entry)
	s.enabled = false
	s.log.Info().Msg("Auto-refresh disabled")
}

// Latest returns the current state and last results.
func (s *Scheduler) Latest() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Enabled:   s.enabled,
		Interval:  s.interval.String(),
		Params:    s.params,
		Trends:    append([]models.Trend{}, s.trends...),
		LastError: s.lastErr,
	}
	if !s.lastSync.IsZero() {
		t := s.lastSync
		snap.LastSync = &t
	}
	return snap
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return
	}
	p := s.params
	s.mu.Unlock()

	trends, err := s.refresh(s.ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSync = time.Now()
	if err != nil {
		s.lastErr = err.Error()
		s.log.Error().Err(err).Msg("Auto-refresh failed")
		return
	}
	s.lastErr = ""
	s.trends = trends
	s.log.Info().Int("trends", len(trends)).Msg("Auto-refresh completed")
}
