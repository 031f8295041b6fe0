// Package scheduler runs the periodic catalog stats snapshot.
package scheduler

import (
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/logger"
)

// StatsScheduler logs catalog totals on a cron schedule.
type StatsScheduler struct {
	db  *database.Database
	cfg config.Stats

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewStatsScheduler creates a new scheduler instance.
func NewStatsScheduler(db *database.Database, cfg config.Stats) *StatsScheduler {
	return &StatsScheduler{
		db:   db,
		cfg:  cfg,
		cron: cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the snapshot is enabled.
func (s *StatsScheduler) Start() error {
	log := logger.Get()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.cfg.Enabled {
		log.Debug().Msg("stats scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.snapshot); err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Info().Str("schedule", s.cfg.Schedule).Msg("stats scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running snapshot to finish.
func (s *StatsScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	logger.Get().Info().Msg("stats scheduler stopped")
}

func (s *StatsScheduler) snapshot() {
	log := logger.Get()
	books, readers, reviews, err := s.db.Stats()
	if err != nil {
		log.Error().Err(err).Msg("stats snapshot failed")
		return
	}
	log.Info().
		Int64("books", books).
		Int64("readers", readers).
		Int64("reviews", reviews).
		Msg("catalog stats")
}
