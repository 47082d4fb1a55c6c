package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"MarketPulse/internal/model"
)

// Ticker pushes one round of market updates.
type Ticker interface {
	Tick(ctx context.Context) error
}

// Refresher rebuilds the served dataset.
type Refresher interface {
	Refresh(ctx context.Context) (*model.DatasetStats, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Ticker    Ticker
	Refresher Refresher
	Ctx       context.Context
	log       *zap.Logger
}

// NewScheduler creates a new Scheduler. Cron specs accept an optional seconds field.
func NewScheduler(ctx context.Context, ticker Ticker, refresher Refresher, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron: cron.New(cron.WithParser(cron.NewParser(
			cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
		Ticker:    ticker,
		Refresher: refresher,
		Ctx:       ctx,
		log:       log,
	}
}

// RegisterAll registers the broadcast tick and, when refreshCron is set, the
// dataset refresh. An empty broadcastCron disables local ticks.
func (s *Scheduler) RegisterAll(broadcastCron, refreshCron string) error {
	if broadcastCron != "" && s.Ticker != nil {
		if _, err := s.Cron.AddFunc(broadcastCron, s.broadcastTask); err != nil {
			return fmt.Errorf("register broadcast task: %w", err)
		}
	}
	if refreshCron != "" && s.Refresher != nil {
		if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Int("tasks", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and returns a context that is done once running
// tasks have finished.
func (s *Scheduler) Stop() context.Context {
	ctx := s.Cron.Stop()
	s.log.Info("scheduler stopped")
	return ctx
}

// RunBroadcastNow executes one broadcast tick immediately.
func (s *Scheduler) RunBroadcastNow() {
	s.broadcastTask()
}

func (s *Scheduler) broadcastTask() {
	if err := s.Ticker.Tick(s.Ctx); err != nil {
		s.log.Error("broadcast tick failed", zap.Error(err))
	}
}

func (s *Scheduler) refreshTask() {
	s.log.Info("running scheduled refresh")
	st, err := s.Refresher.Refresh(s.Ctx)
	if err != nil {
		s.log.Error("scheduled refresh failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled refresh done", zap.String("generation", st.GenerationID), zap.Int("points", st.PointsCount))
}
