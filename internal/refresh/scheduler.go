package refresh

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// Scheduler runs periodic feed refreshes on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	refresher *Refresher
	schedule  string
}

// NewScheduler creates a scheduler. An empty schedule disables it.
func NewScheduler(refresher *Refresher, schedule string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		schedule:  schedule,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.schedule == "" {
		util.Info("Background refresh disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.refresher.RefreshAll(ctx)
	}); err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}

	s.cron.Start()
	util.Info("Background refresh started", "schedule", s.schedule)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	util.Info("Background refresh stopped")
}
