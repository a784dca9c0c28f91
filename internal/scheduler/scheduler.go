// Package scheduler runs the periodic reconciliation loop: a full
// discovery+import once a day and a lighter case refresh of open listings
// every few hours. Re-running the import is the retry mechanism for
// anything a previous run lost.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"boligdata/config"
)

// Jobs is what the scheduler can trigger; the binary wires these to the
// discovery engine and import orchestrator.
type Jobs interface {
	RunFullImport(ctx context.Context) error
	RunCaseRefresh(ctx context.Context) error
}

// Scheduler manages periodic execution of import jobs.
type Scheduler struct {
	jobs     Jobs
	cfg      *config.Config
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // jobs run sequentially, never overlapping
}

func New(jobs Jobs, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		jobs:     jobs,
		cfg:      cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduling loop. Jobs inherit ctx so an interrupt
// reaches a running import.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(ctx, t)
		}
	}
}

func (s *Scheduler) executeScheduledJobs(ctx context.Context, t time.Time) {
	if t.Minute() != 0 {
		return
	}

	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	if t.Hour() == s.cfg.Scheduler.FullImportHour {
		s.logger.WithField("hour", t.Hour()).Info("Starting scheduled full import")
		if err := s.jobs.RunFullImport(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled full import failed")
		} else {
			s.logger.Info("Scheduled full import completed")
		}
		return
	}

	every := s.cfg.Scheduler.CaseRefreshEveryHours
	if every > 0 && t.Hour()%every == 0 {
		s.logger.WithField("hour", t.Hour()).Info("Starting scheduled case refresh")
		if err := s.jobs.RunCaseRefresh(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled case refresh failed")
		} else {
			s.logger.Info("Scheduled case refresh completed")
		}
	}
}

// Stop waits for a running job to finish before returning.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
