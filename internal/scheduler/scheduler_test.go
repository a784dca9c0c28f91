package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"boligdata/config"
)

type fakeJobs struct {
	mu          sync.Mutex
	fullRuns    int
	refreshRuns int
	fullErr     error
}

func (j *fakeJobs) RunFullImport(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fullRuns++
	return j.fullErr
}

func (j *fakeJobs) RunCaseRefresh(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.refreshRuns++
	return nil
}

func (j *fakeJobs) counts() (int, int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fullRuns, j.refreshRuns
}

func testScheduler(jobs Jobs) *Scheduler {
	cfg := &config.Config{}
	cfg.Scheduler.FullImportHour = 2
	cfg.Scheduler.CaseRefreshEveryHours = 6

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return New(jobs, cfg, logger)
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 30, hour, minute, 0, 0, time.UTC)
}

func TestExecuteScheduledJobs(t *testing.T) {
	tests := []struct {
		name            string
		tick            time.Time
		wantFullRuns    int
		wantRefreshRuns int
	}{
		{name: "full import at its hour", tick: at(2, 0), wantFullRuns: 1},
		{name: "case refresh on the interval", tick: at(6, 0), wantRefreshRuns: 1},
		{name: "midnight hits the refresh interval", tick: at(0, 0), wantRefreshRuns: 1},
		{name: "off-interval hour does nothing", tick: at(5, 0)},
		{name: "mid-hour tick does nothing", tick: at(2, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeJobs{}
			s := testScheduler(jobs)

			s.executeScheduledJobs(context.Background(), tt.tick)

			fullRuns, refreshRuns := jobs.counts()
			assert.Equal(t, tt.wantFullRuns, fullRuns)
			assert.Equal(t, tt.wantRefreshRuns, refreshRuns)
		})
	}
}

func TestFullImportTakesPrecedenceOverRefresh(t *testing.T) {
	jobs := &fakeJobs{}
	s := testScheduler(jobs)
	// Hour 6 is both the full-import hour and on the refresh interval.
	s.cfg.Scheduler.FullImportHour = 6

	s.executeScheduledJobs(context.Background(), at(6, 0))

	fullRuns, refreshRuns := jobs.counts()
	assert.Equal(t, 1, fullRuns)
	assert.Equal(t, 0, refreshRuns)
}

func TestExecuteScheduledJobsSurvivesJobError(t *testing.T) {
	jobs := &fakeJobs{fullErr: errors.New("import blew up")}
	s := testScheduler(jobs)

	s.executeScheduledJobs(context.Background(), at(2, 0))
	s.executeScheduledJobs(context.Background(), at(2, 0))

	fullRuns, _ := jobs.counts()
	assert.Equal(t, 2, fullRuns, "a failing job must not wedge the scheduler")
}

func TestStartStop(t *testing.T) {
	jobs := &fakeJobs{}
	s := testScheduler(jobs)

	s.Start(context.Background())
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestStopsOnContextCancel(t *testing.T) {
	jobs := &fakeJobs{}
	s := testScheduler(jobs)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not exit on context cancellation")
	}
}
