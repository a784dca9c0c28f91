package importer

import (
	"time"

	"github.com/sirupsen/logrus"
)

// tracker emits throughput and ETA lines every fixed number of items.
type tracker struct {
	logger    *logrus.Logger
	start     time.Time
	total     int
	interval  int
	processed int
}

func newTracker(logger *logrus.Logger, total, interval int) *tracker {
	if interval < 1 {
		interval = 1
	}
	return &tracker{
		logger:   logger,
		start:    time.Now(),
		total:    total,
		interval: interval,
	}
}

func (t *tracker) step(stats *Stats) {
	t.processed++
	if t.processed%t.interval == 0 {
		t.report(stats)
	}
}

func (t *tracker) report(stats *Stats) {
	elapsed := time.Since(t.start).Seconds()
	if elapsed <= 0 {
		return
	}
	rate := float64(t.processed) / elapsed

	var etaMinutes float64
	if rate > 0 {
		etaMinutes = float64(t.total-t.processed) / rate / 60
	}

	t.logger.WithFields(logrus.Fields{
		"processed":     t.processed,
		"total":         t.total,
		"imported":      stats.Imported,
		"skipped":       stats.Skipped,
		"errors":        stats.Errors,
		"items_per_sec": float64(int(rate*10)) / 10,
		"eta_minutes":   float64(int(etaMinutes*10)) / 10,
	}).Info("Import progress")
}
