// Package importer drives detail-fetch, mapping and persistence across a
// list of candidate properties. Fetches may run on a bounded worker pool;
// mapping and every store write stay on the coordinating goroutine so the
// store connection is never shared across workers.
package importer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"boligdata/config"
	"boligdata/internal/boliga"
	"boligdata/internal/database"
	"boligdata/internal/discovery"
	"boligdata/internal/mapper"
)

// Fetcher is the slice of the API client the orchestrator needs; tests
// substitute a fake.
type Fetcher interface {
	GetAddress(ctx context.Context, addressID string) (*boliga.AddressDocument, error)
}

// Stats summarizes one run.
type Stats struct {
	Total    int
	Imported int
	Skipped  int
	Errors   int
	Aborted  bool
}

type Importer struct {
	store   *database.Store
	fetcher Fetcher
	cfg     *config.Config
	logger  *logrus.Logger
}

func New(store *database.Store, fetcher Fetcher, cfg *config.Config, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Importer{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

type fetchResult struct {
	id  string
	doc *boliga.AddressDocument
	err error
}

// Run imports the candidate list. IDs already present in the store are
// skipped without fetching. With parallel set, a worker pool performs the
// fetches; results are consumed in completion order.
func (im *Importer) Run(ctx context.Context, candidates []discovery.Candidate, parallel bool) (Stats, error) {
	ids := dedupeIDs(candidates)
	stats := Stats{Total: len(ids)}

	existing, err := im.store.ExistingIDs(ids)
	if err != nil {
		return stats, err
	}

	var toImport []string
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			stats.Skipped++
			continue
		}
		toImport = append(toImport, id)
	}

	im.logger.WithFields(logrus.Fields{
		"candidates": len(ids),
		"skipped":    stats.Skipped,
		"to_import":  len(toImport),
	}).Info("Starting import")

	if len(toImport) == 0 {
		return stats, nil
	}

	if parallel {
		im.runParallel(ctx, toImport, &stats)
	} else {
		im.runSequential(ctx, toImport, &stats)
	}

	if ctx.Err() != nil {
		stats.Aborted = true
	}

	im.logger.WithFields(logrus.Fields{
		"imported": stats.Imported,
		"skipped":  stats.Skipped,
		"errors":   stats.Errors,
		"aborted":  stats.Aborted,
	}).Info("Import finished")
	return stats, nil
}

func (im *Importer) runSequential(ctx context.Context, ids []string, stats *Stats) {
	prog := newTracker(im.logger, len(ids), im.cfg.Import.ProgressInterval)
	errLog := newErrorLimiter(im.logger, im.cfg.Import.MaxLoggedErrors)

	var batch []*mapper.Bundle
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		doc, err := im.fetcher.GetAddress(ctx, id)
		if err != nil {
			stats.Errors++
			errLog.log(id, err)
			prog.step(stats)
			continue
		}

		batch = append(batch, mapper.Map(doc))
		if len(batch) >= im.cfg.Import.BatchSize {
			im.commitBatch(batch, stats)
			batch = nil
		}
		prog.step(stats)

		sleepCtx(ctx, im.cfg.Import.RequestDelay)
	}

	// Best-effort flush, also on interrupt.
	im.commitBatch(batch, stats)
}

func (im *Importer) runParallel(ctx context.Context, ids []string, stats *Stats) {
	jobs := make(chan string)
	results := make(chan fetchResult)

	var wg sync.WaitGroup
	for w := 0; w < im.cfg.Import.WorkerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				doc, err := im.fetcher.GetAddress(ctx, id)
				select {
				case results <- fetchResult{id: id, doc: doc, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// An interrupt stops submission; workers drain naturally.
	go func() {
		defer close(jobs)
		for _, id := range ids {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	prog := newTracker(im.logger, len(ids), im.cfg.Import.ProgressInterval)
	errLog := newErrorLimiter(im.logger, im.cfg.Import.MaxLoggedErrors)

	// Single consumer: mapping and writes never leave this goroutine.
	var batch []*mapper.Bundle
	for res := range results {
		if res.err != nil {
			stats.Errors++
			errLog.log(res.id, res.err)
			prog.step(stats)
			continue
		}

		batch = append(batch, mapper.Map(res.doc))
		if len(batch) >= im.cfg.Import.BatchSize {
			im.commitBatch(batch, stats)
			batch = nil
		}
		prog.step(stats)
	}

	// Completed-but-uncommitted items are committed even when the run
	// was interrupted.
	im.commitBatch(batch, stats)
}

// commitBatch writes one batch in a single transaction. Failure loses
// this batch only; the next full run's skip-if-exists check picks the
// stable entities back up.
func (im *Importer) commitBatch(batch []*mapper.Bundle, stats *Stats) {
	if len(batch) == 0 {
		return
	}
	if err := im.store.WriteBatch(batch); err != nil {
		stats.Errors += len(batch)
		im.logger.WithError(err).WithField("batch_size", len(batch)).
			Error("Batch commit failed, rolled back")
		return
	}
	stats.Imported += len(batch)
	im.logger.WithFields(logrus.Fields{
		"batch_size": len(batch),
		"imported":   stats.Imported,
	}).Debug("Committed batch")
}

// RefreshCases re-fetches the given properties and swaps their case sets,
// one commit per property. Property rows themselves are left untouched.
func (im *Importer) RefreshCases(ctx context.Context, ids []string) (Stats, error) {
	stats := Stats{Total: len(ids)}
	if len(ids) == 0 {
		return stats, nil
	}

	im.logger.WithField("properties", len(ids)).Info("Starting case refresh")

	jobs := make(chan string)
	results := make(chan fetchResult)

	var wg sync.WaitGroup
	for w := 0; w < im.cfg.Import.WorkerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				doc, err := im.fetcher.GetAddress(ctx, id)
				select {
				case results <- fetchResult{id: id, doc: doc, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	prog := newTracker(im.logger, len(ids), im.cfg.Import.ProgressInterval)
	errLog := newErrorLimiter(im.logger, im.cfg.Import.MaxLoggedErrors)

	for res := range results {
		if res.err != nil {
			stats.Errors++
			errLog.log(res.id, res.err)
			prog.step(&stats)
			continue
		}

		cases := mapper.MapCases(res.id, res.doc.Cases)
		if err := im.store.ReplaceCases(res.id, cases); err != nil {
			stats.Errors++
			errLog.log(res.id, err)
		} else {
			stats.Imported++
		}
		prog.step(&stats)
	}

	if ctx.Err() != nil {
		stats.Aborted = true
	}

	im.logger.WithFields(logrus.Fields{
		"refreshed": stats.Imported,
		"errors":    stats.Errors,
		"aborted":   stats.Aborted,
	}).Info("Case refresh finished")
	return stats, nil
}

// dedupeIDs flattens candidates to unique IDs, preserving first-seen
// order. Overlapping discovery segments produce duplicates.
func dedupeIDs(candidates []discovery.Candidate) []string {
	seen := make(map[string]struct{}, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.AddressID == "" {
			continue
		}
		if _, ok := seen[c.AddressID]; ok {
			continue
		}
		seen[c.AddressID] = struct{}{}
		ids = append(ids, c.AddressID)
	}
	return ids
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
