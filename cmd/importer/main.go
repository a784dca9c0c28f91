package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"boligdata/config"
	"boligdata/internal/boliga"
	"boligdata/internal/database"
	"boligdata/internal/discovery"
	"boligdata/internal/importer"
	"boligdata/internal/scheduler"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "enumerate candidates without importing")
	parallel := flag.Bool("parallel", false, "fetch details with a worker pool")
	workers := flag.Int("workers", 0, "override worker count")
	batchSize := flag.Int("batch-size", 0, "override batch size")
	limit := flag.Int("limit", 0, "cap the number of candidates (0 = no limit)")
	addressType := flag.String("address-type", "villa", "property subtype filter")
	municipalityList := flag.String("municipalities", "", "comma-separated municipality names (default: built-in Copenhagen area)")
	municipalityFile := flag.String("municipality-file", "", "JSON file with municipalities and distances")
	refreshCases := flag.Bool("refresh-cases", false, "re-import case data for properties already in the store")
	openOnly := flag.Bool("open-only", false, "with -refresh-cases, only refresh properties with open listings")
	schedule := flag.Bool("schedule", false, "run the periodic scheduler instead of a one-off import")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if *workers > 0 {
		cfg.Import.WorkerCount = *workers
	}
	if *batchSize > 0 {
		cfg.Import.BatchSize = *batchSize
	}

	municipalities, err := resolveMunicipalities(*municipalityList, *municipalityFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load municipality list")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := boliga.NewClient("", cfg.Import.RequestTimeout, logger)
	engine := discovery.NewEngine(client, cfg, logger)

	if *dryRun {
		runDryRun(ctx, engine, municipalities, *addressType, *limit, logger)
		return
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	store := database.NewStore(db, logger)
	imp := importer.New(store, client, cfg, logger)

	switch {
	case *refreshCases:
		runCaseRefresh(ctx, store, imp, *openOnly, logger)
	case *schedule:
		jobs := &importJobs{
			engine:         engine,
			importer:       imp,
			store:          store,
			municipalities: municipalities,
			addressType:    *addressType,
			logger:         logger,
		}
		sched := scheduler.New(jobs, cfg, logger)
		sched.Start(ctx)
		logger.Info("Scheduler running, waiting for interrupt")
		<-ctx.Done()
		sched.Stop()
	default:
		runImport(ctx, engine, imp, municipalities, *addressType, *limit, *parallel, logger)
	}
}

func resolveMunicipalities(list, file string) ([]string, error) {
	if file != "" {
		return config.LoadMunicipalities(file)
	}
	if list != "" {
		var names []string
		for _, name := range strings.Split(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		return names, nil
	}
	return config.DefaultMunicipalities, nil
}

func runDryRun(ctx context.Context, engine *discovery.Engine, municipalities []string, addressType string, limit int, logger *logrus.Logger) {
	candidates, err := engine.Discover(ctx, municipalities, addressType)
	if err != nil {
		logger.WithError(err).Error("Discovery interrupted")
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	preview := candidates
	if len(preview) > 20 {
		preview = preview[:20]
	}
	for _, c := range preview {
		logger.WithFields(logrus.Fields{
			"address_id":   c.AddressID,
			"municipality": c.Municipality,
			"on_market":    c.IsOnMarket,
		}).Info("Would import")
	}
	logger.WithField("candidates", len(candidates)).Info("Dry run complete, nothing written")
}

func runImport(ctx context.Context, engine *discovery.Engine, imp *importer.Importer, municipalities []string, addressType string, limit int, parallel bool, logger *logrus.Logger) {
	candidates, err := engine.Discover(ctx, municipalities, addressType)
	if err != nil {
		logger.WithError(err).Warn("Discovery interrupted, importing what was found")
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	stats, err := imp.Run(ctx, candidates, parallel)
	if err != nil {
		logger.WithError(err).Fatal("Import failed")
	}
	logSummary(logger, stats)
	if stats.Aborted {
		os.Exit(1)
	}
}

func runCaseRefresh(ctx context.Context, store *database.Store, imp *importer.Importer, openOnly bool, logger *logrus.Logger) {
	var ids []string
	var err error
	if openOnly {
		ids, err = store.PropertyIDsWithOpenCases()
	} else {
		ids, err = store.PropertyIDsWithCases()
	}
	if err != nil {
		logger.WithError(err).Fatal("Failed to list properties for case refresh")
	}

	stats, err := imp.RefreshCases(ctx, ids)
	if err != nil {
		logger.WithError(err).Fatal("Case refresh failed")
	}
	logSummary(logger, stats)
	if stats.Aborted {
		os.Exit(1)
	}
}

func logSummary(logger *logrus.Logger, stats importer.Stats) {
	logger.WithFields(logrus.Fields{
		"total":    stats.Total,
		"imported": stats.Imported,
		"skipped":  stats.Skipped,
		"errors":   stats.Errors,
		"aborted":  stats.Aborted,
	}).Info("Run summary")
}

// importJobs adapts discovery + importer to the scheduler's job surface.
type importJobs struct {
	engine         *discovery.Engine
	importer       *importer.Importer
	store          *database.Store
	municipalities []string
	addressType    string
	logger         *logrus.Logger
}

func (j *importJobs) RunFullImport(ctx context.Context) error {
	candidates, err := j.engine.Discover(ctx, j.municipalities, j.addressType)
	if err != nil {
		return err
	}
	stats, err := j.importer.Run(ctx, candidates, true)
	if err != nil {
		return err
	}
	logSummary(j.logger, stats)
	return nil
}

func (j *importJobs) RunCaseRefresh(ctx context.Context) error {
	ids, err := j.store.PropertyIDsWithOpenCases()
	if err != nil {
		return err
	}
	stats, err := j.importer.RefreshCases(ctx, ids)
	if err != nil {
		return err
	}
	logSummary(j.logger, stats)
	return nil
}
