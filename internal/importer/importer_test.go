package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boligdata/config"
	"boligdata/internal/boliga"
	"boligdata/internal/database"
	"boligdata/internal/discovery"
	"boligdata/internal/models"
)

// fakeFetcher serves canned documents and records which IDs were fetched.
type fakeFetcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	docs  map[string]*boliga.AddressDocument
}

func (f *fakeFetcher) GetAddress(_ context.Context, addressID string) (*boliga.AddressDocument, error) {
	f.mu.Lock()
	f.calls = append(f.calls, addressID)
	f.mu.Unlock()

	if err, ok := f.fail[addressID]; ok {
		return nil, err
	}
	if doc, ok := f.docs[addressID]; ok {
		return doc, nil
	}
	return &boliga.AddressDocument{AddressID: addressID}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Import.WorkerCount = 4
	cfg.Import.BatchSize = 2
	cfg.Import.RequestDelay = 0
	cfg.Import.ProgressInterval = 100
	cfg.Import.MaxLoggedErrors = 10
	return cfg
}

func setupImporter(t *testing.T, fetcher Fetcher) (*Importer, *database.Store) {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	store := database.NewStore(db, logger)
	return New(store, fetcher, testConfig(), logger), store
}

func candidateList(ids ...string) []discovery.Candidate {
	out := make([]discovery.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, discovery.Candidate{AddressID: id})
	}
	return out
}

func TestRunImportsAndBatches(t *testing.T) {
	fetcher := &fakeFetcher{}
	imp, store := setupImporter(t, fetcher)

	// Five items against batch size two exercises both full batches and
	// the final partial flush.
	stats, err := imp.Run(context.Background(), candidateList("p-1", "p-2", "p-3", "p-4", "p-5"), false)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 5, stats.Imported)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)
	assert.False(t, stats.Aborted)

	var count int64
	require.NoError(t, store.DB().Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestRunSkipsExistingWithoutFetching(t *testing.T) {
	fetcher := &fakeFetcher{}
	imp, _ := setupImporter(t, fetcher)

	// First run inserts both properties.
	_, err := imp.Run(context.Background(), candidateList("p-1", "p-2"), false)
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.callCount())

	// Second run must skip them before the fetch stage.
	stats, err := imp.Run(context.Background(), candidateList("p-1", "p-2", "p-3"), false)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 3, fetcher.callCount(), "existing IDs must not be fetched again")
}

func TestRunDedupesCandidates(t *testing.T) {
	fetcher := &fakeFetcher{}
	imp, _ := setupImporter(t, fetcher)

	candidates := candidateList("p-1", "p-2", "p-1", "", "p-2")
	stats, err := imp.Run(context.Background(), candidates, false)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestRunCountsFetchErrors(t *testing.T) {
	fetcher := &fakeFetcher{
		fail: map[string]error{"p-2": errors.New("http 500")},
	}
	imp, store := setupImporter(t, fetcher)

	stats, err := imp.Run(context.Background(), candidateList("p-1", "p-2", "p-3"), false)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 1, stats.Errors)
	assert.False(t, stats.Aborted)

	var count int64
	require.NoError(t, store.DB().Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "failures must not block the rest of the run")
}

func TestRunParallel(t *testing.T) {
	fetcher := &fakeFetcher{
		fail: map[string]error{"p-13": errors.New("timeout")},
	}
	imp, store := setupImporter(t, fetcher)

	var candidates []discovery.Candidate
	for i := 1; i <= 30; i++ {
		candidates = append(candidates, discovery.Candidate{AddressID: fmt.Sprintf("p-%d", i)})
	}

	stats, err := imp.Run(context.Background(), candidates, true)
	require.NoError(t, err)

	assert.Equal(t, 30, stats.Total)
	assert.Equal(t, 29, stats.Imported)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 30, fetcher.callCount())

	var count int64
	require.NoError(t, store.DB().Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(29), count)
}

func TestRunAbortsOnCancelledContext(t *testing.T) {
	fetcher := &fakeFetcher{}
	imp, _ := setupImporter(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := imp.Run(ctx, candidateList("p-1", "p-2"), false)
	require.NoError(t, err)

	assert.True(t, stats.Aborted)
	assert.Equal(t, 0, stats.Imported)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestRefreshCasesReplacesCaseSet(t *testing.T) {
	open := "open"
	sold := "sold"
	caseNew := "case-new"

	fetcher := &fakeFetcher{
		docs: map[string]*boliga.AddressDocument{
			"p-1": {
				AddressID: "p-1",
				Cases: []boliga.CaseDocument{
					{CaseID: &caseNew, Status: &sold},
				},
			},
		},
	}

	imp, store := setupImporter(t, fetcher)

	// Seed the property with an open case.
	_, err := imp.Run(context.Background(), candidateList("p-1"), false)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceCases("p-1", []models.Case{
		{PropertyID: "p-1", CaseID: "case-old", Status: &open},
	}))

	stats, err := imp.RefreshCases(context.Background(), []string{"p-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 0, stats.Errors)

	var cases []models.Case
	require.NoError(t, store.DB().Find(&cases).Error)
	require.Len(t, cases, 1)
	assert.Equal(t, "case-new", cases[0].CaseID)
	assert.Equal(t, "sold", *cases[0].Status)

	// The property row itself is untouched by a case refresh.
	var propCount int64
	require.NoError(t, store.DB().Model(&models.Property{}).Count(&propCount).Error)
	assert.Equal(t, int64(1), propCount)
}

func TestRunEndToEnd(t *testing.T) {
	onMarket := true
	rooms := 4
	yearBuilt := 1970
	caseID := "C1"
	status := "open"
	price := 3000000.0
	w1, h1 := 600, 400
	w2, h2 := 1440, 960
	u1, u2 := "u1", "u2"

	fetcher := &fakeFetcher{
		docs: map[string]*boliga.AddressDocument{
			"P1": {
				AddressID:  "P1",
				IsOnMarket: &onMarket,
				Buildings: []boliga.BuildingDocument{
					{NumberOfRooms: &rooms, YearBuilt: &yearBuilt},
				},
				Cases: []boliga.CaseDocument{
					{
						CaseID:    &caseID,
						Status:    &status,
						PriceCash: &price,
						Images: []boliga.ImageDocument{
							{
								ImageSources: []boliga.ImageSource{
									{Size: &boliga.ImageSize{Width: &w1, Height: &h1}, URL: &u1},
									{Size: &boliga.ImageSize{Width: &w2, Height: &h2}, URL: &u2},
								},
							},
						},
					},
				},
			},
		},
	}
	imp, store := setupImporter(t, fetcher)

	stats, err := imp.Run(context.Background(), candidateList("P1"), false)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Imported)

	var prop models.Property
	require.NoError(t, store.DB().First(&prop, "id = ?", "P1").Error)
	require.NotNil(t, prop.IsOnMarket)
	assert.True(t, *prop.IsOnMarket)

	var mb models.MainBuilding
	require.NoError(t, store.DB().First(&mb, "property_id = ?", "P1").Error)
	assert.Equal(t, 4, *mb.NumberOfRooms)
	assert.Equal(t, 1970, *mb.YearBuilt)

	var c models.Case
	require.NoError(t, store.DB().First(&c, "case_id = ?", "C1").Error)
	assert.Equal(t, "open", *c.Status)
	assert.Equal(t, 3000000.0, *c.CurrentPrice)

	var images []models.CaseImage
	require.NoError(t, store.DB().Where("case_id = ?", c.ID).Order("width").Find(&images).Error)
	require.Len(t, images, 2)
	assert.Equal(t, 600, images[0].Width)
	assert.Equal(t, "u1", images[0].ImageURL)
	assert.Equal(t, 1440, images[1].Width)
	assert.Equal(t, "u2", images[1].ImageURL)
	for _, img := range images {
		assert.True(t, img.IsDefault)
		assert.Equal(t, 0, img.SortOrder)
	}
}

func TestRefreshCasesEmptyInput(t *testing.T) {
	fetcher := &fakeFetcher{}
	imp, _ := setupImporter(t, fetcher)

	stats, err := imp.RefreshCases(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestErrorLimiterSuppressesAfterMax(t *testing.T) {
	logger := logrus.New()
	hook := &countingHook{}
	logger.AddHook(hook)
	logger.SetLevel(logrus.WarnLevel)

	limiter := newErrorLimiter(logger, 3)
	for i := 0; i < 10; i++ {
		limiter.log(fmt.Sprintf("p-%d", i), errors.New("boom"))
	}

	// Three detail lines plus one suppression notice.
	assert.Equal(t, 4, hook.count())
}

type countingHook struct {
	mu sync.Mutex
	n  int
}

func (h *countingHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *countingHook) Fire(*logrus.Entry) error {
	h.mu.Lock()
	h.n++
	h.mu.Unlock()
	return nil
}

func (h *countingHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}
