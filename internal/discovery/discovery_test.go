package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boligdata/config"
	"boligdata/internal/boliga"
)

// fakeSearcher delegates to a page function and records every query so
// tests can assert how the engine walked the endpoint.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []boliga.SearchQuery
	respond func(q boliga.SearchQuery) (*boliga.SearchResponse, error)
}

func (f *fakeSearcher) Search(_ context.Context, q boliga.SearchQuery) (*boliga.SearchResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.respond(q)
}

func (f *fakeSearcher) zipQueries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.queries {
		if q.ZipCode != nil {
			n++
		}
	}
	return n
}

func testEngine(client Searcher) *Engine {
	cfg := &config.Config{}
	cfg.Discovery.PerPage = 50
	cfg.Discovery.MaxPages = 200
	cfg.Discovery.DrillDownThreshold = 100
	cfg.Discovery.MaxEmptyPages = 3
	cfg.Discovery.ZipSamplePages = 5
	cfg.Discovery.PageDelay = 0

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewEngine(client, cfg, logger)
}

func addr(id string, zip int) boliga.SearchAddress {
	return boliga.SearchAddress{AddressID: id, ZipCode: &zip}
}

func emptyPage() *boliga.SearchResponse {
	return &boliga.SearchResponse{}
}

func TestDiscoverSmallMunicipality(t *testing.T) {
	client := &fakeSearcher{
		respond: func(q boliga.SearchQuery) (*boliga.SearchResponse, error) {
			if q.Page == 1 {
				return &boliga.SearchResponse{
					TotalHits: 2,
					Addresses: []boliga.SearchAddress{addr("a-1", 2900), addr("a-2", 2900)},
				}, nil
			}
			return emptyPage(), nil
		},
	}
	engine := testEngine(client)

	candidates, err := engine.Discover(context.Background(), []string{"Gentofte"}, "villa")
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, "a-1", candidates[0].AddressID)
	assert.Equal(t, "Gentofte", candidates[0].Municipality)
	assert.Equal(t, 0, client.zipQueries(), "small result sets must not subdivide")
}

func TestDiscoverAtThresholdPagesDirectly(t *testing.T) {
	client := &fakeSearcher{
		respond: func(q boliga.SearchQuery) (*boliga.SearchResponse, error) {
			if q.Page == 1 {
				return &boliga.SearchResponse{
					TotalHits: 100, // exactly at the threshold
					Addresses: []boliga.SearchAddress{addr("a-1", 2900)},
				}, nil
			}
			return emptyPage(), nil
		},
	}
	engine := testEngine(client)

	candidates, err := engine.Discover(context.Background(), []string{"Gentofte"}, "villa")
	require.NoError(t, err)

	assert.Len(t, candidates, 1)
	assert.Equal(t, 0, client.zipQueries())
}

func TestDiscoverDrillsDownAboveThreshold(t *testing.T) {
	client := &fakeSearcher{
		respond: func(q boliga.SearchQuery) (*boliga.SearchResponse, error) {
			if q.ZipCode == nil {
				// Probe and zip sampling: one page spanning two zips.
				if q.Page == 1 {
					return &boliga.SearchResponse{
						TotalHits: 101, // just over the threshold
						Addresses: []boliga.SearchAddress{addr("a-1", 2900), addr("a-2", 2920)},
					}, nil
				}
				return emptyPage(), nil
			}

			if q.Page > 1 {
				return emptyPage(), nil
			}
			switch *q.ZipCode {
			case 2900:
				return &boliga.SearchResponse{Addresses: []boliga.SearchAddress{addr("a-1", 2900)}}, nil
			case 2920:
				return &boliga.SearchResponse{Addresses: []boliga.SearchAddress{addr("a-2", 2920)}}, nil
			}
			return emptyPage(), nil
		},
	}
	engine := testEngine(client)

	candidates, err := engine.Discover(context.Background(), []string{"København"}, "villa")
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, "a-1", candidates[0].AddressID)
	assert.Equal(t, "a-2", candidates[1].AddressID)
	assert.Greater(t, client.zipQueries(), 0, "oversized result sets must subdivide by zip")
}

func TestPageSegmentStopsAfterConsecutiveEmptyPages(t *testing.T) {
	var maxPage int
	client := &fakeSearcher{
		respond: func(q boliga.SearchQuery) (*boliga.SearchResponse, error) {
			if q.Page > maxPage {
				maxPage = q.Page
			}
			switch q.Page {
			case 1, 3:
				return &boliga.SearchResponse{
					TotalHits: 2,
					Addresses: []boliga.SearchAddress{addr("a", 2900)},
				}, nil
			}
			// Pages 2 and 4+ are empty: the single gap at page 2 must not
			// terminate the walk, three in a row from page 4 must.
			return emptyPage(), nil
		},
	}
	engine := testEngine(client)

	candidates := engine.pageSegment(context.Background(), "Gentofte", "villa", nil)

	assert.Len(t, candidates, 2)
	assert.Equal(t, 6, maxPage, "stop after three consecutive empty pages")
}

func TestPageSegmentStopsOnPageLimit(t *testing.T) {
	client := &fakeSearcher{
		respond: func(q boliga.SearchQuery) (*boliga.SearchResponse, error) {
			if q.Page <= 2 {
				return &boliga.SearchResponse{
					Addresses: []boliga.SearchAddress{addr("a", 2900)},
				}, nil
			}
			return nil, boliga.ErrPageLimit
		},
	}
	engine := testEngine(client)

	candidates := engine.pageSegment(context.Background(), "Gentofte", "villa", nil)
	assert.Len(t, candidates, 2, "results before the page limit are kept")
}

func TestPageSegmentPageCeiling(t *testing.T) {
	client := &fakeSearcher{
		respond: func(q boliga.SearchQuery) (*boliga.SearchResponse, error) {
			// Endless results: only the ceiling can stop this segment.
			return &boliga.SearchResponse{
				Addresses: []boliga.SearchAddress{addr("a", 2900)},
			}, nil
		},
	}
	engine := testEngine(client)
	engine.cfg.Discovery.MaxPages = 4

	candidates := engine.pageSegment(context.Background(), "Gentofte", "villa", nil)
	assert.Len(t, candidates, 4)
}

func TestDiscoverContinuesPastFailingMunicipality(t *testing.T) {
	client := &fakeSearcher{
		respond: func(q boliga.SearchQuery) (*boliga.SearchResponse, error) {
			if q.Municipality == "Broken" {
				return nil, errors.New("http 503")
			}
			if q.Page == 1 {
				return &boliga.SearchResponse{
					TotalHits: 1,
					Addresses: []boliga.SearchAddress{addr("a-1", 2900)},
				}, nil
			}
			return emptyPage(), nil
		},
	}
	engine := testEngine(client)

	candidates, err := engine.Discover(context.Background(), []string{"Broken", "Gentofte"}, "villa")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "Gentofte", candidates[0].Municipality)
}

func TestDiscoverStopsOnCancelledContext(t *testing.T) {
	client := &fakeSearcher{
		respond: func(q boliga.SearchQuery) (*boliga.SearchResponse, error) {
			return emptyPage(), nil
		},
	}
	engine := testEngine(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidates, err := engine.Discover(ctx, []string{"Gentofte"}, "villa")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, candidates)
}
