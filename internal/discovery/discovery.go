// Package discovery enumerates candidate property IDs for a set of
// municipalities, drilling down by zip code when a result set exceeds the
// source's pagination ceiling.
package discovery

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"boligdata/config"
	"boligdata/internal/boliga"
)

// Candidate is one enumerated property. Duplicates across segments are
// expected; the store's existence check resolves them.
type Candidate struct {
	AddressID    string
	Municipality string
	IsOnMarket   bool
}

// Searcher is the slice of the API client discovery needs.
type Searcher interface {
	Search(ctx context.Context, q boliga.SearchQuery) (*boliga.SearchResponse, error)
}

// Engine walks the paginated search endpoint.
type Engine struct {
	client Searcher
	cfg    *config.Config
	logger *logrus.Logger
}

func NewEngine(client Searcher, cfg *config.Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{client: client, cfg: cfg, logger: logger}
}

// Discover enumerates all candidates for the given municipalities and
// address type. A failing municipality is logged and skipped, never fatal.
func (e *Engine) Discover(ctx context.Context, municipalities []string, addressType string) ([]Candidate, error) {
	var all []Candidate
	for _, municipality := range municipalities {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}

		candidates := e.discoverMunicipality(ctx, municipality, addressType)
		all = append(all, candidates...)

		e.logger.WithFields(logrus.Fields{
			"municipality": municipality,
			"candidates":   len(candidates),
		}).Info("Municipality enumerated")
	}
	return all, nil
}

// discoverMunicipality probes the hit count first: small result sets are
// paged directly, oversized ones are subdivided by zip code.
func (e *Engine) discoverMunicipality(ctx context.Context, municipality, addressType string) []Candidate {
	probe, err := e.client.Search(ctx, boliga.SearchQuery{
		Municipality: municipality,
		AddressType:  addressType,
		Page:         1,
		PerPage:      e.cfg.Discovery.PerPage,
	})
	if err != nil {
		e.logger.WithError(err).WithField("municipality", municipality).
			Warn("Hit-count probe failed, paging directly")
		return e.pageSegment(ctx, municipality, addressType, nil)
	}

	if probe.TotalHits <= e.cfg.Discovery.DrillDownThreshold {
		return e.pageSegment(ctx, municipality, addressType, nil)
	}

	e.logger.WithFields(logrus.Fields{
		"municipality": municipality,
		"total_hits":   probe.TotalHits,
	}).Info("Result set exceeds pagination ceiling, subdividing by zip code")

	zipCodes := e.sampleZipCodes(ctx, municipality, addressType)
	if len(zipCodes) == 0 {
		e.logger.WithField("municipality", municipality).
			Warn("Zip code discovery found nothing, paging directly")
		return e.pageSegment(ctx, municipality, addressType, nil)
	}

	var candidates []Candidate
	for _, zip := range zipCodes {
		if ctx.Err() != nil {
			break
		}
		zip := zip
		candidates = append(candidates, e.pageSegment(ctx, municipality, addressType, &zip)...)
	}
	return candidates
}

// pageSegment pages through one (municipality, type[, zip]) combination
// until the results run dry or the page ceiling is reached.
func (e *Engine) pageSegment(ctx context.Context, municipality, addressType string, zipCode *int) []Candidate {
	var candidates []Candidate
	emptyPages := 0

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			return candidates
		}

		resp, err := e.client.Search(ctx, boliga.SearchQuery{
			Municipality: municipality,
			AddressType:  addressType,
			ZipCode:      zipCode,
			Page:         page,
			PerPage:      e.cfg.Discovery.PerPage,
		})
		if errors.Is(err, boliga.ErrPageLimit) {
			return candidates
		}
		if err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{
				"municipality": municipality,
				"page":         page,
			}).Warn("Search page failed, stopping segment")
			return candidates
		}

		if len(resp.Addresses) == 0 {
			emptyPages++
			if emptyPages >= e.cfg.Discovery.MaxEmptyPages {
				return candidates
			}
			continue
		}
		emptyPages = 0

		for _, addr := range resp.Addresses {
			if addr.AddressID == "" {
				continue
			}
			name := municipality
			if addr.Municipality != nil && addr.Municipality.Name != nil {
				name = *addr.Municipality.Name
			}
			candidates = append(candidates, Candidate{
				AddressID:    addr.AddressID,
				Municipality: name,
				IsOnMarket:   addr.IsOnMarket,
			})
		}

		if page >= e.cfg.Discovery.MaxPages {
			e.logger.WithFields(logrus.Fields{
				"municipality": municipality,
				"page":         page,
			}).Warn("Reached page ceiling, segment may be incomplete")
			return candidates
		}

		if !sleepCtx(ctx, e.cfg.Discovery.PageDelay) {
			return candidates
		}
	}
}

// sampleZipCodes scans early result pages to learn which zip codes the
// municipality spans; those become the drill-down facets.
func (e *Engine) sampleZipCodes(ctx context.Context, municipality, addressType string) []int {
	seen := make(map[int]struct{})

	for page := 1; page <= e.cfg.Discovery.ZipSamplePages; page++ {
		if ctx.Err() != nil {
			break
		}

		resp, err := e.client.Search(ctx, boliga.SearchQuery{
			Municipality: municipality,
			AddressType:  addressType,
			Page:         page,
			PerPage:      e.cfg.Discovery.PerPage,
		})
		if err != nil || len(resp.Addresses) == 0 {
			break
		}
		for _, addr := range resp.Addresses {
			if addr.ZipCode != nil {
				seen[*addr.ZipCode] = struct{}{}
			}
		}

		if !sleepCtx(ctx, e.cfg.Discovery.PageDelay) {
			break
		}
	}

	zips := make([]int, 0, len(seen))
	for zip := range seen {
		zips = append(zips, zip)
	}
	sort.Ints(zips)
	return zips
}

// sleepCtx waits for the delay unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
