package catalog

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"watchreel/models"
	"watchreel/services/posters"
	"watchreel/services/snapshot"
	"watchreel/utils"
)

// Pipeline runs one ingestion pass per kind: discover popular titles,
// classify, enrich, cache posters, and atomically replace the snapshot.
// Per-title failures are logged and absorbed; only output-directory
// failures are fatal.
type Pipeline struct {
	client  *Client
	store   *snapshot.Store
	posters *posters.Cache

	targetCount int
	maxPages    int
	workers     int

	now func() time.Time
}

// NewPipeline creates a pipeline. workers <= 1 keeps enrichment strictly
// sequential; higher values fan out per-title enrichment behind a bounded
// pool while the shared request limiter still paces the network.
func NewPipeline(client *Client, store *snapshot.Store, cache *posters.Cache, targetCount, maxPages, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		client:      client,
		store:       store,
		posters:     cache,
		targetCount: targetCount,
		maxPages:    maxPages,
		workers:     workers,
		now:         time.Now,
	}
}

// rankedItem tags an assembled item with its ranking signal. The priority
// orders the snapshot and is stripped before serialization.
type rankedItem struct {
	item     models.EnrichedItem
	priority int
}

// Run processes the given kinds in order. It returns the first fatal
// error; per-title errors never surface here.
func (p *Pipeline) Run(ctx context.Context, kinds []models.Kind) error {
	runID := uuid.NewString()[:8]
	if err := p.posters.Init(); err != nil {
		return fmt.Errorf("create poster dir: %w", err)
	}

	for _, kind := range kinds {
		start := p.now()
		if err := p.runKind(ctx, runID, kind); err != nil {
			return err
		}
		log.Printf("[pipeline] run=%s kind=%s done in %dms", runID, kind, time.Since(start).Milliseconds())
	}
	return nil
}

func (p *Pipeline) runKind(ctx context.Context, runID string, kind models.Kind) error {
	records := p.client.FetchPopular(ctx, kind, p.targetCount, p.maxPages)
	log.Printf("[pipeline] run=%s kind=%s fetched %d records", runID, kind, len(records))

	if kind.IsMovie() {
		records = p.filterRecent(records)
	}

	ranked := p.enrichAll(ctx, kind, records)

	// Stable sort: high priority first, input order preserved within each
	// priority band.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].priority > ranked[j].priority
	})

	items := make([]models.EnrichedItem, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, r.item)
	}

	if err := p.store.Write(kind, items); err != nil {
		return fmt.Errorf("write %s snapshot: %w", kind, err)
	}
	log.Printf("[pipeline] run=%s kind=%s wrote %d items", runID, kind, len(items))
	return nil
}

// filterRecent drops films outside the ten-year window before any detail
// fetch is spent on them.
func (p *Pipeline) filterRecent(records []models.CatalogRecord) []models.CatalogRecord {
	now := p.now()
	out := records[:0]
	for _, rec := range records {
		if !IsRecent(rec, now) {
			log.Printf("[pipeline] skipping %q: outside release window", rec.DisplayTitle())
			continue
		}
		out = append(out, rec)
	}
	return out
}

// enrichAll enriches every record, preserving input order in the result
// regardless of completion order. Excluded titles come back as nil slots.
func (p *Pipeline) enrichAll(ctx context.Context, kind models.Kind, records []models.CatalogRecord) []rankedItem {
	results := make([]*rankedItem, len(records))

	if p.workers <= 1 {
		for i, rec := range records {
			results[i] = p.processTitle(ctx, kind, rec)
		}
	} else {
		pl := pool.New().WithMaxGoroutines(p.workers)
		for i, rec := range records {
			pl.Go(func() {
				results[i] = p.processTitle(ctx, kind, rec)
			})
		}
		pl.Wait()
	}

	ranked := make([]rankedItem, 0, len(records))
	for _, r := range results {
		if r != nil {
			ranked = append(ranked, *r)
		}
	}
	return ranked
}

// processTitle builds one snapshot item: base fields from the catalog
// record, extended fields from the detail document when the fetch
// succeeds. A nil return means the title is excluded from the snapshot.
func (p *Pipeline) processTitle(ctx context.Context, kind models.Kind, rec models.CatalogRecord) *rankedItem {
	isMovie := kind.IsMovie()
	title := rec.DisplayTitle()

	doc, err := p.client.FetchDetail(ctx, rec.ID, isMovie)
	if err != nil {
		log.Printf("[pipeline] detail fetch failed for %q, keeping base fields: %v", title, err)
	}

	// Age-rated-out titles never reach the snapshot. The check needs the
	// detail document; a failed fetch cannot exclude.
	if doc != nil {
		if isMovie && IsRatedGOrPG(doc) {
			log.Printf("[pipeline] skipping %q: rated G/PG", title)
			return nil
		}
		if !isMovie && IsRatedTVGOrTVPG(doc) {
			log.Printf("[pipeline] skipping %q: rated TV-G/TV-PG", title)
			return nil
		}
	}

	item := newItem(kind, rec.ID, title, rec.PosterPath, rec.ReleaseDate, rec.FirstAirDate)
	ApplyDetail(&item, doc, isMovie)

	if services, err := p.client.FetchProviders(ctx, rec.ID, isMovie); err != nil {
		log.Printf("[pipeline] provider fetch failed for %q: %v", title, err)
	} else if len(services) > 0 {
		item.Services = services
	}

	// Poster caching is a side effect of assembly, independent of the
	// snapshot write.
	if rec.PosterPath != "" {
		filename := utils.PosterFilename(title)
		domainDate := models.ParseDomainDate(item.DomainDate())
		p.posters.Ensure(ctx, rec.PosterPath, filename, domainDate)
	}

	return &rankedItem{
		item:     item,
		priority: Priority(rec, isMovie),
	}
}

// newItem builds the base snapshot shape shared by the batch pipeline and
// the single-title lookup.
func newItem(kind models.Kind, externalID int64, title, posterPath, releaseDate, firstAirDate string) models.EnrichedItem {
	item := models.EnrichedItem{
		ID:         fmt.Sprintf("%s-%d", kind, externalID),
		Title:      title,
		ExternalID: externalID,
		ListType:   "top",
		Services:   []string{},
		IsMovie:    kind.IsMovie(),
	}
	if posterPath != "" {
		item.PosterPath = &posterPath
	}
	if kind.IsMovie() {
		item.ReleaseDate = releaseDate
	} else {
		item.FirstAirDate = firstAirDate
	}
	return item
}
