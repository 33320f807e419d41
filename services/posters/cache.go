package posters

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"watchreel/models"
	"watchreel/services/snapshot"
	"watchreel/utils"
)

// Downloader fetches a poster image by its catalog-relative reference.
type Downloader func(ctx context.Context, posterRef string) ([]byte, error)

// Cache manages the disk-resident poster directory. Entry count never
// exceeds the configured capacity; when full, the entry with the oldest
// domain date (content release/air date, not access time) is the eviction
// candidate.
type Cache struct {
	fs        afero.Fs
	dir       string
	max       int
	snapshots *snapshot.Store
	download  Downloader

	mu sync.Mutex
}

// NewCache creates a poster cache rooted at dir with the given capacity.
func NewCache(fs afero.Fs, dir string, max int, snapshots *snapshot.Store, download Downloader) *Cache {
	return &Cache{fs: fs, dir: dir, max: max, snapshots: snapshots, download: download}
}

// Init creates the poster directory. Failure here is fatal to a run.
func (c *Cache) Init() error {
	return c.fs.MkdirAll(c.dir, 0o755)
}

// Count returns the number of cached poster files.
func (c *Cache) Count() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.countLocked()
}

func (c *Cache) countLocked() (int, error) {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n, nil
}

// Ensure caches the poster for a title if possible, computing the current
// occupancy itself. Returns true when the poster is cached afterwards.
func (c *Cache) Ensure(ctx context.Context, posterRef, filename string, domainDate time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, err := c.countLocked()
	if err != nil {
		log.Printf("[posters] cannot read cache dir: %v", err)
		return false
	}
	return c.ensureLocked(ctx, posterRef, filename, domainDate, count)
}

// EnsurePoster is the explicit-occupancy variant of Ensure: given a
// candidate poster and the current entry count, it decides whether to
// download, skip, or evict-and-replace. Returns true when the file is now
// (or already was) cached.
func (c *Cache) EnsurePoster(ctx context.Context, posterRef, filename string, domainDate time.Time, currentCount int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureLocked(ctx, posterRef, filename, domainDate, currentCount)
}

func (c *Cache) ensureLocked(ctx context.Context, posterRef, filename string, domainDate time.Time, currentCount int) bool {
	path := filepath.Join(c.dir, filename)

	// Same filename on disk means already cached; never re-download.
	if ok, _ := afero.Exists(c.fs, path); ok {
		return true
	}
	if posterRef == "" {
		return false
	}

	if currentCount >= c.max {
		oldestName, oldestTime, ok := c.oldestLocked()
		if !ok {
			log.Printf("[posters] cache full and no eviction candidate, skipping %s", filename)
			return false
		}
		// Evict only for strictly newer content.
		if !domainDate.After(oldestTime) {
			log.Printf("[posters] cache full, %s not newer than oldest entry %s, skipping", filename, oldestName)
			return false
		}
		if err := c.fs.Remove(filepath.Join(c.dir, oldestName)); err != nil {
			log.Printf("[posters] failed to evict %s: %v", oldestName, err)
			return false
		}
		log.Printf("[posters] evicted %s for %s", oldestName, filename)
	}

	return c.writeLocked(ctx, posterRef, path, domainDate)
}

func (c *Cache) writeLocked(ctx context.Context, posterRef, path string, domainDate time.Time) bool {
	data, err := c.download(ctx, posterRef)
	if err != nil {
		log.Printf("[posters] download failed for %s: %v", filepath.Base(path), err)
		return false
	}
	if err := afero.WriteFile(c.fs, path, data, 0o664); err != nil {
		log.Printf("[posters] write failed for %s: %v", filepath.Base(path), err)
		return false
	}
	_ = c.fs.Chmod(path, 0o664)
	// Stamp the domain date into the file mtime so orphaned entries keep a
	// truthful fallback timestamp after their item leaves the snapshots.
	if !domainDate.IsZero() {
		_ = c.fs.Chtimes(path, domainDate, domainDate)
	}
	return true
}

// oldestLocked finds the globally oldest cache entry. Each filename is
// resolved to a timestamp through the current snapshots, falling back to
// the file mtime for entries whose owning item is gone. An entry with no
// resolvable timestamp at all counts as infinitely old and evicts first.
func (c *Cache) oldestLocked() (string, time.Time, bool) {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil || len(entries) == 0 {
		return "", time.Time{}, false
	}

	dates := c.snapshotDates()

	var oldestName string
	var oldestTime time.Time
	found := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts, ok := dates[e.Name()]
		if !ok {
			ts = e.ModTime()
		}
		if !found || ts.Before(oldestTime) {
			oldestName = e.Name()
			oldestTime = ts
			found = true
		}
		if ts.IsZero() {
			// Cannot get older than this.
			break
		}
	}
	return oldestName, oldestTime, found
}

// snapshotDates maps cached filenames to the domain dates of the items
// that own them, across both current snapshots.
func (c *Cache) snapshotDates() map[string]time.Time {
	dates := make(map[string]time.Time)
	for _, kind := range []models.Kind{models.KindMovie, models.KindSeries} {
		items, err := c.snapshots.Load(kind)
		if err != nil {
			log.Printf("[posters] cannot load %s snapshot for timestamps: %v", kind, err)
			continue
		}
		for _, item := range items {
			ts := models.ParseDomainDate(item.DomainDate())
			if ts.IsZero() {
				continue
			}
			dates[utils.PosterFilename(item.Title)] = ts
		}
	}
	return dates
}
