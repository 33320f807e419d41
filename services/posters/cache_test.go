package posters

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchreel/models"
	"watchreel/services/snapshot"
	"watchreel/utils"
)

type fakeDownloader struct {
	calls int
	fail  bool
}

func (d *fakeDownloader) download(ctx context.Context, posterRef string) ([]byte, error) {
	d.calls++
	if d.fail {
		return nil, fmt.Errorf("download failed")
	}
	return []byte("image-bytes"), nil
}

func newTestCache(t *testing.T, max int) (*Cache, *fakeDownloader, afero.Fs, *snapshot.Store) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store := snapshot.NewStore(fs, "data")
	dl := &fakeDownloader{}
	cache := NewCache(fs, "data/posters", max, store, dl.download)
	require.NoError(t, cache.Init())
	return cache, dl, fs, store
}

func date(value string) time.Time {
	return models.ParseDomainDate(value)
}

func TestEnsurePosterDownloadsAndWrites(t *testing.T) {
	cache, dl, fs, _ := newTestCache(t, 10)

	ok := cache.EnsurePoster(context.Background(), "/x.jpg", "heat.jpg", date("2024-01-01"), 0)
	assert.True(t, ok)
	assert.Equal(t, 1, dl.calls)

	data, err := afero.ReadFile(fs, "data/posters/heat.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)

	// Domain date persisted into the file mtime.
	fi, err := fs.Stat("data/posters/heat.jpg")
	require.NoError(t, err)
	assert.Equal(t, date("2024-01-01"), fi.ModTime())
}

func TestEnsurePosterIdempotent(t *testing.T) {
	cache, dl, _, _ := newTestCache(t, 10)

	require.True(t, cache.EnsurePoster(context.Background(), "/x.jpg", "heat.jpg", date("2024-01-01"), 0))
	// Second call with the file on disk: no new download, still true.
	require.True(t, cache.EnsurePoster(context.Background(), "/x.jpg", "heat.jpg", date("2024-01-01"), 1))
	assert.Equal(t, 1, dl.calls)
}

func TestEnsurePosterEmptyRef(t *testing.T) {
	cache, dl, _, _ := newTestCache(t, 10)

	assert.False(t, cache.EnsurePoster(context.Background(), "", "heat.jpg", date("2024-01-01"), 0))
	assert.Zero(t, dl.calls)
}

func TestEnsurePosterDownloadFailure(t *testing.T) {
	cache, dl, fs, _ := newTestCache(t, 10)
	dl.fail = true

	assert.False(t, cache.EnsurePoster(context.Background(), "/x.jpg", "heat.jpg", date("2024-01-01"), 0))
	ok, _ := afero.Exists(fs, "data/posters/heat.jpg")
	assert.False(t, ok)
}

func TestCapacityInvariant(t *testing.T) {
	const max = 5
	cache, _, _, _ := newTestCache(t, max)

	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("movie-%02d.jpg", i)
		day := fmt.Sprintf("2024-01-%02d", i%27+1)
		cache.Ensure(context.Background(), "/p.jpg", name, date(day))

		count, err := cache.Count()
		require.NoError(t, err)
		assert.LessOrEqual(t, count, max, "cache exceeded capacity after insert %d", i)
	}
}

func TestEvictionPrefersOldestDomainDate(t *testing.T) {
	cache, dl, fs, store := newTestCache(t, 3)
	ctx := context.Background()

	items := []models.EnrichedItem{
		{ID: "movie-1", Title: "Old Movie", ReleaseDate: "2018-01-01", IsMovie: true},
		{ID: "movie-2", Title: "Mid Movie", ReleaseDate: "2021-01-01", IsMovie: true},
		{ID: "movie-3", Title: "New Movie", ReleaseDate: "2024-01-01", IsMovie: true},
	}
	require.NoError(t, store.Write(models.KindMovie, items))

	for _, item := range items {
		require.True(t, cache.Ensure(ctx, "/p.jpg", utils.PosterFilename(item.Title), date(item.ReleaseDate)))
	}
	require.Equal(t, 3, dl.calls)

	// A candidate not strictly newer than the oldest entry is rejected.
	assert.False(t, cache.EnsurePoster(ctx, "/p.jpg", "older.jpg", date("2017-06-01"), 3))
	assert.False(t, cache.EnsurePoster(ctx, "/p.jpg", "same-age.jpg", date("2018-01-01"), 3))
	count, err := cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, dl.calls)

	// A strictly newer candidate evicts exactly the oldest entry.
	assert.True(t, cache.EnsurePoster(ctx, "/p.jpg", "brand-new.jpg", date("2025-01-01"), 3))
	count, err = cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	evicted, _ := afero.Exists(fs, "data/posters/"+utils.PosterFilename("Old Movie"))
	assert.False(t, evicted, "oldest entry should have been evicted")
	added, _ := afero.Exists(fs, "data/posters/brand-new.jpg")
	assert.True(t, added)
	kept, _ := afero.Exists(fs, "data/posters/"+utils.PosterFilename("Mid Movie"))
	assert.True(t, kept)
}

func TestEvictionFallsBackToModTimeForOrphans(t *testing.T) {
	cache, _, fs, _ := newTestCache(t, 2)
	ctx := context.Background()

	// Two orphaned files referenced by no snapshot; timestamps come from
	// their mtimes.
	require.NoError(t, afero.WriteFile(fs, "data/posters/orphan-old.jpg", []byte("x"), 0o664))
	require.NoError(t, fs.Chtimes("data/posters/orphan-old.jpg", date("2015-01-01"), date("2015-01-01")))
	require.NoError(t, afero.WriteFile(fs, "data/posters/orphan-new.jpg", []byte("x"), 0o664))
	require.NoError(t, fs.Chtimes("data/posters/orphan-new.jpg", date("2022-01-01"), date("2022-01-01")))

	require.True(t, cache.EnsurePoster(ctx, "/p.jpg", "fresh.jpg", date("2024-01-01"), 2))

	gone, _ := afero.Exists(fs, "data/posters/orphan-old.jpg")
	assert.False(t, gone, "older orphan should be evicted first")
	kept, _ := afero.Exists(fs, "data/posters/orphan-new.jpg")
	assert.True(t, kept)
}

func TestCount(t *testing.T) {
	cache, _, fs, _ := newTestCache(t, 10)

	count, err := cache.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, afero.WriteFile(fs, "data/posters/a.jpg", []byte("x"), 0o664))
	require.NoError(t, afero.WriteFile(fs, "data/posters/b.jpg", []byte("x"), 0o664))

	count, err = cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
