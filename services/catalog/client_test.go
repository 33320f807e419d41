package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"watchreel/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, srv.URL+"/img", "test-token", "US", 0, srv.Client())
	return client, srv
}

func writePage(w http.ResponseWriter, records []models.CatalogRecord) {
	json.NewEncoder(w).Encode(pageResponse{Results: records})
}

func makeRecords(start, n int) []models.CatalogRecord {
	out := make([]models.CatalogRecord, 0, n)
	for i := 0; i < n; i++ {
		id := int64(start + i)
		out = append(out, models.CatalogRecord{
			ID:          id,
			Title:       fmt.Sprintf("Movie %d", id),
			ReleaseDate: "2024-01-01",
		})
	}
	return out
}

func TestFetchPopularCollectsAcrossPages(t *testing.T) {
	var pagesServed []int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("missing bearer auth, got %q", auth)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pagesServed = append(pagesServed, page)
		writePage(w, makeRecords(page*100, pageSize))
	}))

	records := client.FetchPopular(context.Background(), models.KindMovie, 50, 10)
	if len(records) != 50 {
		t.Fatalf("expected 50 records, got %d", len(records))
	}
	if len(pagesServed) != 3 {
		t.Fatalf("expected 3 page requests, got %v", pagesServed)
	}
}

func TestFetchPopularStopsOnEmptyPage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			writePage(w, nil)
			return
		}
		writePage(w, makeRecords(0, pageSize))
	}))

	records := client.FetchPopular(context.Background(), models.KindSeries, 100, 10)
	if len(records) != pageSize {
		t.Fatalf("expected %d records, got %d", pageSize, len(records))
	}
}

func TestFetchPopularReturnsPartialOnPageError(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 2 {
			http.Error(w, "upstream busted", http.StatusInternalServerError)
			return
		}
		writePage(w, makeRecords(page*100, pageSize))
	}))

	records := client.FetchPopular(context.Background(), models.KindMovie, 100, 10)
	if len(records) != pageSize {
		t.Fatalf("expected partial result of %d records, got %d", pageSize, len(records))
	}
	// No retry: the failed page ends pagination.
	if requests != 2 {
		t.Fatalf("expected exactly 2 requests, got %d", requests)
	}
}

func TestFetchPopularMovieQueryRestrictions(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("with_original_language") != "en" {
			t.Errorf("missing language restriction: %v", q)
		}
		if q.Get("sort_by") != "popularity.desc" {
			t.Errorf("missing popularity sort: %v", q)
		}
		if q.Get("primary_release_date.gte") == "" || q.Get("primary_release_date.lte") == "" {
			t.Errorf("missing release window: %v", q)
		}
		writePage(w, nil)
	}))

	client.FetchPopular(context.Background(), models.KindMovie, 10, 1)
}

func TestFetchDetailMovie(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if inc := r.URL.Query().Get("append_to_response"); inc != "credits,keywords,videos,recommendations,similar,translations,release_dates" {
			t.Errorf("unexpected includes: %s", inc)
		}
		json.NewEncoder(w).Encode(models.DetailDocument{ID: 42, Title: "Blade Runner 2049"})
	}))

	doc, err := client.FetchDetail(context.Background(), 42, true)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Blade Runner 2049" {
		t.Fatalf("unexpected detail: %+v", doc)
	}
}

func TestFetchDetailErrorYieldsNil(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	doc, err := client.FetchDetail(context.Background(), 7, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if doc != nil {
		t.Fatalf("expected nil document, got %+v", doc)
	}
}

func TestFetchProvidersFlatrateOnly(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/9/watch/providers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"results":{
			"US":{"flatrate":[{"provider_name":"Netflix"},{"provider_name":"Shudder"}],
			      "rent":[{"provider_name":"Apple TV"}]},
			"GB":{"flatrate":[{"provider_name":"NOW"}]}
		}}`)
	}))

	keys, err := client.FetchProviders(context.Background(), 9, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "netflix" || keys[1] != "shudder" {
		t.Fatalf("unexpected service keys: %v", keys)
	}
}

func TestFetchProvidersMissingRegion(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":{}}`)
	}))

	keys, err := client.FetchProviders(context.Background(), 9, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestDownloadPosterRejectsNonImage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"not found"}`)
	}))

	if _, err := client.DownloadPoster(context.Background(), "/poster.jpg"); err == nil {
		t.Fatal("expected non-image payload to be rejected")
	}
}

func TestDownloadPosterAcceptsImage(t *testing.T) {
	// Minimal JPEG magic prefix is enough for content detection.
	payload := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img/poster.jpg" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write(payload)
	}))

	data, err := client.DownloadPoster(context.Background(), "/poster.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != len(payload) {
		t.Fatalf("expected %d bytes, got %d", len(payload), len(data))
	}
}
