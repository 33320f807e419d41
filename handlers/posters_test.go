package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
)

func newPostersRouter(t *testing.T) (*mux.Router, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	r := mux.NewRouter()
	r.HandleFunc("/api/posters/{file}", NewPostersHandler(fs, "data/posters").GetPoster).Methods("GET")
	return r, fs
}

func TestGetPoster(t *testing.T) {
	router, fs := newPostersRouter(t)
	if err := afero.WriteFile(fs, "data/posters/heat.jpg", []byte("jpeg-bytes"), 0o664); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/posters/heat.jpg", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "jpeg-bytes" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Fatalf("unexpected cache header: %q", cc)
	}
}

func TestGetPosterVersionedRequestIsImmutable(t *testing.T) {
	router, fs := newPostersRouter(t)
	if err := afero.WriteFile(fs, "data/posters/heat.jpg", []byte("jpeg-bytes"), 0o664); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/posters/heat.jpg?v=3", nil))

	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=31536000, immutable" {
		t.Fatalf("unexpected cache header: %q", cc)
	}
}

func TestGetPosterMissing(t *testing.T) {
	router, _ := newPostersRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/posters/nope.jpg", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
