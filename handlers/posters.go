package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
)

// PostersHandler serves cached poster files. Clients pass an explicit
// cache version as the v query parameter; a versioned request is safe to
// cache aggressively because bumping the version forces a re-fetch.
type PostersHandler struct {
	fs  afero.Fs
	dir string
}

// NewPostersHandler constructs a PostersHandler over the poster directory.
func NewPostersHandler(fs afero.Fs, dir string) *PostersHandler {
	return &PostersHandler{fs: fs, dir: dir}
}

// GetPoster handles GET /api/posters/{file}.
func (h *PostersHandler) GetPoster(w http.ResponseWriter, r *http.Request) {
	name := path.Base(mux.Vars(r)["file"])
	if name == "." || name == "/" || strings.Contains(name, "..") {
		http.Error(w, "invalid poster name", http.StatusBadRequest)
		return
	}

	f, err := h.fs.Open(path.Join(h.dir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if r.URL.Query().Get("v") != "" {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	http.ServeContent(w, r, name, fi.ModTime(), f)
}
