package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"watchreel/models"
	"watchreel/services/catalog"
)

// DetailsHandler serves the on-demand item-detail lookup used by the UI
// when a title is opened. It mirrors the batch enricher's projection: the
// same detail fetch and the same projection rules, invoked per click
// instead of per run.
type DetailsHandler struct {
	client *catalog.Client
}

// NewDetailsHandler constructs a DetailsHandler.
func NewDetailsHandler(client *catalog.Client) *DetailsHandler {
	return &DetailsHandler{client: client}
}

// GetDetails handles GET /api/details/{kind}/{id}.
func (h *DetailsHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	kind, ok := parseKind(vars["kind"])
	if !ok {
		http.Error(w, "kind must be movie or series", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(vars["id"]), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	doc, err := h.client.FetchDetail(r.Context(), id, kind.IsMovie())
	if err != nil {
		log.Printf("[server] detail lookup failed kind=%s id=%d: %v", kind, id, err)
		http.Error(w, "detail lookup failed", http.StatusBadGateway)
		return
	}

	item := catalog.ItemFromDetail(doc, kind)
	if services, err := h.client.FetchProviders(r.Context(), id, kind.IsMovie()); err != nil {
		log.Printf("[server] provider lookup failed kind=%s id=%d: %v", kind, id, err)
	} else if len(services) > 0 {
		item.Services = services
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func parseKind(value string) (models.Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "movies", "film", "films":
		return models.KindMovie, true
	case "series", "tv", "show", "shows":
		return models.KindSeries, true
	default:
		return "", false
	}
}
