package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/time/rate"

	"watchreel/models"
)

// pageSize is fixed by the external API; every listing page carries at
// most this many records.
const pageSize = 20

// Client is a minimal media-catalog API client (bearer auth, JSON GETs).
// All requests share one limiter so every network operation is spaced by
// the configured delay, including poster downloads.
type Client struct {
	baseURL      string
	imageBaseURL string
	token        string
	region       string
	httpc        *http.Client
	limiter      *rate.Limiter
}

// NewClient creates a catalog client. A zero delay disables request
// spacing (used by tests).
func NewClient(baseURL, imageBaseURL, token, region string, delay time.Duration, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		token:        token,
		region:       region,
		httpc:        httpc,
		limiter:      rate.NewLimiter(limit, 1),
	}
}

// Region returns the configured watch-provider region.
func (c *Client) Region() string { return c.region }

func (c *Client) doGET(ctx context.Context, path string, q url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("catalog api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catalog api %s: %s - %s", path, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type pageResponse struct {
	Page       int                    `json:"page"`
	Results    []models.CatalogRecord `json:"results"`
	TotalPages int                    `json:"total_pages"`
}

// FetchPopular collects up to targetCount popular records for a kind, one
// page at a time. Films are restricted to primary-language English and a
// release window of the last ten years, sorted by descending popularity;
// series use the provider's generic popular ordering. A page error ends
// pagination early and returns what was accumulated so far.
func (c *Client) FetchPopular(ctx context.Context, kind models.Kind, targetCount, maxPages int) []models.CatalogRecord {
	records := make([]models.CatalogRecord, 0, targetCount)

	for page := 1; page <= maxPages && len(records) < targetCount; page++ {
		var resp pageResponse
		var err error
		if kind.IsMovie() {
			err = c.doGET(ctx, "/discover/movie", c.discoverMovieQuery(page), &resp)
		} else {
			q := url.Values{}
			q.Set("page", fmt.Sprintf("%d", page))
			err = c.doGET(ctx, "/tv/popular", q, &resp)
		}
		if err != nil {
			log.Printf("[catalog] %s page %d fetch failed, returning %d records: %v", kind, page, len(records), err)
			break
		}
		if len(resp.Results) == 0 {
			break
		}
		for _, rec := range resp.Results {
			records = append(records, rec)
			if len(records) >= targetCount {
				break
			}
		}
	}

	return records
}

func (c *Client) discoverMovieQuery(page int) url.Values {
	now := time.Now()
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("sort_by", "popularity.desc")
	q.Set("with_original_language", "en")
	q.Set("primary_release_date.gte", now.AddDate(-10, 0, 0).Format("2006-01-02"))
	q.Set("primary_release_date.lte", now.Format("2006-01-02"))
	return q
}

// FetchDetail retrieves the full per-title detail document with embedded
// sub-resources in one request. A failed fetch yields nil and an error the
// caller logs; the pipeline continues with base fields only.
func (c *Client) FetchDetail(ctx context.Context, id int64, isMovie bool) (*models.DetailDocument, error) {
	path := fmt.Sprintf("/tv/%d", id)
	include := "credits,keywords,videos,recommendations,similar,translations,content_ratings"
	if isMovie {
		path = fmt.Sprintf("/movie/%d", id)
		include = "credits,keywords,videos,recommendations,similar,translations,release_dates"
	}
	q := url.Values{}
	q.Set("append_to_response", include)

	var doc models.DetailDocument
	if err := c.doGET(ctx, path, q, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

type providerResponse struct {
	Results map[string]struct {
		Flatrate []struct {
			ProviderName string `json:"provider_name"`
		} `json:"flatrate"`
	} `json:"results"`
}

// FetchProviders returns the subscription service keys a title streams on
// in the configured region. Only flatrate availability counts; rental and
// purchase listings are ignored.
func (c *Client) FetchProviders(ctx context.Context, id int64, isMovie bool) ([]string, error) {
	path := fmt.Sprintf("/tv/%d/watch/providers", id)
	if isMovie {
		path = fmt.Sprintf("/movie/%d/watch/providers", id)
	}

	var resp providerResponse
	if err := c.doGET(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	regional, ok := resp.Results[c.region]
	if !ok {
		return nil, nil
	}
	keys := make([]string, 0, len(regional.Flatrate))
	for _, p := range regional.Flatrate {
		keys = append(keys, ServiceKey(p.ProviderName))
	}
	return keys, nil
}

// DownloadPoster fetches a poster image by its catalog-relative path and
// verifies the payload is actually an image. Downloads get one bounded
// retry; listing and detail fetches never retry.
func (c *Client) DownloadPoster(ctx context.Context, posterRef string) ([]byte, error) {
	if !strings.HasPrefix(posterRef, "/") {
		posterRef = "/" + posterRef
	}

	var data []byte
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.imageBaseURL+posterRef, nil)
			if err != nil {
				return err
			}
			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("poster download: %s", resp.Status)
			}
			data, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	if mt := mimetype.Detect(data); !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("poster download: unexpected content type %s", mt.String())
	}
	return data, nil
}
