package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movie_explorer/internal/domain"

	"github.com/sirupsen/logrus"
)

const DefaultTMDBBaseURL = "https://api.themoviedb.org/3"

const (
	msgMissingKey = "TMDB API key is not configured. Please add TMDB_API_KEY to your environment variables."
	msgInvalidKey = "Invalid TMDB API key. Please check your TMDB_API_KEY environment variable."
	msgNetwork    = "Network error: Unable to connect to TMDB API. Please check your internet connection."
)

var _ domain.CatalogClient = (*tmdbHTTPClient)(nil)

type tmdbHTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

// NewTMDBClient builds the catalog client. An empty apiKey is accepted here;
// every call then fails with a configuration error without touching the
// network.
func NewTMDBClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) domain.CatalogClient {
	if baseURL == "" {
		baseURL = DefaultTMDBBaseURL
	}
	return &tmdbHTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

func (c *tmdbHTTPClient) PopularMovies(ctx context.Context, page int) (*domain.MovieListResponse, error) {
	var resp domain.MovieListResponse
	if err := c.get(ctx, "/movie/popular", pageParams(page), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *tmdbHTTPClient) NowPlayingMovies(ctx context.Context, page int) (*domain.MovieListResponse, error) {
	var resp domain.MovieListResponse
	if err := c.get(ctx, "/movie/now_playing", pageParams(page), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *tmdbHTTPClient) TopRatedMovies(ctx context.Context, page int) (*domain.MovieListResponse, error) {
	var resp domain.MovieListResponse
	if err := c.get(ctx, "/movie/top_rated", pageParams(page), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *tmdbHTTPClient) SearchMovies(ctx context.Context, query string, page int) (*domain.MovieListResponse, error) {
	params := pageParams(page)
	params.Set("query", query)
	var resp domain.MovieListResponse
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *tmdbHTTPClient) MovieDetails(ctx context.Context, movieID int) (*domain.MovieDetails, error) {
	var resp domain.MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), url.Values{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *tmdbHTTPClient) MovieCredits(ctx context.Context, movieID int) (*domain.MovieCredits, error) {
	var resp domain.MovieCredits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", movieID), url.Values{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func (c *tmdbHTTPClient) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if c.apiKey == "" {
		c.log.Error("CatalogClient: TMDB API key is not configured")
		return domain.NewError(domain.ErrConfiguration, msgMissingKey)
	}

	params.Set("api_key", c.apiKey)
	target := c.baseURL + endpoint + "?" + params.Encode()
	c.log.Debugf("CatalogClient: Requesting %s (page=%s)", endpoint, params.Get("page"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.log.Errorf("CatalogClient: Failed to create request for %s: %v", endpoint, err)
		return fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.log.Warnf("CatalogClient: Request for %s cancelled: %v", endpoint, ctxErr)
			return fmt.Errorf("catalog request cancelled: %w", ctxErr)
		}
		c.log.Errorf("CatalogClient: Failed to execute request for %s: %v", endpoint, redact(err, c.apiKey))
		return domain.NewError(domain.ErrConnectivity, msgNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warnf("CatalogClient: TMDB rejected the API key (status %d) for %s", resp.StatusCode, endpoint)
		return domain.NewError(domain.ErrAuthentication, msgInvalidKey)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Errorf("CatalogClient: Request for %s failed with status %d", endpoint, resp.StatusCode)
		return domain.NewError(domain.ErrUpstream, fmt.Sprintf("TMDB API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Errorf("CatalogClient: Failed to decode response for %s: %v", endpoint, err)
		return domain.NewError(domain.ErrUpstream, "TMDB API error: invalid response body")
	}
	return nil
}

// redact keeps the API key out of logged transport errors, which embed the
// request URL.
func redact(err error, secret string) string {
	msg := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) && secret != "" {
		msg = strings.ReplaceAll(msg, secret, "REDACTED")
	}
	return msg
}
