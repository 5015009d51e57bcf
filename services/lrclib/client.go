package lrclib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"lyrics-resolver-go/circuitbreaker"
	"lyrics-resolver-go/logcolors"
	"lyrics-resolver-go/track"

	log "github.com/sirupsen/logrus"
)

const (
	// API endpoints
	getCachedPath = "/api/get-cached"
	getPath       = "/api/get"
	searchPath    = "/api/search"

	defaultTimeout = 10 * time.Second
)

// Client queries the LRCLIB lookup service. All requests carry an
// identifying client header with the running server's version and pass
// through the circuit breaker when one is configured.
type Client struct {
	baseURL      string
	clientHeader string
	httpClient   *http.Client
	breaker      *circuitbreaker.CircuitBreaker
}

// NewClient creates a client against baseURL. breaker may be nil.
func NewClient(baseURL, serverVersion string, breaker *circuitbreaker.CircuitBreaker) *Client {
	return &Client{
		baseURL:      baseURL,
		clientHeader: fmt.Sprintf("lyrics-resolver-go v%s", serverVersion),
		httpClient:   &http.Client{Timeout: defaultTimeout},
		breaker:      breaker,
	}
}

// GetCached fetches the pre-computed lookup for an exact
// (track, artist, album, duration) key. Returns nil without error when
// the upstream has no entry (404).
func (c *Client) GetCached(ctx context.Context, sig track.Signature) (*Candidate, error) {
	return c.getOne(ctx, getCachedPath, sig)
}

// Get fetches the direct lookup for an exact key. The upstream may
// compute the entry on demand, so this can be slower than GetCached.
func (c *Client) Get(ctx context.Context, sig track.Signature) (*Candidate, error) {
	return c.getOne(ctx, getPath, sig)
}

func (c *Client) getOne(ctx context.Context, path string, sig track.Signature) (*Candidate, error) {
	params := url.Values{}
	params.Set("track_name", sig.TrackName)
	params.Set("artist_name", sig.ArtistName)
	params.Set("album_name", sig.AlbumName)
	params.Set("duration", strconv.Itoa(sig.DurationSeconds))

	body, err := c.do(ctx, path, params)
	if err != nil || body == nil {
		return nil, err
	}

	var cand Candidate
	if err := json.Unmarshal(body, &cand); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &cand, nil
}

// Search runs the fuzzy search by (track, artist, album) and returns
// the candidate list in upstream order. The list may be empty.
func (c *Client) Search(ctx context.Context, sig track.Signature) ([]Candidate, error) {
	params := url.Values{}
	params.Set("track_name", sig.TrackName)
	params.Set("artist_name", sig.ArtistName)
	params.Set("album_name", sig.AlbumName)

	body, err := c.do(ctx, searchPath, params)
	if err != nil || body == nil {
		return nil, err
	}

	var cands []Candidate
	if err := json.Unmarshal(body, &cands); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return cands, nil
}

// do performs one GET against the upstream. A 404 is "no result", not
// an error; any other non-2xx status is. The returned body is nil on
// 404.
func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.breaker != nil && !c.breaker.Allow() {
		return nil, circuitbreaker.ErrCircuitOpen
	}

	requestURL := c.baseURL + path + "?" + params.Encode()
	log.Debugf("%s GET %s", logcolors.LogResolver, requestURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Lrclib-Client", c.clientHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.recordSuccess()
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.recordFailure()
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.recordSuccess()
	return body, nil
}

func (c *Client) recordSuccess() {
	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.RecordFailure()
	}
}
