package boliga

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.boligsiden.dk"

// ErrPageLimit is returned when the search endpoint rejects a query whose
// page count exceeds the source's pagination ceiling (HTTP 400).
var ErrPageLimit = errors.New("search page limit exceeded")

// The source is unauthenticated but expects browser-shaped requests.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/93.0.4577.82 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_4_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Mobile/15E148 Safari/604.1",
}

// Client talks to the remote listing source.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewClient creates a client with the given request timeout. An empty
// baseURL selects the production endpoint.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SearchQuery describes one page of a faceted address search.
type SearchQuery struct {
	Municipality string
	AddressType  string
	ZipCode      *int
	Page         int
	PerPage      int
}

// Search fetches one page of summary records plus the total hit count.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResponse, error) {
	params := url.Values{}
	if q.Municipality != "" {
		params.Set("municipalities", q.Municipality)
	}
	if q.AddressType != "" {
		params.Set("addressTypes", q.AddressType)
	}
	if q.ZipCode != nil {
		params.Set("zipCodes", strconv.Itoa(*q.ZipCode))
	}
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("sortBy", "address")
	params.Set("sortAscending", "true")

	var result SearchResponse
	if err := c.getJSON(ctx, "/search/addresses", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAddress fetches the full nested document for one property.
func (c *Client) GetAddress(ctx context.Context, addressID string) (*AddressDocument, error) {
	var doc AddressDocument
	if err := c.getJSON(ctx, "/addresses/"+url.PathEscape(addressID), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return ErrPageLimit
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9,en-US;q=0.8")
	req.Header.Set("Origin", "https://www.boligsiden.dk")
	req.Header.Set("Referer", "https://www.boligsiden.dk/")
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-site")
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
}
