package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ErrNoResult means the provider answered but had no match for the postal
// code. Callers degrade to "no coordinate"; the miss is not cached.
var ErrNoResult = errors.New("no geocoding result")

// Result holds the parsed best match from a Nominatim search response.
type Result struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"display_name"`
}

// Client wraps the Nominatim search API. Nominatim's usage policy requires an
// identifying User-Agent with contact info and at most one request per
// second, so every call goes through a rate limiter.
type Client struct {
	endpoint   string
	userAgent  string
	country    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

const defaultEndpoint = "https://nominatim.openstreetmap.org"

// NewClient creates a geocoding client from environment configuration.
//
// Environment variables:
//   - GEOCODER_CONTACT: contact email/URL for the User-Agent (required)
//   - NOMINATIM_ENDPOINT: API base URL (default: the public instance)
//   - GEOCODER_COUNTRY: ISO country filter (default: "de")
//
// Returns nil, nil if no contact is configured (graceful degradation:
// resolution then runs store-only).
func NewClient() (*Client, error) {
	contact := os.Getenv("GEOCODER_CONTACT")
	if contact == "" {
		return nil, nil
	}

	endpoint := os.Getenv("NOMINATIM_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	country := os.Getenv("GEOCODER_COUNTRY")
	if country == "" {
		country = "de"
	}

	return &Client{
		endpoint:  endpoint,
		userAgent: "KT-Backend/1.0 (" + contact + ")",
		country:   country,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

// NewClientWith builds a client against a specific endpoint, for tests and
// self-hosted instances.
func NewClientWith(endpoint, contact, country string) *Client {
	return &Client{
		endpoint:  endpoint,
		userAgent: "KT-Backend/1.0 (" + contact + ")",
		country:   country,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Nominatim returns lat/lon as JSON strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search resolves a postal code to its single best match, constrained to the
// configured country.
func (c *Client) Search(ctx context.Context, postalCode string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("postalcode", postalCode)
	q.Set("country", c.country)
	q.Set("format", "json")
	q.Set("limit", "1")
	u := c.endpoint + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned HTTP %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNoResult
	}

	best := results[0]
	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing lat %q: %w", best.Lat, err)
	}
	lng, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing lon %q: %w", best.Lon, err)
	}

	return &Result{Lat: lat, Lng: lng, DisplayName: best.DisplayName}, nil
}
