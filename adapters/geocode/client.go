// Package geocode provides the HTTP client for the external
// geocoding/routing provider.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"rental-quote/core/distance"
	"rental-quote/internal/errors"
)

// Client talks to the routing provider. It implements
// distance.Provider.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a provider client. The timeout bounds every call; the
// provider has no server-side deadline of its own.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type routeResponse struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type geocodeResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Route resolves a driving route between two addresses
func (c *Client) Route(ctx context.Context, origin, destination string) (*distance.Route, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)

	var resp routeResponse
	if err := c.get(ctx, "/route", q, &resp); err != nil {
		return nil, err
	}
	return &distance.Route{
		DistanceMeters:  resp.DistanceMeters,
		DurationSeconds: resp.DurationSeconds,
	}, nil
}

// Geocode resolves an address to coordinates
func (c *Client) Geocode(ctx context.Context, address string) (distance.Coordinates, error) {
	q := url.Values{}
	q.Set("address", address)

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode", q, &resp); err != nil {
		return distance.Coordinates{}, err
	}
	return distance.Coordinates{Lat: resp.Lat, Lon: resp.Lon}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Provider("building provider request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Provider("calling provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Provider("provider returned non-200", nil).
			WithContext("status", resp.StatusCode).
			WithContext("body", string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Provider("decoding provider response", err)
	}
	return nil
}
