// Package geo proxies forward and reverse lookups to a Nominatim-compatible
// geocoder for the location picker.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jainjy/servo-sub017/internal/metrics"
)

var ErrNoResult = errors.New("no geocoding result")

type Place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

type Address struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rawPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns the best match for a free-text address.
func (c *Client) Search(ctx context.Context, q string) (Place, error) {
	p, err := c.search(ctx, q)
	metrics.ObserveGeocode("search", err)
	return p, err
}

func (c *Client) search(ctx context.Context, q string) (Place, error) {
	v := url.Values{}
	v.Set("format", "json")
	v.Set("limit", "1")
	v.Set("q", q)
	var out []rawPlace
	if err := c.get(ctx, "/search", v, &out); err != nil {
		return Place{}, err
	}
	if len(out) == 0 {
		return Place{}, ErrNoResult
	}
	lat, err := strconv.ParseFloat(out[0].Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("lat %q: %w", out[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(out[0].Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("lon %q: %w", out[0].Lon, err)
	}
	return Place{Lat: lat, Lon: lon, DisplayName: out[0].DisplayName}, nil
}

// Reverse resolves coordinates to a postal address.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	a, err := c.reverse(ctx, lat, lon)
	metrics.ObserveGeocode("reverse", err)
	return a, err
}

func (c *Client) reverse(ctx context.Context, lat, lon float64) (Address, error) {
	v := url.Values{}
	v.Set("format", "json")
	v.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	v.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	var out struct {
		Address
		Error string `json:"error"`
	}
	if err := c.get(ctx, "/reverse", v, &out); err != nil {
		return Address{}, err
	}
	if out.Error != "" || out.DisplayName == "" {
		return Address{}, ErrNoResult
	}
	return out.Address, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocoder %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("geocoder %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(dst); err != nil {
		return fmt.Errorf("geocoder %s decode: %w", path, err)
	}
	return nil
}
