// Package openfoodfacts is a minimal client for the Open Food Facts product API.
package openfoodfacts

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

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://world.openfoodfacts.net"

var (
	ErrNotFound    = errors.New("product not found")
	ErrUnavailable = errors.New("open food facts unavailable")
)

// Product is the subset of an Open Food Facts product used for calorie lookup.
type Product struct {
	Code        string         `json:"code"`
	ProductName string         `json:"product_name"`
	GenericName string         `json:"generic_name"`
	Brands      string         `json:"brands"`
	ServingSize string         `json:"serving_size"`
	Nutriments  map[string]any `json:"nutriments"`
}

type productResponse struct {
	Status  int      `json:"status"`
	Product *Product `json:"product"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string

	// Limiter throttles outbound requests; nil disables throttling.
	Limiter *rate.Limiter
}

// New builds a client allowing rps requests per second.
func New(baseURL string, timeout time.Duration, rps float64, userAgent string) *Client {
	var limiter *rate.Limiter
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
		Limiter:    limiter,
	}
}

// Product fetches GET {base}/api/v2/product/{barcode}.json.
func (c *Client) Product(ctx context.Context, barcode string) (*Product, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	u := fmt.Sprintf("%s/api/v2/product/%s.json", base, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if parsed.Status != 1 || parsed.Product == nil {
		return nil, ErrNotFound
	}
	return parsed.Product, nil
}

// Nutrient returns a positive numeric nutriment value. Zero, negative and
// non-numeric values count as absent.
func (p *Product) Nutrient(key string) (float64, bool) {
	if p == nil || p.Nutriments == nil {
		return 0, false
	}
	v, ok := parseFloatAny(p.Nutriments[key])
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
