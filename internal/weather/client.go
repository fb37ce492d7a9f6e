// Package weather wraps OpenWeatherMap geocoding and current conditions
// with an in-memory address cache.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	geocodeURL  = "https://api.openweathermap.org/geo/1.0/direct"
	onecallURL  = "https://api.openweathermap.org/data/3.0/onecall"
	addressTTL  = 30 * time.Minute
	maxRespSize = 1 << 20
)

// Snapshot is the current conditions payload attached to dashboards.
type Snapshot struct {
	Description string  `json:"description"`
	TempF       float64 `json:"tempF"`
	FeelsLikeF  float64 `json:"feelsLikeF"`
	WindMPH     float64 `json:"windMph"`
	Humidity    int     `json:"humidity"`
}

type cachedSnapshot struct {
	snap    Snapshot
	expires time.Time
}

type Client struct {
	apiKey     string
	geocodeURL string
	onecallURL string
	httpc      *http.Client
	log        *zap.SugaredLogger

	mu    sync.Mutex
	cache map[string]cachedSnapshot // keyed by normalized address
}

func NewClient(apiKey string, log *zap.SugaredLogger) *Client {
	return &Client{
		apiKey:     apiKey,
		geocodeURL: geocodeURL,
		onecallURL: onecallURL,
		httpc:      &http.Client{Timeout: 5 * time.Second},
		log:        log,
		cache:      map[string]cachedSnapshot{},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// ForAddress geocodes the address and fetches current conditions, serving
// repeats from the address cache.
func (c *Client) ForAddress(ctx context.Context, address string) (Snapshot, error) {
	if !c.Enabled() {
		return Snapshot{}, fmt.Errorf("weather api key not configured")
	}
	key := strings.ToLower(strings.TrimSpace(address))
	c.mu.Lock()
	if e, ok := c.cache[key]; ok && time.Now().Before(e.expires) {
		c.mu.Unlock()
		return e.snap, nil
	}
	c.mu.Unlock()

	lat, lon, err := c.geocode(ctx, address)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := c.current(ctx, lat, lon)
	if err != nil {
		return Snapshot{}, err
	}
	c.mu.Lock()
	c.cache[key] = cachedSnapshot{snap: snap, expires: time.Now().Add(addressTTL)}
	c.mu.Unlock()
	return snap, nil
}

func (c *Client) geocode(ctx context.Context, address string) (float64, float64, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)
	var results []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := c.getJSON(ctx, c.geocodeURL+"?"+q.Encode(), &results); err != nil {
		return 0, 0, fmt.Errorf("geocode: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("geocode: no match for %q", address)
	}
	return results[0].Lat, results[0].Lon, nil
}

func (c *Client) current(ctx context.Context, lat, lon float64) (Snapshot, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("units", "imperial")
	q.Set("exclude", "minutely,hourly,daily,alerts")
	q.Set("appid", c.apiKey)
	var body struct {
		Current struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			WindSpeed float64 `json:"wind_speed"`
			Humidity  int     `json:"humidity"`
			Weather   []struct {
				Description string `json:"description"`
			} `json:"weather"`
		} `json:"current"`
	}
	if err := c.getJSON(ctx, c.onecallURL+"?"+q.Encode(), &body); err != nil {
		return Snapshot{}, fmt.Errorf("onecall: %w", err)
	}
	snap := Snapshot{
		TempF:      body.Current.Temp,
		FeelsLikeF: body.Current.FeelsLike,
		WindMPH:    body.Current.WindSpeed,
		Humidity:   body.Current.Humidity,
	}
	if len(body.Current.Weather) > 0 {
		snap.Description = body.Current.Weather[0].Description
	}
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxRespSize))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.Unmarshal(raw, out)
}
