// Package weather proxies a third-party weather API behind a Redis cache.
// Only successful upstream responses are memoized; concurrent cold misses
// for the same city are coalesced with singleflight.
package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mpurcell/contentapi/config"
	"github.com/mpurcell/contentapi/utils"
)

// ErrUpstream marks a failed or malformed upstream response. Callers map it
// to a local 400 with a generic message; the upstream body is only logged.
var ErrUpstream = errors.New("weather upstream failure")

// Report is the client-facing weather payload.
type Report struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	Weather     string  `json:"weather"`
	WindSpeed   float64 `json:"wind_speed"`
}

// upstreamResponse mirrors the OpenWeatherMap current-weather shape.
type upstreamResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Service fetches and caches weather reports.
type Service struct {
	client  *http.Client
	baseURL string
	apiKey  string
	ttl     time.Duration
	group   singleflight.Group
}

// NewService creates a weather service from configuration.
func NewService(cfg config.AppConfig) *Service {
	return &Service{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.WeatherBaseURL,
		apiKey:  cfg.WeatherAPIKey,
		ttl:     time.Duration(cfg.WeatherCacheTTLSecs) * time.Second,
	}
}

// Get returns the weather report for city, serving from cache within the
// TTL window. Requests racing on the same cold key share one upstream call.
func (s *Service) Get(city string) (*Report, error) {
	cacheKey := "weather:" + city

	var cached Report
	if utils.CacheGetJSON(cacheKey, &cached) {
		return &cached, nil
	}

	v, err, _ := s.group.Do(city, func() (interface{}, error) {
		// Re-check under singleflight: a racing caller may have populated
		// the cache while this one waited.
		var report Report
		if utils.CacheGetJSON(cacheKey, &report) {
			return &report, nil
		}
		fetched, err := s.fetch(city)
		if err != nil {
			return nil, err
		}
		utils.CacheSetJSON(cacheKey, fetched, s.ttl)
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (s *Service) fetch(city string) (*Report, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")

	resp, err := s.client.Get(s.baseURL + "?" + q.Encode())
	if err != nil {
		utils.Sugar.Errorf("weather request failed for city %s: %v", city, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		utils.Sugar.Errorf("weather response read failed for city %s: %v", city, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		utils.Sugar.Errorf("weather API failed for city %s: status=%d body=%s", city, resp.StatusCode, body)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var upstream upstreamResponse
	if err := json.Unmarshal(body, &upstream); err != nil {
		utils.Sugar.Errorf("weather response decode failed for city %s: %v", city, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	report := &Report{
		City:        upstream.Name,
		Temperature: upstream.Main.Temp,
		Humidity:    upstream.Main.Humidity,
		WindSpeed:   upstream.Wind.Speed,
	}
	if report.City == "" {
		report.City = city
	}
	if len(upstream.Weather) > 0 {
		report.Weather = upstream.Weather[0].Description
	}
	return report, nil
}
