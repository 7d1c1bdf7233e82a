package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const cacheTTL = 30 * time.Minute

// Config holds the lookup location. Latitude/longitude empty means the
// feature is unconfigured and lookups return Configured=false.
type Config struct {
	Latitude        string
	Longitude       string
	TemperatureUnit string // "celsius" or "fahrenheit"
}

// Data is the narrow weather view the record UI consumes: temperature,
// humidity, and precipitation are what matter for plant care.
type Data struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
	HighTemp      float64 `json:"high_temp"`
	LowTemp       float64 `json:"low_temp"`
	Description   string  `json:"description"`
	Unit          string  `json:"unit"`
	Available     bool    `json:"available"`
	Configured    bool    `json:"configured"`
}

// Service fetches and caches current conditions from open-meteo.
type Service struct {
	config    Config
	client    *http.Client
	baseURL   string
	mu        sync.RWMutex
	cached    Data
	lastFetch time.Time
}

func NewService(cfg Config) *Service {
	if cfg.TemperatureUnit == "" {
		cfg.TemperatureUnit = "celsius"
	}
	unit := "C"
	if cfg.TemperatureUnit == "fahrenheit" {
		unit = "F"
	}
	return &Service{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		cached: Data{
			Unit:       unit,
			Configured: cfg.Latitude != "" && cfg.Longitude != "",
		},
	}
}

// Current returns the cached conditions, refreshing from the API when the
// cache is stale. Stale data is kept on fetch errors.
func (s *Service) Current(ctx context.Context) Data {
	if !s.cached.Configured {
		return s.cached
	}

	s.mu.RLock()
	if time.Since(s.lastFetch) < cacheTTL && s.cached.Available {
		data := s.cached
		s.mu.RUnlock()
		return data
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastFetch) < cacheTTL && s.cached.Available {
		return s.cached
	}

	data, err := s.fetch(ctx)
	if err != nil {
		return s.cached
	}
	s.cached = data
	s.lastFetch = time.Now()
	return s.cached
}

type apiResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		Humidity      float64 `json:"relative_humidity_2m"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (s *Service) fetch(ctx context.Context) (Data, error) {
	url := fmt.Sprintf(
		"%s?latitude=%s&longitude=%s&current=temperature_2m,relative_humidity_2m,precipitation,weather_code&daily=temperature_2m_max,temperature_2m_min&timezone=auto&forecast_days=1&temperature_unit=%s",
		s.baseURL, s.config.Latitude, s.config.Longitude, s.config.TemperatureUnit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Data{}, fmt.Errorf("weather request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Data{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Data{}, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Data{}, fmt.Errorf("decode weather response: %w", err)
	}

	unit := "C"
	if s.config.TemperatureUnit == "fahrenheit" {
		unit = "F"
	}
	data := Data{
		Temperature:   apiResp.Current.Temperature,
		Humidity:      apiResp.Current.Humidity,
		Precipitation: apiResp.Current.Precipitation,
		Description:   describe(apiResp.Current.WeatherCode),
		Unit:          unit,
		Available:     true,
		Configured:    true,
	}
	if len(apiResp.Daily.TempMax) > 0 {
		data.HighTemp = apiResp.Daily.TempMax[0]
	}
	if len(apiResp.Daily.TempMin) > 0 {
		data.LowTemp = apiResp.Daily.TempMin[0]
	}
	return data, nil
}

// describe maps a WMO weather code to a short label.
func describe(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "showers"
	case code <= 86:
		return "snow showers"
	default:
		return "thunderstorm"
	}
}
