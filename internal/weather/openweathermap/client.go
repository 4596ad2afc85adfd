package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/roadcast/roadcast/internal/location"
	"github.com/roadcast/roadcast/internal/provider/resilience"
	"github.com/roadcast/roadcast/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to OpenWeatherMap API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Clock stamps fetched forecasts (optional, defaults to the real clock).
	Clock clockwork.Clock

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	clock      clockwork.Clock
	logger     zerolog.Logger
}

var _ weather.Provider = (*Client)(nil)

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		clock:      clock,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openweathermap: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("openweathermap: status %d", e.StatusCode)
}

// FetchCurrent retrieves the raw current-conditions payload for a location.
func (c *Client) FetchCurrent(ctx context.Context, loc location.Location) (*CurrentResponse, error) {
	var raw CurrentResponse
	if err := c.get(ctx, "/weather", loc, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// FetchForecast retrieves the raw 5-day / 3-hour forecast payload for a location.
func (c *Client) FetchForecast(ctx context.Context, loc location.Location) (*ForecastResponse, error) {
	var raw ForecastResponse
	if err := c.get(ctx, "/forecast", loc, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// GetCurrentWeather fetches and normalizes current conditions.
func (c *Client) GetCurrentWeather(ctx context.Context, loc location.Location) (*weather.CurrentSnapshot, error) {
	raw, err := c.FetchCurrent(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: current weather for %s: %w", weather.ErrProviderUnavailable, loc.Name, err)
	}

	snapshot := ParseCurrent(raw, loc.Name)
	return &snapshot, nil
}

// GetForecast fetches and normalizes the hourly and daily forecast.
func (c *Client) GetForecast(ctx context.Context, loc location.Location) (*weather.Forecast, error) {
	raw, err := c.FetchForecast(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: forecast for %s: %w", weather.ErrProviderUnavailable, loc.Name, err)
	}

	return &weather.Forecast{
		Location:  loc.Name,
		Hourly:    ParseHourly(raw),
		Daily:     ParseDaily(raw),
		FetchedAt: c.clock.Now(),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, loc location.Location, out any) error {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', 6, 64))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body errorResponse
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			apiErr.Message = body.Message
		}
		c.logger.Debug().
			Str("path", path).
			Str("location", loc.Name).
			Int("status", resp.StatusCode).
			Msg("openweathermap request rejected")
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
