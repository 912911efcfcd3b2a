package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/asheeshkh/mausam/internal/input"
	"github.com/asheeshkh/mausam/internal/models"
	"github.com/asheeshkh/mausam/internal/observability"
)

// WeatherClient fetches current conditions and the 3-hourly forecast for a
// classified query.
type WeatherClient interface {
	FetchCurrent(ctx context.Context, q input.Query) (models.Current, error)
	FetchForecast(ctx context.Context, q input.Query) ([]models.ForecastPoint, error)
}

var (
	ErrInvalidAPIKey    = errors.New("invalid API key")
	ErrLocationNotFound = errors.New("location not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrUpstream         = errors.New("upstream failure")
)

const (
	endpointCurrent  = "weather"
	endpointForecast = "forecast"
)

// RetryPolicy bounds upstream attempts. MaxAttempts of 1 means a single
// attempt per query with no retry.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// OpenWeatherClient talks to the OpenWeatherMap data/2.5 API. Pincode queries
// use zip=<pin>,IN; city queries use q=<city>,IN. An outbound rate limiter
// keeps a fast-typing user inside the free API tier, and a circuit breaker
// stops hammering a failing upstream.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	retry   RetryPolicy
}

// NewOpenWeatherClient creates a client for the given API key and base URL
// (e.g. "https://api.openweathermap.org/data/2.5"). rps bounds outbound calls
// per second; zero disables the limiter.
func NewOpenWeatherClient(apiKey, baseURL string, timeout time.Duration, rps float64, retry RetryPolicy, logger *zap.Logger) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}

	var limiter *rate.Limiter
	if rps > 0 {
		// Burst of 2 lets one query's current+forecast pair go out together.
		limiter = rate.NewLimiter(rate.Limit(rps), 2)
	}

	settings := gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker state changed",
					zap.String("client", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			}
		},
	}

	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker(settings),
		retry:   retry,
	}, nil
}

type currentResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Visibility int `json:"visibility"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// FetchCurrent retrieves current conditions for the query.
func (c *OpenWeatherClient) FetchCurrent(ctx context.Context, q input.Query) (models.Current, error) {
	body, err := c.fetch(ctx, endpointCurrent, q)
	if err != nil {
		return models.Current{}, err
	}

	var resp currentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Current{}, fmt.Errorf("parse current response: %w", err)
	}
	return mapCurrent(resp, q), nil
}

// FetchForecast retrieves the 5-day/3-hour forecast points for the query.
func (c *OpenWeatherClient) FetchForecast(ctx context.Context, q input.Query) ([]models.ForecastPoint, error) {
	body, err := c.fetch(ctx, endpointForecast, q)
	if err != nil {
		return nil, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse forecast response: %w", err)
	}
	return mapForecast(resp), nil
}

// fetch runs the bounded-attempt loop around callAPI. Only timeouts, 429 and
// 5xx are retried; 401 and 404 return immediately.
func (c *OpenWeatherClient) fetch(ctx context.Context, endpoint string, q input.Query) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			observability.WeatherAPIRetriesTotal.Inc()
			delay := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.callAPI(ctx, endpoint, q)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}

	if c.retry.MaxAttempts > 1 {
		return nil, fmt.Errorf("exhausted retries: %w", lastErr)
	}
	return nil, lastErr
}

func (c *OpenWeatherClient) callAPI(ctx context.Context, endpoint string, q input.Query) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, endpoint, q)
	})
	duration := time.Since(start).Seconds()
	observability.WeatherAPIDuration.WithLabelValues(endpoint).Observe(duration)

	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues(endpoint, categorizeStatus(err)).Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", ErrUpstream)
		}
		return nil, err
	}

	observability.WeatherAPICallsTotal.WithLabelValues(endpoint, "success").Inc()
	return result.([]byte), nil
}

func (c *OpenWeatherClient) doRequest(ctx context.Context, endpoint string, q input.Query) ([]byte, error) {
	req, err := c.buildRequest(ctx, endpoint, q)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	corrID := CorrelationIDFromContext(ctx)
	if corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("request timeout: %w", err)
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := handleErrorStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, endpoint string, q input.Query) (*http.Request, error) {
	baseURL, err := url.Parse(c.baseURL + "/" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	switch q.Kind {
	case input.KindPincode:
		params.Set("zip", q.Value+",IN")
	default:
		params.Set("q", q.Value+",IN")
	}
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func handleErrorStatus(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: check your OpenWeatherMap API key", ErrInvalidAPIKey)
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrLocationNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstream, statusCode)
	}
	return nil
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstream) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}

func (c *OpenWeatherClient) calculateBackoff(attempt int) time.Duration {
	base := c.retry.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	maxDelay := c.retry.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}
	delay := float64(base) * math.Pow(2, float64(attempt-1))
	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}
	jitter := delay * 0.1 * rand.Float64()
	return time.Duration(delay + jitter)
}

func mapCurrent(resp currentResponse, q input.Query) models.Current {
	condition := ""
	if len(resp.Weather) > 0 {
		condition = resp.Weather[0].Main
		if resp.Weather[0].Description != "" {
			condition = resp.Weather[0].Description
		}
	}

	displayName := resp.Name
	if displayName == "" {
		displayName = q.Value
	}

	return models.Current{
		Location:     displayName,
		Country:      resp.Sys.Country,
		Temperature:  resp.Main.Temp,
		FeelsLike:    resp.Main.FeelsLike,
		Condition:    condition,
		Humidity:     resp.Main.Humidity,
		Pressure:     resp.Main.Pressure,
		VisibilityKM: float64(resp.Visibility) / 1000,
		WindSpeed:    resp.Wind.Speed,
		WindDeg:      resp.Wind.Deg,
		Sunrise:      time.Unix(resp.Sys.Sunrise, 0),
		Sunset:       time.Unix(resp.Sys.Sunset, 0),
	}
}

func mapForecast(resp forecastResponse) []models.ForecastPoint {
	points := make([]models.ForecastPoint, 0, len(resp.List))
	for _, item := range resp.List {
		condition := ""
		if len(item.Weather) > 0 {
			condition = item.Weather[0].Description
		}
		points = append(points, models.ForecastPoint{
			Time:        time.Unix(item.Dt, 0),
			Temperature: item.Main.Temp,
			Condition:   condition,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
		})
	}
	return points
}
