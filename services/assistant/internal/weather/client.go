package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/agriguru/agriguru-backend/services/assistant/internal/domain"
	"github.com/google/go-querystring/query"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrUnavailable      = errors.New("weather service unavailable")
)

// Client fetches current conditions from an OpenWeatherMap-compatible
// API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type currentParams struct {
	Location string `url:"q"`
	APIKey   string `url:"appid"`
	Units    string `url:"units"`
}

// currentResponse mirrors the provider's JSON shape.
type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (c *Client) Current(ctx context.Context, location string) (*domain.WeatherReport, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}
	if location == "" {
		return nil, fmt.Errorf("no location provided")
	}

	params, err := query.Values(currentParams{
		Location: location,
		APIKey:   c.apiKey,
		Units:    "metric",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: invalid API key", ErrUnavailable)
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	report := &domain.WeatherReport{
		Location:    body.Name,
		Temperature: body.Main.Temp,
		Humidity:    body.Main.Humidity,
	}
	if len(body.Weather) > 0 {
		report.Conditions = body.Weather[0].Main
		report.Description = body.Weather[0].Description
	}
	return report, nil
}
