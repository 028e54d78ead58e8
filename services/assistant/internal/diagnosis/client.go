package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agriguru/agriguru-backend/services/assistant/internal/domain"
)

// Client calls the diagnosis service's analyze endpoint with a
// base64-encoded image.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type analyzeRequest struct {
	Image    string `json:"image"`
	CropType string `json:"crop_type,omitempty"`
}

func (c *Client) Analyze(ctx context.Context, imageB64, cropType string) (*domain.DiagnosisReport, error) {
	payload, err := json.Marshal(analyzeRequest{Image: imageB64, CropType: cropType})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diagnosis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("diagnosis service returned %d: %s", resp.StatusCode, body)
	}

	var report domain.DiagnosisReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode diagnosis response: %w", err)
	}
	return &report, nil
}
