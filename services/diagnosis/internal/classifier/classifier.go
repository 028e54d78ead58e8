package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Prediction is a raw classifier answer: the winning class label and
// how sure the model was.
type Prediction struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

// Classifier answers with a prediction for a crop leaf image.
type Classifier interface {
	Classify(ctx context.Context, image []byte, filename string) (*Prediction, error)
}

// RemoteClassifier talks to the model server over HTTP, posting the
// image as multipart form data.
type RemoteClassifier struct {
	baseURL string
	client  *http.Client
}

func NewRemoteClassifier(baseURL string, timeout time.Duration) *RemoteClassifier {
	return &RemoteClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *RemoteClassifier) Classify(ctx context.Context, image []byte, filename string) (*Prediction, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classifier returned %d: %s", resp.StatusCode, body)
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	if pred.ClassName == "" {
		return nil, fmt.Errorf("classifier returned an empty class name")
	}
	return &pred, nil
}
