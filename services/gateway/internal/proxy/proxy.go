package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/logger"
)

// ServiceProxy forwards a request to one backing service.
type ServiceProxy struct {
	baseURL string
	client  *http.Client
}

func NewServiceProxy(baseURL string) *ServiceProxy {
	return &ServiceProxy{
		baseURL: baseURL,
		client: &http.Client{
			// Image analysis can take a while on cold models.
			Timeout: 60 * time.Second,
		},
	}
}

// Forward replays the inbound request against the backing service,
// preserving method, path, query, body, and the headers that matter
// (auth, cookies, content type).
func (p *ServiceProxy) Forward(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	url := p.baseURL + path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, url, r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for _, header := range []string{"Authorization", "Content-Type", "Cookie", "Accept"} {
		if v := r.Header.Get(header); v != "" {
			req.Header.Set(header, v)
		}
	}
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		req.Header.Set("X-Request-ID", requestID)
	}
	req.Header.Set("X-Gateway-Forwarded", "true")
	if ip := clientIP(r); ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}

	logger.DebugContext(ctx, "Proxying request", "method", r.Method, "url", url)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	return resp, nil
}

// Relay copies an upstream response out to the client.
func Relay(w http.ResponseWriter, resp *http.Response) {
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Error("failed to relay response body", "error", err)
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return r.RemoteAddr
}
