package handlers

import (
	"net/http"
	"strings"

	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/pkg/response"
	"github.com/agriguru/agriguru-backend/services/gateway/internal/proxy"
)

// Handlers routes public API paths to the backing services.
type Handlers struct {
	auth      *proxy.ServiceProxy
	advisory  *proxy.ServiceProxy
	diagnosis *proxy.ServiceProxy
	assistant *proxy.ServiceProxy
	market    *proxy.ServiceProxy
}

func New(auth, advisory, diagnosis, assistant, market *proxy.ServiceProxy) *Handlers {
	return &Handlers{
		auth:      auth,
		advisory:  advisory,
		diagnosis: diagnosis,
		assistant: assistant,
		market:    market,
	}
}

// forward strips the public prefix and relays the rest of the path to
// the backing service.
func (h *Handlers) forward(p *proxy.ServiceProxy, prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, prefix)
		if path == "" {
			path = "/"
		}

		resp, err := p.Forward(r.Context(), r, path)
		if err != nil {
			logger.ErrorContext(r.Context(), "upstream unavailable", "error", err, "path", r.URL.Path)
			response.WriteError(w, http.StatusBadGateway, "Service temporarily unavailable", response.CodeInternalError)
			return
		}
		proxy.Relay(w, resp)
	}
}

func (h *Handlers) Auth() http.HandlerFunc      { return h.forward(h.auth, "/v1/auth") }
func (h *Handlers) Advisory() http.HandlerFunc  { return h.forward(h.advisory, "/v1/advisory") }
func (h *Handlers) Diagnosis() http.HandlerFunc { return h.forward(h.diagnosis, "/v1/diagnosis") }
func (h *Handlers) Assistant() http.HandlerFunc { return h.forward(h.assistant, "/v1/assistant") }
func (h *Handlers) Market() http.HandlerFunc    { return h.forward(h.market, "/v1/market") }
