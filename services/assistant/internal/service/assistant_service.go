package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/config"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/domain"
	"github.com/agriguru/agriguru-backend/services/assistant/internal/repository"
	"golang.org/x/sync/errgroup"
)

// WeatherProvider yields current conditions for a named location.
type WeatherProvider interface {
	Current(ctx context.Context, location string) (*domain.WeatherReport, error)
}

// Adviser produces a free-form answer to a farming question.
type Adviser interface {
	Enabled() bool
	Advise(ctx context.Context, question string, contextNotes []string) (string, error)
}

// DiagnosisProvider analyzes an attached leaf photo.
type DiagnosisProvider interface {
	Analyze(ctx context.Context, imageB64, cropType string) (*domain.DiagnosisReport, error)
}

type AssistantService interface {
	Chat(ctx context.Context, userID int64, req *domain.ChatRequest) (*domain.ChatResponse, error)
	History(ctx context.Context, userID int64) ([]*domain.HistoryEntry, error)
	ClearHistory(ctx context.Context, userID int64) error
}

type assistantService struct {
	weather   WeatherProvider
	adviser   Adviser
	diagnosis DiagnosisProvider
	history   repository.HistoryRepository
	config    *config.Config
}

func NewAssistantService(weather WeatherProvider, adviser Adviser, diagnosis DiagnosisProvider, history repository.HistoryRepository, config *config.Config) AssistantService {
	return &assistantService{
		weather:   weather,
		adviser:   adviser,
		diagnosis: diagnosis,
		history:   history,
		config:    config,
	}
}

func (s *assistantService) Chat(ctx context.Context, userID int64, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// "weather in <city>" overrides the location field, matching how
	// farmers actually phrase the question.
	location := req.Location
	if idx := strings.Index(strings.ToLower(req.Message), "weather in "); idx != -1 {
		if inline := strings.TrimSpace(req.Message[idx+len("weather in "):]); inline != "" {
			location = inline
		}
	}

	// Weather, image analysis and the advice call are independent;
	// overlap them.
	var report *domain.WeatherReport
	var diagnosis *domain.DiagnosisReport
	var answer string
	g, gctx := errgroup.WithContext(ctx)

	if location != "" && s.weather != nil {
		g.Go(func() error {
			w, err := s.weather.Current(gctx, location)
			if err != nil {
				// Weather is an enrichment. Log and answer without it.
				logger.WarnContext(gctx, "weather lookup failed", "location", location, "error", err)
				return nil
			}
			report = w
			return nil
		})
	}

	if req.Image != "" && s.diagnosis != nil {
		g.Go(func() error {
			d, err := s.diagnosis.Analyze(gctx, req.Image, req.CropType)
			if err != nil {
				// Same enrichment policy as weather.
				logger.WarnContext(gctx, "image diagnosis failed", "error", err)
				return nil
			}
			diagnosis = d
			return nil
		})
	}

	g.Go(func() error {
		a, err := s.advise(gctx, req)
		if err != nil {
			return err
		}
		answer = a
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &domain.ChatResponse{
		Answer:    answer,
		Weather:   report,
		Diagnosis: diagnosis,
		Timestamp: time.Now(),
	}
	if report != nil && req.CropType != "" {
		resp.CropAnalysis = domain.AnalyzeForCrop(report, req.CropType)
	}

	if err := s.history.Append(ctx, userID, &domain.HistoryEntry{
		Question:  req.Message,
		Answer:    resp.Answer,
		Timestamp: resp.Timestamp,
	}, s.config.Assistant.HistoryLimit, s.config.Assistant.HistoryTTL); err != nil {
		logger.WarnContext(ctx, "failed to store chat history", "error", err, "user_id", userID)
	}

	return resp, nil
}

func (s *assistantService) advise(ctx context.Context, req *domain.ChatRequest) (string, error) {
	if s.adviser != nil && s.adviser.Enabled() {
		var notes []string
		if req.CropType != "" {
			notes = append(notes, "The farmer grows "+req.CropType+".")
		}
		if req.Location != "" {
			notes = append(notes, "The farm is located in "+req.Location+".")
		}
		answer, err := s.adviser.Advise(ctx, req.Message, notes)
		if err == nil {
			return answer, nil
		}
		logger.WarnContext(ctx, "llm advise failed, using knowledge base", "error", err)
	}
	return knowledgeBaseAnswer(req), nil
}

func (s *assistantService) History(ctx context.Context, userID int64) ([]*domain.HistoryEntry, error) {
	return s.history.Recent(ctx, userID, s.config.Assistant.HistoryLimit)
}

func (s *assistantService) ClearHistory(ctx context.Context, userID int64) error {
	return s.history.Clear(ctx, userID)
}

// knowledgeBaseAnswer is the built-in fallback when no language model
// is configured or reachable.
func knowledgeBaseAnswer(req *domain.ChatRequest) string {
	q := strings.ToLower(req.Message)
	switch {
	case strings.Contains(q, "weather"):
		return "Check the weather panel above for current conditions. Plan irrigation and spraying around dry windows."
	case strings.Contains(q, "fertilizer") || strings.Contains(q, "fertiliser") || strings.Contains(q, "nutrient"):
		return "Base fertilizer decisions on a soil test. As a rule of thumb, apply nitrogen in splits, phosphorus at sowing, and potassium as the crop sets fruit or grain."
	case strings.Contains(q, "pest") || strings.Contains(q, "insect"):
		return "Identify the pest before treating. Start with cultural controls and neem-based sprays; escalate to targeted chemical control only if thresholds are crossed."
	case strings.Contains(q, "disease") || strings.Contains(q, "blight") || strings.Contains(q, "fungus"):
		return "Remove affected plant parts, avoid overhead watering, and improve airflow. Upload a leaf photo to the diagnosis tool for a specific identification."
	case strings.Contains(q, "irrigat") || strings.Contains(q, "water"):
		return "Water deeply and less often rather than shallow daily watering. Early morning irrigation loses the least to evaporation."
	default:
		if req.CropType != "" && domain.KnownCrop(req.CropType) {
			return "For " + strings.ToLower(req.CropType) + ", focus on timely sowing, balanced nutrition, and regular field scouting. Ask a more specific question for detailed guidance."
		}
		return "I can help with crops, pests, diseases, fertilizers, irrigation, and weather planning. Ask a specific question, or mention your crop and location for tailored advice."
	}
}
