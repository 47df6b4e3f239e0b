package services

import (
	"context"
	"errors"
	"strings"

	"github.com/BorisDmv/techscribe-api/internal/ai"
	"github.com/BorisDmv/techscribe-api/internal/apperr"
)

type DraftGenerator interface {
	Generate(ctx context.Context, text, category string) (ai.Draft, error)
}

type AIService struct {
	generator DraftGenerator
	events    EventRecorder
}

func NewAIService(g DraftGenerator, events EventRecorder) *AIService {
	return &AIService{generator: g, events: eventsOrNoop(events)}
}

type GenerateInput struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

func (s *AIService) Generate(ctx context.Context, in GenerateInput) (ai.Draft, error) {
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		return ai.Draft{}, apperr.Validation("Category is required for AI generation")
	}
	draft, err := s.generator.Generate(ctx, in.Text, in.Category)
	switch {
	case err == nil:
		s.events.Event("ai_draft_generated")
		return draft, nil
	case errors.Is(err, ai.ErrServiceBusy):
		return ai.Draft{}, apperr.RateLimited("AI service is busy (Rate Limit Exceeded). Please wait 1 minute and try again.")
	case errors.Is(err, ai.ErrIncompleteResponse):
		return ai.Draft{}, apperr.Upstream("AI response was incomplete (JSON Parse Error). Try again.", err)
	default:
		return ai.Draft{}, apperr.Upstream("Failed to generate content", err)
	}
}
