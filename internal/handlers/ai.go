package handlers

import (
	"net/http"

	"github.com/BorisDmv/techscribe-api/internal/services"
)

type AIHandler struct {
	ai *services.AIService
}

func NewAIHandler(ai *services.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	draft, err := h.ai.Generate(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, draft)
}
