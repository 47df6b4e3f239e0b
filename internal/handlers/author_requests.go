package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/services"
)

type AuthorRequestsHandler struct {
	requests *services.AuthorRequestService
}

func NewAuthorRequestsHandler(requests *services.AuthorRequestService) *AuthorRequestsHandler {
	return &AuthorRequestsHandler{requests: requests}
}

type resolveRequest struct {
	Status string `json:"status"`
}

type requestStatusResponse struct {
	Request *models.AuthorRequest `json:"request"`
}

// Submit accepts a multipart form with an optional "document" file.
func (h *AuthorRequestsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	document, closeFile, err := parseForm(w, r, "document")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer closeFile()

	req, err := h.requests.Submit(r.Context(), caller(r).ID, services.AuthorRequestInput{
		Email:          r.FormValue("email"),
		PhoneNumber:    r.FormValue("phone_number"),
		Qualifications: r.FormValue("qualifications"),
		Reason:         r.FormValue("reason"),
		PortfolioURL:   r.FormValue("portfolio_url"),
		SampleWriting:  r.FormValue("sample_writing"),
	}, document)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

// Status returns the caller's latest request, or null when there is none.
func (h *AuthorRequestsHandler) Status(w http.ResponseWriter, r *http.Request) {
	req, err := h.requests.Mine(r.Context(), caller(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requestStatusResponse{Request: req})
}

func (h *AuthorRequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requests.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

func (h *AuthorRequestsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var body resolveRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	req, err := h.requests.Resolve(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}
