package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BorisDmv/techscribe-api/internal/services"
)

type CommentsHandler struct {
	comments *services.CommentService
}

func NewCommentsHandler(comments *services.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

func (h *CommentsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req services.AddCommentInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	comment, err := h.comments.Add(r.Context(), caller(r).ID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// Tree returns the approved comments of a post nested by parent.
func (h *CommentsHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.comments.Tree(r.Context(), chi.URLParam(r, "blogId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

func (h *CommentsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

func (h *CommentsHandler) ToggleApproval(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comments.ToggleApproval(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, comment)
}
