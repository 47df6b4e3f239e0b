package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/services"
)

type PostsHandler struct {
	posts *services.PostService
}

func NewPostsHandler(posts *services.PostService) *PostsHandler {
	return &PostsHandler{posts: posts}
}

type moderateRequest struct {
	Type string `json:"type"`
}

type postListResponse struct {
	Count int           `json:"count"`
	Data  []models.Post `json:"data"`
}

type categoryCountsResponse struct {
	Data map[models.Category]int `json:"data"`
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePostInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	post, err := h.posts.Create(r.Context(), caller(r).ID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// ListPublic pages through published posts. Query: search, category, sort,
// page, limit.
func (h *PostsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.posts.ListPublished(r.Context(), services.ListParams{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Page:     parsePositiveInt(q.Get("page"), 1),
		Limit:    parsePositiveInt(q.Get("limit"), services.DefaultPageSize),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdatePostInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	post, err := h.posts.Update(r.Context(), caller(r).ID, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Blog deleted successfully")
}

func (h *PostsHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	h.listMine(w, r, models.StatusPublished)
}

func (h *PostsHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	h.listMine(w, r, models.StatusDraft)
}

func (h *PostsHandler) listMine(w http.ResponseWriter, r *http.Request, status models.PostStatus) {
	posts, err := h.posts.ListMine(r.Context(), caller(r).ID, status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, postListResponse{Count: len(posts), Data: posts})
}

// GetBySlug returns a published post and counts the view.
func (h *PostsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.View(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *PostsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func (h *PostsHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	post, err := h.posts.Moderate(r.Context(), chi.URLParam(r, "id"), req.Type)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *PostsHandler) CategoryCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.posts.CategoryCounts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categoryCountsResponse{Data: counts})
}

func (h *PostsHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.posts.ListByCategory(
		r.Context(),
		chi.URLParam(r, "category"),
		parsePositiveInt(q.Get("page"), 1),
		parsePositiveInt(q.Get("limit"), services.DefaultPageSize),
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *PostsHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	result, err := h.posts.ToggleLike(r.Context(), caller(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
