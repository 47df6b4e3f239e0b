package services

import (
	"context"
	"strings"

	"github.com/BorisDmv/techscribe-api/internal/apperr"
	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

const (
	slugTakenMessage = "This URL slug is already taken. Please change it."
	postNotFound     = "Blog post not found."

	DefaultPageSize = 9
	MaxPageSize     = 100
)

type PostService struct {
	store  store.PostStore
	events EventRecorder
}

func NewPostService(s store.PostStore, events EventRecorder) *PostService {
	return &PostService{store: s, events: eventsOrNoop(events)}
}

type CreatePostInput struct {
	Title      string `json:"title" validate:"max=200"`
	Slug       string `json:"slug" validate:"max=200"`
	Excerpt    string `json:"excerpt" validate:"max=1000"`
	Content    string `json:"content"`
	CoverImage string `json:"cover_image"`
	Category   string `json:"category" validate:"category"`
	Status     string `json:"status"`
}

// UpdatePostInput overwrites the fields that are present.
type UpdatePostInput struct {
	Title      *string `json:"title" validate:"omitempty,max=200"`
	Slug       *string `json:"slug" validate:"omitempty,max=200"`
	Excerpt    *string `json:"excerpt" validate:"omitempty,max=1000"`
	Content    *string `json:"content"`
	CoverImage *string `json:"cover_image"`
	Category   *string `json:"category" validate:"omitempty,category"`
	Status     *string `json:"status"`
}

func (s *PostService) Create(ctx context.Context, authorID string, in CreatePostInput) (models.Post, error) {
	if err := check(in); err != nil {
		return models.Post{}, err
	}
	status, err := models.ParseEditableStatus(in.Status)
	if err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		AuthorID:   authorID,
		Title:      strings.TrimSpace(in.Title),
		Slug:       models.NormalizeSlug(in.Slug),
		Excerpt:    strings.TrimSpace(in.Excerpt),
		Content:    in.Content,
		CoverImage: strings.TrimSpace(in.CoverImage),
		Category:   models.Category(strings.TrimSpace(in.Category)),
		Status:     status,
	}
	if err := s.ensureSlugFree(ctx, post.Slug); err != nil {
		return models.Post{}, err
	}
	if err := post.Validate(); err != nil {
		return models.Post{}, err
	}

	if err := s.store.CreatePost(ctx, &post); err != nil {
		return models.Post{}, storeErr(err, "User not found")
	}
	if post.Status == models.StatusPublished {
		s.events.Event("post_published")
	}
	return post, nil
}

// Update applies an owner's edit. A blocked post keeps its status.
func (s *PostService) Update(ctx context.Context, callerID, id string, in UpdatePostInput) (models.Post, error) {
	if err := check(in); err != nil {
		return models.Post{}, err
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return models.Post{}, storeErr(err, postNotFound)
	}
	if post.AuthorID != callerID {
		return models.Post{}, apperr.Forbidden("You are not authorized to update this post.")
	}
	wasPublished := post.Status == models.StatusPublished

	if in.Slug != nil {
		slug := models.NormalizeSlug(*in.Slug)
		if slug != post.Slug {
			if err := s.ensureSlugFree(ctx, slug); err != nil {
				return models.Post{}, err
			}
			post.Slug = slug
		}
	}
	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.CoverImage != nil {
		post.CoverImage = strings.TrimSpace(*in.CoverImage)
	}
	if in.Category != nil {
		post.Category = models.Category(strings.TrimSpace(*in.Category))
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		if post.Status == models.StatusBlocked {
			return models.Post{}, apperr.Validation("blocked posts cannot change status")
		}
		status, err := models.ParseEditableStatus(*in.Status)
		if err != nil {
			return models.Post{}, err
		}
		post.Status = status
	}
	if err := post.Validate(); err != nil {
		return models.Post{}, err
	}

	if err := s.store.UpdatePost(ctx, &post); err != nil {
		return models.Post{}, storeErr(err, postNotFound)
	}
	if !wasPublished && post.Status == models.StatusPublished {
		s.events.Event("post_published")
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, caller Caller, id string) error {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return storeErr(err, postNotFound)
	}
	if post.AuthorID != caller.ID && !caller.IsAdmin() {
		return apperr.Forbidden("You are not authorized to delete this post.")
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return storeErr(err, postNotFound)
	}
	return nil
}

// Moderate applies an admin action, "featured" or "blocked", to a post.
func (s *PostService) Moderate(ctx context.Context, id, actionName string) (models.Post, error) {
	action, err := models.ParseModerationAction(actionName)
	if err != nil {
		return models.Post{}, err
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return models.Post{}, storeErr(err, "Post not found")
	}
	post, err = post.Moderate(action)
	if err != nil {
		return models.Post{}, err
	}
	if err := s.store.UpdatePost(ctx, &post); err != nil {
		return models.Post{}, storeErr(err, "Post not found")
	}
	s.events.Event("post_" + string(action))
	return post, nil
}

// View returns a published post and counts the view.
func (s *PostService) View(ctx context.Context, slug string) (models.PostView, error) {
	view, err := s.store.ViewPublishedPost(ctx, models.NormalizeSlug(slug))
	if err != nil {
		return models.PostView{}, storeErr(err, "Blog not found")
	}
	return view, nil
}

type ListParams struct {
	Search   string
	Category string
	Sort     string
	Page     int
	Limit    int
}

type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

type PostPage struct {
	Data       []models.PostView `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// ListPublished pages through published posts. Category "All" means no
// filter.
func (s *PostService) ListPublished(ctx context.Context, p ListParams) (PostPage, error) {
	sortBy, err := models.ParsePostSort(p.Sort)
	if err != nil {
		return PostPage{}, err
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	category := strings.TrimSpace(p.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}

	posts, total, err := s.store.ListPublishedPosts(ctx, models.PostQuery{
		Search:   strings.TrimSpace(p.Search),
		Category: category,
		Sort:     sortBy,
		Limit:    p.Limit,
		Offset:   (p.Page - 1) * p.Limit,
	})
	if err != nil {
		return PostPage{}, storeErr(err, "")
	}
	return PostPage{
		Data: posts,
		Pagination: Pagination{
			Total:      total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: (total + p.Limit - 1) / p.Limit,
			HasMore:    p.Page*p.Limit < total,
		},
	}, nil
}

// ListByCategory lists published posts of a category given in URL form,
// dashes standing for spaces.
func (s *PostService) ListByCategory(ctx context.Context, category string, page, limit int) (PostPage, error) {
	category = strings.TrimSpace(strings.ReplaceAll(category, "-", " "))
	if category == "" {
		return PostPage{}, apperr.Validation("category is required")
	}
	return s.ListPublished(ctx, ListParams{Category: category, Page: page, Limit: limit})
}

func (s *PostService) ListMine(ctx context.Context, authorID string, status models.PostStatus) ([]models.Post, error) {
	posts, err := s.store.ListPostsByAuthor(ctx, authorID, status)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return posts, nil
}

func (s *PostService) ListAll(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.store.ListAllPosts(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return posts, nil
}

func (s *PostService) CategoryCounts(ctx context.Context) (map[models.Category]int, error) {
	counts, err := s.store.CountPublishedByCategory(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return counts, nil
}

type LikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

// ToggleLike likes a published post for userID or takes the like back.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (LikeResult, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return LikeResult{}, storeErr(err, "Blog not found")
	}
	if post.Status != models.StatusPublished {
		return LikeResult{}, apperr.NotFound("Blog not found")
	}
	liked, likes, err := s.store.TogglePostLike(ctx, postID, userID)
	if err != nil {
		return LikeResult{}, storeErr(err, "Blog not found")
	}
	return LikeResult{Liked: liked, Likes: likes}, nil
}

func (s *PostService) ensureSlugFree(ctx context.Context, slug string) error {
	if slug == "" {
		return nil
	}
	taken, err := s.store.SlugTaken(ctx, slug)
	if err != nil {
		return storeErr(err, "")
	}
	if taken {
		return apperr.Conflict(slugTakenMessage)
	}
	return nil
}
