package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

func (s *Store) slugTakenLocked(slug, exceptID string) bool {
	if slug == "" {
		return false
	}
	for id, p := range s.posts {
		if id != exceptID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Store) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[post.AuthorID]; !ok {
		return store.ErrNotFound
	}
	if s.slugTakenLocked(post.Slug, "") {
		return store.ErrDuplicateSlug
	}
	if post.Status == "" {
		post.Status = models.StatusDraft
	}
	now := s.tick()
	post.ID = uuid.NewString()
	post.Views = 0
	post.Likes = 0
	post.IsFeatured = false
	post.CreatedAt = now
	post.UpdatedAt = now
	s.posts[post.ID] = *post
	return nil
}

func (s *Store) GetPost(_ context.Context, id string) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (s *Store) SlugTaken(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTakenLocked(slug, ""), nil
}

func (s *Store) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.posts[post.ID]
	if !ok {
		return store.ErrNotFound
	}
	if s.slugTakenLocked(post.Slug, post.ID) {
		return store.ErrDuplicateSlug
	}
	current.Title = post.Title
	current.Slug = post.Slug
	current.Excerpt = post.Excerpt
	current.Content = post.Content
	current.CoverImage = post.CoverImage
	current.Category = post.Category
	current.Status = post.Status
	current.IsFeatured = post.IsFeatured
	current.UpdatedAt = s.tick()
	s.posts[post.ID] = current
	*post = current
	return nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.posts, id)
	delete(s.likes, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (s *Store) ViewPublishedPost(_ context.Context, slug string) (models.PostView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.posts {
		if p.Slug != slug || p.Status != models.StatusPublished {
			continue
		}
		p.Views++
		s.posts[id] = p
		return models.PostView{Post: p, Author: s.summary(p.AuthorID)}, nil
	}
	return models.PostView{}, store.ErrNotFound
}

func (s *Store) ListPublishedPosts(_ context.Context, q models.PostQuery) ([]models.PostView, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(q.Search)
	matched := make([]models.PostView, 0)
	for _, p := range s.posts {
		if p.Status != models.StatusPublished {
			continue
		}
		if q.Category != "" && !strings.EqualFold(string(p.Category), q.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) {
			continue
		}
		matched = append(matched, models.PostView{Post: p, Author: s.summary(p.AuthorID)})
	}
	sortPosts(matched, q.Sort)

	total := len(matched)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}
	return matched[start:end], total, nil
}

func sortPosts(posts []models.PostView, by models.PostSort) {
	newer := func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) }
	var less func(i, j int) bool
	switch by {
	case models.SortOldest:
		less = func(i, j int) bool { return posts[i].CreatedAt.Before(posts[j].CreatedAt) }
	case models.SortMostViewed:
		less = func(i, j int) bool {
			if posts[i].Views != posts[j].Views {
				return posts[i].Views > posts[j].Views
			}
			return newer(i, j)
		}
	case models.SortMostLiked:
		less = func(i, j int) bool {
			if posts[i].Likes != posts[j].Likes {
				return posts[i].Likes > posts[j].Likes
			}
			return newer(i, j)
		}
	default:
		less = newer
	}
	sort.SliceStable(posts, less)
}

func (s *Store) ListPostsByAuthor(_ context.Context, authorID string, status models.PostStatus) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := make([]models.Post, 0)
	for _, p := range s.posts {
		if p.AuthorID == authorID && p.Status == status {
			posts = append(posts, p)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (s *Store) ListAllPosts(_ context.Context) ([]models.PostView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := make([]models.PostView, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, models.PostView{Post: p, Author: s.summary(p.AuthorID)})
	}
	sortPosts(posts, models.SortNewest)
	return posts, nil
}

func (s *Store) CountPublishedByCategory(_ context.Context) (map[models.Category]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Category]int)
	for _, p := range s.posts {
		if p.Status == models.StatusPublished && p.Category != "" {
			counts[p.Category]++
		}
	}
	return counts, nil
}

func (s *Store) TogglePostLike(_ context.Context, postID, userID string) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return false, 0, store.ErrNotFound
	}
	likers, ok := s.likes[postID]
	if !ok {
		likers = make(map[string]struct{})
		s.likes[postID] = likers
	}
	_, had := likers[userID]
	if had {
		delete(likers, userID)
		post.Likes = max(post.Likes-1, 0)
	} else {
		likers[userID] = struct{}{}
		post.Likes++
	}
	s.posts[postID] = post
	return !had, post.Likes, nil
}
