package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

func (s *Store) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[comment.PostID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return store.ErrNotFound
	}
	now := s.tick()
	comment.ID = uuid.NewString()
	comment.IsApproved = true
	comment.CreatedAt = now
	comment.UpdatedAt = now
	s.comments[comment.ID] = *comment
	return nil
}

func (s *Store) GetCommentView(_ context.Context, id string) (models.CommentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return models.CommentView{}, store.ErrNotFound
	}
	return models.CommentView{Comment: c, Author: s.summary(c.AuthorID)}, nil
}

func (s *Store) ListApprovedComments(_ context.Context, postID string) ([]models.CommentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments := make([]models.CommentView, 0)
	for _, c := range s.comments {
		if c.PostID == postID && c.IsApproved {
			comments = append(comments, models.CommentView{Comment: c, Author: s.summary(c.AuthorID)})
		}
	}
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	return comments, nil
}

func (s *Store) ListAllComments(_ context.Context) ([]models.CommentAdminView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments := make([]models.CommentAdminView, 0, len(s.comments))
	for _, c := range s.comments {
		comments = append(comments, models.CommentAdminView{
			CommentView: models.CommentView{Comment: c, Author: s.summary(c.AuthorID)},
			PostTitle:   s.posts[c.PostID].Title,
		})
	}
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	return comments, nil
}

func (s *Store) ToggleCommentApproval(_ context.Context, id string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return models.Comment{}, store.ErrNotFound
	}
	c.IsApproved = !c.IsApproved
	c.UpdatedAt = s.tick()
	s.comments[id] = c
	return c, nil
}
