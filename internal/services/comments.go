package services

import (
	"context"
	"errors"
	"strings"

	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

type CommentService struct {
	store  store.CommentStore
	events EventRecorder
}

func NewCommentService(s store.CommentStore, events EventRecorder) *CommentService {
	return &CommentService{store: s, events: eventsOrNoop(events)}
}

type AddCommentInput struct {
	PostID   string  `json:"blog_id" validate:"required"`
	Content  string  `json:"content" validate:"required,max=5000"`
	ParentID *string `json:"parent_comment_id"`
}

// Add stores an approved comment. The parent, when given, is not checked to
// belong to the same post.
func (s *CommentService) Add(ctx context.Context, authorID string, in AddCommentInput) (models.CommentView, error) {
	in.PostID = strings.TrimSpace(in.PostID)
	in.Content = strings.TrimSpace(in.Content)
	if err := check(in); err != nil {
		return models.CommentView{}, err
	}
	var parentID *string
	if in.ParentID != nil {
		if p := strings.TrimSpace(*in.ParentID); p != "" {
			parentID = &p
		}
	}

	comment := models.Comment{
		PostID:   in.PostID,
		AuthorID: authorID,
		ParentID: parentID,
		Content:  in.Content,
	}
	if err := s.store.CreateComment(ctx, &comment); err != nil {
		return models.CommentView{}, storeErr(err, "Blog not found")
	}
	s.events.Event("comment_added")

	view, err := s.store.GetCommentView(ctx, comment.ID)
	if err != nil {
		return models.CommentView{}, storeErr(err, "Comment not found")
	}
	return view, nil
}

// Tree returns the approved comments of a post nested by parent.
func (s *CommentService) Tree(ctx context.Context, postID string) ([]*models.CommentNode, error) {
	comments, err := s.store.ListApprovedComments(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return []*models.CommentNode{}, nil
	}
	if err != nil {
		return nil, storeErr(err, "")
	}
	return models.BuildCommentTree(comments), nil
}

func (s *CommentService) ListAll(ctx context.Context) ([]models.CommentAdminView, error) {
	comments, err := s.store.ListAllComments(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return comments, nil
}

func (s *CommentService) ToggleApproval(ctx context.Context, id string) (models.Comment, error) {
	comment, err := s.store.ToggleCommentApproval(ctx, id)
	if err != nil {
		return models.Comment{}, storeErr(err, "Comment not found")
	}
	if !comment.IsApproved {
		s.events.Event("comment_blocked")
	}
	return comment, nil
}

