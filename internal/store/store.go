// Package store declares the persistence contract. internal/db implements it
// on Postgres and internal/store/memstore keeps everything in memory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/BorisDmv/techscribe-api/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateSlug     = errors.New("duplicate slug")
	ErrNotPending        = errors.New("author request is not pending")
)

type Store interface {
	UserStore
	AuthorRequestStore
	PostStore
	CommentStore
	Ping(ctx context.Context) error
	Close()
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	// ListUsers returns every user except excludeID, newest first.
	ListUsers(ctx context.Context, excludeID string) ([]models.User, error)
	ToggleUserActive(ctx context.Context, id string) (bool, error)
	AddUserRole(ctx context.Context, id string, role models.Role) error
	// SetPasswordReset stores or, with nil arguments, clears the reset code.
	SetPasswordReset(ctx context.Context, id string, otp *string, expires *time.Time) error
	// FindUserByResetCode matches email and code with an expiry after now.
	FindUserByResetCode(ctx context.Context, email, code string, now time.Time) (models.User, error)
	// UpdatePassword sets the hash and clears any reset code.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type AuthorRequestStore interface {
	CreateAuthorRequest(ctx context.Context, req *models.AuthorRequest) error
	GetAuthorRequest(ctx context.Context, id string) (models.AuthorRequest, error)
	LatestAuthorRequest(ctx context.Context, userID string) (models.AuthorRequest, error)
	ListAuthorRequests(ctx context.Context) ([]models.AuthorRequestView, error)
	// ResolveAuthorRequest moves a PENDING request to status and, on
	// approval, adds the author role to its user in the same unit of work.
	ResolveAuthorRequest(ctx context.Context, id string, status models.RequestStatus) (models.AuthorRequest, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (models.Post, error)
	SlugTaken(ctx context.Context, slug string) (bool, error)
	// UpdatePost overwrites the editable and moderation fields.
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	// ViewPublishedPost fetches a published post by slug and counts one view.
	ViewPublishedPost(ctx context.Context, slug string) (models.PostView, error)
	ListPublishedPosts(ctx context.Context, q models.PostQuery) ([]models.PostView, int, error)
	ListPostsByAuthor(ctx context.Context, authorID string, status models.PostStatus) ([]models.Post, error)
	ListAllPosts(ctx context.Context) ([]models.PostView, error)
	CountPublishedByCategory(ctx context.Context) (map[models.Category]int, error)
	// TogglePostLike likes the post for userID, or removes an existing like.
	TogglePostLike(ctx context.Context, postID, userID string) (liked bool, likes int64, err error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentView(ctx context.Context, id string) (models.CommentView, error)
	// ListApprovedComments returns approved comments of a post, newest first.
	ListApprovedComments(ctx context.Context, postID string) ([]models.CommentView, error)
	ListAllComments(ctx context.Context) ([]models.CommentAdminView, error)
	ToggleCommentApproval(ctx context.Context, id string) (models.Comment, error)
}
