package db

import (
	"context"
	"fmt"

	"github.com/BorisDmv/techscribe-api/internal/models"
)

const commentColumns = `
	c.id::text,
	c.post_id::text,
	c.author_id::text,
	c.parent_id,
	c.content,
	c.is_approved,
	c.created_at,
	c.updated_at
`

func commentFields(c *models.Comment) []any {
	return []any{
		&c.ID,
		&c.PostID,
		&c.AuthorID,
		&c.ParentID,
		&c.Content,
		&c.IsApproved,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}

func commentViewFields(view *models.CommentView) []any {
	return append(commentFields(&view.Comment),
		&view.Author.ID,
		&view.Author.FullName,
		&view.Author.Username,
		&view.Author.ProfilePictureURL,
	)
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	const query = `
		INSERT INTO comments AS c (post_id, author_id, parent_id, content, is_approved)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING ` + commentColumns

	var created models.Comment
	err := s.pool.QueryRow(ctx, query, comment.PostID, comment.AuthorID, comment.ParentID, comment.Content).
		Scan(commentFields(&created)...)
	if err != nil {
		return translate(err, "create comment")
	}
	*comment = created
	return nil
}

func (s *Store) GetCommentView(ctx context.Context, id string) (models.CommentView, error) {
	query := `SELECT ` + commentColumns + `, ` + authorColumns + `
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.id = $1`
	var view models.CommentView
	if err := s.pool.QueryRow(ctx, query, id).Scan(commentViewFields(&view)...); err != nil {
		return models.CommentView{}, translate(err, "get comment")
	}
	return view, nil
}

func (s *Store) ListApprovedComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	query := `SELECT ` + commentColumns + `, ` + authorColumns + `
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1 AND c.is_approved
		ORDER BY c.created_at DESC`
	rows, err := s.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, translate(err, "list comments")
	}
	defer rows.Close()

	comments := make([]models.CommentView, 0)
	for rows.Next() {
		var view models.CommentView
		if err := rows.Scan(commentViewFields(&view)...); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return comments, nil
}

func (s *Store) ListAllComments(ctx context.Context) ([]models.CommentAdminView, error) {
	query := `SELECT ` + commentColumns + `, ` + authorColumns + `, p.title
		FROM comments c
		JOIN users u ON u.id = c.author_id
		JOIN posts p ON p.id = c.post_id
		ORDER BY c.created_at DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, translate(err, "list all comments")
	}
	defer rows.Close()

	comments := make([]models.CommentAdminView, 0)
	for rows.Next() {
		var view models.CommentAdminView
		dest := append(commentViewFields(&view.CommentView), &view.PostTitle)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return comments, nil
}

func (s *Store) ToggleCommentApproval(ctx context.Context, id string) (models.Comment, error) {
	query := `UPDATE comments c SET is_approved = NOT c.is_approved, updated_at = now()
		WHERE c.id = $1
		RETURNING ` + commentColumns
	var comment models.Comment
	if err := s.pool.QueryRow(ctx, query, id).Scan(commentFields(&comment)...); err != nil {
		return models.Comment{}, translate(err, "toggle comment")
	}
	return comment, nil
}
