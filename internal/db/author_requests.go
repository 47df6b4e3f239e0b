package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

const authorRequestColumns = `
	r.id::text,
	r.user_id::text,
	r.email,
	r.phone_number,
	r.qualifications,
	r.reason,
	r.portfolio_url,
	r.sample_writing,
	r.document_url,
	r.status,
	r.created_at,
	r.updated_at
`

func authorRequestFields(req *models.AuthorRequest) []any {
	return []any{
		&req.ID,
		&req.UserID,
		&req.Email,
		&req.PhoneNumber,
		&req.Qualifications,
		&req.Reason,
		&req.PortfolioURL,
		&req.SampleWriting,
		&req.DocumentURL,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	}
}

func (s *Store) CreateAuthorRequest(ctx context.Context, req *models.AuthorRequest) error {
	const query = `
		INSERT INTO author_requests AS r
			(user_id, email, phone_number, qualifications, reason, portfolio_url, sample_writing, document_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'PENDING')
		RETURNING ` + authorRequestColumns

	var created models.AuthorRequest
	err := s.pool.QueryRow(
		ctx,
		query,
		req.UserID,
		req.Email,
		req.PhoneNumber,
		req.Qualifications,
		req.Reason,
		req.PortfolioURL,
		req.SampleWriting,
		req.DocumentURL,
	).Scan(authorRequestFields(&created)...)
	if err != nil {
		return translate(err, "create author request")
	}
	*req = created
	return nil
}

func (s *Store) GetAuthorRequest(ctx context.Context, id string) (models.AuthorRequest, error) {
	query := `SELECT ` + authorRequestColumns + ` FROM author_requests r WHERE r.id = $1`
	var req models.AuthorRequest
	if err := s.pool.QueryRow(ctx, query, id).Scan(authorRequestFields(&req)...); err != nil {
		return models.AuthorRequest{}, translate(err, "get author request")
	}
	return req, nil
}

func (s *Store) LatestAuthorRequest(ctx context.Context, userID string) (models.AuthorRequest, error) {
	query := `SELECT ` + authorRequestColumns + `
		FROM author_requests r
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
		LIMIT 1`
	var req models.AuthorRequest
	if err := s.pool.QueryRow(ctx, query, userID).Scan(authorRequestFields(&req)...); err != nil {
		return models.AuthorRequest{}, translate(err, "latest author request")
	}
	return req, nil
}

func (s *Store) ListAuthorRequests(ctx context.Context) ([]models.AuthorRequestView, error) {
	query := `SELECT ` + authorRequestColumns + `,
			u.id::text, u.fullname, u.username, u.profile_picture_url, u.email
		FROM author_requests r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, translate(err, "list author requests")
	}
	defer rows.Close()

	requests := make([]models.AuthorRequestView, 0)
	for rows.Next() {
		var view models.AuthorRequestView
		dest := append(authorRequestFields(&view.AuthorRequest),
			&view.User.ID,
			&view.User.FullName,
			&view.User.Username,
			&view.User.ProfilePictureURL,
			&view.User.Email,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, translate(err, "scan author request")
		}
		requests = append(requests, view)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "rows error")
	}
	return requests, nil
}

func (s *Store) ResolveAuthorRequest(ctx context.Context, id string, status models.RequestStatus) (models.AuthorRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.AuthorRequest{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE author_requests r SET status = $2, updated_at = now()
		WHERE r.id = $1 AND r.status = 'PENDING'
		RETURNING ` + authorRequestColumns

	var req models.AuthorRequest
	if err := tx.QueryRow(ctx, query, id, string(status)).Scan(authorRequestFields(&req)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.GetAuthorRequest(ctx, id); getErr != nil {
				return models.AuthorRequest{}, getErr
			}
			return models.AuthorRequest{}, store.ErrNotPending
		}
		return models.AuthorRequest{}, translate(err, "resolve author request")
	}

	if status == models.RequestApproved {
		if err := addUserRole(ctx, tx, req.UserID, models.RoleAuthor); err != nil {
			return models.AuthorRequest{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.AuthorRequest{}, fmt.Errorf("commit tx: %w", err)
	}
	return req, nil
}
