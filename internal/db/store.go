package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BorisDmv/techscribe-api/internal/store"
)

const (
	uniqueViolation     = "23505"
	invalidTextFormat   = "22P02"
	foreignKeyViolation = "23503"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// translate maps driver errors onto the store sentinels. Malformed ids are
// reported as not found since no row can match them.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextFormat, foreignKeyViolation:
			return store.ErrNotFound
		case uniqueViolation:
			switch {
			case strings.Contains(pgErr.ConstraintName, "email"):
				return store.ErrDuplicateEmail
			case strings.Contains(pgErr.ConstraintName, "username"):
				return store.ErrDuplicateUsername
			case strings.Contains(pgErr.ConstraintName, "slug"):
				return store.ErrDuplicateSlug
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// likePattern turns free text into an ILIKE substring pattern.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(text) + "%"
}
