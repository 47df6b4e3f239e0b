package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    fullname TEXT NOT NULL,
	    username TEXT NOT NULL UNIQUE,
	    email TEXT NOT NULL UNIQUE,
	    password_hash TEXT NOT NULL,
	    profile_picture_url TEXT NOT NULL DEFAULT '',
	    color TEXT NOT NULL DEFAULT 'from-indigo-500 to-purple-600',
	    roles TEXT[] NOT NULL DEFAULT '{READER}',
	    is_active BOOLEAN NOT NULL DEFAULT TRUE,
	    reset_password_otp TEXT,
	    reset_password_expires TIMESTAMPTZ,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS author_requests (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    user_id UUID NOT NULL REFERENCES users(id),
	    email TEXT NOT NULL,
	    phone_number TEXT NOT NULL,
	    qualifications TEXT NOT NULL,
	    reason TEXT NOT NULL,
	    portfolio_url TEXT NOT NULL DEFAULT '',
	    sample_writing TEXT NOT NULL DEFAULT '',
	    document_url TEXT NOT NULL DEFAULT '',
	    status TEXT NOT NULL DEFAULT 'PENDING',
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS author_requests_user_idx ON author_requests (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS posts (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    author_id UUID NOT NULL REFERENCES users(id),
	    title TEXT NOT NULL DEFAULT '',
	    slug TEXT UNIQUE,
	    excerpt TEXT NOT NULL DEFAULT '',
	    content TEXT NOT NULL DEFAULT '',
	    cover_image TEXT NOT NULL DEFAULT '',
	    category TEXT NOT NULL DEFAULT '',
	    status TEXT NOT NULL DEFAULT 'DRAFT',
	    views BIGINT NOT NULL DEFAULT 0,
	    likes BIGINT NOT NULL DEFAULT 0,
	    is_featured BOOLEAN NOT NULL DEFAULT FALSE,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS posts_status_created_idx ON posts (status, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS post_likes (
	    post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	    user_id UUID NOT NULL REFERENCES users(id),
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    PRIMARY KEY (post_id, user_id)
	)`,
	// parent_id has no foreign key: replies may point at any id and are
	// shown as roots when the parent is not visible.
	`CREATE TABLE IF NOT EXISTS comments (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	    author_id UUID NOT NULL REFERENCES users(id),
	    parent_id TEXT,
	    content TEXT NOT NULL,
	    is_approved BOOLEAN NOT NULL DEFAULT TRUE,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS comments_post_idx ON comments (post_id, created_at DESC)`,
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	for _, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
