package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

const postColumns = `
	p.id::text,
	p.author_id::text,
	p.title,
	COALESCE(p.slug, ''),
	p.excerpt,
	p.content,
	p.cover_image,
	p.category,
	p.status,
	p.views,
	p.likes,
	p.is_featured,
	p.created_at,
	p.updated_at
`

const authorColumns = `
	u.id::text,
	u.fullname,
	u.username,
	u.profile_picture_url
`

func postFields(post *models.Post) []any {
	return []any{
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Slug,
		&post.Excerpt,
		&post.Content,
		&post.CoverImage,
		&post.Category,
		&post.Status,
		&post.Views,
		&post.Likes,
		&post.IsFeatured,
		&post.CreatedAt,
		&post.UpdatedAt,
	}
}

func postViewFields(view *models.PostView) []any {
	return append(postFields(&view.Post),
		&view.Author.ID,
		&view.Author.FullName,
		&view.Author.Username,
		&view.Author.ProfilePictureURL,
	)
}

var postOrder = map[models.PostSort]string{
	models.SortNewest:     "p.created_at DESC",
	models.SortOldest:     "p.created_at ASC",
	models.SortMostViewed: "p.views DESC, p.created_at DESC",
	models.SortMostLiked:  "p.likes DESC, p.created_at DESC",
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}

	const query = `
		INSERT INTO posts AS p (author_id, title, slug, excerpt, content, cover_image, category, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, COALESCE(NULLIF($8, ''), 'DRAFT'))
		RETURNING ` + postColumns

	var created models.Post
	err := s.pool.QueryRow(
		ctx,
		query,
		post.AuthorID,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
		post.CoverImage,
		string(post.Category),
		string(post.Status),
	).Scan(postFields(&created)...)
	if err != nil {
		return translate(err, "create post")
	}
	*post = created
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`
	var post models.Post
	if err := s.pool.QueryRow(ctx, query, id).Scan(postFields(&post)...); err != nil {
		return models.Post{}, translate(err, "get post")
	}
	return post, nil
}

func (s *Store) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var taken bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&taken); err != nil {
		return false, translate(err, "check slug")
	}
	return taken, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	const query = `
		UPDATE posts AS p SET
			title = $2,
			slug = NULLIF($3, ''),
			excerpt = $4,
			content = $5,
			cover_image = $6,
			category = $7,
			status = $8,
			is_featured = $9,
			updated_at = now()
		WHERE p.id = $1
		RETURNING ` + postColumns

	var updated models.Post
	err := s.pool.QueryRow(
		ctx,
		query,
		post.ID,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
		post.CoverImage,
		string(post.Category),
		string(post.Status),
		post.IsFeatured,
	).Scan(postFields(&updated)...)
	if err != nil {
		return translate(err, "update post")
	}
	*post = updated
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete post")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ViewPublishedPost(ctx context.Context, slug string) (models.PostView, error) {
	query := `
		WITH p AS (
			UPDATE posts SET views = views + 1
			WHERE slug = $1 AND status = 'PUBLISHED'
			RETURNING *
		)
		SELECT ` + postColumns + `, ` + authorColumns + `
		FROM p JOIN users u ON u.id = p.author_id`

	var view models.PostView
	if err := s.pool.QueryRow(ctx, query, slug).Scan(postViewFields(&view)...); err != nil {
		return models.PostView{}, translate(err, "view post")
	}
	return view, nil
}

func (s *Store) ListPublishedPosts(ctx context.Context, q models.PostQuery) ([]models.PostView, int, error) {
	where := []string{"p.status = 'PUBLISHED'"}
	args := []any{}
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		n := len(args)
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d)", n, n))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		where = append(where, fmt.Sprintf("lower(p.category) = lower($%d)", len(args)))
	}
	whereSQL := strings.Join(where, " AND ")

	order, ok := postOrder[q.Sort]
	if !ok {
		order = postOrder[models.SortNewest]
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM posts p WHERE ` + whereSQL
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translate(err, "count posts")
	}

	listArgs := append(append([]any{}, args...), q.Limit, q.Offset)
	listQuery := fmt.Sprintf(`SELECT %s, %s
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		postColumns, authorColumns, whereSQL, order, len(listArgs)-1, len(listArgs))

	rows, err := s.pool.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, translate(err, "list posts")
	}
	defer rows.Close()

	posts := make([]models.PostView, 0, q.Limit)
	for rows.Next() {
		var view models.PostView
		if err := rows.Scan(postViewFields(&view)...); err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return posts, total, nil
}

func (s *Store) ListPostsByAuthor(ctx context.Context, authorID string, status models.PostStatus) ([]models.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		WHERE p.author_id = $1 AND p.status = $2
		ORDER BY p.created_at DESC`
	rows, err := s.pool.Query(ctx, query, authorID, string(status))
	if err != nil {
		return nil, translate(err, "list author posts")
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(postFields(&post)...); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *Store) ListAllPosts(ctx context.Context) ([]models.PostView, error) {
	query := `SELECT ` + postColumns + `, ` + authorColumns + `
		FROM posts p JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, translate(err, "list all posts")
	}
	defer rows.Close()

	posts := make([]models.PostView, 0)
	for rows.Next() {
		var view models.PostView
		if err := rows.Scan(postViewFields(&view)...); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *Store) CountPublishedByCategory(ctx context.Context) (map[models.Category]int, error) {
	const query = `
		SELECT category, COUNT(*)
		FROM posts
		WHERE status = 'PUBLISHED' AND category <> ''
		GROUP BY category
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, translate(err, "count categories")
	}
	defer rows.Close()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var category models.Category
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return counts, nil
}

func (s *Store) TogglePostLike(ctx context.Context, postID, userID string) (bool, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, 0, translate(err, "unlike post")
	}
	liked := tag.RowsAffected() == 0
	delta := -1
	if liked {
		if _, err := tx.Exec(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID); err != nil {
			return false, 0, translate(err, "like post")
		}
		delta = 1
	}

	var likes int64
	err = tx.QueryRow(ctx, `UPDATE posts SET likes = GREATEST(likes + $2, 0) WHERE id = $1 RETURNING likes`, postID, delta).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, store.ErrNotFound
		}
		return false, 0, translate(err, "count likes")
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, fmt.Errorf("commit tx: %w", err)
	}
	return liked, likes, nil
}
