package models

import (
	"strings"
	"time"

	"github.com/BorisDmv/techscribe-api/internal/apperr"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "DRAFT"
	StatusPublished PostStatus = "PUBLISHED"
	StatusBlocked   PostStatus = "BLOCKED"
)

type Category string

const (
	CategoryAIML        Category = "AI&ML"
	CategoryWeb         Category = "Web Development"
	CategoryMobile      Category = "Mobile Development"
	CategorySystems     Category = "System Design"
	CategoryDevOps      Category = "DevOps"
	CategoryBackend     Category = "Backend Development"
	CategoryFrontend    Category = "Frontend Development"
	CategoryDataScience Category = "Data Science"
	CategoryDatabase    Category = "Database"
)

var Categories = []Category{
	CategoryAIML,
	CategoryWeb,
	CategoryMobile,
	CategorySystems,
	CategoryDevOps,
	CategoryBackend,
	CategoryFrontend,
	CategoryDataScience,
	CategoryDatabase,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Post struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"author_id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Excerpt    string     `json:"excerpt"`
	Content    string     `json:"content"`
	CoverImage string     `json:"cover_image"`
	Category   Category   `json:"category"`
	Status     PostStatus `json:"status"`
	Views      int64      `json:"views"`
	Likes      int64      `json:"likes"`
	IsFeatured bool       `json:"is_featured"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PostView is a post with its author resolved.
type PostView struct {
	Post
	Author UserSummary `json:"author"`
}

// NormalizeSlug applies the stored slug form.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ParseEditableStatus maps the status an author may request. Empty means
// draft; BLOCKED is only reachable through moderation.
func ParseEditableStatus(value string) (PostStatus, error) {
	switch PostStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case "", StatusDraft:
		return StatusDraft, nil
	case StatusPublished:
		return StatusPublished, nil
	default:
		return "", apperr.Validation("status must be DRAFT or PUBLISHED")
	}
}

// Validate enforces the field rules for the post's current status: a
// non-empty category must be known, and published posts need every content
// field.
func (p Post) Validate() error {
	if p.Category != "" && !p.Category.Valid() {
		return apperr.Validation("invalid category selected")
	}
	if p.Status != StatusPublished {
		return nil
	}
	var missing []string
	if strings.TrimSpace(p.Title) == "" {
		missing = append(missing, "title")
	}
	if p.Slug == "" {
		missing = append(missing, "slug")
	}
	if strings.TrimSpace(p.Excerpt) == "" {
		missing = append(missing, "excerpt")
	}
	if strings.TrimSpace(p.Content) == "" {
		missing = append(missing, "content")
	}
	if strings.TrimSpace(p.CoverImage) == "" {
		missing = append(missing, "cover_image")
	}
	if p.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return apperr.Validation(strings.Join(missing, ", ") + " required for publishing")
	}
	return nil
}

type ModerationAction string

const (
	ModerateFeatured ModerationAction = "featured"
	ModerateBlocked  ModerationAction = "blocked"
)

func ParseModerationAction(value string) (ModerationAction, error) {
	switch action := ModerationAction(strings.ToLower(strings.TrimSpace(value))); action {
	case ModerateFeatured, ModerateBlocked:
		return action, nil
	default:
		return "", apperr.Validation("type must be featured or blocked")
	}
}

// Moderate applies an admin action. Blocking clears the featured flag and
// unblocking does not bring it back.
func (p Post) Moderate(action ModerationAction) (Post, error) {
	switch action {
	case ModerateFeatured:
		p.IsFeatured = !p.IsFeatured
	case ModerateBlocked:
		switch p.Status {
		case StatusBlocked:
			p.Status = StatusPublished
		case StatusPublished:
			p.Status = StatusBlocked
			p.IsFeatured = false
		default:
			return p, apperr.Validation("only published posts can be blocked")
		}
	default:
		return p, apperr.Validation("unknown moderation action")
	}
	return p, nil
}

type PostSort string

const (
	SortNewest     PostSort = "newest"
	SortOldest     PostSort = "oldest"
	SortMostViewed PostSort = "most-viewed"
	SortMostLiked  PostSort = "most-liked"
)

func ParsePostSort(value string) (PostSort, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "latest", "newest":
		return SortNewest, nil
	case "oldest":
		return SortOldest, nil
	case "views", "most-viewed":
		return SortMostViewed, nil
	case "likes", "most-liked":
		return SortMostLiked, nil
	default:
		return "", apperr.Validation("sort must be one of latest, oldest, views, likes")
	}
}

// PostQuery describes a public listing. Category is matched
// case-insensitively; an empty category means all.
type PostQuery struct {
	Search   string
	Category string
	Sort     PostSort
	Limit    int
	Offset   int
}
