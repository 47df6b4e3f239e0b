package models

import (
	"sort"
	"time"
)

type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"blog_id"`
	AuthorID   string    `json:"author_id"`
	ParentID   *string   `json:"parent_comment_id"`
	Content    string    `json:"content"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	Comment
	Author UserSummary `json:"author"`
}

// CommentAdminView adds the title of the commented post.
type CommentAdminView struct {
	CommentView
	PostTitle string `json:"blog_title"`
}

type CommentNode struct {
	CommentView
	Replies []*CommentNode `json:"replies"`
}

// BuildCommentTree nests a flat comment list. Roots keep the input order;
// every reply list is sorted oldest first. A comment whose parent is not in
// the list becomes a root.
func BuildCommentTree(comments []CommentView) []*CommentNode {
	nodes := make([]*CommentNode, len(comments))
	byID := make(map[string]*CommentNode, len(comments))
	for i, c := range comments {
		nodes[i] = &CommentNode{CommentView: c, Replies: []*CommentNode{}}
		byID[c.ID] = nodes[i]
	}

	roots := make([]*CommentNode, 0, len(nodes))
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := byID[*node.ParentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	for _, node := range nodes {
		sort.SliceStable(node.Replies, func(i, j int) bool {
			return node.Replies[i].CreatedAt.Before(node.Replies[j].CreatedAt)
		})
	}
	return roots
}
