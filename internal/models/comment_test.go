package models

import (
	"testing"
	"time"
)

func comment(id string, parent string, at time.Time) CommentView {
	c := CommentView{Comment: Comment{ID: id, CreatedAt: at}}
	if parent != "" {
		c.ParentID = &parent
	}
	return c
}

func TestBuildCommentTree(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	// Newest first, as the store returns them.
	flat := []CommentView{
		comment("r2", "", base.Add(5*time.Minute)),
		comment("c3", "r1", base.Add(4*time.Minute)),
		comment("orphan", "gone", base.Add(3*time.Minute)),
		comment("c2", "r1", base.Add(2*time.Minute)),
		comment("g1", "c2", base.Add(90*time.Second)),
		comment("r1", "", base),
	}

	tree := BuildCommentTree(flat)
	var roots []string
	for _, n := range tree {
		roots = append(roots, n.ID)
	}
	if len(roots) != 3 || roots[0] != "r2" || roots[1] != "orphan" || roots[2] != "r1" {
		t.Fatalf("unexpected roots %v", roots)
	}

	r1 := tree[2]
	if len(r1.Replies) != 2 || r1.Replies[0].ID != "c2" || r1.Replies[1].ID != "c3" {
		t.Fatalf("replies should be oldest first: %+v", r1.Replies)
	}
	if len(r1.Replies[0].Replies) != 1 || r1.Replies[0].Replies[0].ID != "g1" {
		t.Fatalf("nested reply missing: %+v", r1.Replies[0].Replies)
	}
	if tree[0].Replies == nil {
		t.Fatalf("replies should be an empty slice, not nil")
	}
}

func TestBuildCommentTreeSelfParent(t *testing.T) {
	tree := BuildCommentTree([]CommentView{comment("a", "a", time.Now())})
	if len(tree) != 1 || tree[0].ID != "a" {
		t.Fatalf("self-parented comment should be a root, got %+v", tree)
	}
}

func TestBuildCommentTreeEmpty(t *testing.T) {
	if tree := BuildCommentTree(nil); tree == nil || len(tree) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tree)
	}
}
