package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func geminiReply(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	c.seed = func() int { return 42 }
	return c
}

func TestGenerateStripsFences(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(geminiReply("```json\n{\"title\":\"Go\",\"slug\":\"go\",\"excerpt\":\"e\",\"content\":\"# Go\"}\n```")))
	})

	draft, err := c.Generate(context.Background(), "", "DevOps")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("unexpected key %s", gotKey)
	}
	if gotReq.GenerationConfig.MaxOutputTokens != 5000 || gotReq.GenerationConfig.Temperature != 0.7 {
		t.Fatalf("unexpected generation config %+v", gotReq.GenerationConfig)
	}
	if !strings.Contains(gotReq.Contents[0].Parts[0].Text, `"DevOps"`) {
		t.Fatalf("prompt should fall back to the category as focus")
	}
	if draft.Title != "Go" || draft.Slug != "go" || draft.Content != "# Go" {
		t.Fatalf("unexpected draft %+v", draft)
	}
	if !strings.Contains(draft.CoverImage, "seed=42") {
		t.Fatalf("cover image missing seed: %s", draft.CoverImage)
	}
}

func TestGenerateIncomplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply(`{"title": "cut off`)))
	})
	if _, err := c.Generate(context.Background(), "x", "Database"); !errors.Is(err, ErrIncompleteResponse) {
		t.Fatalf("expected ErrIncompleteResponse, got %v", err)
	}
}

func TestGenerateEmptyCandidatesYieldsEmptyDraft(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})
	draft, err := c.Generate(context.Background(), "x", "Database")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if draft.Title != "" || draft.CoverImage == "" {
		t.Fatalf("unexpected draft %+v", draft)
	}
}

func TestGenerateRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	if _, err := c.Generate(context.Background(), "x", "Database"); !errors.Is(err, ErrServiceBusy) {
		t.Fatalf("expected ErrServiceBusy, got %v", err)
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Generate(context.Background(), "x", "Database")
	if err == nil || errors.Is(err, ErrServiceBusy) || errors.Is(err, ErrIncompleteResponse) {
		t.Fatalf("expected generic upstream error, got %v", err)
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.Generate(context.Background(), "", "DevOps"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestImageURL(t *testing.T) {
	c := NewClient(Config{})
	c.seed = func() int { return 7 }
	raw := c.ImageURL("AI&ML")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "image.pollinations.ai" {
		t.Fatalf("unexpected host %s", u.Host)
	}
	if !strings.HasPrefix(u.Path, "/prompt/professional stock photo of AI&ML technology concept") {
		t.Fatalf("unexpected prompt path %s", u.Path)
	}
	q := u.Query()
	if q.Get("width") != "1280" || q.Get("height") != "720" || q.Get("nologo") != "true" || q.Get("model") != "flux" || q.Get("seed") != "7" {
		t.Fatalf("unexpected query %v", q)
	}
}
