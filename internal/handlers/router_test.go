package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BorisDmv/techscribe-api/internal/ai"
	"github.com/BorisDmv/techscribe-api/internal/auth"
	"github.com/BorisDmv/techscribe-api/internal/mail"
	"github.com/BorisDmv/techscribe-api/internal/metrics"
	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/services"
	"github.com/BorisDmv/techscribe-api/internal/storage"
	"github.com/BorisDmv/techscribe-api/internal/store/memstore"
)

type stubDrafts struct{}

func (stubDrafts) Generate(_ context.Context, text, category string) (ai.Draft, error) {
	return ai.Draft{Title: "About " + category, Slug: "about", Content: text}, nil
}

type testServer struct {
	t       *testing.T
	srv     *httptest.Server
	users   *services.UserService
	uploads string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := memstore.New()
	tokens, err := auth.NewTokenManager([]byte("access-secret-0123456789"), []byte("refresh-secret-0123456789"), time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	uploadDir := t.TempDir()
	uploader, err := storage.NewLocal(uploadDir, "http://localhost/uploads")
	if err != nil {
		t.Fatalf("uploader: %v", err)
	}
	m := metrics.New()

	users := services.NewUserService(st, tokens, mail.LogSender{}, uploader, m)
	router := NewRouter(Deps{
		DB:             st,
		Tokens:         tokens,
		Users:          users,
		AuthorRequests: services.NewAuthorRequestService(st, uploader, m, true),
		Posts:          services.NewPostService(st, m),
		Comments:       services.NewCommentService(st, m),
		AI:             services.NewAIService(stubDrafts{}, m),
		Metrics:        m,
		AllowedOrigins: []string{"*"},
		UploadDir:      uploadDir,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, users: users, uploads: uploadDir}
}

func (s *testServer) do(method, path, token string, body any) (int, []byte) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, token)
}

func (s *testServer) form(path, token string, fields map[string]string) (int, []byte) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			s.t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		s.t.Fatalf("close form: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, s.srv.URL+path, &buf)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) (int, []byte) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		s.t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, out.Bytes()
}

func (s *testServer) expect(want, got int, body []byte) {
	s.t.Helper()
	if got != want {
		s.t.Fatalf("expected status %d got %d: %s", want, got, body)
	}
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

func (s *testServer) register(username string) {
	s.t.Helper()
	code, body := s.form("/api/v1/auth/register", "", map[string]string{
		"fullname": strings.ToUpper(username[:1]) + username[1:],
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	s.expect(http.StatusCreated, code, body)
}

func (s *testServer) login(username string) services.LoginResult {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "secret123",
	})
	s.expect(http.StatusOK, code, body)
	return decode[services.LoginResult](s.t, body)
}

func (s *testServer) admin() string {
	s.t.Helper()
	s.register("root")
	if _, err := s.users.GrantRole(context.Background(), "root@example.com", models.RoleAdmin); err != nil {
		s.t.Fatalf("grant admin: %v", err)
	}
	return s.login("root").AccessToken
}

func (s *testServer) publishedPost(token string) models.Post {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/blogs/create", token, map[string]string{
		"title":       "Shipping Go services",
		"slug":        "Shipping-Go",
		"excerpt":     "Notes from production",
		"content":     "Build small binaries.",
		"cover_image": "https://img.example.com/cover.png",
		"category":    "DevOps",
		"status":      "PUBLISHED",
	})
	s.expect(http.StatusCreated, code, body)
	return decode[models.Post](s.t, body)
}

func TestReaderBecomesAuthorAndPublishes(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin()

	s.register("alice")
	session := s.login("alice")
	if !session.User.Roles.Has(models.RoleReader) || session.User.Roles.Has(models.RoleAuthor) {
		t.Fatalf("unexpected initial roles %v", session.User.Roles)
	}

	code, body := s.do(http.MethodPost, "/api/v1/blogs/create", session.AccessToken, map[string]string{"title": "early"})
	s.expect(http.StatusForbidden, code, body)

	code, body = s.form("/api/v1/auth/request-author", session.AccessToken, map[string]string{
		"email":          "alice@example.com",
		"phone_number":   "+359888000111",
		"qualifications": "Ten years of backend work",
		"reason":         "I want to share what I learn",
	})
	s.expect(http.StatusCreated, code, body)

	code, body = s.do(http.MethodGet, "/api/v1/auth/author-requests/all", session.AccessToken, nil)
	s.expect(http.StatusForbidden, code, body)

	code, body = s.do(http.MethodGet, "/api/v1/auth/author-requests/all", adminToken, nil)
	s.expect(http.StatusOK, code, body)
	requests := decode[[]models.AuthorRequestView](t, body)
	if len(requests) != 1 || requests[0].User.Username != "alice" {
		t.Fatalf("unexpected request list %+v", requests)
	}

	code, body = s.do(http.MethodPatch, "/api/v1/auth/author-requests/status/"+requests[0].ID, adminToken, map[string]string{"status": "APPROVED"})
	s.expect(http.StatusOK, code, body)

	code, body = s.do(http.MethodPatch, "/api/v1/auth/author-requests/status/"+requests[0].ID, adminToken, map[string]string{"status": "REJECTED"})
	if code < 400 {
		t.Fatalf("resolving twice should fail, got %d", code)
	}

	code, body = s.do(http.MethodGet, "/api/v1/auth/become-author/status", session.AccessToken, nil)
	s.expect(http.StatusOK, code, body)
	status := decode[requestStatusResponse](t, body)
	if status.Request == nil || status.Request.Status != models.RequestApproved {
		t.Fatalf("expected approved request, got %s", body)
	}

	code, body = s.do(http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{"token": session.RefreshToken})
	s.expect(http.StatusOK, code, body)
	authorToken := decode[refreshResponse](t, body).AccessToken

	post := s.publishedPost(authorToken)
	if post.Slug != "shipping-go" || post.Status != models.StatusPublished {
		t.Fatalf("unexpected post %+v", post)
	}

	code, body = s.do(http.MethodPost, "/api/v1/blogs/create", authorToken, map[string]string{
		"title": "Copy", "slug": "shipping-go",
	})
	s.expect(http.StatusConflict, code, body)

	for want := int64(1); want <= 2; want++ {
		code, body = s.do(http.MethodGet, "/api/v1/blogs/shipping-go", "", nil)
		s.expect(http.StatusOK, code, body)
		view := decode[models.PostView](t, body)
		if view.Views != want || view.Author.Username != "alice" {
			t.Fatalf("view %d: got views=%d author=%q", want, view.Views, view.Author.Username)
		}
	}

	code, body = s.do(http.MethodGet, "/api/v1/blogs/all?category=DevOps", "", nil)
	s.expect(http.StatusOK, code, body)
	page := decode[services.PostPage](t, body)
	if page.Pagination.Total != 1 || len(page.Data) != 1 {
		t.Fatalf("unexpected listing %s", body)
	}

	code, body = s.do(http.MethodGet, "/api/v1/blogs/published", authorToken, nil)
	s.expect(http.StatusOK, code, body)
	if mine := decode[postListResponse](t, body); mine.Count != 1 || len(mine.Data) != 1 {
		t.Fatalf("expected one published post, got %s", body)
	}

	code, body = s.do(http.MethodPatch, "/api/v1/blogs/admin/status/"+post.ID, adminToken, map[string]string{"type": "blocked"})
	s.expect(http.StatusOK, code, body)

	code, body = s.do(http.MethodGet, "/api/v1/blogs/shipping-go", "", nil)
	s.expect(http.StatusNotFound, code, body)

	code, body = s.do(http.MethodGet, "/api/v1/blogs/admin/all", adminToken, nil)
	s.expect(http.StatusOK, code, body)
	all := decode[[]models.PostView](t, body)
	if len(all) != 1 || all[0].Status != models.StatusBlocked {
		t.Fatalf("admin should still see the blocked post, got %s", body)
	}
}

func TestDraftPublishFlow(t *testing.T) {
	s := newTestServer(t)
	s.register("erin")
	if _, err := s.users.GrantRole(context.Background(), "erin@example.com", models.RoleAuthor); err != nil {
		t.Fatalf("grant author: %v", err)
	}
	token := s.login("erin").AccessToken

	code, body := s.do(http.MethodPost, "/api/v1/blogs/create", token, map[string]string{
		"title":       "Draft first",
		"slug":        "draft-first",
		"content":     "Body text",
		"cover_image": "https://img.example.com/d.png",
		"category":    "DevOps",
		"status":      "DRAFT",
	})
	s.expect(http.StatusCreated, code, body)
	draft := decode[models.Post](t, body)
	if draft.Status != models.StatusDraft || draft.Excerpt != "" {
		t.Fatalf("unexpected draft %+v", draft)
	}

	code, body = s.do(http.MethodGet, "/api/v1/blogs/drafts", token, nil)
	s.expect(http.StatusOK, code, body)
	if drafts := decode[postListResponse](t, body); drafts.Count != 1 {
		t.Fatalf("expected the draft listed, got %s", body)
	}

	code, body = s.do(http.MethodPut, "/api/v1/blogs/update/"+draft.ID, token, map[string]string{"status": "PUBLISHED"})
	s.expect(http.StatusBadRequest, code, body)

	code, body = s.do(http.MethodPut, "/api/v1/blogs/update/"+draft.ID, token, map[string]string{
		"status":  "PUBLISHED",
		"excerpt": "Now with an excerpt",
	})
	s.expect(http.StatusOK, code, body)
	if published := decode[models.Post](t, body); published.Status != models.StatusPublished {
		t.Fatalf("expected published, got %s", published.Status)
	}

	code, body = s.do(http.MethodGet, "/api/v1/blogs/all", "", nil)
	s.expect(http.StatusOK, code, body)
	page := decode[services.PostPage](t, body)
	if len(page.Data) != 1 || page.Data[0].ID != draft.ID {
		t.Fatalf("public listing should include the post, got %s", body)
	}

	code, body = s.do(http.MethodGet, "/api/v1/blogs/drafts", token, nil)
	s.expect(http.StatusOK, code, body)
	if drafts := decode[postListResponse](t, body); drafts.Count != 0 || len(drafts.Data) != 0 {
		t.Fatalf("drafts should be empty after publishing, got %s", body)
	}

	code, body = s.do(http.MethodGet, "/api/v1/blogs/published", token, nil)
	s.expect(http.StatusOK, code, body)
	if mine := decode[postListResponse](t, body); mine.Count != 1 {
		t.Fatalf("expected one published post, got %s", body)
	}

	code, body = s.do(http.MethodGet, "/api/v1/blogs/categories/counts", "", nil)
	s.expect(http.StatusOK, code, body)
	if counts := decode[categoryCountsResponse](t, body); counts.Data[models.CategoryDevOps] != 1 || len(counts.Data) != 1 {
		t.Fatalf("unexpected category counts %s", body)
	}
}

func TestCategoryCountsEmpty(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(http.MethodGet, "/api/v1/blogs/categories/counts", "", nil)
	s.expect(http.StatusOK, code, body)
	if got := strings.TrimSpace(string(body)); got != `{"data":{}}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestUploadsServeFilesOnly(t *testing.T) {
	s := newTestServer(t)
	dir := filepath.Join(s.uploads, storage.FolderDocuments)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "3f2a-applicant-cv.pdf"), []byte("cv"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	for _, path := range []string{"/uploads/", "/uploads/author_documents/", "/uploads/author_documents"} {
		code, body := s.do(http.MethodGet, path, "", nil)
		if code != http.StatusNotFound {
			t.Fatalf("%s: expected 404 got %d", path, code)
		}
		if strings.Contains(string(body), "applicant-cv") {
			t.Fatalf("%s leaks file names: %s", path, body)
		}
	}

	code, body := s.do(http.MethodGet, "/uploads/author_documents/3f2a-applicant-cv.pdf", "", nil)
	s.expect(http.StatusOK, code, body)
	if string(body) != "cv" {
		t.Fatalf("unexpected file content %q", body)
	}
}

func TestCommentThreadAndModeration(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin()
	post := s.publishedPost(adminToken)

	s.register("bob")
	bob := s.login("bob").AccessToken

	code, body := s.do(http.MethodPost, "/api/v1/comments/add", "", map[string]string{"blog_id": post.ID, "content": "anon"})
	s.expect(http.StatusUnauthorized, code, body)

	code, body = s.do(http.MethodPost, "/api/v1/comments/add", bob, map[string]string{"blog_id": post.ID, "content": "Great read"})
	s.expect(http.StatusCreated, code, body)
	root := decode[models.CommentView](t, body)

	code, body = s.do(http.MethodPost, "/api/v1/comments/add", adminToken, map[string]string{
		"blog_id":           post.ID,
		"content":           "Thanks!",
		"parent_comment_id": root.ID,
	})
	s.expect(http.StatusCreated, code, body)
	reply := decode[models.CommentView](t, body)

	code, body = s.do(http.MethodGet, "/api/v1/comments/"+post.ID, "", nil)
	s.expect(http.StatusOK, code, body)
	tree := decode[[]*models.CommentNode](t, body)
	if len(tree) != 1 || tree[0].ID != root.ID || len(tree[0].Replies) != 1 || tree[0].Replies[0].ID != reply.ID {
		t.Fatalf("unexpected tree %s", body)
	}

	code, body = s.do(http.MethodPatch, "/api/v1/comments/admin/status/"+root.ID, bob, nil)
	s.expect(http.StatusForbidden, code, body)

	code, body = s.do(http.MethodPatch, "/api/v1/comments/admin/status/"+root.ID, adminToken, nil)
	s.expect(http.StatusOK, code, body)
	if decode[models.Comment](t, body).IsApproved {
		t.Fatalf("expected comment to be hidden")
	}

	code, body = s.do(http.MethodGet, "/api/v1/comments/"+post.ID, "", nil)
	s.expect(http.StatusOK, code, body)
	tree = decode[[]*models.CommentNode](t, body)
	if len(tree) != 1 || tree[0].ID != reply.ID {
		t.Fatalf("expected the reply promoted to root, got %s", body)
	}

	code, body = s.do(http.MethodGet, "/api/v1/comments/admin/all", adminToken, nil)
	s.expect(http.StatusOK, code, body)
	if all := decode[[]models.CommentAdminView](t, body); len(all) != 2 || all[0].PostTitle != post.Title {
		t.Fatalf("admin should see every comment, got %s", body)
	}
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register("carol")

	code, body := s.form("/api/v1/auth/register", "", map[string]string{
		"fullname": "Other", "username": "carol2", "email": "carol@example.com", "password": "secret123",
	})
	s.expect(http.StatusConflict, code, body)

	code, body = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "carol@example.com", "password": "wrong-pass"})
	s.expect(http.StatusUnauthorized, code, body)
	if msg := decode[messageResponse](t, body).Message; msg != "Invalid credentials" {
		t.Fatalf("unexpected message %q", msg)
	}

	session := s.login("carol")
	code, body = s.do(http.MethodGet, "/api/v1/auth/me", session.AccessToken, nil)
	s.expect(http.StatusOK, code, body)
	if strings.Contains(string(body), "password") {
		t.Fatalf("me leaks secrets: %s", body)
	}

	code, body = s.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	s.expect(http.StatusUnauthorized, code, body)

	code, body = s.do(http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{})
	s.expect(http.StatusBadRequest, code, body)

	code, body = s.do(http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{"token": session.AccessToken})
	s.expect(http.StatusUnauthorized, code, body)

	code, body = s.do(http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]string{"email": "carol@example.com", "code": "000000"})
	s.expect(http.StatusBadRequest, code, body)
}

func TestAIGenerateRequiresWriter(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.admin()
	s.register("dave")
	reader := s.login("dave").AccessToken

	code, body := s.do(http.MethodPost, "/api/v1/ai/generate", reader, map[string]string{"category": "DevOps"})
	s.expect(http.StatusForbidden, code, body)

	code, body = s.do(http.MethodPost, "/api/v1/ai/generate", adminToken, map[string]string{"text": "ci"})
	s.expect(http.StatusBadRequest, code, body)

	code, body = s.do(http.MethodPost, "/api/v1/ai/generate", adminToken, map[string]string{"text": "ci", "category": "DevOps"})
	s.expect(http.StatusOK, code, body)
	if draft := decode[ai.Draft](t, body); draft.Title != "About DevOps" {
		t.Fatalf("unexpected draft %+v", draft)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/health", "", nil)
	s.expect(http.StatusOK, code, body)

	code, body = s.do(http.MethodGet, "/metrics", "", nil)
	s.expect(http.StatusOK, code, body)
	if !strings.Contains(string(body), "techscribe_http_requests_total") {
		t.Fatalf("metrics missing request counter")
	}
}
