package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/BorisDmv/techscribe-api/internal/apperr"
	"github.com/BorisDmv/techscribe-api/internal/auth"
	"github.com/BorisDmv/techscribe-api/internal/mail"
	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store/memstore"
)

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeUploader struct {
	folders []string
}

func (f *fakeUploader) Upload(_ context.Context, folder, name string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.folders = append(f.folders, folder)
	return "https://files.example/" + folder + "/" + name, nil
}

type countingEvents map[string]int

func (c countingEvents) Event(name string) { c[name]++ }

func newTokens(t *testing.T) *auth.TokenManager {
	t.Helper()
	m, err := auth.NewTokenManager([]byte("access-secret-0123456789"), []byte("refresh-secret-0123456789"), time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return m
}

func mustUser(t *testing.T, s *memstore.Store, username string, roles ...models.Role) models.User {
	t.Helper()
	u := models.User{
		FullName:     username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Roles:        append(models.Roles{models.RoleReader}, roles...),
	}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", kind)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T: %v", err, err)
	}
	if appErr.Kind != kind {
		t.Fatalf("expected kind %d, got %d (%v)", kind, appErr.Kind, err)
	}
}
