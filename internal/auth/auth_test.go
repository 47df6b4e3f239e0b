package auth

import (
	"testing"
	"time"

	"github.com/BorisDmv/techscribe-api/internal/models"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		required []models.Role
		actual   []models.Role
		want     bool
	}{
		{"intersection", []models.Role{models.RoleAuthor, models.RoleAdmin}, []models.Role{models.RoleReader, models.RoleAdmin}, true},
		{"disjoint", []models.Role{models.RoleAdmin}, []models.Role{models.RoleReader, models.RoleAuthor}, false},
		{"no roles held", []models.Role{models.RoleReader}, nil, false},
		{"nothing required", nil, []models.Role{models.RoleAdmin}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.required, tt.actual); got != tt.want {
				t.Fatalf("Authorize(%v, %v) = %v, want %v", tt.required, tt.actual, got, tt.want)
			}
		})
	}
}

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager([]byte("access-secret-0123456789"), []byte("refresh-secret-0123456789"), time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newManager(t)
	token, err := m.AccessToken("user-1", models.Roles{models.RoleReader, models.RoleAuthor})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID() != "user-1" {
		t.Fatalf("expected user-1 got %s", claims.UserID())
	}
	if !claims.Roles.Has(models.RoleAuthor) {
		t.Fatalf("expected author role, got %v", claims.Roles)
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := newManager(t)
	refresh, err := m.RefreshToken("user-1")
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := m.ParseAccess(refresh); err == nil {
		t.Fatalf("refresh token accepted as access token")
	}
	if _, err := m.ParseRefresh(refresh); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}

	access, err := m.AccessToken("user-1", nil)
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := m.ParseRefresh(access); err == nil {
		t.Fatalf("access token accepted as refresh token")
	}
}

func TestExpiredToken(t *testing.T) {
	m := newManager(t)
	issued := time.Now().Add(-2 * time.Minute)
	m.now = func() time.Time { return issued }
	token, err := m.AccessToken("user-1", nil)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	m.now = time.Now
	if _, err := m.ParseAccess(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestShortSecretRejected(t *testing.T) {
	if _, err := NewTokenManager([]byte("short"), []byte("refresh-secret-0123456789"), time.Minute, time.Hour); err == nil {
		t.Fatalf("expected error for short secret")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected mismatch for wrong password")
	}
}
