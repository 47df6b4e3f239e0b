// Package memstore is an in-memory store.Store used by tests and by
// DATABASE_URL=memory://.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	last     time.Time
	users    map[string]models.User
	requests map[string]models.AuthorRequest
	posts    map[string]models.Post
	likes    map[string]map[string]struct{}
	comments map[string]models.Comment
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[string]models.User),
		requests: make(map[string]models.AuthorRequest),
		posts:    make(map[string]models.Post),
		likes:    make(map[string]map[string]struct{}),
		comments: make(map[string]models.Comment),
	}
}

// tick returns a timestamp strictly after the previous one so orderings by
// created_at are total. Callers hold the write lock.
func (s *Store) tick() time.Time {
	t := s.now().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

// users

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
		if u.Username == user.Username {
			return store.ErrDuplicateUsername
		}
	}
	if len(user.Roles) == 0 {
		user.Roles = models.Roles{models.RoleReader}
	}
	if user.Color == "" {
		user.Color = models.DefaultColor
	}
	now := s.tick()
	user.ID = uuid.NewString()
	user.IsActive = true
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Roles = append(models.Roles(nil), user.Roles...)
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *Store) findUser(match func(models.User) bool) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context, excludeID string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for id, u := range s.users {
		if id != excludeID {
			users = append(users, copyUser(u))
		}
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) ToggleUserActive(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return false, store.ErrNotFound
	}
	user.IsActive = !user.IsActive
	user.UpdatedAt = s.tick()
	s.users[id] = user
	return user.IsActive, nil
}

func (s *Store) AddUserRole(_ context.Context, id string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserRole(id, role)
}

func (s *Store) addUserRole(id string, role models.Role) error {
	user, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Roles = user.Roles.With(role)
	user.UpdatedAt = s.tick()
	s.users[id] = user
	return nil
}

func (s *Store) SetPasswordReset(_ context.Context, id string, otp *string, expires *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.ResetPasswordOTP = otp
	user.ResetPasswordExpires = expires
	user.UpdatedAt = s.tick()
	s.users[id] = user
	return nil
}

func (s *Store) FindUserByResetCode(_ context.Context, email, code string, now time.Time) (models.User, error) {
	return s.findUser(func(u models.User) bool {
		return u.Email == email &&
			u.ResetPasswordOTP != nil && *u.ResetPasswordOTP == code &&
			u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now)
	})
}

func (s *Store) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.ResetPasswordOTP = nil
	user.ResetPasswordExpires = nil
	user.UpdatedAt = s.tick()
	s.users[id] = user
	return nil
}

func copyUser(u models.User) models.User {
	u.Roles = append(models.Roles(nil), u.Roles...)
	return u
}

func (s *Store) summary(userID string) models.UserSummary {
	return s.users[userID].Summary()
}

// author requests

func (s *Store) CreateAuthorRequest(_ context.Context, req *models.AuthorRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[req.UserID]; !ok {
		return store.ErrNotFound
	}
	now := s.tick()
	req.ID = uuid.NewString()
	req.Status = models.RequestPending
	req.CreatedAt = now
	req.UpdatedAt = now
	s.requests[req.ID] = *req
	return nil
}

func (s *Store) GetAuthorRequest(_ context.Context, id string) (models.AuthorRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return models.AuthorRequest{}, store.ErrNotFound
	}
	return req, nil
}

func (s *Store) LatestAuthorRequest(_ context.Context, userID string) (models.AuthorRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest models.AuthorRequest
	found := false
	for _, req := range s.requests {
		if req.UserID != userID {
			continue
		}
		if !found || req.CreatedAt.After(latest.CreatedAt) {
			latest = req
			found = true
		}
	}
	if !found {
		return models.AuthorRequest{}, store.ErrNotFound
	}
	return latest, nil
}

func (s *Store) ListAuthorRequests(_ context.Context) ([]models.AuthorRequestView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]models.AuthorRequestView, 0, len(s.requests))
	for _, req := range s.requests {
		user := s.summary(req.UserID)
		user.Email = s.users[req.UserID].Email
		views = append(views, models.AuthorRequestView{AuthorRequest: req, User: user})
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	return views, nil
}

func (s *Store) ResolveAuthorRequest(_ context.Context, id string, status models.RequestStatus) (models.AuthorRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return models.AuthorRequest{}, store.ErrNotFound
	}
	if req.Status != models.RequestPending {
		return models.AuthorRequest{}, store.ErrNotPending
	}
	if status == models.RequestApproved {
		if err := s.addUserRole(req.UserID, models.RoleAuthor); err != nil {
			return models.AuthorRequest{}, err
		}
	}
	req.Status = status
	req.UpdatedAt = s.tick()
	s.requests[id] = req
	return req, nil
}
