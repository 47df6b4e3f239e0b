package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/BorisDmv/techscribe-api/internal/apperr"
	"github.com/BorisDmv/techscribe-api/internal/auth"
	"github.com/BorisDmv/techscribe-api/internal/mail"
	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/storage"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

const (
	resetCodeTTL    = 2 * time.Minute
	verifiedCodeTTL = 5 * time.Minute
)

type UserService struct {
	store    store.UserStore
	tokens   *auth.TokenManager
	mailer   mail.Sender
	uploader storage.Uploader
	events   EventRecorder
	now      func() time.Time
	code     func() (string, error)
}

func NewUserService(s store.UserStore, tokens *auth.TokenManager, mailer mail.Sender, uploader storage.Uploader, events EventRecorder) *UserService {
	return &UserService{
		store:    s,
		tokens:   tokens,
		mailer:   mailer,
		uploader: uploader,
		events:   eventsOrNoop(events),
		now:      time.Now,
		code:     resetCode,
	}
}

type RegisterInput struct {
	FullName string `json:"fullname" validate:"required,max=120"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Color    string `json:"color" validate:"max=120"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput, avatar *Upload) (models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := check(in); err != nil {
		return models.User{}, err
	}

	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return models.User{}, apperr.Conflict("Email already exists!")
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, storeErr(err, "")
	}
	if _, err := s.store.GetUserByUsername(ctx, in.Username); err == nil {
		return models.User{}, apperr.Conflict("Username already taken!")
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, storeErr(err, "")
	}

	var pictureURL string
	if avatar != nil {
		url, err := s.uploader.Upload(ctx, storage.FolderAvatars, avatar.Name, avatar.Body)
		if err != nil {
			return models.User{}, apperr.Upstream("profile image could not be uploaded", err)
		}
		pictureURL = url
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, apperr.Internal("internal server error", err)
	}

	user := models.User{
		FullName:          in.FullName,
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      hash,
		ProfilePictureURL: pictureURL,
		Color:             strings.TrimSpace(in.Color),
		Roles:             models.Roles{models.RoleReader},
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return models.User{}, storeErr(err, "")
	}
	s.events.Event("user_registered")
	return user, nil
}

type LoginResult struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

func (s *UserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return LoginResult{}, storeErr(err, "")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return LoginResult{}, apperr.Unauthorized("Invalid credentials")
	}
	if !user.IsActive {
		return LoginResult{}, apperr.Forbidden("account is blocked")
	}

	access, err := s.tokens.AccessToken(user.ID, user.Roles)
	if err != nil {
		return LoginResult{}, apperr.Internal("token error", err)
	}
	refresh, err := s.tokens.RefreshToken(user.ID)
	if err != nil {
		return LoginResult{}, apperr.Internal("token error", err)
	}
	return LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Refresh issues a new access token carrying the identity's current roles.
func (s *UserService) Refresh(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", apperr.Validation("No refresh token provided")
	}
	claims, err := s.tokens.ParseRefresh(token)
	if err != nil {
		return "", apperr.Unauthorized("Invalid or expired token")
	}
	user, err := s.store.GetUserByID(ctx, claims.UserID())
	if err != nil {
		return "", storeErr(err, "User not found")
	}
	if !user.IsActive {
		return "", apperr.Forbidden("account is blocked")
	}
	access, err := s.tokens.AccessToken(user.ID, user.Roles)
	if err != nil {
		return "", apperr.Internal("token error", err)
	}
	return access, nil
}

func (s *UserService) Me(ctx context.Context, id string) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, storeErr(err, "User not found")
	}
	return user, nil
}

// ForgotPassword stores a fresh reset code and emails it. If the email
// cannot be sent the code is cleared again.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return storeErr(err, "User not found")
	}

	code, err := s.code()
	if err != nil {
		return apperr.Internal("internal server error", err)
	}
	expires := s.now().Add(resetCodeTTL)
	if err := s.store.SetPasswordReset(ctx, user.ID, &code, &expires); err != nil {
		return storeErr(err, "User not found")
	}

	msg, err := mail.PasswordReset(code, resetCodeTTL)
	if err == nil {
		msg.To = user.Email
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		if clearErr := s.store.SetPasswordReset(ctx, user.ID, nil, nil); clearErr != nil {
			slog.Error("failed to clear reset code", "user_id", user.ID, "error", clearErr)
		}
		return apperr.Upstream("Email could not be sent. Please try again later.", err)
	}
	return nil
}

func (s *UserService) VerifyResetCode(ctx context.Context, email, code string) error {
	user, err := s.store.FindUserByResetCode(ctx, strings.TrimSpace(email), strings.TrimSpace(code), s.now())
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Validation("Invalid code or code has expired")
	}
	if err != nil {
		return storeErr(err, "")
	}
	expires := s.now().Add(verifiedCodeTTL)
	if err := s.store.SetPasswordReset(ctx, user.ID, user.ResetPasswordOTP, &expires); err != nil {
		return storeErr(err, "User not found")
	}
	return nil
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

func (s *UserService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Code = strings.TrimSpace(in.Code)
	if err := check(in); err != nil {
		return err
	}
	user, err := s.store.FindUserByResetCode(ctx, in.Email, in.Code, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Validation("Session expired. Please try again.")
	}
	if err != nil {
		return storeErr(err, "")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal("internal server error", err)
	}
	if err := s.store.UpdatePassword(ctx, user.ID, hash); err != nil {
		return storeErr(err, "User not found")
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, callerID string) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx, callerID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return users, nil
}

// ToggleActive blocks or unblocks an identity and returns the new state.
func (s *UserService) ToggleActive(ctx context.Context, id string) (bool, error) {
	active, err := s.store.ToggleUserActive(ctx, id)
	if err != nil {
		return false, storeErr(err, "User not found")
	}
	return active, nil
}

// GrantRole adds role to the identity with the given email.
func (s *UserService) GrantRole(ctx context.Context, email string, role models.Role) (models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return models.User{}, storeErr(err, "User not found")
	}
	if err := s.store.AddUserRole(ctx, user.ID, role); err != nil {
		return models.User{}, storeErr(err, "User not found")
	}
	return s.Me(ctx, user.ID)
}

func resetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
