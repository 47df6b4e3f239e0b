package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BorisDmv/techscribe-api/internal/services"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

type toggleActiveResponse struct {
	Message  string `json:"message"`
	IsActive bool   `json:"is_active"`
}

// Register accepts a multipart form with an optional "image" avatar.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	avatar, closeFile, err := parseForm(w, r, "image")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer closeFile()

	user, err := h.users.Register(r.Context(), services.RegisterInput{
		FullName: r.FormValue("fullname"),
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Color:    r.FormValue("color"),
	}, avatar)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "email and password required")
		return
	}
	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Me(r.Context(), caller(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respondMessage(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.users.ForgotPassword(r.Context(), req.Email); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Reset code sent to your email")
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.users.VerifyResetCode(r.Context(), req.Email, req.Code); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Code verified")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ResetPasswordInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.users.ResetPassword(r.Context(), req); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Password has been reset successfully")
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	access, err := h.users.Refresh(r.Context(), req.Token)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, refreshResponse{AccessToken: access})
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), caller(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *AuthHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.users.ToggleActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	message := "User blocked"
	if active {
		message = "User unblocked"
	}
	respondJSON(w, http.StatusOK, toggleActiveResponse{Message: message, IsActive: active})
}
