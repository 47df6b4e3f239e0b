package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"

	"github.com/BorisDmv/techscribe-api/internal/apperr"
	"github.com/BorisDmv/techscribe-api/internal/middleware"
	"github.com/BorisDmv/techscribe-api/internal/services"
)

const (
	maxJSONBody      = 1 << 20
	maxMultipartBody = 10 << 20
)

type messageResponse struct {
	Message string `json:"message"`
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("could not encode response", "error", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{Message: message})
}

// respondError writes err as {"message": ...}. Server-side failures are
// logged and reported to Sentry with the generic message only.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	status := appErr.Status()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"message", appErr.Message,
			"error", appErr.Err,
		)
		capture(r, appErr)
	}
	respondMessage(w, status, appErr.Message)
}

func capture(r *http.Request, appErr *apperr.Error) {
	toCapture := error(appErr)
	if appErr.Err != nil {
		toCapture = appErr.Err
	}
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(r)
		scope.SetTag("status", strconv.Itoa(appErr.Status()))
		hub.CaptureException(toCapture)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid body")
	}
	return nil
}

// parseForm reads a multipart form and returns the optional file in field.
// The caller closes the returned closer.
func parseForm(w http.ResponseWriter, r *http.Request, field string) (*services.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			if err := r.ParseForm(); err != nil {
				return nil, func() {}, apperr.Validation("invalid form")
			}
			return nil, func() {}, nil
		}
		return nil, func() {}, apperr.Validation("invalid form")
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperr.Validation("invalid " + field + " file")
	}
	return &services.Upload{Name: header.Filename, Body: file}, func() { _ = file.Close() }, nil
}

func caller(r *http.Request) services.Caller {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return services.Caller{}
	}
	return services.Caller{ID: claims.UserID(), Roles: claims.Roles}
}
