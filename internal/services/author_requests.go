package services

import (
	"context"
	"errors"
	"strings"

	"github.com/BorisDmv/techscribe-api/internal/apperr"
	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/storage"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

type AuthorRequestService struct {
	store         store.AuthorRequestStore
	uploader      storage.Uploader
	events        EventRecorder
	allowResubmit bool
}

func NewAuthorRequestService(s store.AuthorRequestStore, uploader storage.Uploader, events EventRecorder, allowResubmit bool) *AuthorRequestService {
	return &AuthorRequestService{
		store:         s,
		uploader:      uploader,
		events:        eventsOrNoop(events),
		allowResubmit: allowResubmit,
	}
}

type AuthorRequestInput struct {
	Email          string `json:"email" validate:"required,email"`
	PhoneNumber    string `json:"phone_number" validate:"required,max=32"`
	Qualifications string `json:"qualifications" validate:"required"`
	Reason         string `json:"reason" validate:"required"`
	PortfolioURL   string `json:"portfolio_url" validate:"omitempty,url"`
	SampleWriting  string `json:"sample_writing"`
}

// Submit files a PENDING request for userID. document is optional.
func (s *AuthorRequestService) Submit(ctx context.Context, userID string, in AuthorRequestInput, document *Upload) (models.AuthorRequest, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Qualifications = strings.TrimSpace(in.Qualifications)
	in.Reason = strings.TrimSpace(in.Reason)
	in.PortfolioURL = strings.TrimSpace(in.PortfolioURL)
	if err := check(in); err != nil {
		return models.AuthorRequest{}, err
	}

	if !s.allowResubmit {
		_, err := s.store.LatestAuthorRequest(ctx, userID)
		if err == nil {
			return models.AuthorRequest{}, apperr.Conflict("an author request has already been submitted")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return models.AuthorRequest{}, storeErr(err, "")
		}
	}

	var documentURL string
	if document != nil {
		url, err := s.uploader.Upload(ctx, storage.FolderDocuments, document.Name, document.Body)
		if err != nil {
			return models.AuthorRequest{}, apperr.Upstream("document could not be uploaded", err)
		}
		documentURL = url
	}

	req := models.AuthorRequest{
		UserID:         userID,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		Qualifications: in.Qualifications,
		Reason:         in.Reason,
		PortfolioURL:   in.PortfolioURL,
		SampleWriting:  strings.TrimSpace(in.SampleWriting),
		DocumentURL:    documentURL,
	}
	if err := s.store.CreateAuthorRequest(ctx, &req); err != nil {
		return models.AuthorRequest{}, storeErr(err, "User not found")
	}
	s.events.Event("author_request_submitted")
	return req, nil
}

// Mine returns the caller's most recent request, or nil when there is none.
func (s *AuthorRequestService) Mine(ctx context.Context, userID string) (*models.AuthorRequest, error) {
	req, err := s.store.LatestAuthorRequest(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err, "")
	}
	return &req, nil
}

func (s *AuthorRequestService) List(ctx context.Context) ([]models.AuthorRequestView, error) {
	requests, err := s.store.ListAuthorRequests(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return requests, nil
}

// Resolve approves or rejects a pending request. Approval grants the
// author role in the same store operation.
func (s *AuthorRequestService) Resolve(ctx context.Context, id, status string) (models.AuthorRequest, error) {
	target := models.RequestStatus(strings.ToUpper(strings.TrimSpace(status)))

	current, err := s.store.GetAuthorRequest(ctx, id)
	if err != nil {
		return models.AuthorRequest{}, storeErr(err, "Request not found")
	}
	if err := current.Resolve(target); err != nil {
		return models.AuthorRequest{}, err
	}

	resolved, err := s.store.ResolveAuthorRequest(ctx, id, target)
	if errors.Is(err, store.ErrNotPending) {
		latest, getErr := s.store.GetAuthorRequest(ctx, id)
		if getErr != nil {
			return models.AuthorRequest{}, storeErr(getErr, "Request not found")
		}
		if err := latest.Resolve(target); err != nil {
			return models.AuthorRequest{}, err
		}
		return models.AuthorRequest{}, apperr.Conflict("request has already been resolved")
	}
	if err != nil {
		return models.AuthorRequest{}, storeErr(err, "Request not found")
	}
	s.events.Event("author_request_" + strings.ToLower(string(target)))
	return resolved, nil
}
