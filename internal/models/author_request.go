package models

import (
	"time"

	"github.com/BorisDmv/techscribe-api/internal/apperr"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

type AuthorRequest struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	Email          string        `json:"email"`
	PhoneNumber    string        `json:"phone_number"`
	Qualifications string        `json:"qualifications"`
	Reason         string        `json:"reason"`
	PortfolioURL   string        `json:"portfolio_url"`
	SampleWriting  string        `json:"sample_writing"`
	DocumentURL    string        `json:"document_url"`
	Status         RequestStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// AuthorRequestView is an author request with its submitter resolved.
type AuthorRequestView struct {
	AuthorRequest
	User UserSummary `json:"user"`
}

// Resolve checks the PENDING -> APPROVED | REJECTED transition.
func (r AuthorRequest) Resolve(target RequestStatus) error {
	if target != RequestApproved && target != RequestRejected {
		return apperr.Validation("status must be APPROVED or REJECTED")
	}
	if r.Status != RequestPending {
		return apperr.Conflict("request has already been " + string(r.Status))
	}
	return nil
}
