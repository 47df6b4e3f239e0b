package models

import (
	"testing"

	"github.com/BorisDmv/techscribe-api/internal/apperr"
)

func TestRolesWithIsIdempotent(t *testing.T) {
	roles := Roles{RoleReader}
	once := roles.With(RoleAuthor)
	twice := once.With(RoleAuthor)

	if len(twice) != 2 || !twice.Has(RoleAuthor) || !twice.Has(RoleReader) {
		t.Fatalf("unexpected roles %v", twice)
	}
	if len(roles) != 1 {
		t.Fatalf("With must not modify the receiver, got %v", roles)
	}
}

func TestRolesFromStringsDeduplicates(t *testing.T) {
	roles := RolesFromStrings([]string{"READER", "ADMIN", "READER"})
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %v", roles)
	}
}

func TestAuthorRequestResolve(t *testing.T) {
	pending := AuthorRequest{Status: RequestPending}
	if err := pending.Resolve(RequestApproved); err != nil {
		t.Fatalf("approve pending: %v", err)
	}
	if err := pending.Resolve(RequestRejected); err != nil {
		t.Fatalf("reject pending: %v", err)
	}
	if err := pending.Resolve(RequestPending); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("PENDING target should be invalid, got %v", err)
	}

	done := AuthorRequest{Status: RequestRejected}
	if err := done.Resolve(RequestApproved); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("terminal request should conflict, got %v", err)
	}
}
