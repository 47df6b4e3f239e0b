// Package auth holds the credential primitives: the role predicate, JWT
// access and refresh tokens, and password hashing.
package auth

import "github.com/BorisDmv/techscribe-api/internal/models"

// Authorize reports whether actual holds at least one of the required roles.
// An empty required set grants nothing.
func Authorize(required, actual []models.Role) bool {
	for _, want := range required {
		for _, have := range actual {
			if want == have {
				return true
			}
		}
	}
	return false
}
