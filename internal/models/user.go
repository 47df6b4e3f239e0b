package models

import "time"

type Role string

const (
	RoleReader Role = "READER"
	RoleAuthor Role = "AUTHOR"
	RoleAdmin  Role = "ADMIN"
)

// Roles is the capability set of an identity. Roles are additive and order
// carries no meaning.
type Roles []Role

func (r Roles) Has(role Role) bool {
	for _, have := range r {
		if have == role {
			return true
		}
	}
	return false
}

// With returns the set with role added; adding a present role is a no-op.
func (r Roles) With(role Role) Roles {
	if r.Has(role) {
		return r
	}
	out := make(Roles, 0, len(r)+1)
	out = append(out, r...)
	return append(out, role)
}

func (r Roles) Strings() []string {
	out := make([]string, len(r))
	for i, role := range r {
		out[i] = string(role)
	}
	return out
}

func RolesFromStrings(values []string) Roles {
	out := make(Roles, 0, len(values))
	for _, v := range values {
		out = out.With(Role(v))
	}
	return out
}

const DefaultColor = "from-indigo-500 to-purple-600"

type User struct {
	ID                   string     `json:"id"`
	FullName             string     `json:"fullname"`
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	ProfilePictureURL    string     `json:"profile_picture_url"`
	Color                string     `json:"color"`
	Roles                Roles      `json:"roles"`
	IsActive             bool       `json:"is_active"`
	ResetPasswordOTP     *string    `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// UserSummary is the author block attached to posts, comments and requests.
type UserSummary struct {
	ID                string `json:"id"`
	FullName          string `json:"fullname"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	Email             string `json:"email,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		FullName:          u.FullName,
		Username:          u.Username,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}
