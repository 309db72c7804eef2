package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Username is unique.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"date_joined"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// DisplayName falls back to the username when no name is set
func (u *User) DisplayName() string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Username
}

// SignupInput represents a new account request
type SignupInput struct {
	Username  string `json:"username" form:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=150"`
	Email     string `json:"email" form:"email" validate:"required,email,max=254"`
	Password1 string `json:"password1" form:"password1" validate:"required"`
	Password2 string `json:"password2" form:"password2" validate:"required"`
}

// LoginInput represents credentials for the token endpoint and the login page
type LoginInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AuthResponse is returned by signup and token issuance
type AuthResponse struct {
	AccessToken  string `json:"access,omitempty"`
	RefreshToken string `json:"refresh,omitempty"`
	User         *User  `json:"user"`
}

// IdentityUpdate carries the user-level fields editable from the profile form.
// Nil pointers are left unchanged.
type IdentityUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// IsEmpty reports whether nothing would change
func (u IdentityUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil
}
