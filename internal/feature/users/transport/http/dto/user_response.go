package dto

import (
	"time"

	"user_backend/internal/feature/users/domain/entity"
)

// UserResponse is the externally visible projection of a stored user.
// No field is withheld in this domain.
type UserResponse struct {
	ID          uint       `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Department  string     `json:"department"`
	PhoneNumber *string    `json:"phoneNumber"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	IsActive    bool       `json:"isActive"`
}

// NewUserResponse projects a user entity into its response shape.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Username:    u.Username,
		Department:  u.Department,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		IsActive:    u.IsActive,
	}
}

// ErrorResponse is the generic error body: a single message string.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse maps field names to their validation messages.
type ValidationErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}
