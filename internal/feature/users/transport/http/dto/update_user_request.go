package dto

// UpdateUserReq represents the request body for PUT /api/Users/:id.
// Every field is optional: a nil field is an unchanged field, not a
// clear-to-empty. Per-field validation matches CreateUserReq when present.
type UpdateUserReq struct {
	FirstName   *string `json:"firstName" binding:"omitempty,max=50"`
	LastName    *string `json:"lastName" binding:"omitempty,max=50"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Username    *string `json:"username" binding:"omitempty,min=3,max=20"`
	Department  *string `json:"department"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,phone"`
	IsActive    *bool   `json:"isActive"`
}
