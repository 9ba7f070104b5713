// Package entity defines the domain entities for the users feature.
package entity

import "time"

// User represents a managed user record.
// Timestamps are assigned by the usecase layer, not by GORM: CreatedAt is set
// once at creation and UpdatedAt stays nil until the first update.
type User struct {
	// ID is the unique identifier for the user, assigned by the store.
	ID uint `gorm:"primaryKey"`

	// FirstName is the user's given name.
	FirstName string `gorm:"size:50;not null"`

	// LastName is the user's family name.
	LastName string `gorm:"size:50;not null"`

	// Email is the user's email address.
	// It must be unique across all users, case-insensitively.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Username is the user's login name.
	// It must be unique across all users, case-insensitively.
	Username string `gorm:"uniqueIndex;size:20;not null"`

	// Department is the organizational unit the user belongs to.
	// Defaults to the empty string when not supplied.
	Department string `gorm:"size:255;not null"`

	// PhoneNumber is the user's phone number, if any.
	PhoneNumber *string `gorm:"size:30"`

	// CreatedAt is the UTC timestamp when the record was created.
	// Immutable after creation.
	CreatedAt time.Time `gorm:"autoCreateTime:false"`

	// UpdatedAt is the UTC timestamp of the last update.
	// Nil until the record is updated for the first time.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`

	// IsActive reports whether the user account is active.
	IsActive bool `gorm:"not null"`
}
