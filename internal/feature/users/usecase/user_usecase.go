package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user_backend/internal/feature/users/domain/entity"
)

// UserRepository abstracts the persistence layer for user records.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// FindByID returns the user with the given ID.
	// Returns ErrUserNotFound when no such user exists.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindAll returns every stored user in store iteration order.
	FindAll(ctx context.Context) ([]entity.User, error)

	// Create persists a new user and assigns its ID.
	Create(ctx context.Context, user *entity.User) error

	// Update persists all fields of an existing user.
	// Returns ErrConcurrentUpdate when the row matched no records.
	Update(ctx context.Context, user *entity.User) error

	// Delete removes the user. Returns ErrUserNotFound when the row was
	// already gone.
	Delete(ctx context.Context, user *entity.User) error

	// ExistsByID reports whether a user with the given ID exists.
	ExistsByID(ctx context.Context, id uint) (bool, error)

	// ExistsByEmail reports whether any user other than excludeID has a
	// case-insensitively equal email. excludeID may be nil.
	ExistsByEmail(ctx context.Context, email string, excludeID *uint) (bool, error)

	// ExistsByUsername is the username counterpart of ExistsByEmail.
	ExistsByUsername(ctx context.Context, username string, excludeID *uint) (bool, error)
}

// CreateUserInput carries the validated fields for a new user.
type CreateUserInput struct {
	FirstName   string
	LastName    string
	Email       string
	Username    string
	Department  string
	PhoneNumber *string
}

// UpdateUserInput carries a partial update. A nil field is an unchanged
// field, not a clear-to-empty.
type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Username    *string
	Department  *string
	PhoneNumber *string
	IsActive    *bool
}

// UserUsecase provides the business rules for user records.
type UserUsecase struct {
	repo UserRepository
}

// NewUserUsecase creates a new UserUsecase with the given repository.
func NewUserUsecase(repo UserRepository) *UserUsecase {
	return &UserUsecase{repo: repo}
}

// ListUsers returns all users in store iteration order. Never nil.
func (u *UserUsecase) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := u.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// GetUser returns the user with the given ID, or ErrUserNotFound.
func (u *UserUsecase) GetUser(ctx context.Context, id uint) (*entity.User, error) {
	return u.repo.FindByID(ctx, id)
}

// UserExists reports whether a user with the given ID exists.
func (u *UserUsecase) UserExists(ctx context.Context, id uint) (bool, error) {
	return u.repo.ExistsByID(ctx, id)
}

// IsEmailUnique reports whether no user other than excludeID already uses
// the given email, compared case-insensitively. excludeID lets an update
// check uniqueness against all records except itself.
func (u *UserUsecase) IsEmailUnique(ctx context.Context, email string, excludeID *uint) (bool, error) {
	exists, err := u.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// IsUsernameUnique is the username counterpart of IsEmailUnique.
func (u *UserUsecase) IsUsernameUnique(ctx context.Context, username string, excludeID *uint) (bool, error) {
	exists, err := u.repo.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// CreateUser persists a new user record. The store assigns the ID, the
// creation timestamp is set to now (UTC) and the account starts active.
// Uniqueness is the caller's responsibility; CreateUser never checks it, so
// field-level conflict reporting stays decoupled from persistence.
func (u *UserUsecase) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	user := &entity.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Username:    in.Username,
		Department:  in.Department,
		PhoneNumber: in.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
		IsActive:    true,
	}
	if err := u.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies a partial merge to an existing user: only non-nil input
// fields overwrite stored values. The update timestamp is always set, even
// when no recognized field is present.
//
// A concurrent-update signal from the repository is resolved by re-checking
// existence: if the record vanished the result is ErrUserNotFound, otherwise
// the conflict is surfaced as an unrecoverable error.
func (u *UserUsecase) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*entity.User, error) {
	user, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Department != nil {
		user.Department = *in.Department
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = in.PhoneNumber
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	now := time.Now().UTC()
	user.UpdatedAt = &now

	if err := u.repo.Update(ctx, user); err != nil {
		if errors.Is(err, ErrConcurrentUpdate) {
			exists, exErr := u.repo.ExistsByID(ctx, id)
			if exErr != nil {
				return nil, exErr
			}
			if !exists {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("unresolvable concurrent update for user %d: %w", id, err)
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user with the given ID. Hard delete, no tombstone.
func (u *UserUsecase) DeleteUser(ctx context.Context, id uint) error {
	user, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return u.repo.Delete(ctx, user)
}
