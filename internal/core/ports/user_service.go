package ports

import (
	"context"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

// RegisterInput carries the data for creating a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Avatar   string
}

// UpdateProfileInput carries a profile mutation. Password and NewPassword are
// both required to change the password: the current password is re-verified
// before the new hash is stored.
type UpdateProfileInput struct {
	Name        string
	Avatar      string
	Password    string
	NewPassword string
}

// UserService defines account use cases.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login returns a signed bearer token alongside the authenticated user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput, requesterID string) (*domain.User, error)
	// DeleteAccount removes the user row and publishes a user-deleted cascade
	// event. The call succeeds once the local delete commits; downstream
	// cascade processing is asynchronous and not reflected in the result.
	DeleteAccount(ctx context.Context, userID, requesterID string) error
}
