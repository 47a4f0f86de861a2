package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/buy01/marketplace-system/internal/core/auth"
	"github.com/buy01/marketplace-system/internal/core/authz"
	"github.com/buy01/marketplace-system/internal/core/domain"
	"github.com/buy01/marketplace-system/internal/core/ports"
)

// UserService implements registration, login, profile management, and account
// deletion. Deleting an account publishes a user-deleted cascade event after
// the local row is gone; downstream cleanup is asynchronous.
type UserService struct {
	repo      ports.UserRepository
	authority *auth.Authority
	relay     ports.EventPublisher
	logger    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, authority *auth.Authority, relay ports.EventPublisher, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, authority: authority, relay: relay, logger: logger}
}

func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	role := domain.Role(in.Role)
	if !role.Valid() {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		Avatar:       in.Avatar,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.authority.Issue(user, nil)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile mutates name, avatar, and optionally the password. Only the
// account owner may mutate it. A password change requires the current
// password; it is re-verified before anything is written, and a mismatch
// leaves the row untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput, requesterID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(user.ID, requesterID) {
		return nil, domain.ErrUnauthorized
	}

	if in.NewPassword != "" {
		if in.Password == "" {
			return nil, domain.ErrInvalidCredentials
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
			return nil, domain.ErrInvalidCredentials
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user and broadcasts user-deleted. The publish
// happens after the delete commits; a publish failure is logged but not
// surfaced, since the deletion itself already succeeded.
func (s *UserService) DeleteAccount(ctx context.Context, userID, requesterID string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !authz.CanMutate(user.ID, requesterID) {
		return domain.ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}

	event := domain.NewCascadeEvent(domain.EventUserDeleted, user.ID)
	if err := s.relay.Publish(ctx, event); err != nil {
		// The row is already gone; dependent data will stay orphaned until a
		// reconciliation sweep exists. Keep the failure visible in the logs.
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to publish user-deleted event")
		return nil
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user deleted, cascade event published")
	return nil
}
