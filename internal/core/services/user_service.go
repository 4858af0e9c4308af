package services

import (
	"context"
	"errors"
	"log"

	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/adapters/persistence/repositories"
	"relic-ledger/internal/core/domain"
	"relic-ledger/internal/pkg/password"
	"relic-ledger/internal/pkg/validate"

	"gorm.io/gorm"
)

// UserService handles admin user management
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

// UpdateUserInput represents user update input
type UpdateUserInput struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// Create creates a new user account
func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	role := domain.Role(input.Role)
	if !role.IsValid() {
		return nil, domain.Validationf("unknown role %q", input.Role)
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Password: hashed,
		Role:     string(role),
		IsActive: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("User created: %s (role %s)", user.Username, user.Role)
	return user, nil
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update changes role or active flag. Deactivation revokes any live
// refresh tokens immediately.
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		role := domain.Role(*input.Role)
		if !role.IsValid() {
			return nil, domain.Validationf("unknown role %q", *input.Role)
		}
		user.Role = string(role)
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if input.IsActive != nil && !*input.IsActive {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
			log.Printf("Warning: failed to revoke tokens for user %d: %v", user.ID, err)
		}
	}

	return user, nil
}

// Delete removes a user account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id, actorID uint) error {
	if id == actorID {
		return domain.ErrSelfDeletion
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
		log.Printf("Warning: failed to revoke tokens for user %d: %v", user.ID, err)
	}

	return s.userRepo.Delete(ctx, user.ID)
}

// ResetPassword sets a new password and revokes live sessions
func (s *UserService) ResetPassword(ctx context.Context, id uint, newPassword string) error {
	if !password.ValidatePassword(newPassword) {
		return domain.Validationf("password must be at least %d characters", password.MinLength)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
		log.Printf("Warning: failed to revoke tokens for user %d: %v", user.ID, err)
	}

	log.Printf("Password reset for user %s", user.Username)
	return nil
}

// List lists users with pagination
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}
