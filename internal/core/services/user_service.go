package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/password"

	"gorm.io/gorm"
)

// UserService handles profile and user management business logic
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

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	FirstName   *string `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName    *string `json:"lastName" validate:"omitempty,min=2,max=50"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,phone"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=100"`
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Role   string
	Search string
	Params *pagination.Params
}

// UpdateStatusInput toggles a user's active flag
type UpdateStatusInput struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// UpdateRoleInput changes a user's role
type UpdateRoleInput struct {
	Role string `json:"role" validate:"required,oneof=passenger driver operator admin"`
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateProfile updates own name and phone number
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// ChangePassword changes own password after verifying the current one
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(input.CurrentPassword, user.Password) {
		return domain.ErrWrongPassword
	}

	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ Password changed for user ID: %d", userID)
	return nil
}

// ListUsers lists active users, newest first
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) ([]*models.UserResponse, *pagination.Meta, error) {
	filter := repositories.UserFilter{
		Role:       input.Role,
		ActiveOnly: true,
		Search:     input.Search,
	}

	users, total, err := s.userRepo.List(ctx, filter, input.Params.Offset, input.Params.Limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}

	return responses, pagination.GetMeta(input.Params, total), nil
}

// SetStatus activates or deactivates a user. Deactivation revokes every session.
func (s *UserService) SetStatus(ctx context.Context, adminID, userID uint, isActive bool) (*models.UserResponse, error) {
	if adminID == userID && !isActive {
		return nil, domain.ErrCannotDeactivateSelf
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsActive = isActive
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"is_active": isActive}); err != nil {
		return nil, err
	}

	if !isActive {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ User %d active=%t (by admin %d)", user.ID, isActive, adminID)
	return user.ToResponse(), nil
}

// SetRole changes a user's role
func (s *UserService) SetRole(ctx context.Context, adminID, userID uint, role string) (*models.UserResponse, error) {
	if adminID == userID {
		return nil, domain.ErrCannotChangeOwnRole
	}
	if !domain.IsValidRole(role) {
		return nil, domain.NewValidationError("role must be one of [passenger driver operator admin]")
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"role": role}); err != nil {
		return nil, err
	}

	log.Printf("✅ User %d role=%s (by admin %d)", user.ID, role, adminID)
	return user.ToResponse(), nil
}

func (s *UserService) getUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
