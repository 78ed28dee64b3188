package services

import (
	"context"
	"errors"
	"strings"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"
	"smartwash-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// User management errors
var (
	ErrCannotDeleteSelf  = errors.New("cannot delete your own account")
	ErrEmailAlreadyTaken = errors.New("email already in use")
	ErrWrongPassword     = errors.New("current password is incorrect")
	ErrPasswordTooShort  = errors.New("password is too short")
	ErrInvalidRole       = errors.New("invalid role")
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UserListOutput represents a paginated user listing
type UserListOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// AdminUpdateUserInput represents an admin update of a user account
type AdminUpdateUserInput struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// ChangePasswordInput represents password change input
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*UserListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &UserListOutput{
		Users:      responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetUserByID gets a single user
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserByAdmin updates role and active state of a user
func (s *UserService) UpdateUserByAdmin(ctx context.Context, id uint, input *AdminUpdateUserInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		role := *input.Role
		if role != models.RoleCustomer && role != models.RoleAdmin {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser soft-deletes a user. Admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, id, actorID uint) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.GetUserByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// GetProfile gets the profile of the authenticated user
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.GetUserByID(ctx, userID)
}

// UpdateProfile updates email and phone number of the authenticated user
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != "" {
		email := strings.ToLower(strings.TrimSpace(input.Email))
		if email != user.Email {
			taken, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmailAlreadyTaken
			}
			user.Email = email
		}
	}
	if input.PhoneNumber != "" {
		user.PhoneNumber = input.PhoneNumber
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword changes the password of the authenticated user
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(input.CurrentPassword, user.Password) {
		return ErrWrongPassword
	}
	if len(input.NewPassword) < password.MinLength {
		return ErrPasswordTooShort
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}
