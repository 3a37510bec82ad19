package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orgstack/org-license-manager/internal/models"
	"github.com/orgstack/org-license-manager/internal/repository"
)

// UserService maps authenticated external identities onto internal user
// records. The verified claims are the source of truth on every request; the
// stored record is refreshed whenever they drift.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetOrCreate looks a user up by external identity, creating the record on
// first sight and updating email/role when the claims changed.
func (s *UserService) GetOrCreate(externalID, email, role string) (*models.User, error) {
	user, err := s.userRepo.FindByExternalID(externalID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		user = &models.User{
			ExternalID: externalID,
			Email:      email,
			Role:       role,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}

	if user.Email != email || user.Role != role {
		user.Email = email
		user.Role = role
		user.UpdatedAt = time.Now().UTC()
		if err := s.userRepo.Update(user); err != nil {
			return nil, fmt.Errorf("failed to refresh user claims: %w", err)
		}
	}

	return user, nil
}

// GetByID retrieves a user by internal ID.
func (s *UserService) GetByID(id uuid.UUID) (*models.User, error) {
	return s.userRepo.FindByID(id)
}
