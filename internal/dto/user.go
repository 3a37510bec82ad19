package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/orgstack/org-license-manager/internal/auth"
	"github.com/orgstack/org-license-manager/internal/models"
)

// UserDTO represents a user
type UserDTO struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"externalId"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
}

// ClaimsDTO echoes the verified token claims back to the caller.
type ClaimsDTO struct {
	ExternalID string `json:"externalId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

// LoginResponseDTO is the payload returned by the login endpoint.
type LoginResponseDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

// ToUserDTO converts a user to DTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		Email:      user.Email,
		Role:       user.Role,
	}
}

// ToClaimsDTO converts verified claims to DTO
func ToClaimsDTO(claims *auth.Claims) ClaimsDTO {
	return ClaimsDTO{
		ExternalID: claims.ExternalID,
		Email:      claims.Email,
		Role:       claims.Role,
	}
}
