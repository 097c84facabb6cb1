package users

import (
	"time"

	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CreateUserDTO captures the fields needed to insert a user row.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Name         string
}

// ToModel converts the DTO into the persistence model.
func (dto CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		Name:         dto.Name,
		IsActive:     true,
	}
}

// UserDTO is the public representation of a user.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// FromModel maps the persistence model to the public DTO.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
	}
}
