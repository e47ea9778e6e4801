package repository

import (
	"context"
	"floorkeeper/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for staff account operations
type UserRepository interface {
	// Create fails with ErrUserExists when the username is taken
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
