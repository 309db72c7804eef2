package repositories

import (
	"context"

	"github.com/google/uuid"

	"finid.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	UpdateIdentity(ctx context.Context, id uuid.UUID, update entities.IdentityUpdate) error
	SetStaff(ctx context.Context, id uuid.UUID, isStaff bool) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
