package repositories

import (
	"context"

	"github.com/google/uuid"

	"finid.backend/internal/domain/entities"
)

// ProfileRepository defines profile data operations
type ProfileRepository interface {
	// GetOrCreate returns the profile of userID, creating it with defaults when absent.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
	Update(ctx context.Context, profile *entities.Profile) error
	List(ctx context.Context, filter entities.ProfileListFilter) ([]*entities.ProfileView, int64, error)
}
