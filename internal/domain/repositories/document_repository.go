package repositories

import (
	"context"

	"github.com/google/uuid"

	"finid.backend/internal/domain/entities"
)

// DocumentRepository defines KYC document data operations.
// Every owner-facing method is scoped by profile id.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entities.Document) error
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*entities.Document, error)
	// DeleteOwned removes the document only when it belongs to profileID and
	// returns the removed record. Foreign or unknown ids yield ErrNotFound.
	DeleteOwned(ctx context.Context, profileID, id uuid.UUID) (*entities.Document, error)
	List(ctx context.Context, filter entities.DocumentListFilter) ([]*entities.DocumentView, int64, error)
}
