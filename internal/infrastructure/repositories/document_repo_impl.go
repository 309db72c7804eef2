package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/infrastructure/models"
	"finid.backend/pkg/utils"
)

// DocumentRepository implements KYC document data operations
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create stores a document record, assigning its id and upload time
func (r *DocumentRepository) Create(ctx context.Context, doc *entities.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = utils.GenerateUUIDv7()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}
	if doc.DocumentType == "" {
		doc.DocumentType = entities.DocumentOther
	}

	return GetDB(ctx, r.db).Create(toDocumentModel(doc)).Error
}

// ListByProfile returns the profile's documents, newest first
func (r *DocumentRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*entities.Document, error) {
	var docModels []models.KycDocument
	err := GetDB(ctx, r.db).
		Where("profile_id = ?", profileID).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&docModels).Error
	if err != nil {
		return nil, err
	}

	docs := make([]*entities.Document, 0, len(docModels))
	for i := range docModels {
		docs = append(docs, toDocumentEntity(&docModels[i]))
	}
	return docs, nil
}

// DeleteOwned deletes a document matched on both id and owning profile
func (r *DocumentRepository) DeleteOwned(ctx context.Context, profileID, id uuid.UUID) (*entities.Document, error) {
	db := GetDB(ctx, r.db)

	var m models.KycDocument
	if err := db.Where("id = ? AND profile_id = ?", id, profileID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	result := db.Where("id = ? AND profile_id = ?", id, profileID).Delete(&models.KycDocument{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return toDocumentEntity(&m), nil
}

// List returns documents across all profiles for staff browsing.
// search matches username, document id, registration number or type.
func (r *DocumentRepository) List(ctx context.Context, filter entities.DocumentListFilter) ([]*entities.DocumentView, int64, error) {
	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Table("kyc_documents").
			Joins("JOIN user_profiles ON user_profiles.id = kyc_documents.profile_id").
			Joins("JOIN users ON users.id = user_profiles.user_id")
		if filter.Search != "" {
			term := likeTerm(filter.Search)
			q = q.Where(
				"LOWER(users.username) LIKE ? OR LOWER(kyc_documents.document_id) LIKE ? OR LOWER(kyc_documents.registration_number) LIKE ? OR LOWER(kyc_documents.document_type) LIKE ?",
				term, term, term, term,
			)
		}
		if filter.DocumentType != "" {
			q = q.Where("kyc_documents.document_type = ?", filter.DocumentType)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := utils.GetPaginationParams(filter.Page, filter.Limit)
	var rows []documentRow
	err := base().
		Select("kyc_documents.*, users.username AS username").
		Order("kyc_documents.uploaded_at DESC").
		Order("kyc_documents.id DESC").
		Limit(page.Limit).
		Offset(page.CalculateOffset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	views := make([]*entities.DocumentView, 0, len(rows))
	for i := range rows {
		views = append(views, &entities.DocumentView{
			Document: toDocumentEntity(&rows[i].KycDocument),
			Username: rows[i].Username,
		})
	}
	return views, total, nil
}

type documentRow struct {
	models.KycDocument
	Username string
}

func toDocumentModel(d *entities.Document) *models.KycDocument {
	return &models.KycDocument{
		ID:                 d.ID,
		ProfileID:          d.ProfileID,
		DocumentFile:       d.FilePath,
		OriginalName:       d.OriginalName,
		ContentType:        d.ContentType,
		Size:               d.Size,
		DocumentType:       string(d.DocumentType),
		DocumentID:         null.NewString(d.DocumentNumber, d.DocumentNumber != "").Ptr(),
		RegistrationNumber: null.NewString(d.RegistrationNumber, d.RegistrationNumber != "").Ptr(),
		UploadedAt:         d.UploadedAt,
	}
}

func toDocumentEntity(m *models.KycDocument) *entities.Document {
	return &entities.Document{
		ID:                 m.ID,
		ProfileID:          m.ProfileID,
		FilePath:           m.DocumentFile,
		OriginalName:       m.OriginalName,
		ContentType:        m.ContentType,
		Size:               m.Size,
		DocumentType:       entities.DocumentType(m.DocumentType),
		DocumentNumber:     null.StringFromPtr(m.DocumentID).String,
		RegistrationNumber: null.StringFromPtr(m.RegistrationNumber).String,
		UploadedAt:         m.UploadedAt,
	}
}
