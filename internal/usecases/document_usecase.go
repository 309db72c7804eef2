package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finid.backend/internal/domain/entities"
	"finid.backend/internal/domain/repositories"
	"finid.backend/pkg/logger"
	"finid.backend/pkg/metrics"
	"finid.backend/pkg/utils"
)

// DocumentUsecase manages the caller's own KYC documents
type DocumentUsecase struct {
	profileRepo  repositories.ProfileRepository
	documentRepo repositories.DocumentRepository
	uow          repositories.UnitOfWork
	files        repositories.FileStore
}

// NewDocumentUsecase creates a new document usecase
func NewDocumentUsecase(
	profileRepo repositories.ProfileRepository,
	documentRepo repositories.DocumentRepository,
	uow repositories.UnitOfWork,
	files repositories.FileStore,
) *DocumentUsecase {
	return &DocumentUsecase{
		profileRepo:  profileRepo,
		documentRepo: documentRepo,
		uow:          uow,
		files:        files,
	}
}

// ListDocuments returns the caller's documents, newest first
func (u *DocumentUsecase) ListDocuments(ctx context.Context, userID uuid.UUID) ([]*entities.DocumentView, error) {
	profile, err := u.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	docs, err := u.documentRepo.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	views := make([]*entities.DocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, u.view(d))
	}
	return views, nil
}

// UploadDocument validates and stores a document under kyc/<user id>/.
// A rejected upload writes neither a file nor a record.
func (u *DocumentUsecase) UploadDocument(ctx context.Context, userID uuid.UUID, input *entities.UploadDocumentInput) (*entities.DocumentView, error) {
	if ve := validateDocumentInput(input); ve.HasErrors() {
		metrics.RecordUpload(metrics.KindDocument, metrics.UploadRejected)
		return nil, ve
	}

	profile, err := u.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	file := input.File
	relPath := fmt.Sprintf("kyc/%s/%s", userID, utils.SanitizeFilename(file.Filename))
	stored, err := u.files.Save(ctx, relPath, file.Content)
	if err != nil {
		metrics.RecordUpload(metrics.KindDocument, metrics.UploadFailed)
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &entities.Document{
		ProfileID:          profile.ID,
		FilePath:           stored,
		OriginalName:       utils.TruncateFilename(file.Filename, entities.MaxOriginalNameLength),
		ContentType:        file.ContentType,
		Size:               file.Size,
		DocumentType:       entities.DocumentType(input.DocumentType),
		DocumentNumber:     input.DocumentNumber,
		RegistrationNumber: input.RegistrationNumber,
	}
	if err := u.documentRepo.Create(ctx, doc); err != nil {
		if derr := u.files.Delete(ctx, stored); derr != nil {
			logger.Warn(ctx, "Failed to remove orphaned upload", zap.String("path", stored), zap.Error(derr))
		}
		metrics.RecordUpload(metrics.KindDocument, metrics.UploadFailed)
		return nil, err
	}

	metrics.RecordUpload(metrics.KindDocument, metrics.UploadAccepted)
	logger.Info(ctx, "KYC document stored",
		zap.String("document_id", doc.ID.String()),
		zap.String("profile_id", profile.ID.String()),
		zap.String("document_type", string(doc.DocumentType)),
	)
	return u.view(doc), nil
}

// DeleteDocument removes one of the caller's documents. Ids that are unknown
// or belong to another profile yield ErrNotFound and nothing is removed.
func (u *DocumentUsecase) DeleteDocument(ctx context.Context, userID, documentID uuid.UUID) error {
	profile, err := u.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	var removed *entities.Document
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		removed, err = u.documentRepo.DeleteOwned(txCtx, profile.ID, documentID)
		return err
	})
	if err != nil {
		return err
	}

	if err := u.files.Delete(ctx, removed.FilePath); err != nil {
		logger.Warn(ctx, "Failed to remove document file", zap.String("path", removed.FilePath), zap.Error(err))
	}
	logger.Info(ctx, "KYC document deleted", zap.String("document_id", documentID.String()))
	return nil
}

func (u *DocumentUsecase) view(d *entities.Document) *entities.DocumentView {
	return &entities.DocumentView{Document: d, FileURL: u.files.URL(d.FilePath)}
}
