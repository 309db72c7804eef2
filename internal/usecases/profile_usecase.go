package usecases

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/domain/repositories"
	"finid.backend/pkg/logger"
	"finid.backend/pkg/metrics"
	"finid.backend/pkg/utils"
)

// PhotoNormalizer re-encodes an uploaded profile photo
type PhotoNormalizer interface {
	Normalize(r io.Reader) (io.Reader, error)
}

// ProfileUsecase reads and edits the caller's own profile
type ProfileUsecase struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	uow         repositories.UnitOfWork
	files       repositories.FileStore
	photos      PhotoNormalizer
}

// NewProfileUsecase creates a new profile usecase
func NewProfileUsecase(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	uow repositories.UnitOfWork,
	files repositories.FileStore,
	photos PhotoNormalizer,
) *ProfileUsecase {
	return &ProfileUsecase{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		uow:         uow,
		files:       files,
		photos:      photos,
	}
}

// GetProfile returns the caller's profile, creating it on first access
func (u *ProfileUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.ProfileView, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := u.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.view(user, profile), nil
}

// UpdateProfile applies a partial update to the profile and the owning
// user's name and email in one transaction. Validation runs first; on a
// validation error neither record is touched.
func (u *ProfileUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.ProfileView, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, err := u.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := *current
	if ve := applyProfileUpdate(&updated, input); ve.HasErrors() {
		if input.Photo != nil {
			metrics.RecordUpload(metrics.KindPhoto, metrics.UploadRejected)
		}
		return nil, ve
	}

	var newPhoto string
	if input.Photo != nil {
		newPhoto, err = u.storePhoto(ctx, userID, input.Photo)
		if err != nil {
			return nil, err
		}
		updated.PhotoPath = null.StringFrom(newPhoto)
	}

	identity := input.Identity()
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if !identity.IsEmpty() {
			if err := u.userRepo.UpdateIdentity(txCtx, userID, identity); err != nil {
				return err
			}
		}
		return u.profileRepo.Update(txCtx, &updated)
	})
	if err != nil {
		if newPhoto != "" {
			_ = u.files.Delete(ctx, newPhoto)
			metrics.RecordUpload(metrics.KindPhoto, metrics.UploadFailed)
		}
		return nil, err
	}

	if newPhoto != "" {
		metrics.RecordUpload(metrics.KindPhoto, metrics.UploadAccepted)
		if old := current.PhotoPath; old.Valid && old.String != "" && old.String != newPhoto {
			if err := u.files.Delete(ctx, old.String); err != nil {
				logger.Warn(ctx, "Failed to remove replaced profile photo", zap.String("path", old.String), zap.Error(err))
			}
		}
	}

	if identity.FirstName != nil {
		user.FirstName = *identity.FirstName
	}
	if identity.LastName != nil {
		user.LastName = *identity.LastName
	}
	if identity.Email != nil {
		user.Email = *identity.Email
	}

	logger.Info(ctx, "Profile updated", zap.String("profile_id", updated.ID.String()))
	return u.view(user, &updated), nil
}

func (u *ProfileUsecase) storePhoto(ctx context.Context, userID uuid.UUID, photo *entities.UploadedFile) (string, error) {
	normalized, err := u.photos.Normalize(photo.Content)
	if err != nil {
		metrics.RecordUpload(metrics.KindPhoto, metrics.UploadRejected)
		return "", domainerrors.FieldError(profilePhotoField, MsgPhotoNotImage)
	}

	name := utils.ReplaceExt(utils.SanitizeFilename(photo.Filename), ".jpg")
	stored, err := u.files.Save(ctx, fmt.Sprintf("profile_photos/%s/%s", userID, name), normalized)
	if err != nil {
		metrics.RecordUpload(metrics.KindPhoto, metrics.UploadFailed)
		return "", fmt.Errorf("failed to store profile photo: %w", err)
	}
	return stored, nil
}

func (u *ProfileUsecase) view(user *entities.User, profile *entities.Profile) *entities.ProfileView {
	v := &entities.ProfileView{
		Profile:   profile,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if profile.PhotoPath.Valid {
		v.PhotoURL = u.files.URL(profile.PhotoPath.String)
	}
	return v
}
