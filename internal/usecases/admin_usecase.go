package usecases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/domain/repositories"
	"finid.backend/pkg/crypto"
	"finid.backend/pkg/logger"
	"finid.backend/pkg/utils"
)

// AdminUsecase backs staff browsing and account administration
type AdminUsecase struct {
	userRepo     repositories.UserRepository
	profileRepo  repositories.ProfileRepository
	documentRepo repositories.DocumentRepository
	uow          repositories.UnitOfWork
	files        repositories.FileStore
}

// NewAdminUsecase creates a new admin usecase
func NewAdminUsecase(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	documentRepo repositories.DocumentRepository,
	uow repositories.UnitOfWork,
	files repositories.FileStore,
) *AdminUsecase {
	return &AdminUsecase{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		documentRepo: documentRepo,
		uow:          uow,
		files:        files,
	}
}

// ListProfiles returns a page of profiles with their owners
func (u *AdminUsecase) ListProfiles(ctx context.Context, filter entities.ProfileListFilter) ([]*entities.ProfileView, utils.PaginationMeta, error) {
	page := utils.GetPaginationParams(filter.Page, filter.Limit)
	filter.Page, filter.Limit = page.Page, page.Limit

	profiles, total, err := u.profileRepo.List(ctx, filter)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	for _, p := range profiles {
		if p.PhotoPath.Valid {
			p.PhotoURL = u.files.URL(p.PhotoPath.String)
		}
	}
	return profiles, utils.CalculateMeta(total, page.Page, page.Limit), nil
}

// ListDocuments returns a page of documents across all profiles
func (u *AdminUsecase) ListDocuments(ctx context.Context, filter entities.DocumentListFilter) ([]*entities.DocumentView, utils.PaginationMeta, error) {
	page := utils.GetPaginationParams(filter.Page, filter.Limit)
	filter.Page, filter.Limit = page.Page, page.Limit

	docs, total, err := u.documentRepo.List(ctx, filter)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	for _, d := range docs {
		d.FileURL = u.files.URL(d.FilePath)
	}
	return docs, utils.CalculateMeta(total, page.Page, page.Limit), nil
}

// EnsureStaff creates a staff account, or promotes the existing user with
// that username and resets its password. It reports whether a user was created.
func (u *AdminUsecase) EnsureStaff(ctx context.Context, username, email, password string) (*entities.User, bool, error) {
	if username == "" || password == "" {
		return nil, false, domainerrors.BadRequest("username and password are required")
	}
	if problems := passwordProblems(password); len(problems) > 0 {
		return nil, false, domainerrors.FieldError("password", problems[0])
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	existing, err := u.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, false, err
	}

	if existing != nil {
		err = u.uow.Do(ctx, func(txCtx context.Context) error {
			if err := u.userRepo.SetStaff(txCtx, existing.ID, true); err != nil {
				return err
			}
			return u.userRepo.UpdatePassword(txCtx, existing.ID, hash)
		})
		if err != nil {
			return nil, false, err
		}
		existing.IsStaff = true
		existing.PasswordHash = hash
		logger.Info(ctx, "User promoted to staff", zap.String("user_id", existing.ID.String()))
		return existing, false, nil
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      true,
		IsActive:     true,
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		_, err := u.profileRepo.GetOrCreate(txCtx, user.ID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	logger.Info(ctx, "Staff user created", zap.String("user_id", user.ID.String()))
	return user, true, nil
}

// DeleteUser removes a user; the profile and documents cascade and the
// user's media directories are removed afterwards.
func (u *AdminUsecase) DeleteUser(ctx context.Context, username string) error {
	user, err := u.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := u.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	for _, dir := range []string{"kyc", "profile_photos"} {
		rel := fmt.Sprintf("%s/%s", dir, user.ID)
		if err := u.files.DeleteDir(ctx, rel); err != nil {
			logger.Warn(ctx, "Failed to remove media directory", zap.String("path", rel), zap.Error(err))
		}
	}
	logger.Info(ctx, "User deleted", zap.String("user_id", user.ID.String()))
	return nil
}
