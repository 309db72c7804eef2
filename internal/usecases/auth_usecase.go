package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/domain/repositories"
	"finid.backend/pkg/crypto"
	"finid.backend/pkg/jwt"
	"finid.backend/pkg/logger"
)

// AuthUsecase handles signup, credential checks and token issuance
type AuthUsecase struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	uow         repositories.UnitOfWork
	jwtService  *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	uow repositories.UnitOfWork,
	jwtService *jwt.JWTService,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		uow:         uow,
		jwtService:  jwtService,
	}
}

// Signup creates an account together with its empty profile and returns a
// token pair for the new user. Nothing is written when validation fails.
func (u *AuthUsecase) Signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error) {
	ve := validateSignup(input)
	if ve.HasErrors() {
		return nil, ve
	}

	_, err := u.userRepo.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil, domainerrors.FieldError(usernameField, MsgUsernameTaken)
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password1)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: passwordHash,
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
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.FieldError(usernameField, MsgUsernameTaken)
		}
		return nil, err
	}

	logger.Info(ctx, "User signed up", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	return u.issue(user)
}

// Authenticate checks username and password
func (u *AuthUsecase) Authenticate(ctx context.Context, input *entities.LoginInput) (*entities.User, error) {
	user, err := u.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive || !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates a user and returns tokens
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.Authenticate(ctx, input)
	if err != nil {
		return nil, err
	}
	return u.issue(user)
}

// RefreshToken exchanges a refresh token for a new token pair
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateTyped(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.ErrTokenExpired
		}
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domainerrors.ErrUnauthorized
	}

	return u.jwtService.GenerateTokenPair(user.ID, user.Username, user.IsStaff)
}

// GetUser returns the user by id
func (u *AuthUsecase) GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

func (u *AuthUsecase) issue(user *entities.User) (*entities.AuthResponse, error) {
	pair, err := u.jwtService.GenerateTokenPair(user.ID, user.Username, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}
