package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/interfaces/http/middleware"
	"finid.backend/pkg/jwt"
	"finid.backend/pkg/utils"
)

// AuthService is the account surface used by the auth endpoints
type AuthService interface {
	Signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
}

// ProfileService reads and updates the caller's profile
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.ProfileView, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.ProfileView, error)
}

// DocumentService manages the caller's KYC documents
type DocumentService interface {
	ListDocuments(ctx context.Context, userID uuid.UUID) ([]*entities.DocumentView, error)
	UploadDocument(ctx context.Context, userID uuid.UUID, input *entities.UploadDocumentInput) (*entities.DocumentView, error)
	DeleteDocument(ctx context.Context, userID, documentID uuid.UUID) error
}

// AdminService backs the staff listings
type AdminService interface {
	ListProfiles(ctx context.Context, filter entities.ProfileListFilter) ([]*entities.ProfileView, utils.PaginationMeta, error)
	ListDocuments(ctx context.Context, filter entities.DocumentListFilter) ([]*entities.DocumentView, utils.PaginationMeta, error)
}

// requireUserID reads the authenticated user id set by the auth middleware
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, false
	}
	return userID, true
}

// FormFile reads an optional multipart file. A missing field yields a nil
// file and a no-op closer.
func FormFile(c *gin.Context, field string) (*entities.UploadedFile, io.Closer, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nopCloser{}, nil
		}
		return nil, nopCloser{}, domainerrors.BadRequest("Invalid multipart form")
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*entities.UploadedFile, io.Closer, error) {
	f, err := header.Open()
	if err != nil {
		return nil, nopCloser{}, err
	}
	return &entities.UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     f,
	}, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
