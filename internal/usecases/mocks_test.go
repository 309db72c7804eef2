package usecases_test

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateIdentity(ctx context.Context, id uuid.UUID, update entities.IdentityUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *MockUserRepository) SetStaff(ctx context.Context, id uuid.UUID, isStaff bool) error {
	return m.Called(ctx, id, isStaff).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *entities.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository) List(ctx context.Context, filter entities.ProfileListFilter) ([]*entities.ProfileView, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.ProfileView), args.Get(1).(int64), args.Error(2)
}

// Mock DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *entities.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*entities.Document, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Document), args.Error(1)
}

func (m *MockDocumentRepository) DeleteOwned(ctx context.Context, profileID, id uuid.UUID) (*entities.Document, error) {
	args := m.Called(ctx, profileID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, filter entities.DocumentListFilter) ([]*entities.DocumentView, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.DocumentView), args.Get(1).(int64), args.Error(2)
}

// memFileStore is an in-memory FileStore
type memFileStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	saveErr  error
	deleted  []string
	deletedD []string
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string][]byte{}}
}

func (s *memFileStore) Save(ctx context.Context, relPath string, content io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[relPath] = data
	return relPath, nil
}

func (s *memFileStore) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[relPath]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memFileStore) Delete(ctx context.Context, relPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, relPath)
	s.deleted = append(s.deleted, relPath)
	return nil
}

func (s *memFileStore) DeleteDir(ctx context.Context, relDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedD = append(s.deletedD, relDir)
	return nil
}

func (s *memFileStore) URL(relPath string) string {
	return "/media/" + relPath
}

func (s *memFileStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// stubPhotos passes content through unless err is set
type stubPhotos struct {
	err error
}

func (p stubPhotos) Normalize(r io.Reader) (io.Reader, error) {
	if p.err != nil {
		return nil, p.err
	}
	return r, nil
}
