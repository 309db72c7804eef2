package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/usecases"
	"finid.backend/pkg/crypto"
	"finid.backend/pkg/jwt"
)

type authFixture struct {
	users    *MockUserRepository
	profiles *MockProfileRepository
	uow      *MockUnitOfWork
	jwt      *jwt.JWTService
	uc       *usecases.AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	t.Cleanup(crypto.UseMinCostForTests())

	f := &authFixture{
		users:    new(MockUserRepository),
		profiles: new(MockProfileRepository),
		uow:      new(MockUnitOfWork),
		jwt:      jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour),
	}
	f.uc = usecases.NewAuthUsecase(f.users, f.profiles, f.uow, f.jwt)
	return f
}

func validSignup() *entities.SignupInput {
	return &entities.SignupInput{
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Liddell",
		Email:     "alice@example.com",
		Password1: "s3cure-passw0rd",
		Password2: "s3cure-passw0rd",
	}
}

func TestAuthUsecase_Signup_Success(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	newID := uuid.New()

	f.users.On("GetByUsername", ctx, "alice").Return(nil, domainerrors.ErrNotFound).Once()
	f.uow.On("Do", ctx, mock.Anything).Return(nil).Once()
	f.users.On("Create", ctx, mock.MatchedBy(func(u *entities.User) bool {
		return u.Username == "alice" && u.Email == "alice@example.com" && u.IsActive && !u.IsStaff &&
			crypto.CheckPassword("s3cure-passw0rd", u.PasswordHash)
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.User).ID = newID
	}).Return(nil).Once()
	f.profiles.On("GetOrCreate", ctx, newID).Return(entities.NewProfile(newID), nil).Once()

	resp, err := f.uc.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.Equal(t, newID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := f.jwt.ValidateTyped(resp.AccessToken, jwt.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, newID, claims.UserID)

	f.users.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestAuthUsecase_Signup_PasswordMismatchCreatesNothing(t *testing.T) {
	f := newAuthFixture(t)
	in := validSignup()
	in.Password2 = "something-else"

	_, err := f.uc.Signup(context.Background(), in)
	ve, ok := domainerrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, usecases.MsgPasswordMismatch, ve.First("password2"))

	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Signup_FieldErrors(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct {
		name   string
		mutate func(*entities.SignupInput)
		field  string
		msg    string
	}{
		{"missing email", func(in *entities.SignupInput) { in.Email = "" }, "email", usecases.MsgRequired},
		{"bad email", func(in *entities.SignupInput) { in.Email = "not-an-email" }, "email", "Enter a valid email address."},
		{"bad username", func(in *entities.SignupInput) { in.Username = "al ice!" }, "username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."},
		{"missing first name", func(in *entities.SignupInput) { in.FirstName = "  " }, "first_name", usecases.MsgRequired},
		{"short password", func(in *entities.SignupInput) { in.Password1, in.Password2 = "abc", "abc" }, "password2", usecases.MsgPasswordTooShort},
		{"numeric password", func(in *entities.SignupInput) { in.Password1, in.Password2 = "1234567890", "1234567890" }, "password2", usecases.MsgPasswordNumeric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSignup()
			tc.mutate(in)
			_, err := f.uc.Signup(context.Background(), in)
			ve, ok := domainerrors.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, ve.Fields[tc.field], tc.msg)
		})
	}
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Signup_UsernameTaken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("GetByUsername", ctx, "alice").Return(&entities.User{ID: uuid.New(), Username: "alice"}, nil).Once()

	_, err := f.uc.Signup(ctx, validSignup())
	ve, ok := domainerrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, usecases.MsgUsernameTaken, ve.First("username"))
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Signup_UsernameTakenConcurrently(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("GetByUsername", ctx, "alice").Return(nil, domainerrors.ErrNotFound).Once()
	f.uow.On("Do", ctx, mock.Anything).Return(nil).Once()
	f.users.On("Create", ctx, mock.Anything).Return(domainerrors.ErrAlreadyExists).Once()

	_, err := f.uc.Signup(ctx, validSignup())
	ve, ok := domainerrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, usecases.MsgUsernameTaken, ve.First("username"))
	f.profiles.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Signup_RepositoryError(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("GetByUsername", ctx, "alice").Return(nil, errors.New("db down")).Once()

	_, err := f.uc.Signup(ctx, validSignup())
	assert.EqualError(t, err, "db down")
}

func TestAuthUsecase_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	hash, err := crypto.HashPassword("correct-horse")
	require.NoError(t, err)
	active := &entities.User{ID: uuid.New(), Username: "bob", PasswordHash: hash, IsActive: true, IsStaff: true}
	inactive := &entities.User{ID: uuid.New(), Username: "carol", PasswordHash: hash}

	f.users.On("GetByUsername", ctx, "bob").Return(active, nil)
	f.users.On("GetByUsername", ctx, "carol").Return(inactive, nil)
	f.users.On("GetByUsername", ctx, "nobody").Return(nil, domainerrors.ErrNotFound)

	resp, err := f.uc.Login(ctx, &entities.LoginInput{Username: "bob", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, active, resp.User)
	claims, err := f.jwt.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsStaff)

	_, err = f.uc.Login(ctx, &entities.LoginInput{Username: "bob", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = f.uc.Login(ctx, &entities.LoginInput{Username: "carol", Password: "correct-horse"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = f.uc.Login(ctx, &entities.LoginInput{Username: "nobody", Password: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthUsecase_RefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := &entities.User{ID: uuid.New(), Username: "dave", IsActive: true}
	ghost := uuid.New()

	f.users.On("GetByID", ctx, user.ID).Return(user, nil)
	f.users.On("GetByID", ctx, ghost).Return(nil, domainerrors.ErrNotFound)

	pair, err := f.jwt.GenerateTokenPair(user.ID, user.Username, false)
	require.NoError(t, err)

	refreshed, err := f.uc.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = f.uc.RefreshToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	ghostPair, err := f.jwt.GenerateTokenPair(ghost, "ghost", false)
	require.NoError(t, err)
	_, err = f.uc.RefreshToken(ctx, ghostPair.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	expired := jwt.NewJWTService("test-secret", -time.Second, -time.Second)
	oldPair, err := expired.GenerateTokenPair(user.ID, user.Username, false)
	require.NoError(t, err)
	_, err = f.uc.RefreshToken(ctx, oldPair.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthUsecase_GetUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	id := uuid.New()
	f.users.On("GetByID", ctx, id).Return(&entities.User{ID: id}, nil).Once()

	u, err := f.uc.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
}
