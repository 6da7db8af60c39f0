package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *mockUserRepo, *entity.User) {
	t.Helper()
	hash, err := utils.HashPassword("s3cret!")
	require.NoError(t, err)

	user := &entity.User{ID: uuid.New(), Name: "Admin", Email: "admin@store.test", Password: hash, Role: enum.RoleAdmin, TokenVersion: 2}
	repo := new(mockUserRepo)
	jwt := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(repo, jwt), repo, user
}

func TestLogin(t *testing.T) {
	svc, repo, user := newAuthFixture(t)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, user.Email).Return(user, nil)
	repo.On("TouchLastLogin", ctx, user.ID).Return(nil)

	out, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, user, out.User)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
}

func TestLogin_BadPassword(t *testing.T) {
	svc, repo, user := newAuthFixture(t)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, user.Email).Return(user, nil)

	_, err := svc.Login(ctx, &LoginInput{Email: user.Email, Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	repo.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "nobody@store.test").Return(nil, nil)

	_, err := svc.Login(ctx, &LoginInput{Email: "nobody@store.test", Password: "x"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestRefreshToken_RejectsRevokedVersion(t *testing.T) {
	svc, repo, user := newAuthFixture(t)
	ctx := context.Background()

	token, err := svc.jwtManager.GenerateRefreshToken(user.ID, user.TokenVersion)
	require.NoError(t, err)

	revoked := *user
	revoked.TokenVersion++
	repo.On("GetByID", ctx, user.ID).Return(&revoked, nil)

	_, err = svc.RefreshToken(ctx, token)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestRefreshToken_Rotates(t *testing.T) {
	svc, repo, user := newAuthFixture(t)
	ctx := context.Background()

	token, err := svc.jwtManager.GenerateRefreshToken(user.ID, user.TokenVersion)
	require.NoError(t, err)
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("TouchLastLogin", ctx, user.ID).Return(nil)

	out, err := svc.RefreshToken(ctx, token)
	require.NoError(t, err)

	claims, err := svc.jwtManager.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	svc, _, user := newAuthFixture(t)

	access, err := svc.jwtManager.GenerateAccessToken(user.ID, user.Email, "admin")
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), access)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestLogoutWithRefreshToken(t *testing.T) {
	svc, repo, user := newAuthFixture(t)
	ctx := context.Background()

	token, err := svc.jwtManager.GenerateRefreshToken(user.ID, user.TokenVersion)
	require.NoError(t, err)
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("BumpTokenVersion", ctx, user.ID).Return(nil)

	require.NoError(t, svc.LogoutWithRefreshToken(ctx, token))
	require.NoError(t, svc.LogoutWithRefreshToken(ctx, "garbage"))
	repo.AssertNumberOfCalls(t, "BumpTokenVersion", 1)
}

func TestLoginWithEmail_UnknownUserForbidden(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "stranger@gmail.com").Return(nil, nil)

	_, err := svc.LoginWithEmail(ctx, "stranger@gmail.com")
	assert.Equal(t, 403, apperror.GetAppError(err).Code)
}

func TestDeleteUser_CannotDeleteSelf(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo)
	id := uuid.New()

	err := svc.DeleteUser(context.Background(), id, id)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCreateUser(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "cashier@store.test").Return(nil, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Role == enum.RoleUser && utils.CheckPasswordHash("pass1234", u.Password)
	})).Return(nil)

	user, err := svc.CreateUser(ctx, &CreateUserInput{Name: "Cashier", Email: " Cashier@Store.test ", Password: "pass1234"})
	require.NoError(t, err)
	assert.Equal(t, "cashier@store.test", user.Email)
	repo.AssertExpectations(t)
}

func TestCreateUser_DuplicateEmailAndBadRole(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "taken@store.test").Return(&entity.User{}, nil)

	_, err := svc.CreateUser(ctx, &CreateUserInput{Email: "taken@store.test", Password: "x"})
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	_, err = svc.CreateUser(ctx, &CreateUserInput{Email: "new@store.test", Password: "x", Role: "owner"})
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}
