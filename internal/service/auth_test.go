package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"blog-service/internal/config"
	"blog-service/internal/models"
	"blog-service/internal/storage"
	"blog-service/internal/token"
	"blog-service/mocks"
)

func testCfg() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "unit-secret",
			TokenTTL:  time.Hour,
			Issuer:    "blog-service",
			Audience:  []string{"blog-api"},
		},
		Redis: config.RedisConfig{PostTTL: 5 * time.Minute},
		Pages: config.PaginationConfig{Default: 10, Max: 100},
	}
}

type testMocks struct {
	users    *mocks.MockUsersStorage
	posts    *mocks.MockPostsStorage
	comments *mocks.MockCommentsStorage
	avatars  *mocks.MockAvatarsStorage
}

func newSvc(t *testing.T) (*Service, testMocks, *gomock.Controller) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := testMocks{
		users:    mocks.NewMockUsersStorage(ctrl),
		posts:    mocks.NewMockPostsStorage(ctrl),
		comments: mocks.NewMockCommentsStorage(ctrl),
		avatars:  mocks.NewMockAvatarsStorage(ctrl),
	}

	cfg := testCfg()
	tm, err := token.New(cfg.Auth)
	require.NoError(t, err)

	svc := New(m.users, m.posts, m.comments, tm, cfg)
	return svc, m, ctrl
}

func mustHashPW(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegisterUser_OK(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	m.users.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			require.Equal(t, "Alice", u.Name)
			require.Equal(t, "alice@example.com", u.Email)
			require.Equal(t, models.RoleReader, u.Role)
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
			require.NotEqual(t, uuid.Nil, u.ID)
			return nil
		})

	res, err := svc.RegisterUser(context.Background(), RegisterInput{
		Name:     "  Alice  ",
		Email:    "Alice@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "alice@example.com", res.User.Email)
	require.NotEqual(t, uuid.Nil, res.User.ID)
}

func TestRegisterUser_Validation(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, RegisterInput{Name: "  ", Email: "a@b.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.RegisterUser(ctx, RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.RegisterUser(ctx, RegisterInput{Name: "A", Email: "a@b.com", Password: "short"})
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterUser_EmailTaken(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	m.users.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	_, err := svc.RegisterUser(context.Background(), RegisterInput{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "secret1",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginUser_OK(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: mustHashPW(t, "secret1"),
		Role:         models.RoleAuthor,
	}

	m.users.EXPECT().UserByEmail(gomock.Any(), "alice@example.com").Return(user, nil)

	res, err := svc.LoginUser(context.Background(), LoginInput{
		Email:    "Alice@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, user.ID, res.User.ID)
}

// Отсутствие пользователя и неверный пароль дают одну и ту же ошибку.
func TestLoginUser_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	m.users.EXPECT().UserByEmail(gomock.Any(), "ghost@example.com").
		Return(nil, storage.ErrNotFound)

	_, err := svc.LoginUser(ctx, LoginInput{Email: "ghost@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	m.users.EXPECT().UserByEmail(gomock.Any(), "alice@example.com").
		Return(&models.User{
			ID:           uuid.New(),
			Email:        "alice@example.com",
			PasswordHash: mustHashPW(t, "right-password"),
		}, nil)

	_, err = svc.LoginUser(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUser_StorageError(t *testing.T) {
	t.Parallel()

	svc, m, ctrl := newSvc(t)
	defer ctrl.Finish()

	m.users.EXPECT().UserByEmail(gomock.Any(), "alice@example.com").
		Return(nil, context.DeadlineExceeded)

	_, err := svc.LoginUser(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "secret1",
	})
	require.ErrorIs(t, err, ErrInternal)
}
