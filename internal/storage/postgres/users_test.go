package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"blog-service/internal/models"
	"blog-service/internal/storage"
)

// Интеграционные тесты для пакета postgres:
// — поднимают реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// — применяют миграции из ./migrations;
// — проверяют SaveUser/UserByEmail/UserByID/ListUsers/UpdateAvatar и
//   маппинг ошибок на сентинелы storage.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// repoRootFromThisFile — определяет корень репозитория относительно текущего файла тестов.
// Используется для поиска SQL-миграций независимо от текущего рабочего каталога.
func repoRootFromThisFile() string {
	// internal/storage/postgres/... -> подняться на 3 уровня до корня.
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", ".."))
}

// readMigration — читает содержимое SQL-миграции из подкаталога ./migrations.
func readMigration(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(repoRootFromThisFile(), "migrations", name)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "read migration %s", path)
	return string(b)
}

// startPostgres — поднимает PostgreSQL через testcontainers-go,
// применяет миграции и возвращает инициализированное хранилище.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) *UsersStorage {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "docker.io/postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		ProviderType:     tc.ProviderDocker,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, readMigration(t, "1_init_users.up.sql"))
	require.NoError(t, err)

	st, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	return st
}

func newUser(email string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         models.RoleReader,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSaveUser_AndLookup(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	user := newUser("alice@example.com")
	require.NoError(t, st.SaveUser(ctx, user))

	byEmail, err := st.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)
	require.Equal(t, models.RoleReader, byEmail.Role)

	byID, err := st.UserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, byID.Email)
}

func TestSaveUser_DuplicateEmail(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	require.NoError(t, st.SaveUser(ctx, newUser("dup@example.com")))

	err := st.SaveUser(ctx, newUser("dup@example.com"))
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestUserLookups_NotFound(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	_, err := st.UserByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListUsers_PaginationAndOrder(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		u := newUser(fmt.Sprintf("user%d@example.com", i))
		u.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		u.UpdatedAt = u.CreatedAt
		require.NoError(t, st.SaveUser(ctx, u))
	}

	first, total, err := st.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, first, 2)
	// Новые первыми.
	require.Equal(t, "user4@example.com", first[0].Email)
	require.Equal(t, "user3@example.com", first[1].Email)

	last, _, err := st.ListUsers(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, last, 1)
	require.Equal(t, "user0@example.com", last[0].Email)
}

func TestUpdateAvatar(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	user := newUser("ava@example.com")
	require.NoError(t, st.SaveUser(ctx, user))

	key := "avatars/" + user.ID.String() + "/a.png"
	url := "https://cdn.local/" + key
	require.NoError(t, st.UpdateAvatar(ctx, user.ID, key, url))

	got, err := st.UserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, key, got.AvatarKey)
	require.Equal(t, url, got.AvatarURL)
	require.True(t, got.UpdatedAt.After(user.UpdatedAt) || got.UpdatedAt.Equal(user.UpdatedAt))

	require.ErrorIs(t, st.UpdateAvatar(ctx, uuid.New(), key, url), storage.ErrNotFound)
}

func TestUsersStorage_ContextDeadline(t *testing.T) {
	st := startPostgres(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := st.UserByEmail(ctx, "any@example.com")
	require.Error(t, err)
}
