package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"blog-service/internal/models"
	"blog-service/internal/storage"
)

// testTimeout — общий дедлайн на операции с БД в тестах.
const testTimeout = 10 * time.Second

// TestMain запускает MongoDB в контейнере один раз на весь пакет тестов.
// Адрес контейнера прокидывается в ENV DATABASE_URL, а каждый тест
// работает со своей БД с уникальным именем (см. mustNewMongo).
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7.0",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
	}

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	_ = os.Setenv("DATABASE_URL", uri)

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

// mustNewMongo подключается к отдельной тестовой БД контейнера и
// регистрирует очистку по завершении теста. Если переменная окружения
// GO_TEST_INTEGRATION не установлена — тест пропускается.
func mustNewMongo(t *testing.T) *Mongo {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	baseURL := os.Getenv("DATABASE_URL")
	if baseURL == "" {
		baseURL = "mongodb://localhost:27017"
	}

	uri := baseURL + "/blog_test_" + uuid.New().String()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	m, err := New(ctx, uri)
	require.NoError(t, err, "cannot connect to MongoDB in container (DATABASE_URL=%s)", baseURL)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})

	return m
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

func seedPost(t *testing.T, m *Mongo, title string, published bool, tags ...string) *models.Post {
	t.Helper()
	out, err := m.CreatePost(testCtx(t), models.Post{
		Title:      title,
		Content:    "content of " + title,
		Tags:       tags,
		AuthorID:   uuid.New(),
		AuthorName: "author",
		Published:  published,
	})
	require.NoError(t, err)
	return out
}

// TestDatabaseFromURI — выбор имени БД из URI и дефолт.
func TestDatabaseFromURI(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"with-db", "mongodb://localhost:27017/blog_dev", "blog_dev"},
		{"trailing-slash", "mongodb://localhost:27017/", defaultDBName},
		{"no-path", "mongodb://localhost:27017", defaultDBName},
		{"unparsable", "://bad", defaultDBName},
	}
	for _, tt := range tests {
		if got := databaseFromURI(tt.uri); got != tt.want {
			t.Errorf("%s: want %q, got %q", tt.name, tt.want, got)
		}
	}
}

// TestLimitOrDefault — защита от нулевого размера страницы.
func TestLimitOrDefault(t *testing.T) {
	tests := []struct {
		in, want int64
	}{
		{0, 10},
		{-5, 10},
		{25, 25},
	}
	for _, tt := range tests {
		if got := limitOrDefault(tt.in); got != tt.want {
			t.Errorf("limitOrDefault(%d): want %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestCreatePost_SetsDefaults(t *testing.T) {
	m := mustNewMongo(t)

	before := time.Now().UTC().Add(-time.Second)

	out, err := m.CreatePost(testCtx(t), models.Post{
		Title:      "hello",
		Content:    "hello world content",
		AuthorID:   uuid.New(),
		AuthorName: "alice",
		Published:  true,
	})
	require.NoError(t, err)

	require.NotEmpty(t, out.ID)
	require.NotNil(t, out.Tags)
	require.Empty(t, out.Tags)
	require.True(t, out.CreatedAt.After(before))
	require.Equal(t, out.CreatedAt, out.UpdatedAt)
}

func TestPostByID(t *testing.T) {
	m := mustNewMongo(t)

	seeded := seedPost(t, m, "findable", true, "go")

	got, err := m.PostByID(testCtx(t), seeded.ID)
	require.NoError(t, err)
	require.Equal(t, seeded.Title, got.Title)
	require.Equal(t, seeded.AuthorID, got.AuthorID)

	_, err = m.PostByID(testCtx(t), "not-a-hex-id")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = m.PostByID(testCtx(t), "656f0000000000000000ffff")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListPosts_PublishedOnlyAndOrder(t *testing.T) {
	m := mustNewMongo(t)

	seedPost(t, m, "draft", false)
	first := seedPost(t, m, "first", true)
	second := seedPost(t, m, "second", true)

	page, err := m.ListPosts(testCtx(t), models.ListPostsParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	// Новые первыми.
	require.Equal(t, second.ID, page.Items[0].ID)
	require.Equal(t, first.ID, page.Items[1].ID)
}

func TestListPosts_TagsFilterAndPagination(t *testing.T) {
	m := mustNewMongo(t)

	for i := 0; i < 3; i++ {
		seedPost(t, m, fmt.Sprintf("go-%d", i), true, "go")
	}
	seedPost(t, m, "other", true, "rust")

	page, err := m.ListPosts(testCtx(t), models.ListPostsParams{Page: 1, Limit: 2, Tags: []string{"go"}})
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Total)
	require.EqualValues(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)

	last, err := m.ListPosts(testCtx(t), models.ListPostsParams{Page: 2, Limit: 2, Tags: []string{"go"}})
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
}

func TestListPosts_AuthorFilter(t *testing.T) {
	m := mustNewMongo(t)

	seedPost(t, m, "unrelated", true)

	_, err := m.CreatePost(testCtx(t), models.Post{
		Title:      "by alice smith",
		Content:    "written by alice smith",
		AuthorID:   uuid.New(),
		AuthorName: "Alice Smith",
		Published:  true,
	})
	require.NoError(t, err)

	_, err = m.CreatePost(testCtx(t), models.Post{
		Title:      "by bob",
		Content:    "written by bob here",
		AuthorID:   uuid.New(),
		AuthorName: "Bob",
		Published:  true,
	})
	require.NoError(t, err)

	// Подстрока имени, без учёта регистра.
	page, err := m.ListPosts(testCtx(t), models.ListPostsParams{Page: 1, Limit: 10, Author: "alice"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, "Alice Smith", page.Items[0].AuthorName)

	// Спецсимволы трактуются буквально, а не как regex.
	page, err = m.ListPosts(testCtx(t), models.ListPostsParams{Page: 1, Limit: 10, Author: ".*"})
	require.NoError(t, err)
	require.EqualValues(t, 0, page.Total)
}

func TestListPosts_SortByTitleAsc(t *testing.T) {
	m := mustNewMongo(t)

	seedPost(t, m, "banana", true)
	seedPost(t, m, "apple", true)
	seedPost(t, m, "cherry", true)

	page, err := m.ListPosts(testCtx(t), models.ListPostsParams{
		Page:      1,
		Limit:     10,
		SortBy:    models.PostSortTitle,
		SortOrder: models.SortAsc,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.Equal(t, "apple", page.Items[0].Title)
	require.Equal(t, "banana", page.Items[1].Title)
	require.Equal(t, "cherry", page.Items[2].Title)
}

func TestPosts_CommentCounts(t *testing.T) {
	m := mustNewMongo(t)

	busy := seedPost(t, m, "busy", true)
	quiet := seedPost(t, m, "quiet", true)

	for i := 0; i < 2; i++ {
		_, err := m.CreateComment(testCtx(t), models.Comment{
			PostID:     busy.ID,
			AuthorID:   uuid.New(),
			AuthorName: "alice",
			Content:    fmt.Sprintf("comment %d", i),
		})
		require.NoError(t, err)
	}

	got, err := m.PostByID(testCtx(t), busy.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, got.CommentCount)

	page, err := m.ListPosts(testCtx(t), models.ListPostsParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, p := range page.Items {
		counts[p.ID] = p.CommentCount
	}
	require.EqualValues(t, 2, counts[busy.ID])
	require.EqualValues(t, 0, counts[quiet.ID])
}

func TestUpdatePost_Partial(t *testing.T) {
	m := mustNewMongo(t)

	seeded := seedPost(t, m, "original title", true, "go")

	title := "updated title"
	published := false
	got, err := m.UpdatePost(testCtx(t), seeded.ID, models.PostUpdate{
		Title:     &title,
		Published: &published,
	})
	require.NoError(t, err)
	require.Equal(t, title, got.Title)
	require.False(t, got.Published)
	// Нетронутые поля сохраняются.
	require.Equal(t, seeded.Content, got.Content)
	require.Equal(t, seeded.Tags, got.Tags)
	require.True(t, !got.UpdatedAt.Before(seeded.UpdatedAt))

	_, err = m.UpdatePost(testCtx(t), "656f0000000000000000ffff", models.PostUpdate{Title: &title})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeletePost(t *testing.T) {
	m := mustNewMongo(t)

	seeded := seedPost(t, m, "to delete", true)

	require.NoError(t, m.DeletePost(testCtx(t), seeded.ID))
	require.ErrorIs(t, m.DeletePost(testCtx(t), seeded.ID), storage.ErrNotFound)

	_, err := m.PostByID(testCtx(t), seeded.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateComment_RootAndReply(t *testing.T) {
	m := mustNewMongo(t)

	post := seedPost(t, m, "commented", true)

	root, err := m.CreateComment(testCtx(t), models.Comment{
		PostID:     post.ID,
		AuthorID:   uuid.New(),
		AuthorName: "alice",
		Content:    "root comment",
	})
	require.NoError(t, err)
	require.NotEmpty(t, root.ID)
	require.Empty(t, root.ParentID)
	require.Equal(t, post.ID, root.PostID)

	reply, err := m.CreateComment(testCtx(t), models.Comment{
		PostID:     post.ID,
		ParentID:   root.ID,
		AuthorID:   uuid.New(),
		AuthorName: "bob",
		Content:    "a reply",
	})
	require.NoError(t, err)
	require.Equal(t, root.ID, reply.ParentID)
}

func TestCreateComment_ParentNotFound(t *testing.T) {
	m := mustNewMongo(t)

	post := seedPost(t, m, "commented", true)
	other := seedPost(t, m, "another", true)

	otherRoot, err := m.CreateComment(testCtx(t), models.Comment{
		PostID:     other.ID,
		AuthorID:   uuid.New(),
		AuthorName: "carol",
		Content:    "elsewhere",
	})
	require.NoError(t, err)

	// Родителя нет вовсе.
	_, err = m.CreateComment(testCtx(t), models.Comment{
		PostID:     post.ID,
		ParentID:   "656f0000000000000000ffff",
		AuthorID:   uuid.New(),
		AuthorName: "bob",
		Content:    "orphan reply",
	})
	require.ErrorIs(t, err, storage.ErrParentNotFound)

	// Родитель существует, но принадлежит другому посту.
	_, err = m.CreateComment(testCtx(t), models.Comment{
		PostID:     post.ID,
		ParentID:   otherRoot.ID,
		AuthorID:   uuid.New(),
		AuthorName: "bob",
		Content:    "cross-post reply",
	})
	require.ErrorIs(t, err, storage.ErrParentNotFound)
}

func TestListByPost_Pagination(t *testing.T) {
	m := mustNewMongo(t)

	post := seedPost(t, m, "busy post", true)

	for i := 0; i < 5; i++ {
		_, err := m.CreateComment(testCtx(t), models.Comment{
			PostID:     post.ID,
			AuthorID:   uuid.New(),
			AuthorName: "alice",
			Content:    fmt.Sprintf("comment %d", i),
		})
		require.NoError(t, err)
	}

	page, err := m.ListByPost(testCtx(t), post.ID, models.ListCommentsParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.EqualValues(t, 5, page.Total)
	require.EqualValues(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)

	last, err := m.ListByPost(testCtx(t), post.ID, models.ListCommentsParams{Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
}

func TestDeleteComment(t *testing.T) {
	m := mustNewMongo(t)

	post := seedPost(t, m, "commented", true)

	comm, err := m.CreateComment(testCtx(t), models.Comment{
		PostID:     post.ID,
		AuthorID:   uuid.New(),
		AuthorName: "alice",
		Content:    "to delete",
	})
	require.NoError(t, err)

	require.NoError(t, m.DeleteComment(testCtx(t), comm.ID))
	require.ErrorIs(t, m.DeleteComment(testCtx(t), comm.ID), storage.ErrNotFound)

	_, err = m.CommentByID(testCtx(t), comm.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteByPost(t *testing.T) {
	m := mustNewMongo(t)

	post := seedPost(t, m, "commented", true)
	other := seedPost(t, m, "untouched", true)

	for i := 0; i < 3; i++ {
		_, err := m.CreateComment(testCtx(t), models.Comment{
			PostID:     post.ID,
			AuthorID:   uuid.New(),
			AuthorName: "alice",
			Content:    fmt.Sprintf("comment %d", i),
		})
		require.NoError(t, err)
	}

	keep, err := m.CreateComment(testCtx(t), models.Comment{
		PostID:     other.ID,
		AuthorID:   uuid.New(),
		AuthorName: "bob",
		Content:    "stays",
	})
	require.NoError(t, err)

	require.NoError(t, m.DeleteByPost(testCtx(t), post.ID))
	// Повторный вызов и битый id — no-op.
	require.NoError(t, m.DeleteByPost(testCtx(t), post.ID))
	require.NoError(t, m.DeleteByPost(testCtx(t), "not-a-hex-id"))

	page, err := m.ListByPost(testCtx(t), post.ID, models.ListCommentsParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 0, page.Total)

	got, err := m.CommentByID(testCtx(t), keep.ID)
	require.NoError(t, err)
	require.Equal(t, "stays", got.Content)
}
