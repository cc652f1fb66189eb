// mongo предоставляет реализации storage.PostsStorage и
// storage.CommentsStorage на базе MongoDB.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	postsCollection    = "posts"
	commentsCollection = "comments"
	defaultDBName      = "blog"
)

// Mongo — тонкий адаптер для подключения и коллекций MongoDB.
type Mongo struct {
	client   *mongodriver.Client
	db       *mongodriver.Database
	posts    *mongodriver.Collection
	comments *mongodriver.Collection
}

// New подключается к MongoDB, проверяет соединение и обеспечивает индексацию.
func New(ctx context.Context, mongoURL string) (*Mongo, error) {
	if mongoURL == "" {
		return nil, fmt.Errorf("mongo: empty url")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(mongoURL))

	m := &Mongo{
		client:   cli,
		db:       db,
		posts:    db.Collection(postsCollection),
		comments: db.Collection(commentsCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes создаёт индексы обеих коллекций:
//   - посты: текстовый по title+content (поиск), published+created_at(desc)
//     для публичной ленты, tags для фильтра;
//   - комментарии: post_id+created_at(desc) для выдачи по посту, parent_id.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	postModels := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}},
			Options: options.Index().SetName("text_title_content"),
		},
		{
			Keys:    bson.D{{Key: "published", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("published_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("tags"),
		},
	}

	if _, err := m.posts.Indexes().CreateMany(ctx, postModels); err != nil {
		return fmt.Errorf("mongo ensure post indexes: %w", err)
	}

	commentModels := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("post_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "parent_id", Value: 1}},
			Options: options.Index().SetName("parent"),
		},
	}

	if _, err := m.comments.Indexes().CreateMany(ctx, commentModels); err != nil {
		return fmt.Errorf("mongo ensure comment indexes: %w", err)
	}

	return nil
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддаётся разбору, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}
