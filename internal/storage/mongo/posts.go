package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blog-service/internal/models"
	"blog-service/internal/storage"
)

// postDoc — документ поста в MongoDB. UUID автора храним строкой,
// чтобы не зависеть от кодеков бинарных представлений.
type postDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Content    string             `bson:"content"`
	Tags       []string           `bson:"tags"`
	AuthorID   string             `bson:"author_id"`
	AuthorName string             `bson:"author_name"`
	Published  bool               `bson:"published"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d *postDoc) toModel() (*models.Post, error) {
	authorID, err := uuid.Parse(d.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("bad author_id %q: %w", d.AuthorID, err)
	}

	return &models.Post{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Content:    d.Content,
		Tags:       d.Tags,
		AuthorID:   authorID,
		AuthorName: d.AuthorName,
		Published:  d.Published,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}, nil
}

// toMS: MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// limitOrDefault приводит запрошенный размер страницы к разумному диапазону.
// Конкретные границы диктует сервисный слой; здесь только защита от нуля.
func limitOrDefault(limit int64) int64 {
	if limit <= 0 {
		return 10
	}

	return limit
}

// CreatePost вставляет документ поста; ID и временные поля проставляет хранилище.
func (m *Mongo) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	const op = "storage/mongo/CreatePost"

	now := toMS(time.Now())

	doc := postDoc{
		Title:      post.Title,
		Content:    post.Content,
		Tags:       post.Tags,
		AuthorID:   post.AuthorID.String(),
		AuthorName: post.AuthorName,
		Published:  post.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	res, err := m.posts.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// Mongo всегда возвращает ObjectID.
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid

	return doc.toModel()
}

// PostByID возвращает пост по hex-идентификатору.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) PostByID(ctx context.Context, id string) (*models.Post, error) {
	const op = "storage/mongo/PostByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc postDoc
	if err := m.posts.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := doc.toModel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	count, err := m.comments.CountDocuments(ctx, bson.D{{Key: "post_id", Value: oid}})
	if err != nil {
		return nil, fmt.Errorf("%s: count comments: %w", op, err)
	}
	out.CommentCount = count

	return out, nil
}

// commentCounts возвращает количество комментариев для каждого из постов
// одной агрегацией по коллекции comments.
func (m *Mongo) commentCounts(ctx context.Context, ids []primitive.ObjectID) (map[string]int64, error) {
	if len(ids) == 0 {
		return map[string]int64{}, nil
	}

	pipeline := []bson.D{
		{{Key: "$match", Value: bson.D{{Key: "post_id", Value: bson.D{{Key: "$in", Value: ids}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$post_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := m.comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64, len(ids))
	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Count int64              `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		counts[row.ID.Hex()] = row.Count
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	return counts, nil
}

// sortSpec собирает порядок сортировки выдачи постов. Поле приходит
// уже нормализованным (см. models.ListPostsParams); _id добивается
// тем же направлением для стабильности страниц.
func sortSpec(sortBy, sortOrder string) bson.D {
	field := sortBy
	if field == "" {
		field = models.PostSortCreatedAt
	}

	dir := -1
	if sortOrder == models.SortAsc {
		dir = 1
	}

	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

// ListPosts возвращает страницу опубликованных постов.
// Фильтры: author (подстрока имени без учёта регистра), tags ($in)
// и текстовый поиск по title+content ($text); порядок — sortSpec.
func (m *Mongo) ListPosts(ctx context.Context, p models.ListPostsParams) (*models.PostPage, error) {
	const op = "storage/mongo/ListPosts"

	limit := limitOrDefault(p.Limit)

	page := p.Page
	if page < 1 {
		page = 1
	}

	filter := bson.D{{Key: "published", Value: true}}

	if a := strings.TrimSpace(p.Author); a != "" {
		// QuoteMeta: пользовательский ввод не должен стать regex-шаблоном.
		filter = append(filter, bson.E{Key: "author_name", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(a),
			Options: "i",
		}})
	}

	if len(p.Tags) > 0 {
		filter = append(filter, bson.E{Key: "tags", Value: bson.D{{Key: "$in", Value: p.Tags}}})
	}

	if s := strings.TrimSpace(p.Search); s != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: s}}})
	}

	total, err := m.posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	findOpts := options.Find().
		SetSort(sortSpec(p.SortBy, p.SortOrder)).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := m.posts.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var (
		items []models.Post
		ids   []primitive.ObjectID
	)
	for cur.Next(ctx) {
		var doc postDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		post, err := doc.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		items = append(items, *post)
		ids = append(ids, doc.ID)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	counts, err := m.commentCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range items {
		items[i].CommentCount = counts[items[i].ID]
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return &models.PostPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// UpdatePost применяет частичное обновление: только непустые pointer-поля,
// updated_at сдвигается всегда. Возвращает обновлённый документ.
func (m *Mongo) UpdatePost(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	const op = "storage/mongo/UpdatePost"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	set := bson.D{{Key: "updated_at", Value: toMS(time.Now())}}

	if upd.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *upd.Title})
	}

	if upd.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *upd.Content})
	}

	if upd.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: *upd.Tags})
	}

	if upd.Published != nil {
		set = append(set, bson.E{Key: "published", Value: *upd.Published})
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var doc postDoc
	err = m.posts.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := doc.toModel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// DeletePost удаляет пост. Комментарии поста чистит сервисный слой
// через CommentsStorage.DeleteByPost.
func (m *Mongo) DeletePost(ctx context.Context, id string) error {
	const op = "storage/mongo/DeletePost"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// Проверка выполнения контрактов верхнего уровня.
var (
	_ storage.PostsStorage    = (*Mongo)(nil)
	_ storage.CommentsStorage = (*Mongo)(nil)
)
