package mongo

import (
	"context"
	"errors"
	"fmt"
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

// commentDoc — документ комментария в MongoDB.
// parent_id хранится hex-строкой ("" — корневой комментарий),
// как и в документах постов, UUID автора — строкой.
type commentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	PostID     primitive.ObjectID `bson:"post_id"`
	ParentID   string             `bson:"parent_id"`
	AuthorID   string             `bson:"author_id"`
	AuthorName string             `bson:"author_name"`
	Content    string             `bson:"content"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d *commentDoc) toModel() (*models.Comment, error) {
	authorID, err := uuid.Parse(d.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("bad author_id %q: %w", d.AuthorID, err)
	}

	return &models.Comment{
		ID:         d.ID.Hex(),
		PostID:     d.PostID.Hex(),
		ParentID:   d.ParentID,
		AuthorID:   authorID,
		AuthorName: d.AuthorName,
		Content:    d.Content,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}, nil
}

// CreateComment создаёт комментарий (корневой или ответ).
// Для ответа родитель обязан существовать и принадлежать тому же посту —
// иначе storage.ErrParentNotFound.
func (m *Mongo) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	postOID, err := primitive.ObjectIDFromHex(strings.TrimSpace(comm.PostID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	now := toMS(time.Now())

	doc := commentDoc{
		PostID:     postOID,
		ParentID:   "",
		AuthorID:   comm.AuthorID.String(),
		AuthorName: comm.AuthorName,
		Content:    comm.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if pid := strings.TrimSpace(comm.ParentID); pid != "" {
		parentOID, err := primitive.ObjectIDFromHex(pid)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}

		var parent commentDoc
		if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: parentOID}}).Decode(&parent); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
			}

			return nil, fmt.Errorf("%s: find parent: %w", op, err)
		}

		// Ответ живёт в ветке того же поста, что и родитель.
		if parent.PostID != postOID {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}

		doc.ParentID = parentOID.Hex()
	}

	res, err := m.comments.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid

	return doc.toModel()
}

// CommentByID возвращает комментарий по идентификатору.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
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

// ListByPost возвращает страницу комментариев поста, новые первыми
// (включая ответы: дерево ветки собирает клиент по parent_id).
func (m *Mongo) ListByPost(ctx context.Context, postID string, p models.ListCommentsParams) (*models.CommentPage, error) {
	const op = "storage/mongo/ListByPost"

	postOID, err := primitive.ObjectIDFromHex(strings.TrimSpace(postID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	limit := limitOrDefault(p.Limit)

	page := p.Page
	if page < 1 {
		page = 1
	}

	filter := bson.D{{Key: "post_id", Value: postOID}}

	total, err := m.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := m.comments.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Comment
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		comm, err := doc.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		items = append(items, *comm)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return &models.CommentPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// DeleteComment удаляет комментарий по идентификатору.
func (m *Mongo) DeleteComment(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteComment"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteByPost удаляет все комментарии поста (вызывается при удалении поста).
func (m *Mongo) DeleteByPost(ctx context.Context, postID string) error {
	const op = "storage/mongo/DeleteByPost"

	postOID, err := primitive.ObjectIDFromHex(strings.TrimSpace(postID))
	if err != nil {
		// Битый id — значит и комментариев с ним нет.
		return nil
	}

	if _, err := m.comments.DeleteMany(ctx, bson.D{{Key: "post_id", Value: postOID}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
