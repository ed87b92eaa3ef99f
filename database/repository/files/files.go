package fileRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ctrlroom/database/repository"
	"ctrlroom/models"
	"ctrlroom/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Filter narrows a file listing. Empty fields match everything.
type Filter struct {
	SessionID string
	UserID    string
}

// FileRepository stores session file metadata. Deletion is soft.
type FileRepository interface {
	Create(ctx context.Context, f *models.SessionFile) error
	GetByID(ctx context.Context, id string) (*models.SessionFile, error)
	// List returns non-deleted files, newest first.
	List(ctx context.Context, filter Filter) ([]models.SessionFile, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

type fileRecord struct {
	ID          string     `bson:"id"`
	SessionID   string     `bson:"sessionId"`
	UserID      string     `bson:"userId"`
	Name        string     `bson:"name"`
	Size        int64      `bson:"size"`
	ContentType string     `bson:"contentType"`
	URL         string     `bson:"url"`
	StoragePath string     `bson:"storagePath"`
	Deleted     bool       `bson:"deleted"`
	DeletedAt   *time.Time `bson:"deletedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
}

func (r fileRecord) toModel() models.SessionFile {
	return models.SessionFile{
		ID:          r.ID,
		SessionID:   r.SessionID,
		UserID:      r.UserID,
		Name:        r.Name,
		Size:        r.Size,
		ContentType: r.ContentType,
		URL:         r.URL,
		StoragePath: r.StoragePath,
		Deleted:     r.Deleted,
		DeletedAt:   r.DeletedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// MongoFileRepo implements FileRepository using MongoDB.
type MongoFileRepo struct {
	coll *mongo.Collection
}

func NewMongoFileRepo(db *mongo.Database) FileRepository {
	repo := &MongoFileRepo{coll: db.Collection("files")}

	ctx, cancel := context.WithTimeout(context.Background(), repository.IndexTimeout)
	defer cancel()
	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		utils.GetLogger().Error("failed to create file indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoFileRepo) Create(ctx context.Context, f *models.SessionFile) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	rec := fileRecord{
		ID:          f.ID,
		SessionID:   f.SessionID,
		UserID:      f.UserID,
		Name:        f.Name,
		Size:        f.Size,
		ContentType: f.ContentType,
		URL:         f.URL,
		StoragePath: f.StoragePath,
		CreatedAt:   f.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to store file metadata: %w", err)
	}
	return nil
}

func (r *MongoFileRepo) GetByID(ctx context.Context, id string) (*models.SessionFile, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var rec fileRecord
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted": false}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch file %s: %w", id, err)
	}
	f := rec.toModel()
	return &f, nil
}

func (r *MongoFileRepo) List(ctx context.Context, filter Filter) ([]models.SessionFile, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	q := bson.M{"deleted": false}
	if filter.SessionID != "" {
		q["sessionId"] = filter.SessionID
	}
	if filter.UserID != "" {
		q["userId"] = filter.UserID
	}
	cursor, err := r.coll.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer cursor.Close(ctx)

	var records []fileRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}
	out := make([]models.SessionFile, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toModel())
	}
	return out, nil
}

func (r *MongoFileRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "deletedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
