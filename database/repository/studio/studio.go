package studioRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ctrlroom/database/repository"
	"ctrlroom/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// settingsKey is the _id of the single studio settings document.
const settingsKey = "studio"

// StudioRepository stores the studio profile and its resources.
type StudioRepository interface {
	// GetSettings returns repository.ErrNotFound until settings are saved once.
	GetSettings(ctx context.Context) (*models.StudioSettings, error)
	SaveSettings(ctx context.Context, s *models.StudioSettings) error
	ListResources(ctx context.Context) ([]models.StudioResource, error)
	CreateResource(ctx context.Context, r *models.StudioResource) error
	UpdateResourceStatus(ctx context.Context, id string, status models.ResourceStatus, at time.Time) (*models.StudioResource, error)
}

type settingsRecord struct {
	Key            string    `bson:"_id"`
	Name           string    `bson:"name"`
	Address        string    `bson:"address"`
	Phone          string    `bson:"phone"`
	Email          string    `bson:"email"`
	HourlyRate     float64   `bson:"hourlyRate"`
	EngineerRate   float64   `bson:"engineerRate"`
	BufferTime     int       `bson:"bufferTime"`
	OperatingHours string    `bson:"operatingHours"`
	DaysOpen       []string  `bson:"daysOpen"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

type resourceRecord struct {
	ID              string     `bson:"id"`
	Name            string     `bson:"name"`
	Category        string     `bson:"category"`
	Status          string     `bson:"status"`
	LastMaintenance *time.Time `bson:"lastMaintenance,omitempty"`
	NextMaintenance *time.Time `bson:"nextMaintenance,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt"`
}

func (r resourceRecord) toModel() (*models.StudioResource, error) {
	status := models.ResourceStatus(r.Status)
	if !status.Valid() {
		return nil, repository.Malformed("studio_resources", r.ID, errors.New("unknown status "+r.Status))
	}
	return &models.StudioResource{
		ID:              r.ID,
		Name:            r.Name,
		Category:        r.Category,
		Status:          status,
		LastMaintenance: r.LastMaintenance,
		NextMaintenance: r.NextMaintenance,
		CreatedAt:       r.CreatedAt,
	}, nil
}

// MongoStudioRepo implements StudioRepository using MongoDB.
type MongoStudioRepo struct {
	settings  *mongo.Collection
	resources *mongo.Collection
}

func NewMongoStudioRepo(db *mongo.Database) StudioRepository {
	return &MongoStudioRepo{
		settings:  db.Collection("studio_settings"),
		resources: db.Collection("studio_resources"),
	}
}

func (r *MongoStudioRepo) GetSettings(ctx context.Context) (*models.StudioSettings, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var rec settingsRecord
	if err := r.settings.FindOne(ctx, bson.M{"_id": settingsKey}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch studio settings: %w", err)
	}
	return &models.StudioSettings{
		Name:           rec.Name,
		Address:        rec.Address,
		Phone:          rec.Phone,
		Email:          rec.Email,
		HourlyRate:     rec.HourlyRate,
		EngineerRate:   rec.EngineerRate,
		BufferTime:     rec.BufferTime,
		OperatingHours: rec.OperatingHours,
		DaysOpen:       rec.DaysOpen,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}

func (r *MongoStudioRepo) SaveSettings(ctx context.Context, s *models.StudioSettings) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	rec := settingsRecord{
		Key:            settingsKey,
		Name:           s.Name,
		Address:        s.Address,
		Phone:          s.Phone,
		Email:          s.Email,
		HourlyRate:     s.HourlyRate,
		EngineerRate:   s.EngineerRate,
		BufferTime:     s.BufferTime,
		OperatingHours: s.OperatingHours,
		DaysOpen:       s.DaysOpen,
		UpdatedAt:      s.UpdatedAt,
	}
	_, err := r.settings.ReplaceOne(ctx, bson.M{"_id": settingsKey}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save studio settings: %w", err)
	}
	return nil
}

func (r *MongoStudioRepo) ListResources(ctx context.Context) ([]models.StudioResource, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	cursor, err := r.resources.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer cursor.Close(ctx)

	var records []resourceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}
	out := make([]models.StudioResource, 0, len(records))
	for _, rec := range records {
		res, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

func (r *MongoStudioRepo) CreateResource(ctx context.Context, res *models.StudioResource) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	rec := resourceRecord{
		ID:              res.ID,
		Name:            res.Name,
		Category:        res.Category,
		Status:          string(res.Status),
		LastMaintenance: res.LastMaintenance,
		NextMaintenance: res.NextMaintenance,
		CreatedAt:       res.CreatedAt,
	}
	if _, err := r.resources.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

// UpdateResourceStatus stamps lastMaintenance when a resource enters maintenance.
func (r *MongoStudioRepo) UpdateResourceStatus(ctx context.Context, id string, status models.ResourceStatus, at time.Time) (*models.StudioResource, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	set := bson.M{"status": string(status)}
	if status == models.ResourceMaintenance {
		set["lastMaintenance"] = at
	}
	var rec resourceRecord
	err := r.resources.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update resource %s: %w", id, err)
	}
	return rec.toModel()
}
