package engineerRepo

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

// EngineerRepository defines engineer data access.
type EngineerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Engineer, error)
	GetByUserID(ctx context.Context, userID string) (*models.Engineer, error)
	List(ctx context.Context) ([]models.Engineer, error)
	Create(ctx context.Context, e *models.Engineer) error
	Update(ctx context.Context, e *models.Engineer) error
}

type intervalRecord struct {
	Start int `bson:"start"`
	End   int `bson:"end"`
}

type workingHoursRecord struct {
	Default   intervalRecord            `bson:"default"`
	Overrides map[string]intervalRecord `bson:"overrides,omitempty"`
	DaysOff   []string                  `bson:"daysOff,omitempty"`
}

type engineerRecord struct {
	ID           string             `bson:"id"`
	UserID       string             `bson:"userId,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Specialties  []string           `bson:"specialties,omitempty"`
	WorkingHours workingHoursRecord `bson:"workingHours"`
	HourlyRate   float64            `bson:"hourlyRate"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func newRecord(e *models.Engineer) engineerRecord {
	wh := workingHoursRecord{
		Default: intervalRecord{Start: int(e.WorkingHours.Default.Start), End: int(e.WorkingHours.Default.End)},
		DaysOff: e.WorkingHours.DaysOff,
	}
	if len(e.WorkingHours.Overrides) > 0 {
		wh.Overrides = make(map[string]intervalRecord, len(e.WorkingHours.Overrides))
		for day, iv := range e.WorkingHours.Overrides {
			wh.Overrides[day] = intervalRecord{Start: int(iv.Start), End: int(iv.End)}
		}
	}
	return engineerRecord{
		ID:           e.ID,
		UserID:       e.UserID,
		Name:         e.Name,
		Email:        e.Email,
		Specialties:  e.Specialties,
		WorkingHours: wh,
		HourlyRate:   e.HourlyRate,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (r engineerRecord) toModel() (*models.Engineer, error) {
	if r.ID == "" {
		return nil, repository.Malformed("engineers", r.ID, errors.New("missing id"))
	}
	wh := models.WorkingHours{DaysOff: r.WorkingHours.DaysOff}
	def, err := models.NewTimeInterval(models.Minute(r.WorkingHours.Default.Start), models.Minute(r.WorkingHours.Default.End))
	if err != nil {
		return nil, repository.Malformed("engineers", r.ID, err)
	}
	wh.Default = def
	if len(r.WorkingHours.Overrides) > 0 {
		wh.Overrides = make(map[string]models.TimeInterval, len(r.WorkingHours.Overrides))
		for day, rec := range r.WorkingHours.Overrides {
			iv, err := models.NewTimeInterval(models.Minute(rec.Start), models.Minute(rec.End))
			if err != nil {
				return nil, repository.Malformed("engineers", r.ID, err)
			}
			wh.Overrides[day] = iv
		}
	}
	if err := wh.Validate(); err != nil {
		return nil, repository.Malformed("engineers", r.ID, err)
	}
	return &models.Engineer{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Email:        r.Email,
		Specialties:  r.Specialties,
		WorkingHours: wh,
		HourlyRate:   r.HourlyRate,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

// MongoEngineerRepo implements EngineerRepository using MongoDB.
type MongoEngineerRepo struct {
	coll *mongo.Collection
}

func NewMongoEngineerRepo(db *mongo.Database) EngineerRepository {
	repo := &MongoEngineerRepo{coll: db.Collection("engineers")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create engineer indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoEngineerRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), repository.IndexTimeout)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("engineer_id_unique")},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetSparse(true).SetName("engineer_user")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoEngineerRepo) findOne(ctx context.Context, filter bson.M) (*models.Engineer, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var rec engineerRecord
	if err := r.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch engineer: %w", err)
	}
	return rec.toModel()
}

func (r *MongoEngineerRepo) GetByID(ctx context.Context, id string) (*models.Engineer, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoEngineerRepo) GetByUserID(ctx context.Context, userID string) (*models.Engineer, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *MongoEngineerRepo) List(ctx context.Context) ([]models.Engineer, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list engineers: %w", err)
	}
	defer cursor.Close(ctx)

	var records []engineerRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode engineers: %w", err)
	}
	out := make([]models.Engineer, 0, len(records))
	for _, rec := range records {
		e, err := rec.toModel()
		if err != nil {
			utils.GetLogger().Warn("skipping malformed engineer", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *MongoEngineerRepo) Create(ctx context.Context, e *models.Engineer) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, newRecord(e)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("engineer %s: %w", e.ID, repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create engineer: %w", err)
	}
	return nil
}

func (r *MongoEngineerRepo) Update(ctx context.Context, e *models.Engineer) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": e.ID}, newRecord(e))
	if err != nil {
		return fmt.Errorf("failed to update engineer %s: %w", e.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
