package bookingRepo

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

const collectionName = "bookings"

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates the repository and ensures its indexes.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	repo := &MongoBookingRepo{coll: db.Collection(collectionName)}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create booking indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), repository.IndexTimeout)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("booking_id_unique")},
		{
			Keys:    bson.D{{Key: "engineerId", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("engineer_date_status"),
		},
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: -1}}, Options: options.Index().SetName("client_date")},
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("client_idempotency_unique").
				SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$exists": true}}),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, newRecord(b)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("booking %s: %w", b.ID, repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create booking %s: %w", b.ID, err)
	}
	return nil
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var rec bookingRecord
	if err := r.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return rec.toModel()
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoBookingRepo) GetByIdempotencyKey(ctx context.Context, clientID, key string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"clientId": clientID, "idempotencyKey": key})
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Booking, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var records []bookingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	out := make([]models.Booking, 0, len(records))
	for _, rec := range records {
		b, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *MongoBookingRepo) ListActive(ctx context.Context, engineerID, date string) ([]models.Booking, error) {
	filter := bson.M{
		"engineerId": engineerID,
		"date":       date,
		"status":     bson.M{"$ne": string(models.StatusCancelled)},
	}
	return r.find(ctx, filter, bson.D{{Key: "startTime", Value: 1}})
}

func (r *MongoBookingRepo) ListByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"clientId": clientID}, bson.D{{Key: "date", Value: -1}, {Key: "startTime", Value: -1}})
}

func (r *MongoBookingRepo) ListByEngineer(ctx context.Context, engineerID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"engineerId": engineerID}, bson.D{{Key: "date", Value: -1}, {Key: "startTime", Value: -1}})
}

func (r *MongoBookingRepo) ListByDateRange(ctx context.Context, from, to string) ([]models.Booking, error) {
	filter := bson.M{"date": bson.M{"$gte": from, "$lte": to}}
	return r.find(ctx, filter, bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})
}

// ConfirmPending is a single conditional update; only a pending document matches.
func (r *MongoBookingRepo) ConfirmPending(ctx context.Context, id, paymentRef string, paidAt time.Time) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{"id": id, "status": string(models.StatusPending)}
	update := bson.M{"$set": bson.M{
		"status":           string(models.StatusConfirmed),
		"paymentReference": paymentRef,
		"paidAt":           paidAt,
		"updatedAt":        paidAt,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking %s: %w", id, err)
	}
	return res.MatchedCount == 1, nil
}

func (r *MongoBookingRepo) Cancel(ctx context.Context, id, reason string, at time.Time, from ...models.BookingStatus) (bool, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}
	filter := bson.M{"id": id, "status": bson.M{"$in": allowed}}
	update := bson.M{"$set": bson.M{
		"status":       string(models.StatusCancelled),
		"cancelReason": reason,
		"cancelledAt":  at,
		"updatedAt":    at,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking %s: %w", id, err)
	}
	return res.MatchedCount == 1, nil
}
