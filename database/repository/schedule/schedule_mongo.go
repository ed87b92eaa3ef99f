package scheduleRepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ctrlroom/database/repository"
	"ctrlroom/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// claimAttempts bounds re-tries when the index changes between a failed
// conditional write and the follow-up read.
const claimAttempts = 3

type entryRecord struct {
	BookingID string `bson:"id"`
	ClientID  string `bson:"clientId,omitempty"`
	Start     int    `bson:"start"`
	End       int    `bson:"end"`
	StartTime string `bson:"startTime"`
}

// scheduleRecord is keyed by "<engineerId>_<date>" so the document itself is
// the unit of atomicity for one engineer-day.
type scheduleRecord struct {
	Key        string        `bson:"_id"`
	EngineerID string        `bson:"engineerId"`
	Date       string        `bson:"date"`
	Bookings   []entryRecord `bson:"bookings"`
	UpdatedAt  time.Time     `bson:"updatedAt"`
}

func newEntryRecord(e models.ScheduleEntry) entryRecord {
	return entryRecord{
		BookingID: e.BookingID,
		ClientID:  e.ClientID,
		Start:     int(e.Interval.Start),
		End:       int(e.Interval.End),
		StartTime: e.Interval.Start.String(),
	}
}

func (r scheduleRecord) toModel() (*models.ScheduleIndex, error) {
	idx := &models.ScheduleIndex{
		EngineerID: r.EngineerID,
		Date:       r.Date,
		Entries:    make([]models.ScheduleEntry, 0, len(r.Bookings)),
		UpdatedAt:  r.UpdatedAt,
	}
	for _, b := range r.Bookings {
		iv, err := models.NewTimeInterval(models.Minute(b.Start), models.Minute(b.End))
		if err != nil {
			return nil, repository.Malformed("schedules", r.Key, err)
		}
		idx.Entries = append(idx.Entries, models.ScheduleEntry{BookingID: b.BookingID, ClientID: b.ClientID, Interval: iv})
	}
	sort.Slice(idx.Entries, func(i, j int) bool { return idx.Entries[i].Interval.Start < idx.Entries[j].Interval.Start })
	return idx, nil
}

// MongoScheduleRepo implements ScheduleRepository using MongoDB.
type MongoScheduleRepo struct {
	coll *mongo.Collection
}

func NewMongoScheduleRepo(db *mongo.Database) ScheduleRepository {
	return &MongoScheduleRepo{coll: db.Collection("schedules")}
}

func (r *MongoScheduleRepo) Get(ctx context.Context, engineerID, date string) (*models.ScheduleIndex, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var rec scheduleRecord
	err := r.coll.FindOne(ctx, bson.M{"_id": models.ScheduleKey(engineerID, date)}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.ScheduleIndex{EngineerID: engineerID, Date: date, Entries: []models.ScheduleEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule %s/%s: %w", engineerID, date, err)
	}
	return rec.toModel()
}

// Claim pushes the entry under a filter that only matches when no entry of
// another booking overlaps it. With upsert, a non-matching existing document
// turns into a duplicate key error on _id, which is how a lost claim shows up.
func (r *MongoScheduleRepo) Claim(ctx context.Context, engineerID, date string, entry models.ScheduleEntry) error {
	key := models.ScheduleKey(engineerID, date)
	filter := bson.M{
		"_id": key,
		"bookings": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"id":    bson.M{"$ne": entry.BookingID},
			"start": bson.M{"$lt": int(entry.Interval.End)},
			"end":   bson.M{"$gt": int(entry.Interval.Start)},
		}}},
		"bookings.id": bson.M{"$ne": entry.BookingID},
	}

	for attempt := 0; attempt < claimAttempts; attempt++ {
		now := time.Now().UTC()
		update := bson.M{
			"$push": bson.M{"bookings": newEntryRecord(entry)},
			"$set":  bson.M{"engineerId": engineerID, "date": date, "updatedAt": now},
		}
		err := r.update(ctx, filter, update, true)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to claim %s for booking %s: %w", key, entry.BookingID, err)
		}

		idx, err := r.Get(ctx, engineerID, date)
		if err != nil {
			return err
		}
		if repository.HasEntry(idx.Entries, entry.BookingID) {
			return nil
		}
		if blocking := repository.BlockingEntries(idx.Entries, entry.BookingID, entry.Interval); len(blocking) > 0 {
			return &repository.SlotTakenError{EngineerID: engineerID, Date: date, Blocking: blocking}
		}
		// the blocking entry was released in between; try again
	}
	return fmt.Errorf("failed to claim %s for booking %s: index kept changing", key, entry.BookingID)
}

func (r *MongoScheduleRepo) Release(ctx context.Context, engineerID, date, bookingID string) error {
	update := bson.M{
		"$pull": bson.M{"bookings": bson.M{"id": bookingID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	if err := r.update(ctx, bson.M{"_id": models.ScheduleKey(engineerID, date)}, update, false); err != nil {
		return fmt.Errorf("failed to release booking %s: %w", bookingID, err)
	}
	return nil
}

func (r *MongoScheduleRepo) Replace(ctx context.Context, engineerID, date string, entries []models.ScheduleEntry) error {
	records := make([]entryRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, newEntryRecord(e))
	}
	update := bson.M{"$set": bson.M{
		"engineerId": engineerID,
		"date":       date,
		"bookings":   records,
		"updatedAt":  time.Now().UTC(),
	}}
	if err := r.update(ctx, bson.M{"_id": models.ScheduleKey(engineerID, date)}, update, true); err != nil {
		return fmt.Errorf("failed to rebuild schedule %s/%s: %w", engineerID, date, err)
	}
	return nil
}

func (r *MongoScheduleRepo) update(ctx context.Context, filter, update bson.M, upsert bool) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(upsert))
	return err
}
