package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"clinicore/database"
	"clinicore/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScheduleRepo implements ScheduleRepository using MongoDB.
type MongoScheduleRepo struct {
	sessions     *mongo.Collection
	availability *mongo.Collection
}

// NewMongoScheduleRepo creates a new instance of ScheduleRepository using MongoDB.
func NewMongoScheduleRepo() ScheduleRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	repo := &MongoScheduleRepo{
		sessions:     db.Collection("future_sessions"),
		availability: db.Collection("availability"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoScheduleRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	sessionIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "scheduledAt", Value: 1}}},
		{Keys: bson.D{{Key: "patientId", Value: 1}}},
	}
	if _, err := r.sessions.Indexes().CreateMany(ctx, sessionIndexes); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}

	availabilityIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "hour", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.availability.Indexes().CreateMany(ctx, availabilityIndexes); err != nil {
		return fmt.Errorf("failed to create availability indexes: %w", err)
	}
	return nil
}

// GetSessionsInRange returns all future sessions scheduled in [from, to).
func (r *MongoScheduleRepo) GetSessionsInRange(from, to time.Time) ([]models.FutureSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"scheduledAt": bson.M{"$gte": from, "$lt": to}}
	cur, err := r.sessions.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer cur.Close(ctx)

	var sessions []models.FutureSession
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

// GetSessionByID retrieves a session by its unique ID.
func (r *MongoScheduleRepo) GetSessionByID(id string) (*models.FutureSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var session models.FutureSession
	if err := r.sessions.FindOne(ctx, bson.M{"id": id}).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to fetch session with id %s: %w", id, err)
	}
	return &session, nil
}

// CreateSession inserts a new future session.
func (r *MongoScheduleRepo) CreateSession(session *models.FutureSession) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = models.SessionScheduled
	}
	if _, err := r.sessions.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// UpdateSessionTime moves a session to a new scheduled instant.
func (r *MongoScheduleRepo) UpdateSessionTime(id string, scheduledAt time.Time) error {
	return r.updateSession(id, bson.M{"scheduledAt": scheduledAt})
}

// SetSessionCalendarEvent records (or clears) the cross-link to an external calendar event.
func (r *MongoScheduleRepo) SetSessionCalendarEvent(id string, calendarEventID string) error {
	return r.updateSession(id, bson.M{"calendarEventId": calendarEventID})
}

// UpdateSessionStatus transitions a session's status.
func (r *MongoScheduleRepo) UpdateSessionStatus(id string, status string) error {
	return r.updateSession(id, bson.M{"status": status})
}

func (r *MongoScheduleRepo) updateSession(id string, set bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	set["updatedAt"] = time.Now()
	res, err := r.sessions.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// DeleteSession removes a session permanently.
func (r *MongoScheduleRepo) DeleteSession(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	res, err := r.sessions.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// GetAvailabilityInRange returns availability entries for dates in [fromDate, toDate].
func (r *MongoScheduleRepo) GetAvailabilityInRange(fromDate, toDate string) ([]models.AvailabilityEntry, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"date": bson.M{"$gte": fromDate, "$lte": toDate}}
	cur, err := r.availability.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer cur.Close(ctx)

	var entries []models.AvailabilityEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	return entries, nil
}

// UpsertAvailability inserts or replaces the entry for (date, hour).
func (r *MongoScheduleRepo) UpsertAvailability(entry *models.AvailabilityEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"date": entry.Date, "hour": entry.Hour}
	_, err := r.availability.ReplaceOne(ctx, filter, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert availability %s %s: %w", entry.Date, entry.Hour, err)
	}
	return nil
}

// DeleteAvailability removes an availability entry.
func (r *MongoScheduleRepo) DeleteAvailability(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.availability.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete availability %s: %w", id, err)
	}
	return nil
}
