package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reserrors "hallbook/internal/reservations/errors"
	"hallbook/pkg/config"
	"hallbook/pkg/model"
)

const CollectionName = "Reservations"

// ReservationRepository is the persistence boundary for reservation rows.
// The stored collection is the single source of truth for conflict checks.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByNumber(ctx context.Context, number string) (*model.Reservation, error)
	FindConfirmedByDate(ctx context.Context, date string) ([]*model.Reservation, error)
	FindNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
	Confirm(ctx context.Context, number string, confirmedAt time.Time, calendarEventID, notifyStatus string) error
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context) (int64, error)
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", reserrors.ErrDuplicateNumber, reservation.ReservationNo)
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, bson.M{"reservation_no": number}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

// FindConfirmedByDate returns every confirmed reservation for the exact
// calendar date. Pending holds are excluded on purpose: only confirmed rows
// participate in conflict detection.
func (r *mongoReservationRepository) FindConfirmedByDate(ctx context.Context, date string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date":           date,
		"payment_status": model.PaymentConfirmed,
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) FindNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"reservation_no": bson.M{"$regex": "^" + prefix},
	}
	opts := options.Find().SetProjection(bson.M{"reservation_no": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservation numbers: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ReservationNo string `bson:"reservation_no"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode reservation numbers: %w", err)
	}

	numbers := make([]string, 0, len(rows))
	for _, row := range rows {
		numbers = append(numbers, row.ReservationNo)
	}
	return numbers, nil
}

// Confirm performs the confirmation transition as one conditional update:
// the four fields are written only while the row is still pending, which
// makes the idempotency guard atomic at the document level.
func (r *mongoReservationRepository) Confirm(ctx context.Context, number string, confirmedAt time.Time, calendarEventID, notifyStatus string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"reservation_no": number,
		"payment_status": model.PaymentPending,
	}
	update := bson.M{
		"$set": bson.M{
			"payment_status":    model.PaymentConfirmed,
			"confirmed_at":      confirmedAt,
			"calendar_event_id": calendarEventID,
			"notify_status":     notifyStatus,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to confirm reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		// Either the number does not exist or another caller confirmed it
		// first; distinguish for the caller.
		count, err := r.collection.CountDocuments(ctx, bson.M{"reservation_no": number})
		if err != nil {
			return fmt.Errorf("failed to confirm reservation: %w", err)
		}
		if count == 0 {
			return reserrors.ErrNotFound
		}
		return reserrors.ErrAlreadyConfirmed
	}

	return nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	return count, nil
}
