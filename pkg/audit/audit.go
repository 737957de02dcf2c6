// Package audit is the best-effort audit log sink. Records are published to
// Kafka; failures are logged and swallowed so that auditing can never fail
// the operation being audited.
package audit

import (
	"context"
	"time"

	"hallbook/pkg/kafka"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

const (
	EventAvailabilityChecked = "availability.checked"
	EventReservationCreated  = "reservation.created"
	EventPaymentConfirmed    = "reservation.payment_confirmed"
)

// Sink records audit events. Implementations must be safe for concurrent use
// and must never return an error to the caller path.
type Sink interface {
	AvailabilityChecked(ctx context.Context, record AvailabilityRecord)
	ReservationCreated(ctx context.Context, reservationNo string, room model.Room, date string)
	PaymentConfirmed(ctx context.Context, reservationNo string, calendarEventID string)
}

type AvailabilityRecord struct {
	Date      string     `json:"date"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	Room      model.Room `json:"room"`
	Available bool       `json:"available"`
	Conflicts int        `json:"conflicts"`
	CheckedAt time.Time  `json:"checked_at"`
}

type kafkaSink struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaSink(producer *kafka.Producer, source string, log *logger.Logger) Sink {
	return &kafkaSink{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (s *kafkaSink) AvailabilityChecked(ctx context.Context, record AvailabilityRecord) {
	s.publish(ctx, EventAvailabilityChecked, record.Date, record)
}

func (s *kafkaSink) ReservationCreated(ctx context.Context, reservationNo string, room model.Room, date string) {
	s.publish(ctx, EventReservationCreated, reservationNo, map[string]any{
		"reservation_no": reservationNo,
		"room":           room,
		"date":           date,
	})
}

func (s *kafkaSink) PaymentConfirmed(ctx context.Context, reservationNo string, calendarEventID string) {
	s.publish(ctx, EventPaymentConfirmed, reservationNo, map[string]any{
		"reservation_no":    reservationNo,
		"calendar_event_id": calendarEventID,
	})
}

func (s *kafkaSink) publish(ctx context.Context, eventType, key string, payload any) {
	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(s.source).
		Build()

	if err := s.producer.Publish(ctx, msg); err != nil {
		// Swallowed on purpose: auditing is best-effort.
		s.log.Warn("Failed to publish audit record",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
	}
}

// NopSink discards every record. Used when no broker is configured and in
// tests.
type NopSink struct{}

func (NopSink) AvailabilityChecked(context.Context, AvailabilityRecord)       {}
func (NopSink) ReservationCreated(context.Context, string, model.Room, string) {}
func (NopSink) PaymentConfirmed(context.Context, string, string)              {}
