package model

import "time"

// Payment status values. A reservation is created pending and moves to
// confirmed exactly once; there is no further transition.
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
)

// NotifyConfirmed is the notification tag stamped by payment confirmation.
const NotifyConfirmed = "payment_confirmed"

// Reservation is the persisted record, the single source of truth for
// conflict checks. Rows are never deleted by this service.
type Reservation struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	ReservationNo string    `json:"reservation_no" bson:"reservation_no"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`

	Date      string  `json:"date" bson:"date"`             // YYYY-MM-DD
	StartTime string  `json:"start_time" bson:"start_time"` // HH:MM
	EndTime   string  `json:"end_time" bson:"end_time"`     // HH:MM
	Hours     float64 `json:"hours" bson:"hours"`
	Room      Room    `json:"room" bson:"room"`

	Name       string `json:"name" bson:"name"`
	Company    string `json:"company,omitempty" bson:"company,omitempty"`
	Phone      string `json:"phone" bson:"phone"`
	Email      string `json:"email,omitempty" bson:"email,omitempty"`
	Headcount  int    `json:"headcount" bson:"headcount"`
	Vehicles   int    `json:"vehicles" bson:"vehicles"`
	TaxInvoice bool   `json:"tax_invoice" bson:"tax_invoice"`
	Referral   string `json:"referral,omitempty" bson:"referral,omitempty"`
	Activity   string `json:"activity,omitempty" bson:"activity,omitempty"`

	BasePrice int64 `json:"base_price" bson:"base_price"`
	ExtraFee  int64 `json:"extra_fee" bson:"extra_fee"`
	Subtotal  int64 `json:"subtotal" bson:"subtotal"`
	VAT       int64 `json:"vat" bson:"vat"`
	Total     int64 `json:"total" bson:"total"`

	PaymentStatus   string     `json:"payment_status" bson:"payment_status"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	DocumentURL     string     `json:"document_url,omitempty" bson:"document_url,omitempty"`
	CalendarEventID string     `json:"calendar_event_id,omitempty" bson:"calendar_event_id,omitempty"`
	NotifyStatus    string     `json:"notify_status,omitempty" bson:"notify_status,omitempty"`
	Notes           string     `json:"notes,omitempty" bson:"notes,omitempty"`
}

// SubmissionRequest is the full form payload accepted by the submit action.
type SubmissionRequest struct {
	Date      string `json:"date" validate:"required,rental_date"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Room      Room   `json:"room" validate:"required,room"`

	Name       string `json:"name" validate:"required,min=2,max=100"`
	Company    string `json:"company" validate:"omitempty,max=100"`
	Phone      string `json:"phone" validate:"required,phone"`
	Email      string `json:"email" validate:"omitempty,email"`
	Headcount  int    `json:"headcount" validate:"required,min=1,max=500"`
	Vehicles   int    `json:"vehicles" validate:"omitempty,min=0,max=100"`
	TaxInvoice bool   `json:"tax_invoice"`
	Referral   string `json:"referral" validate:"omitempty,max=100"`
	Activity   string `json:"activity" validate:"omitempty,max=500"`
	Notes      string `json:"notes" validate:"omitempty,max=1000"`

	Document *DocumentPayload `json:"document,omitempty"`
}

// DocumentPayload carries an optional tax-invoice supporting document,
// base64-encoded by the web layer.
type DocumentPayload struct {
	Filename      string `json:"filename" validate:"required,max=255"`
	MimeType      string `json:"mime_type" validate:"required,max=100"`
	ContentBase64 string `json:"content_base64" validate:"required"`
}

// SubmissionResult is returned to the caller on a successful submission.
type SubmissionResult struct {
	ReservationNo string `json:"reservation_no"`
	Total         int64  `json:"total"`
}

// PriceBreakdown is derived, never stored on its own.
type PriceBreakdown struct {
	BasePrice int64 `json:"base_price"`
	ExtraFee  int64 `json:"extra_fee"`
	Subtotal  int64 `json:"subtotal"`
	VAT       int64 `json:"vat"`
	Total     int64 `json:"total"`
}

// ConflictRef points a rejected requester at the reservation blocking them.
type ConflictRef struct {
	ReservationNo string `json:"reservation_no"`
	Room          Room   `json:"room"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

// AvailabilityResult reports the outcome of an availability query.
// SuggestCombined is set when the requested headcount is at or above the
// configured threshold for recommending both halls.
type AvailabilityResult struct {
	Available       bool          `json:"available"`
	Conflicts       []ConflictRef `json:"conflicts,omitempty"`
	SuggestCombined bool          `json:"suggest_combined,omitempty"`
}

// ConfirmationResult is returned by the administrative payment confirmation.
type ConfirmationResult struct {
	ReservationNo   string `json:"reservation_no"`
	CalendarEventID string `json:"calendar_event_id"`
}
