package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	reserrors "hallbook/internal/reservations/errors"
	"hallbook/internal/reservations/repository"
	resvalidator "hallbook/internal/reservations/validator"
	"hallbook/pkg/audit"
	"hallbook/pkg/client"
	"hallbook/pkg/config"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/lock"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
	"hallbook/pkg/sanitizer"
	"hallbook/pkg/settings"
	"hallbook/pkg/timeutil"
)

// ReservationService runs the submission and confirmation workflows. The
// whole submission pipeline executes under the process-wide lock so that
// availability checks, number generation and the insert form one critical
// section.
type ReservationService struct {
	cfg          *config.Config
	repo         repository.ReservationRepository
	validator    *resvalidator.ReservationValidator
	availability *AvailabilityService
	settings     settings.Provider
	sequence     *SequenceGenerator
	lock         *lock.SubmissionLock
	calendar     client.CalendarClient
	docstore     client.DocStoreClient
	sink         audit.Sink
	logger       *logger.Logger
}

func NewReservationService(
	cfg *config.Config,
	repo repository.ReservationRepository,
	validator *resvalidator.ReservationValidator,
	availability *AvailabilityService,
	provider settings.Provider,
	sequence *SequenceGenerator,
	submissionLock *lock.SubmissionLock,
	calendar client.CalendarClient,
	docstore client.DocStoreClient,
	sink audit.Sink,
	log *logger.Logger,
) *ReservationService {
	return &ReservationService{
		cfg:          cfg,
		repo:         repo,
		validator:    validator,
		availability: availability,
		settings:     provider,
		sequence:     sequence,
		lock:         submissionLock,
		calendar:     calendar,
		docstore:     docstore,
		sink:         sink,
		logger:       log,
	}
}

// Submit runs the full submission workflow: sanitize, validate, re-check
// availability, assign the next reservation number, price, optionally store
// the attached document, then persist the pending reservation.
func (s *ReservationService) Submit(ctx context.Context, req *model.SubmissionRequest) (*model.SubmissionResult, error) {
	if !s.lock.Acquire(ctx) {
		s.logger.Warn("Submission lock not acquired within bound")
		return nil, apperrors.LockTimeout()
	}
	defer s.lock.Release()

	s.sanitize(req)

	snapshot := s.settings.Snapshot(ctx)

	if err := s.validator.Validate(req, snapshot.MinHours); err != nil {
		var validationErrs resvalidator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, apperrors.Validation("Submission failed validation", map[string]any{
				"errors": validationErrs,
			})
		}
		return nil, apperrors.Internal("Failed to validate submission", err)
	}

	availability, err := s.availability.Check(ctx, req.Date, req.StartTime, req.EndTime, req.Room, req.Headcount)
	if err != nil {
		return nil, err
	}
	if !availability.Available {
		return nil, apperrors.Conflict("requested slot is no longer available").WithDetails(map[string]any{
			"conflicts": availability.Conflicts,
		})
	}

	number, err := s.sequence.Next(ctx)
	if err != nil {
		if errors.Is(err, reserrors.ErrSequenceExhausted) {
			s.logger.Error("Daily reservation sequence exhausted")
			return nil, apperrors.Conflict("no reservation numbers left for today")
		}
		return nil, apperrors.Internal("Failed to generate reservation number", err)
	}

	hours, err := timeutil.Hours(req.StartTime, req.EndTime)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid rental window")
	}
	price := Quote(req.Headcount, hours, req.Room, snapshot)

	documentURL := ""
	if req.Document != nil {
		documentURL, err = s.storeDocument(ctx, number, req.Document)
		if err != nil {
			return nil, err
		}
	}

	reservation := &model.Reservation{
		ReservationNo: number,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Hours:         hours,
		Room:          req.Room,
		Name:          req.Name,
		Company:       req.Company,
		Phone:         req.Phone,
		Email:         req.Email,
		Headcount:     req.Headcount,
		Vehicles:      req.Vehicles,
		TaxInvoice:    req.TaxInvoice,
		Referral:      req.Referral,
		Activity:      req.Activity,
		BasePrice:     price.BasePrice,
		ExtraFee:      price.ExtraFee,
		Subtotal:      price.Subtotal,
		VAT:           price.VAT,
		Total:         price.Total,
		PaymentStatus: model.PaymentPending,
		DocumentURL:   documentURL,
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		if errors.Is(err, reserrors.ErrDuplicateNumber) {
			// Should be unreachable while the lock holds; the unique index
			// is the backstop.
			s.logger.Error("Duplicate reservation number despite lock", "reservation_no", number)
			return nil, apperrors.Conflict("reservation number collision, please retry")
		}
		return nil, apperrors.Internal("Failed to save reservation", err)
	}

	s.logger.Info("Reservation created",
		"reservation_no", number,
		"room", req.Room,
		"date", req.Date,
		"total", price.Total,
	)
	s.sink.ReservationCreated(ctx, number, req.Room, req.Date)

	return &model.SubmissionResult{
		ReservationNo: number,
		Total:         price.Total,
	}, nil
}

// ConfirmPayment marks a pending reservation as paid. The calendar event is
// created first; only then is the row updated, so a confirmed row always has
// its event. Confirming twice is rejected, not repeated.
func (s *ReservationService) ConfirmPayment(ctx context.Context, number string) (*model.ConfirmationResult, error) {
	reservation, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("reservation", number)
		}
		return nil, apperrors.Internal("Failed to load reservation", err)
	}
	if reservation.PaymentStatus != model.PaymentPending {
		return nil, apperrors.AlreadyConfirmed(number)
	}

	eventID, err := s.calendar.CreateEvent(ctx, s.buildCalendarEvent(reservation))
	if err != nil {
		s.logger.Error("Failed to create calendar event",
			"reservation_no", number,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create calendar event", err)
	}

	confirmedAt := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.repo.Confirm(ctx, number, confirmedAt, eventID, model.NotifyConfirmed); err != nil {
		// The event already exists; try to take it back so the calendar does
		// not show a reservation that was never confirmed.
		if deleted, delErr := s.calendar.DeleteEvent(ctx, eventID); delErr != nil || !deleted {
			s.logger.Warn("Orphaned calendar event after failed confirmation",
				"reservation_no", number,
				"calendar_event_id", eventID,
				"error", delErr,
			)
		}

		switch {
		case errors.Is(err, reserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("reservation", number)
		case errors.Is(err, reserrors.ErrAlreadyConfirmed):
			return nil, apperrors.AlreadyConfirmed(number)
		default:
			return nil, apperrors.Internal("Failed to confirm reservation", err)
		}
	}

	s.logger.Info("Payment confirmed",
		"reservation_no", number,
		"calendar_event_id", eventID,
	)
	s.sink.PaymentConfirmed(ctx, number, eventID)

	return &model.ConfirmationResult{
		ReservationNo:   number,
		CalendarEventID: eventID,
	}, nil
}

// GetByNumber looks a reservation up by its public number.
func (s *ReservationService) GetByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	reservation, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("reservation", number)
		}
		return nil, apperrors.Internal("Failed to load reservation", err)
	}
	return reservation, nil
}

// List returns reservations newest first plus the total row count.
func (s *ReservationService) List(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	reservations, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list reservations", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count reservations", err)
	}
	return reservations, total, nil
}

func (s *ReservationService) sanitize(req *model.SubmissionRequest) {
	req.Name = sanitizer.CleanText(req.Name)
	req.Company = sanitizer.CleanText(req.Company)
	req.Referral = sanitizer.CleanText(req.Referral)
	req.Activity = sanitizer.CleanText(req.Activity)
	req.Notes = sanitizer.CleanText(req.Notes)
	req.Email = sanitizer.CleanText(req.Email)

	if normalized := sanitizer.NormalizePhone(req.Phone); normalized != "" {
		req.Phone = normalized
	}
}

func (s *ReservationService) storeDocument(ctx context.Context, number string, doc *model.DocumentPayload) (string, error) {
	content, err := base64.StdEncoding.DecodeString(doc.ContentBase64)
	if err != nil {
		return "", apperrors.InvalidInput("document content must be valid base64")
	}
	if int64(len(content)) > s.cfg.UploadMaxBytes {
		return "", apperrors.UploadTooLarge(s.cfg.UploadMaxBytes)
	}

	url, err := s.docstore.Upload(ctx, content, doc.MimeType, doc.Filename, number)
	if err != nil {
		s.logger.Error("Failed to upload document",
			"reservation_no", number,
			"filename", doc.Filename,
			"error", err,
		)
		return "", apperrors.UploadFailed(err)
	}
	return url, nil
}

func (s *ReservationService) buildCalendarEvent(reservation *model.Reservation) client.CalendarEvent {
	start, _ := time.ParseInLocation("2006-01-02 15:04", reservation.Date+" "+reservation.StartTime, time.Local)
	end, _ := time.ParseInLocation("2006-01-02 15:04", reservation.Date+" "+reservation.EndTime, time.Local)

	return client.CalendarEvent{
		Title: fmt.Sprintf("[%s] %s (%s)", reservation.Room, reservation.Name, reservation.ReservationNo),
		Start: start.Format(time.RFC3339),
		End:   end.Format(time.RFC3339),
		Description: fmt.Sprintf("Reservation %s, %d person(s), total %d",
			reservation.ReservationNo, reservation.Headcount, reservation.Total),
		Location: string(reservation.Room),
	}
}
