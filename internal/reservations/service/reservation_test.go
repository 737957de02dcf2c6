package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"testing"
	"time"

	"hallbook/internal/reservations/repository"
	"hallbook/internal/reservations/validator"
	"hallbook/pkg/audit"
	"hallbook/pkg/client"
	"hallbook/pkg/config"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/lock"
	"hallbook/pkg/model"
	"hallbook/pkg/settings"
)

func newWorkflowService(
	repo repository.ReservationRepository,
	calendar *mockCalendarClient,
	docstore *mockDocStoreClient,
	submissionLock *lock.SubmissionLock,
) *ReservationService {
	log := testLogger()
	cfg := &config.Config{
		Log:            log,
		UploadMaxBytes: 1024,
	}
	provider := settings.Static{Settings: settings.Defaults()}

	availability := NewAvailabilityService(repo, provider, audit.NopSink{}, log)
	sequence := NewSequenceGenerator(repo)

	return NewReservationService(
		cfg,
		repo,
		validator.NewReservationValidator(log),
		availability,
		provider,
		sequence,
		submissionLock,
		calendar,
		docstore,
		audit.NopSink{},
		log,
	)
}

func validSubmission() *model.SubmissionRequest {
	return &model.SubmissionRequest{
		Date:      "2030-05-01",
		StartTime: "10:00",
		EndTime:   "13:00",
		Room:      model.RoomA,
		Name:      "Hong Gildong",
		Phone:     "010-1234-5678",
		Headcount: 5,
	}
}

func TestSubmitCreatesPendingReservation(t *testing.T) {
	repo := newMemoryRepository()
	svc := newWorkflowService(repo, &mockCalendarClient{}, &mockDocStoreClient{}, lock.NewSubmissionLock(time.Second))

	result, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 178200 {
		t.Errorf("total = %d, want 178200", result.Total)
	}

	stored, err := repo.FindByNumber(context.Background(), result.ReservationNo)
	if err != nil {
		t.Fatalf("stored reservation not found: %v", err)
	}
	if stored.PaymentStatus != model.PaymentPending {
		t.Errorf("payment status = %q, want pending", stored.PaymentStatus)
	}
	if stored.Hours != 3 {
		t.Errorf("hours = %v, want 3", stored.Hours)
	}
	if stored.Phone != "+821012345678" {
		t.Errorf("phone = %q, want E.164 normalized", stored.Phone)
	}
	if stored.BasePrice != 132000 || stored.ExtraFee != 30000 || stored.VAT != 16200 {
		t.Errorf("unexpected price fields: %+v", stored)
	}
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	repo := newMemoryRepository()
	svc := newWorkflowService(repo, &mockCalendarClient{}, &mockDocStoreClient{}, lock.NewSubmissionLock(time.Second))

	tests := []struct {
		name   string
		mutate func(req *model.SubmissionRequest)
	}{
		{"missing name", func(req *model.SubmissionRequest) { req.Name = "" }},
		{"bad phone", func(req *model.SubmissionRequest) { req.Phone = "12" }},
		{"past date", func(req *model.SubmissionRequest) { req.Date = "2020-01-01" }},
		{"below minimum hours", func(req *model.SubmissionRequest) { req.EndTime = "11:00" }},
		{"end before start", func(req *model.SubmissionRequest) { req.EndTime = "09:00" }},
		{"bad room", func(req *model.SubmissionRequest) { req.Room = "C" }},
		{"zero headcount", func(req *model.SubmissionRequest) { req.Headcount = 0 }},
		{"tax invoice without document", func(req *model.SubmissionRequest) { req.TaxInvoice = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSubmission()
			tt.mutate(req)

			_, err := svc.Submit(context.Background(), req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeValidation {
				t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeValidation)
			}
		})
	}

	if count, _ := repo.Count(context.Background()); count != 0 {
		t.Errorf("rejected submissions must not persist, found %d rows", count)
	}
}

func TestSubmitRejectsConflictingSlot(t *testing.T) {
	repo := newMemoryRepository()
	calendar := &mockCalendarClient{}
	svc := newWorkflowService(repo, calendar, &mockDocStoreClient{}, lock.NewSubmissionLock(time.Second))

	first, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ConfirmPayment(context.Background(), first.ReservationNo); err != nil {
		t.Fatalf("confirmation failed: %v", err)
	}

	// Overlapping window, same hall.
	req := validSubmission()
	req.StartTime = "11:00"
	req.EndTime = "13:00"
	_, err = svc.Submit(context.Background(), req)
	if err == nil {
		t.Fatal("expected conflict")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}

	// Touching window on the same hall goes through.
	adjacent := validSubmission()
	adjacent.StartTime = "13:00"
	adjacent.EndTime = "15:00"
	if _, err := svc.Submit(context.Background(), adjacent); err != nil {
		t.Errorf("adjacent window should be accepted: %v", err)
	}

	// Pending rows hold nothing: the same slot as the pending adjacent
	// submission is still open.
	sameAsPending := validSubmission()
	sameAsPending.StartTime = "13:00"
	sameAsPending.EndTime = "15:00"
	if _, err := svc.Submit(context.Background(), sameAsPending); err != nil {
		t.Errorf("pending reservations must not block: %v", err)
	}
}

func TestSubmitLockTimeout(t *testing.T) {
	repo := newMemoryRepository()
	submissionLock := lock.NewSubmissionLock(20 * time.Millisecond)
	svc := newWorkflowService(repo, &mockCalendarClient{}, &mockDocStoreClient{}, submissionLock)

	if !submissionLock.Acquire(context.Background()) {
		t.Fatal("setup: could not take the lock")
	}
	defer submissionLock.Release()

	_, err := svc.Submit(context.Background(), validSubmission())
	if err == nil {
		t.Fatal("expected lock timeout")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeLockTimeout {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeLockTimeout)
	}
}

func TestSubmitConcurrentUniqueNumbers(t *testing.T) {
	repo := newMemoryRepository()
	svc := newWorkflowService(repo, &mockCalendarClient{}, &mockDocStoreClient{}, lock.NewSubmissionLock(10*time.Second))

	const workers = 16

	var wg sync.WaitGroup
	results := make(chan string, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Submit(context.Background(), validSubmission())
			if err != nil {
				errs <- err
				return
			}
			results <- result.ReservationNo
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Errorf("submission failed: %v", err)
	}

	seen := make(map[string]bool)
	for number := range results {
		if seen[number] {
			t.Errorf("duplicate reservation number %q", number)
		}
		seen[number] = true
	}
	if len(seen) != workers {
		t.Errorf("expected %d unique numbers, got %d", workers, len(seen))
	}
}

func TestSubmitStoresDocument(t *testing.T) {
	repo := newMemoryRepository()
	var uploadedNo string
	docstore := &mockDocStoreClient{
		uploadFunc: func(ctx context.Context, content []byte, mimeType, filename, reservationNo string) (string, error) {
			uploadedNo = reservationNo
			return "https://docs.example.com/invoice.pdf", nil
		},
	}
	svc := newWorkflowService(repo, &mockCalendarClient{}, docstore, lock.NewSubmissionLock(time.Second))

	req := validSubmission()
	req.TaxInvoice = true
	req.Document = &model.DocumentPayload{
		Filename:      "invoice.pdf",
		MimeType:      "application/pdf",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("pdf bytes")),
	}

	result, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uploadedNo != result.ReservationNo {
		t.Errorf("upload tagged with %q, want %q", uploadedNo, result.ReservationNo)
	}

	stored, _ := repo.FindByNumber(context.Background(), result.ReservationNo)
	if stored.DocumentURL != "https://docs.example.com/invoice.pdf" {
		t.Errorf("document url = %q", stored.DocumentURL)
	}
}

func TestSubmitDocumentErrors(t *testing.T) {
	repo := newMemoryRepository()
	docstore := &mockDocStoreClient{
		uploadFunc: func(ctx context.Context, content []byte, mimeType, filename, reservationNo string) (string, error) {
			return "", fmt.Errorf("store unreachable")
		},
	}
	svc := newWorkflowService(repo, &mockCalendarClient{}, docstore, lock.NewSubmissionLock(time.Second))

	// Oversized payload (limit in the test config is 1024 bytes).
	req := validSubmission()
	req.Document = &model.DocumentPayload{
		Filename:      "big.pdf",
		MimeType:      "application/pdf",
		ContentBase64: base64.StdEncoding.EncodeToString(make([]byte, 2048)),
	}
	_, err := svc.Submit(context.Background(), req)
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeUploadTooLarge {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeUploadTooLarge)
	}

	// Invalid base64.
	req = validSubmission()
	req.Document = &model.DocumentPayload{
		Filename:      "bad.pdf",
		MimeType:      "application/pdf",
		ContentBase64: "%%% not base64 %%%",
	}
	_, err = svc.Submit(context.Background(), req)
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeInvalidInput)
	}

	// Upstream failure.
	req = validSubmission()
	req.Document = &model.DocumentPayload{
		Filename:      "invoice.pdf",
		MimeType:      "application/pdf",
		ContentBase64: base64.StdEncoding.EncodeToString([]byte("small")),
	}
	_, err = svc.Submit(context.Background(), req)
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeUploadFailed {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeUploadFailed)
	}

	if count, _ := repo.Count(context.Background()); count != 0 {
		t.Errorf("failed submissions must not persist, found %d rows", count)
	}
}

func TestConfirmPaymentHappyPath(t *testing.T) {
	repo := newMemoryRepository()
	calendar := &mockCalendarClient{}
	svc := newWorkflowService(repo, calendar, &mockDocStoreClient{}, lock.NewSubmissionLock(time.Second))

	submitted, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.ConfirmPayment(context.Background(), submitted.ReservationNo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CalendarEventID != "evt-123" {
		t.Errorf("event id = %q, want evt-123", result.CalendarEventID)
	}

	stored, _ := repo.FindByNumber(context.Background(), submitted.ReservationNo)
	if stored.PaymentStatus != model.PaymentConfirmed {
		t.Errorf("status = %q, want confirmed", stored.PaymentStatus)
	}
	if stored.ConfirmedAt == nil {
		t.Error("confirmed_at not set")
	}
	if stored.CalendarEventID != "evt-123" {
		t.Errorf("calendar event id = %q", stored.CalendarEventID)
	}
	if stored.NotifyStatus != model.NotifyConfirmed {
		t.Errorf("notify status = %q, want %q", stored.NotifyStatus, model.NotifyConfirmed)
	}
}

func TestConfirmPaymentIsNotRepeatable(t *testing.T) {
	repo := newMemoryRepository()
	calendar := &mockCalendarClient{}
	svc := newWorkflowService(repo, calendar, &mockDocStoreClient{}, lock.NewSubmissionLock(time.Second))

	submitted, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ConfirmPayment(context.Background(), submitted.ReservationNo); err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}

	_, err = svc.ConfirmPayment(context.Background(), submitted.ReservationNo)
	if err == nil {
		t.Fatal("expected second confirmation to fail")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeAlreadyConfirmed {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeAlreadyConfirmed)
	}

	if calendar.creates() != 1 {
		t.Errorf("calendar event created %d times, want exactly 1", calendar.creates())
	}
}

func TestConfirmPaymentUnknownNumber(t *testing.T) {
	repo := newMemoryRepository()
	svc := newWorkflowService(repo, &mockCalendarClient{}, &mockDocStoreClient{}, lock.NewSubmissionLock(time.Second))

	_, err := svc.ConfirmPayment(context.Background(), "RES20250101-404")
	if err == nil {
		t.Fatal("expected not found")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeNotFound)
	}
}

func TestConfirmPaymentCalendarFailureKeepsPending(t *testing.T) {
	repo := newMemoryRepository()
	calendar := &mockCalendarClient{
		createFunc: func(ctx context.Context, event client.CalendarEvent) (string, error) {
			return "", fmt.Errorf("calendar unreachable")
		},
	}
	svc := newWorkflowService(repo, calendar, &mockDocStoreClient{}, lock.NewSubmissionLock(time.Second))

	submitted, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ConfirmPayment(context.Background(), submitted.ReservationNo); err == nil {
		t.Fatal("expected confirmation to fail when the calendar is down")
	}

	stored, _ := repo.FindByNumber(context.Background(), submitted.ReservationNo)
	if stored.PaymentStatus != model.PaymentPending {
		t.Errorf("status = %q, want pending after calendar failure", stored.PaymentStatus)
	}
	if stored.CalendarEventID != "" {
		t.Errorf("calendar event id = %q, want empty", stored.CalendarEventID)
	}
}

func TestConfirmPaymentDeletesOrphanedEventOnWriteFailure(t *testing.T) {
	pending := &model.Reservation{
		ReservationNo: "RES20250101-001",
		Date:          "2030-05-01",
		StartTime:     "10:00",
		EndTime:       "13:00",
		Room:          model.RoomA,
		Name:          "Hong Gildong",
		PaymentStatus: model.PaymentPending,
	}
	repo := &mockReservationRepository{
		findByNumberFunc: func(ctx context.Context, number string) (*model.Reservation, error) {
			copied := *pending
			return &copied, nil
		},
		confirmFunc: func(ctx context.Context, number string, confirmedAt time.Time, calendarEventID, notifyStatus string) error {
			return fmt.Errorf("write failed")
		},
	}
	calendar := &mockCalendarClient{}
	svc := newWorkflowService(repo, calendar, &mockDocStoreClient{}, lock.NewSubmissionLock(time.Second))

	if _, err := svc.ConfirmPayment(context.Background(), pending.ReservationNo); err == nil {
		t.Fatal("expected confirmation to fail")
	}

	if calendar.creates() != 1 {
		t.Errorf("calendar created %d events, want 1", calendar.creates())
	}
	if calendar.deletes() != 1 {
		t.Errorf("calendar deleted %d events, want 1 (orphan cleanup)", calendar.deletes())
	}
}
