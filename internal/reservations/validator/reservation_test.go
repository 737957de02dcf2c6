package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

func newTestValidator() *ReservationValidator {
	v := NewReservationValidator(logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	}))
	v.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return v
}

func validRequest() *model.SubmissionRequest {
	return &model.SubmissionRequest{
		Date:      "2025-07-01",
		StartTime: "10:00",
		EndTime:   "13:00",
		Room:      model.RoomA,
		Name:      "Hong Gildong",
		Phone:     "010-1234-5678",
		Headcount: 5,
	}
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	v := newTestValidator()
	if err := v.Validate(validRequest(), 2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSameDayAllowed(t *testing.T) {
	v := newTestValidator()
	req := validRequest()
	req.Date = "2025-06-15"
	if err := v.Validate(req, 2); err != nil {
		t.Errorf("same-day reservation should be allowed: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(req *model.SubmissionRequest)
		wantField string
	}{
		{"missing date", func(r *model.SubmissionRequest) { r.Date = "" }, "Date"},
		{"malformed date", func(r *model.SubmissionRequest) { r.Date = "01-07-2025" }, "Date"},
		{"past date", func(r *model.SubmissionRequest) { r.Date = "2025-06-14" }, "Date"},
		{"malformed start", func(r *model.SubmissionRequest) { r.StartTime = "10am" }, "StartTime"},
		{"malformed end", func(r *model.SubmissionRequest) { r.EndTime = "25:00" }, "EndTime"},
		{"end before start", func(r *model.SubmissionRequest) { r.StartTime = "13:00"; r.EndTime = "10:00" }, "EndTime"},
		{"under minimum hours", func(r *model.SubmissionRequest) { r.EndTime = "11:00" }, "EndTime"},
		{"invalid room", func(r *model.SubmissionRequest) { r.Room = "Z" }, "Room"},
		{"short name", func(r *model.SubmissionRequest) { r.Name = "X" }, "Name"},
		{"unparseable phone", func(r *model.SubmissionRequest) { r.Phone = "call me" }, "Phone"},
		{"bad email", func(r *model.SubmissionRequest) { r.Email = "not-an-email" }, "Email"},
		{"zero headcount", func(r *model.SubmissionRequest) { r.Headcount = 0 }, "Headcount"},
		{"excessive headcount", func(r *model.SubmissionRequest) { r.Headcount = 1000 }, "Headcount"},
		{"tax invoice without document", func(r *model.SubmissionRequest) { r.TaxInvoice = true }, "Document"},
		{"document missing filename", func(r *model.SubmissionRequest) {
			r.Document = &model.DocumentPayload{MimeType: "application/pdf", ContentBase64: "YWJj"}
		}, "Filename"},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.Validate(req, 2)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var validationErrs ValidationErrors
			if !errors.As(err, &validationErrs) {
				t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
			}

			found := false
			for _, ve := range validationErrs {
				if ve.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error on field %q, got %v", tt.wantField, validationErrs)
			}
		})
	}
}

func TestValidateAggregatesTagAndSemanticErrors(t *testing.T) {
	v := newTestValidator()

	// A missing name fails tag validation; a past date only fails the
	// semantic phase. Both must appear in one list.
	req := validRequest()
	req.Name = ""
	req.Date = "2025-06-14"

	err := v.Validate(req, 2)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	var validationErrs ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	fields := make(map[string]bool)
	for _, ve := range validationErrs {
		fields[ve.Field] = true
	}
	if !fields["Name"] {
		t.Errorf("missing Name error in %v", validationErrs)
	}
	if !fields["Date"] {
		t.Errorf("missing Date error in %v", validationErrs)
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	v := newTestValidator()

	req := validRequest()
	req.Date = "2025-06-14"
	req.EndTime = "11:00"
	req.TaxInvoice = true

	err := v.Validate(req, 2)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	var validationErrs ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(validationErrs) < 3 {
		t.Errorf("expected at least 3 aggregated errors, got %d: %v", len(validationErrs), validationErrs)
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("unexpected message: %v", err)
	}
}
