package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"hallbook/pkg/logger"
	"hallbook/pkg/model"
	"hallbook/pkg/sanitizer"
	"hallbook/pkg/timeutil"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()

	registrations := map[string]validator.Func{
		"room":        validateRoom,
		"clock":       validateClock,
		"rental_date": validateDate,
		"phone":       validatePhone,
	}
	for tag, fn := range registrations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	return &ReservationValidator{
		validate: v,
		logger:   log,
		now:      time.Now,
	}
}

func validateRoom(fl validator.FieldLevel) bool {
	return model.Room(fl.Field().String()).Valid()
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := timeutil.ParseClock(fl.Field().String())
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	return timeutil.ValidDate(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return sanitizer.NormalizePhone(fl.Field().String()) != ""
}

// Validate checks the full submission form and returns every problem at
// once as an aggregated list; callers surface the list verbatim. Tag
// failures and semantic failures are collected together, so a form with a
// missing name and a past date reports both.
func (v *ReservationValidator) Validate(req *model.SubmissionRequest, minHours float64) error {
	var errs ValidationErrors

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		errs = append(errs, v.translateValidationErrors(validationErrs)...)
	}

	if timeutil.ValidDate(req.Date) && timeutil.IsPastDate(req.Date, v.now()) {
		errs = append(errs, ValidationError{
			Field:   "Date",
			Message: "date cannot be in the past",
		})
	}

	hours, err := timeutil.Hours(req.StartTime, req.EndTime)
	if err == nil {
		if hours <= 0 {
			errs = append(errs, ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			})
		} else if hours < minHours {
			errs = append(errs, ValidationError{
				Field:   "EndTime",
				Message: fmt.Sprintf("rental must be at least %.1f hours", minHours),
			})
		}
	}

	if req.TaxInvoice && req.Document == nil {
		errs = append(errs, ValidationError{
			Field:   "Document",
			Message: "tax invoice requests must attach a supporting document",
		})
	}
	if req.Document != nil {
		if err := v.validate.Struct(req.Document); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				errs = append(errs, v.translateValidationErrors(validationErrs)...)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = "field is required"
		case "min":
			message = fmt.Sprintf("must be at least %s", err.Param())
		case "max":
			message = fmt.Sprintf("must be at most %s", err.Param())
		case "email":
			message = "must be a valid email address"
		case "room":
			message = "room must be A, B or A+B"
		case "clock":
			message = "must be a valid HH:MM time"
		case "rental_date":
			message = "must be a valid YYYY-MM-DD date"
		case "phone":
			message = "must be a valid phone number"
		default:
			message = fmt.Sprintf("failed validation: %s", err.Tag())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
