package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("reservation"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"already confirmed", AlreadyConfirmed("RES20250101-001"), CodeAlreadyConfirmed, http.StatusConflict},
		{"lock timeout", LockTimeout(), CodeLockTimeout, http.StatusServiceUnavailable},
		{"upload too large", UploadTooLarge(1024), CodeUploadTooLarge, http.StatusRequestEntityTooLarge},
		{"upload failed", UploadFailed(errors.New("boom")), CodeUploadFailed, http.StatusBadGateway},
		{"internal", Internal("oops", errors.New("boom")), CodeInternal, http.StatusInternalServerError},
		{"unavailable", Unavailable("calendar"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
			if tt.err.Error() == "" {
				t.Error("expected non-empty error message")
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("taken")
	if got := AsAppError(appErr); got != appErr {
		t.Error("expected AsAppError to return the same AppError")
	}

	plain := errors.New("something broke")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected %q for plain error, got %q", CodeInternal, converted.Code)
	}
	if converted.Message == plain.Error() {
		t.Error("raw error detail must not leak into the message")
	}
}

func TestAlreadyConfirmedDetails(t *testing.T) {
	err := AlreadyConfirmed("RES20250101-007")
	if err.Details["reservation_no"] != "RES20250101-007" {
		t.Errorf("expected reservation number in details, got %v", err.Details)
	}
}
