package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"hallbook/internal/reservations/service"
	apperrors "hallbook/pkg/errors"
	httputil "hallbook/pkg/http"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

type ReservationHandler struct {
	service      *service.ReservationService
	availability *service.AvailabilityService
	log          *logger.Logger
}

func NewReservationHandler(
	reservationService *service.ReservationService,
	availabilityService *service.AvailabilityService,
	log *logger.Logger,
) *ReservationHandler {
	return &ReservationHandler{
		service:      reservationService,
		availability: availabilityService,
		log:          log,
	}
}

func (h *ReservationHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Submit", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	date := strings.TrimSpace(query.Get("date"))
	startTime := strings.TrimSpace(query.Get("start_time"))
	endTime := strings.TrimSpace(query.Get("end_time"))
	room := model.Room(strings.TrimSpace(query.Get("room")))

	if date == "" || startTime == "" || endTime == "" || room == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "'date', 'start_time', 'end_time' and 'room' query parameters are required",
		}); err != nil {
			h.log.Error("failed to write JSON response", "handler", "CheckAvailability", "operation", "WriteJSON", "error", err)
		}
		return
	}

	headcount := 0
	if s := query.Get("headcount"); s != "" {
		var err error
		headcount, err = parseHeadcount(s)
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	result, err := h.availability.Check(r.Context(), date, startTime, endTime, room, headcount)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	number := ps.ByName("number")
	if number == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Reservation number parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "ConfirmPayment", "operation", "WriteJSON", "error", err)
		}
		return
	}

	result, err := h.service.ConfirmPayment(r.Context(), number)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ConfirmPayment", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "ConfirmPayment", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetByNumber(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	number := ps.ByName("number")
	if number == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Reservation number parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "GetByNumber", "operation", "WriteJSON", "error", err)
		}
		return
	}

	reservation, err := h.service.GetByNumber(r.Context(), number)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByNumber", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByNumber", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reservations, totalCount, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reservations, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func parseHeadcount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, apperrors.InvalidInput("invalid headcount parameter: " + s)
	}
	return n, nil
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Submit)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/availability", h.CheckAvailability)
	router.GET("/api/v1/reservations/number/:number", h.GetByNumber)
	router.POST("/api/v1/reservations/number/:number/confirm", h.ConfirmPayment)
}
