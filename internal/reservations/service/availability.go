package service

import (
	"context"
	"time"

	"hallbook/internal/reservations/repository"
	"hallbook/pkg/audit"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
	"hallbook/pkg/settings"
	"hallbook/pkg/timeutil"
)

// AvailabilityService answers "is this room free in this window" against the
// stored reservations. Only payment-confirmed rows block a slot; pending
// submissions hold nothing.
type AvailabilityService struct {
	repo     repository.ReservationRepository
	settings settings.Provider
	sink     audit.Sink
	logger   *logger.Logger
}

func NewAvailabilityService(
	repo repository.ReservationRepository,
	provider settings.Provider,
	sink audit.Sink,
	log *logger.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		repo:     repo,
		settings: provider,
		sink:     sink,
		logger:   log,
	}
}

// Check reports whether the requested slot is free, listing every confirmed
// reservation that blocks it. Headcount is optional (pass 0 to skip the
// combined-hall suggestion).
func (s *AvailabilityService) Check(ctx context.Context, date, startTime, endTime string, room model.Room, headcount int) (*model.AvailabilityResult, error) {
	if !timeutil.ValidDate(date) {
		return nil, apperrors.InvalidInput("date must be a valid YYYY-MM-DD date")
	}
	if !room.Valid() {
		return nil, apperrors.InvalidInput("room must be A, B or A+B")
	}

	start, err := timeutil.ParseClock(startTime)
	if err != nil {
		return nil, apperrors.InvalidInput("start_time must be a valid HH:MM time")
	}
	end, err := timeutil.ParseClock(endTime)
	if err != nil {
		return nil, apperrors.InvalidInput("end_time must be a valid HH:MM time")
	}
	if end <= start {
		return nil, apperrors.InvalidInput("end_time must be after start_time")
	}

	confirmed, err := s.repo.FindConfirmedByDate(ctx, date)
	if err != nil {
		s.logger.Error("Failed to load reservations for availability check",
			"date", date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	result := &model.AvailabilityResult{Available: true}

	for _, existing := range confirmed {
		if !room.ConflictsWith(existing.Room) {
			continue
		}

		existingStart, err := timeutil.ParseClock(existing.StartTime)
		if err != nil {
			s.logger.Warn("Stored reservation has malformed start time",
				"reservation_no", existing.ReservationNo,
				"start_time", existing.StartTime,
			)
			continue
		}
		existingEnd, err := timeutil.ParseClock(existing.EndTime)
		if err != nil {
			s.logger.Warn("Stored reservation has malformed end time",
				"reservation_no", existing.ReservationNo,
				"end_time", existing.EndTime,
			)
			continue
		}

		if timeutil.Overlaps(start, end, existingStart, existingEnd) {
			result.Available = false
			result.Conflicts = append(result.Conflicts, model.ConflictRef{
				ReservationNo: existing.ReservationNo,
				Room:          existing.Room,
				StartTime:     existing.StartTime,
				EndTime:       existing.EndTime,
			})
		}
	}

	snapshot := s.settings.Snapshot(ctx)
	if room != model.RoomBoth && headcount >= snapshot.CombinedThreshold && headcount > 0 {
		result.SuggestCombined = true
	}

	s.sink.AvailabilityChecked(ctx, audit.AvailabilityRecord{
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Room:      room,
		Available: result.Available,
		Conflicts: len(result.Conflicts),
		CheckedAt: time.Now().UTC(),
	})

	return result, nil
}
