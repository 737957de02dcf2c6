package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	reserrors "hallbook/internal/reservations/errors"
	"hallbook/internal/reservations/repository"
)

// NumberPrefix starts every reservation number; the full format is
// RES<YYYYMMDD>-<NNN> with a three-digit, per-date sequence.
const NumberPrefix = "RES"

// maxDailySequence is the capacity of the three-digit suffix. The generator
// fails past it rather than silently widening the format.
const maxDailySequence = 999

// SequenceGenerator issues date-scoped, monotonically increasing reservation
// numbers. Next must only be called while the submission lock is held:
// without exclusivity two concurrent callers would compute the same maximum
// and emit duplicate numbers.
type SequenceGenerator struct {
	repo repository.ReservationRepository
	now  func() time.Time
}

func NewSequenceGenerator(repo repository.ReservationRepository) *SequenceGenerator {
	return &SequenceGenerator{
		repo: repo,
		now:  time.Now,
	}
}

func (g *SequenceGenerator) Next(ctx context.Context) (string, error) {
	prefix := NumberPrefix + g.now().Format("20060102")

	numbers, err := g.repo.FindNumbersByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to scan reservation numbers: %w", err)
	}

	maxSeq := 0
	for _, number := range numbers {
		suffix, ok := strings.CutPrefix(number, prefix+"-")
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	next := maxSeq + 1
	if next > maxDailySequence {
		return "", reserrors.ErrSequenceExhausted
	}

	return fmt.Sprintf("%s-%03d", prefix, next), nil
}
