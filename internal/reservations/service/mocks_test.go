package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	reserrors "hallbook/internal/reservations/errors"
	"hallbook/pkg/client"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

// Mock repository with overridable behavior per test.
type mockReservationRepository struct {
	createFunc              func(ctx context.Context, reservation *model.Reservation) error
	findByNumberFunc        func(ctx context.Context, number string) (*model.Reservation, error)
	findConfirmedByDateFunc func(ctx context.Context, date string) ([]*model.Reservation, error)
	findNumbersByPrefixFunc func(ctx context.Context, prefix string) ([]string, error)
	confirmFunc             func(ctx context.Context, number string, confirmedAt time.Time, calendarEventID, notifyStatus string) error
	findAllFunc             func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	countFunc               func(ctx context.Context) (int64, error)
}

func (m *mockReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, reservation)
	}
	return nil
}

func (m *mockReservationRepository) FindByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	if m.findByNumberFunc != nil {
		return m.findByNumberFunc(ctx, number)
	}
	return nil, reserrors.ErrNotFound
}

func (m *mockReservationRepository) FindConfirmedByDate(ctx context.Context, date string) ([]*model.Reservation, error) {
	if m.findConfirmedByDateFunc != nil {
		return m.findConfirmedByDateFunc(ctx, date)
	}
	return nil, nil
}

func (m *mockReservationRepository) FindNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	if m.findNumbersByPrefixFunc != nil {
		return m.findNumbersByPrefixFunc(ctx, prefix)
	}
	return nil, nil
}

func (m *mockReservationRepository) Confirm(ctx context.Context, number string, confirmedAt time.Time, calendarEventID, notifyStatus string) error {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, number, confirmedAt, calendarEventID, notifyStatus)
	}
	return nil
}

func (m *mockReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockReservationRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

// In-memory repository with real storage semantics, for workflow tests.
type memoryReservationRepository struct {
	mu   sync.Mutex
	rows map[string]*model.Reservation
}

func newMemoryRepository() *memoryReservationRepository {
	return &memoryReservationRepository{rows: make(map[string]*model.Reservation)}
}

func (m *memoryReservationRepository) Create(_ context.Context, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rows[reservation.ReservationNo]; exists {
		return fmt.Errorf("%w: %s", reserrors.ErrDuplicateNumber, reservation.ReservationNo)
	}
	reservation.CreatedAt = time.Now().UTC()
	copied := *reservation
	m.rows[reservation.ReservationNo] = &copied
	return nil
}

func (m *memoryReservationRepository) FindByNumber(_ context.Context, number string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[number]
	if !ok {
		return nil, reserrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *memoryReservationRepository) FindConfirmedByDate(_ context.Context, date string) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*model.Reservation
	for _, row := range m.rows {
		if row.Date == date && row.PaymentStatus == model.PaymentConfirmed {
			copied := *row
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memoryReservationRepository) FindNumbersByPrefix(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var numbers []string
	for number := range m.rows {
		if len(number) >= len(prefix) && number[:len(prefix)] == prefix {
			numbers = append(numbers, number)
		}
	}
	return numbers, nil
}

func (m *memoryReservationRepository) Confirm(_ context.Context, number string, confirmedAt time.Time, calendarEventID, notifyStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[number]
	if !ok {
		return reserrors.ErrNotFound
	}
	if row.PaymentStatus != model.PaymentPending {
		return reserrors.ErrAlreadyConfirmed
	}

	row.PaymentStatus = model.PaymentConfirmed
	row.ConfirmedAt = &confirmedAt
	row.CalendarEventID = calendarEventID
	row.NotifyStatus = notifyStatus
	return nil
}

func (m *memoryReservationRepository) FindAll(_ context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*model.Reservation
	for _, row := range m.rows {
		copied := *row
		result = append(result, &copied)
	}
	return result, nil
}

func (m *memoryReservationRepository) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

type mockCalendarClient struct {
	mu          sync.Mutex
	createCalls int
	deleteCalls int
	createFunc  func(ctx context.Context, event client.CalendarEvent) (string, error)
	deleteFunc  func(ctx context.Context, eventID string) (bool, error)
}

func (m *mockCalendarClient) CreateEvent(ctx context.Context, event client.CalendarEvent) (string, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()

	if m.createFunc != nil {
		return m.createFunc(ctx, event)
	}
	return "evt-123", nil
}

func (m *mockCalendarClient) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	m.deleteCalls++
	m.mu.Unlock()

	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, eventID)
	}
	return true, nil
}

func (m *mockCalendarClient) creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

func (m *mockCalendarClient) deletes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCalls
}

type mockDocStoreClient struct {
	uploadFunc func(ctx context.Context, content []byte, mimeType, filename, reservationNo string) (string, error)
}

func (m *mockDocStoreClient) Upload(ctx context.Context, content []byte, mimeType, filename, reservationNo string) (string, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, content, mimeType, filename, reservationNo)
	}
	return "https://docs.example.com/doc-1", nil
}
