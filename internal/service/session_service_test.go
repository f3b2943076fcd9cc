package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

// fakeSessionRepo mô phỏng ngữ nghĩa transactional của repository thật:
// Start từ chối khi đã có phiên active, End từ chối khi không có.
type fakeSessionRepo struct {
	sessions []*domain.ParkingSession
	nextID   int
}

func (f *fakeSessionRepo) findActive(userID, slotID string) *domain.ParkingSession {
	for _, s := range f.sessions {
		if s.UserID == userID && s.SlotID == slotID && s.Active {
			return s
		}
	}
	return nil
}

func (f *fakeSessionRepo) FindActive(ctx context.Context, userID, slotID string) (*domain.ParkingSession, error) {
	if s := f.findActive(userID, slotID); s != nil {
		return s, nil
	}
	return nil, repository.ErrNoActiveSession
}

func (f *fakeSessionRepo) FindActiveByUser(ctx context.Context, userID string) ([]domain.ParkingSession, error) {
	var out []domain.ParkingSession
	for _, s := range f.sessions {
		if s.UserID == userID && s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Start(ctx context.Context, userID, slotID string, startTime time.Time) (*domain.ParkingSession, error) {
	if f.findActive(userID, slotID) != nil {
		return nil, repository.ErrSessionAlreadyActive
	}
	f.nextID++
	session := &domain.ParkingSession{
		ID:        fmt.Sprintf("s%d", f.nextID),
		UserID:    userID,
		SlotID:    slotID,
		StartTime: startTime,
		Active:    true,
	}
	f.sessions = append(f.sessions, session)
	return session, nil
}

func (f *fakeSessionRepo) End(ctx context.Context, userID, slotID string, endTime time.Time) (*domain.ParkingSession, error) {
	s := f.findActive(userID, slotID)
	if s == nil {
		return nil, repository.ErrNoActiveSession
	}
	s.Active = false
	s.EndTime = &endTime
	return s, nil
}

func (f *fakeSessionRepo) activeCount(userID, slotID string) int {
	count := 0
	for _, s := range f.sessions {
		if s.UserID == userID && s.SlotID == slotID && s.Active {
			count++
		}
	}
	return count
}

func sessionReading(slots ...bool) domain.OccupancyReading {
	return domain.OccupancyReading{
		Slots:      slots,
		ReportedBy: "U42",
		ReceivedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandleTransitionOpensAndClosesSession(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := NewSessionService(repo)
	reading := sessionReading(true)
	transition := domain.SlotTransition{UserID: "U42", SlotID: "slot_1", Occupied: true}

	if err := svc.HandleTransition(context.Background(), transition, reading.ReceivedAt); err != nil {
		t.Fatalf("HandleTransition (occupied): %v", err)
	}
	if got := repo.activeCount("U42", "slot_1"); got != 1 {
		t.Fatalf("số phiên active: got %d, want 1", got)
	}

	transition.Occupied = false
	later := reading
	later.ReceivedAt = reading.ReceivedAt.Add(30 * time.Minute)
	if err := svc.HandleTransition(context.Background(), transition, later.ReceivedAt); err != nil {
		t.Fatalf("HandleTransition (vacant): %v", err)
	}
	if got := repo.activeCount("U42", "slot_1"); got != 0 {
		t.Fatalf("số phiên active sau khi đóng: got %d, want 0", got)
	}

	closed := repo.sessions[0]
	if closed.EndTime == nil || !closed.EndTime.Equal(later.ReceivedAt) {
		t.Errorf("EndTime: got %v, want %v", closed.EndTime, later.ReceivedAt)
	}
}

func TestHandleTransitionIsIdempotent(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := NewSessionService(repo)
	reading := sessionReading(true)
	transition := domain.SlotTransition{UserID: "U42", SlotID: "slot_1", Occupied: true}

	// occupied -> occupied lặp lại: không tạo phiên mới
	for i := 0; i < 3; i++ {
		if err := svc.HandleTransition(context.Background(), transition, reading.ReceivedAt); err != nil {
			t.Fatalf("HandleTransition lần %d: %v", i+1, err)
		}
	}
	if got := repo.activeCount("U42", "slot_1"); got != 1 {
		t.Errorf("số phiên active: got %d, want đúng 1", got)
	}
	if len(repo.sessions) != 1 {
		t.Errorf("tổng số phiên: got %d, want 1", len(repo.sessions))
	}

	// vacant lặp lại khi không có phiên: no-op, không ghi đè end_time
	transition.Occupied = false
	endReading := reading
	endReading.ReceivedAt = reading.ReceivedAt.Add(time.Hour)
	if err := svc.HandleTransition(context.Background(), transition, endReading.ReceivedAt); err != nil {
		t.Fatalf("HandleTransition (vacant): %v", err)
	}
	firstEnd := *repo.sessions[0].EndTime

	endReading.ReceivedAt = reading.ReceivedAt.Add(2 * time.Hour)
	if err := svc.HandleTransition(context.Background(), transition, endReading.ReceivedAt); err != nil {
		t.Fatalf("HandleTransition (vacant lặp lại): %v", err)
	}
	if !repo.sessions[0].EndTime.Equal(firstEnd) {
		t.Errorf("end_time bị ghi đè bởi transition lặp lại: %v -> %v", firstEnd, repo.sessions[0].EndTime)
	}
}

func TestHandleReadingChangeOnlyProcessesChangedSlots(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := NewSessionService(repo)

	prev := &domain.OccupancyStatus{Slots: []domain.SlotState{
		{SlotID: "slot_1", Occupied: true},
		{SlotID: "slot_2", Occupied: false},
		{SlotID: "slot_3", Occupied: false},
	}}
	// slot_1 giữ nguyên, slot_2 chuyển sang occupied
	if err := svc.HandleReadingChange(context.Background(), prev, sessionReading(true, true, false)); err != nil {
		t.Fatalf("HandleReadingChange: %v", err)
	}

	if got := repo.activeCount("U42", "slot_2"); got != 1 {
		t.Errorf("slot_2 phải có phiên mới: got %d", got)
	}
	if got := repo.activeCount("U42", "slot_1"); got != 0 {
		t.Errorf("slot_1 không đổi trạng thái, không được mở phiên: got %d", got)
	}
}

func TestHandleReadingChangeWithoutPreviousSnapshot(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := NewSessionService(repo)

	if err := svc.HandleReadingChange(context.Background(), nil, sessionReading(true, false, true)); err != nil {
		t.Fatalf("HandleReadingChange: %v", err)
	}

	if got := repo.activeCount("U42", "slot_1"); got != 1 {
		t.Errorf("slot_1: got %d phiên active, want 1", got)
	}
	if got := repo.activeCount("U42", "slot_3"); got != 1 {
		t.Errorf("slot_3: got %d phiên active, want 1", got)
	}
	if got := repo.activeCount("U42", "slot_2"); got != 0 {
		t.Errorf("slot_2 trống, không được mở phiên: got %d", got)
	}
}

func TestAtMostOneActiveSessionPerPair(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := NewSessionService(repo)

	// Chuỗi transition bất kỳ cho một cặp: không bao giờ quá một phiên active.
	sequence := []bool{true, true, false, true, false, false, true}
	reading := sessionReading(true)
	for i, occupied := range sequence {
		reading.ReceivedAt = reading.ReceivedAt.Add(time.Minute)
		transition := domain.SlotTransition{UserID: "U42", SlotID: "slot_1", Occupied: occupied}
		if err := svc.HandleTransition(context.Background(), transition, reading.ReceivedAt); err != nil {
			t.Fatalf("HandleTransition bước %d: %v", i, err)
		}
		if got := repo.activeCount("U42", "slot_1"); got > 1 {
			t.Fatalf("bước %d: %d phiên active cùng lúc cho một cặp", i, got)
		}
	}
}
