package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

// SessionService duy trì máy trạng thái phiên đỗ xe theo từng cặp
// (user_id, slot_id): Inactive -> Active khi slot chuyển sang occupied,
// Active -> Inactive khi slot được trả lại.
type SessionService struct {
	sessionRepo repository.ParkingSessionRepository
}

func NewSessionService(sessionRepo repository.ParkingSessionRepository) *SessionService {
	return &SessionService{sessionRepo: sessionRepo}
}

// HandleTransition xử lý một chuyển trạng thái chiếm chỗ. Idempotent:
// transition lặp lại y hệt (occupied khi đã có phiên active, hoặc vacant
// khi không có phiên nào) là no-op, không tạo phiên trùng, không ghi đè
// end_time. Tính nguyên tử per-cặp do repository đảm bảo bằng transaction.
func (s *SessionService) HandleTransition(ctx context.Context, transition domain.SlotTransition, at time.Time) error {
	if transition.Occupied {
		session, err := s.sessionRepo.Start(ctx, transition.UserID, transition.SlotID, at)
		if err != nil {
			if errors.Is(err, repository.ErrSessionAlreadyActive) {
				return nil // đã có phiên active cho cặp này, transition lặp lại
			}
			return fmt.Errorf("lỗi mở phiên đỗ xe (user=%s, slot=%s): %w", transition.UserID, transition.SlotID, err)
		}
		log.Printf("SessionService: Đã mở phiên %s cho user '%s' tại slot '%s'.", session.ID, transition.UserID, transition.SlotID)
		return nil
	}

	session, err := s.sessionRepo.End(ctx, transition.UserID, transition.SlotID, at)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			return nil // không có phiên nào để đóng, transition lặp lại
		}
		return fmt.Errorf("lỗi đóng phiên đỗ xe (user=%s, slot=%s): %w", transition.UserID, transition.SlotID, err)
	}
	log.Printf("SessionService: Đã đóng phiên %s của user '%s' tại slot '%s'.", session.ID, transition.UserID, transition.SlotID)
	return nil
}

// HandleReadingChange so sánh reading mới với snapshot trước đó và chỉ xử lý
// những slot thực sự đổi trạng thái. prev nil (lần ghi đầu tiên) thì mọi slot
// đều được xử lý — HandleTransition idempotent nên an toàn.
func (s *SessionService) HandleReadingChange(ctx context.Context, prev *domain.OccupancyStatus, reading domain.OccupancyReading) error {
	var firstErr error
	for i, occupied := range reading.Slots {
		if prev != nil && i < len(prev.Slots) && prev.Slots[i].Occupied == occupied {
			continue
		}

		transition := domain.SlotTransition{
			UserID:   reading.ReportedBy,
			SlotID:   domain.SlotIdentifier(i),
			Occupied: occupied,
		}
		if err := s.HandleTransition(ctx, transition, reading.ReceivedAt); err != nil {
			// Lỗi của một slot không chặn các slot còn lại.
			log.Printf("SessionService: Lỗi xử lý transition slot '%s': %v", transition.SlotID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
