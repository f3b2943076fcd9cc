package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

// ErrNothingToReconcile: không có location nào đủ điều kiện, lượt đối soát
// là no-op. Caller coi đây là lỗi không nghiêm trọng.
var ErrNothingToReconcile = errors.New("không có location nào đủ điều kiện để đối soát")

// PushSender trừu tượng hóa gateway thông báo đẩy (FCM). Interface đặt ở
// đây để tránh phụ thuộc vòng và để test với fake.
type PushSender interface {
	SendToTopic(ctx context.Context, topic, title, body string) (string, error)
	SendToToken(ctx context.Context, token, title, body string) (string, error)
}

// OccupancyBroadcaster đẩy cập nhật realtime cho các dashboard đang kết nối.
type OccupancyBroadcaster interface {
	BroadcastOccupancy(update domain.OccupancyUpdate)
}

type ReconcileService struct {
	locationRepo repository.LocationRepository
	push         PushSender           // nil nếu không bật push
	broadcaster  OccupancyBroadcaster // nil nếu không có WebSocket
	updateTopic  string
}

func NewReconcileService(
	locationRepo repository.LocationRepository,
	push PushSender,
	broadcaster OccupancyBroadcaster,
	updateTopic string,
) *ReconcileService {
	return &ReconcileService{
		locationRepo: locationRepo,
		push:         push,
		broadcaster:  broadcaster,
		updateTopic:  updateTopic,
	}
}

// Reconcile tính lại số chỗ trống cho mọi location từ reading vừa ghi và
// commit tất cả trong một batch nguyên tử. Hàm là thuần túy theo input:
// chạy hai lần với cùng reading cho cùng kết quả (không trừ dồn).
func (s *ReconcileService) Reconcile(ctx context.Context, reading domain.OccupancyReading) error {
	totalOccupied := reading.OccupiedCount()
	displays := reading.SlotDisplays()

	locations, err := s.locationRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("lỗi đọc danh sách location: %w", err)
	}

	var updates []domain.LocationUpdate
	for _, loc := range locations {
		if !loc.HasCapacity() {
			// Record thiếu trường sức chứa: bỏ qua, các record khác vẫn commit.
			log.Printf("Reconcile: Bỏ qua location '%s' vì thiếu total_slots.", loc.ID)
			continue
		}

		available := loc.TotalSlots - totalOccupied
		if available < 0 {
			available = 0
		}

		updates = append(updates, domain.LocationUpdate{
			LocationID:     loc.ID,
			AvailableSlots: available,
			AccruedAmount:  float64(totalOccupied) * loc.UnitPrice,
			SlotDisplay:    displays,
		})
	}

	if len(updates) == 0 {
		return ErrNothingToReconcile
	}

	if err := s.locationRepo.CommitAvailability(ctx, updates); err != nil {
		return fmt.Errorf("lỗi commit batch đối soát: %w", err)
	}
	log.Printf("Reconcile: Đã cập nhật %d location (occupied=%d).", len(updates), totalOccupied)

	s.notifyAvailability(ctx, reading, updates)
	return nil
}

// notifyAvailability gửi các thông báo best-effort sau khi batch đã commit:
// lỗi chỉ ghi log, không bao giờ ảnh hưởng tới kết quả đối soát.
func (s *ReconcileService) notifyAvailability(ctx context.Context, reading domain.OccupancyReading, updates []domain.LocationUpdate) {
	if s.push != nil {
		for _, u := range updates {
			if u.AvailableSlots <= 0 {
				continue
			}
			body := fmt.Sprintf("Available spots: %d. Slots: %s", u.AvailableSlots, joinDisplays(u.SlotDisplay))
			if _, err := s.push.SendToTopic(ctx, s.updateTopic, "Parking Update", body); err != nil {
				log.Printf("Reconcile: Lỗi gửi thông báo topic '%s': %v", s.updateTopic, err)
			}
		}
	}

	if s.broadcaster != nil {
		available := len(reading.Slots) - reading.OccupiedCount()
		s.broadcaster.BroadcastOccupancy(domain.OccupancyUpdate{
			Type:           "occupancy_update",
			Slots:          reading.SlotDisplays(),
			TotalOccupied:  reading.OccupiedCount(),
			AvailableSlots: available,
			ReportedBy:     reading.ReportedBy,
			Timestamp:      reading.ReceivedAt,
		})
	}
}

func joinDisplays(displays []string) string {
	parts := make([]string, len(displays))
	for i, d := range displays {
		parts[i] = fmt.Sprintf("%d-%s", i+1, d)
	}
	return strings.Join(parts, ", ")
}
