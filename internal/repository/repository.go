package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
)

var ErrNotFound = errors.New("không tìm thấy bản ghi")
var ErrNoActiveSession = errors.New("không tìm thấy phiên đỗ xe đang hoạt động cho thông tin cung cấp")
var ErrSessionAlreadyActive = errors.New("phiên đỗ xe cho cặp user/slot này đã đang hoạt động")

// OccupancyRepository ghi/đọc document trạng thái thô trong parking_status.
// SetCurrent là point set duy nhất của đường ingest; timestamp do server gán.
type OccupancyRepository interface {
	GetCurrent(ctx context.Context) (*domain.OccupancyStatus, error)
	SetCurrent(ctx context.Context, status domain.OccupancyStatus) error
}

type LocationRepository interface {
	FindByID(ctx context.Context, id string) (*domain.LocationRecord, error)
	FindAll(ctx context.Context) ([]domain.LocationRecord, error)
	// CommitAvailability áp toàn bộ batch cập nhật một cách nguyên tử:
	// hoặc tất cả thành công, hoặc không record nào được ghi.
	CommitAvailability(ctx context.Context, updates []domain.LocationUpdate) error
}

type ParkingSessionRepository interface {
	FindActive(ctx context.Context, userID, slotID string) (*domain.ParkingSession, error)
	FindActiveByUser(ctx context.Context, userID string) ([]domain.ParkingSession, error)
	// Start mở phiên mới cho cặp (user, slot) trong một transaction:
	// nếu đã có phiên active thì trả ErrSessionAlreadyActive, không tạo bản sao.
	Start(ctx context.Context, userID, slotID string, startTime time.Time) (*domain.ParkingSession, error)
	// End đóng phiên active của cặp (user, slot) trong một transaction:
	// nếu không có phiên active thì trả ErrNoActiveSession.
	End(ctx context.Context, userID, slotID string, endTime time.Time) (*domain.ParkingSession, error)
}

type BookingRepository interface {
	FindUnsent(ctx context.Context) ([]domain.Booking, error)
	MarkSent(ctx context.Context, bookingID string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error)
	FindRecent(ctx context.Context, limit int) ([]domain.Notification, error)
}
