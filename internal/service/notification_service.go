package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

const reminderTitle = "Parking Reminder"

// NotificationService chạy hai job định kỳ độc lập, không giữ state giữa
// các lượt chạy — toàn bộ trạng thái nằm trong store.
type NotificationService struct {
	bookingRepo      repository.BookingRepository
	notificationRepo repository.NotificationRepository
	push             PushSender
	reminderTopic    string
	now              func() time.Time
}

func NewNotificationService(
	bookingRepo repository.BookingRepository,
	notificationRepo repository.NotificationRepository,
	push PushSender,
	reminderTopic string,
) *NotificationService {
	return &NotificationService{
		bookingRepo:      bookingRepo,
		notificationRepo: notificationRepo,
		push:             push,
		reminderTopic:    reminderTopic,
		now:              time.Now,
	}
}

// SendDailyReminder broadcast nhắc nhở một lần mỗi ngày lên topic chung.
// Best-effort: không lưu kết quả gửi, lỗi chỉ được ghi log bởi caller.
func (s *NotificationService) SendDailyReminder(ctx context.Context) error {
	parkingStart := s.now().UTC().Add(time.Hour)
	body := fmt.Sprintf("Your parking starts in 1 hour at %s.", parkingStart.Format("15:04"))

	messageID, err := s.push.SendToTopic(ctx, s.reminderTopic, reminderTitle, body)
	if err != nil {
		return fmt.Errorf("lỗi gửi nhắc nhở hàng ngày: %w", err)
	}
	log.Printf("NotificationService: Đã gửi nhắc nhở hàng ngày, message ID: %s", messageID)
	return nil
}

// ProcessDueBookings quét các booking chưa gửi (sent = false) và gửi nhắc
// nhở cho những booking đã đến hạn. sent chỉ được lật sau khi gửi thành
// công; gửi thất bại thì để nguyên false cho lượt quét sau thử lại — đó là
// cơ chế retry tự nhiên của job này, không cần backoff riêng. Lỗi của một
// booking không chặn các booking còn lại trong cùng lượt quét.
func (s *NotificationService) ProcessDueBookings(ctx context.Context) error {
	now := s.now().UTC()
	log.Printf("NotificationService: Quét booking đến hạn lúc %s", now.Format(time.RFC3339))

	bookings, err := s.bookingRepo.FindUnsent(ctx)
	if err != nil {
		return fmt.Errorf("lỗi truy vấn booking chưa gửi: %w", err)
	}

	for _, booking := range bookings {
		if !booking.Due(now) {
			continue // chưa đến hạn, không đổi trạng thái
		}
		if booking.FCMToken == "" {
			log.Printf("NotificationService: Booking '%s' không có FCM token, bỏ qua.", booking.ID)
			continue
		}

		body := fmt.Sprintf("Your parking starts at %s.", booking.ParkingTime.Format("15:04 02/01/2006"))
		if _, err := s.push.SendToToken(ctx, booking.FCMToken, reminderTitle, body); err != nil {
			log.Printf("NotificationService: Lỗi gửi nhắc nhở cho booking '%s': %v", booking.ID, err)
			continue
		}

		if err := s.bookingRepo.MarkSent(ctx, booking.ID); err != nil {
			// Gửi đã thành công nhưng chưa đánh dấu được: lượt sau có thể
			// gửi lại — chấp nhận trùng thay vì mất nhắc nhở.
			log.Printf("NotificationService: Lỗi đánh dấu sent cho booking '%s': %v", booking.ID, err)
			continue
		}

		notification := &domain.Notification{
			UserID:           booking.UserID,
			FCMToken:         booking.FCMToken,
			Address:          booking.Address,
			Body:             body,
			Type:             domain.NotificationReminder,
			ParkingSlot:      booking.SlotDescriptor(),
			NotificationTime: booking.NotificationTime,
			ParkingTime:      booking.ParkingTime,
			Sent:             true,
		}
		created, err := s.notificationRepo.Create(ctx, notification)
		if err != nil {
			log.Printf("NotificationService: Lỗi ghi bản ghi audit cho booking '%s': %v", booking.ID, err)
			continue
		}
		log.Printf("NotificationService: Đã gửi nhắc nhở cho booking '%s', audit ID: %s", booking.ID, created.ID)
	}
	return nil
}
