package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

type fakeBookingRepo struct {
	bookings []domain.Booking
}

func (f *fakeBookingRepo) FindUnsent(ctx context.Context) ([]domain.Booking, error) {
	var unsent []domain.Booking
	for _, b := range f.bookings {
		if !b.Sent {
			unsent = append(unsent, b)
		}
	}
	return unsent, nil
}

func (f *fakeBookingRepo) MarkSent(ctx context.Context, bookingID string) error {
	for i := range f.bookings {
		if f.bookings[i].ID == bookingID {
			f.bookings[i].Sent = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeBookingRepo) sent(id string) bool {
	for _, b := range f.bookings {
		if b.ID == id {
			return b.Sent
		}
	}
	return false
}

type fakeNotificationRepo struct {
	created []domain.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	n.ID = fmt.Sprintf("n%d", len(f.created)+1)
	f.created = append(f.created, *n)
	return n, nil
}

func (f *fakeNotificationRepo) FindRecent(ctx context.Context, limit int) ([]domain.Notification, error) {
	return f.created, nil
}

type sentMessage struct {
	topic, token, title, body string
}

type fakePushSender struct {
	messages  []sentMessage
	failToken string // gửi tới token này luôn thất bại
}

func (f *fakePushSender) SendToTopic(ctx context.Context, topic, title, body string) (string, error) {
	f.messages = append(f.messages, sentMessage{topic: topic, title: title, body: body})
	return "msg-topic", nil
}

func (f *fakePushSender) SendToToken(ctx context.Context, token, title, body string) (string, error) {
	if token == f.failToken {
		return "", errors.New("fcm unavailable")
	}
	f.messages = append(f.messages, sentMessage{token: token, title: title, body: body})
	return "msg-token", nil
}

var scanNow = time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC)

func newNotificationFixture(bookings ...domain.Booking) (*NotificationService, *fakeBookingRepo, *fakeNotificationRepo, *fakePushSender) {
	bookingRepo := &fakeBookingRepo{bookings: bookings}
	notificationRepo := &fakeNotificationRepo{}
	sender := &fakePushSender{}
	svc := NewNotificationService(bookingRepo, notificationRepo, sender, "parking_reminders")
	svc.now = func() time.Time { return scanNow }
	return svc, bookingRepo, notificationRepo, sender
}

func dueBooking(id, token string) domain.Booking {
	return domain.Booking{
		ID:               id,
		UserID:           "U42",
		FCMToken:         token,
		ParkingTime:      scanNow.Add(2 * time.Hour),
		NotificationTime: scanNow.Add(-time.Second),
		Address:          "Central Plaza",
		Zone:             "A",
		Level:            "2",
		Row:              "5",
	}
}

func TestProcessDueBookingsSendsAndRecords(t *testing.T) {
	svc, bookingRepo, notificationRepo, sender := newNotificationFixture(dueBooking("b1", "tok-1"))

	if err := svc.ProcessDueBookings(context.Background()); err != nil {
		t.Fatalf("ProcessDueBookings: %v", err)
	}

	if len(sender.messages) != 1 {
		t.Fatalf("số message đã gửi: got %d, want 1", len(sender.messages))
	}
	if sender.messages[0].token != "tok-1" {
		t.Errorf("token: got %q, want %q", sender.messages[0].token, "tok-1")
	}
	if !bookingRepo.sent("b1") {
		t.Error("sent phải lật thành true sau khi gửi thành công")
	}

	if len(notificationRepo.created) != 1 {
		t.Fatalf("số bản ghi audit: got %d, want 1", len(notificationRepo.created))
	}
	audit := notificationRepo.created[0]
	if audit.Type != domain.NotificationReminder {
		t.Errorf("type: got %q, want %q", audit.Type, domain.NotificationReminder)
	}
	if !audit.Sent {
		t.Error("bản ghi audit phải có sent = true")
	}
	if want := "Zone : A, Level : 2, Row : 5"; audit.ParkingSlot != want {
		t.Errorf("parkingSlot: got %q, want %q", audit.ParkingSlot, want)
	}
}

func TestProcessDueBookingsSkipsFutureBooking(t *testing.T) {
	future := dueBooking("b1", "tok-1")
	future.NotificationTime = scanNow.Add(time.Hour)
	svc, bookingRepo, notificationRepo, sender := newNotificationFixture(future)

	if err := svc.ProcessDueBookings(context.Background()); err != nil {
		t.Fatalf("ProcessDueBookings: %v", err)
	}

	if len(sender.messages) != 0 {
		t.Error("booking chưa đến hạn không được gửi")
	}
	if bookingRepo.sent("b1") {
		t.Error("sent không được đổi khi chưa gửi")
	}
	if len(notificationRepo.created) != 0 {
		t.Error("không được tạo bản ghi audit")
	}
}

func TestProcessDueBookingsSkipsMissingToken(t *testing.T) {
	noToken := dueBooking("b1", "")
	svc, bookingRepo, _, sender := newNotificationFixture(noToken)

	if err := svc.ProcessDueBookings(context.Background()); err != nil {
		t.Fatalf("ProcessDueBookings: %v", err)
	}

	if len(sender.messages) != 0 {
		t.Error("booking thiếu token không được gửi")
	}
	if bookingRepo.sent("b1") {
		t.Error("sent không được đổi cho booking thiếu token")
	}
}

func TestProcessDueBookingsContainsPerItemFailures(t *testing.T) {
	svc, bookingRepo, notificationRepo, sender := newNotificationFixture(
		dueBooking("b1", "tok-bad"),
		dueBooking("b2", "tok-ok"),
	)
	sender.failToken = "tok-bad"

	if err := svc.ProcessDueBookings(context.Background()); err != nil {
		t.Fatalf("ProcessDueBookings: %v", err)
	}

	// b1 thất bại: sent giữ nguyên false để lượt quét sau thử lại
	if bookingRepo.sent("b1") {
		t.Error("b1: sent phải giữ nguyên false sau khi gửi thất bại")
	}
	// b2 vẫn được xử lý bình thường
	if !bookingRepo.sent("b2") {
		t.Error("b2: lỗi của b1 không được chặn b2")
	}
	if len(notificationRepo.created) != 1 {
		t.Errorf("số bản ghi audit: got %d, want 1", len(notificationRepo.created))
	}
}

func TestProcessDueBookingsIgnoresAlreadySent(t *testing.T) {
	done := dueBooking("b1", "tok-1")
	done.Sent = true
	svc, _, _, sender := newNotificationFixture(done)

	if err := svc.ProcessDueBookings(context.Background()); err != nil {
		t.Fatalf("ProcessDueBookings: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Error("booking đã sent=true không được quét lại")
	}
}

func TestSendDailyReminderBroadcastsToTopic(t *testing.T) {
	svc, _, _, sender := newNotificationFixture()

	if err := svc.SendDailyReminder(context.Background()); err != nil {
		t.Fatalf("SendDailyReminder: %v", err)
	}

	if len(sender.messages) != 1 {
		t.Fatalf("số message: got %d, want 1", len(sender.messages))
	}
	msg := sender.messages[0]
	if msg.topic != "parking_reminders" {
		t.Errorf("topic: got %q, want %q", msg.topic, "parking_reminders")
	}
	// 13:00 UTC + 1 giờ
	if !strings.Contains(msg.body, "14:00") {
		t.Errorf("body phải chứa giờ bắt đầu 14:00: %q", msg.body)
	}
}
