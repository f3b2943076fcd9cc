package domain

import (
	"fmt"
	"time"
)

// Booking là một lượt đặt chỗ có hẹn giờ nhắc nhở, do app mobile tạo
// trong collection bookings. Sent chỉ chuyển false -> true đúng một lần.
type Booking struct {
	ID               string    `firestore:"-" json:"id"`
	UserID           string    `firestore:"userId" json:"userId"`
	FCMToken         string    `firestore:"fcmToken" json:"fcmToken"`
	ParkingTime      time.Time `firestore:"time" json:"time"`
	NotificationTime time.Time `firestore:"notificationTime" json:"notificationTime"`
	Address          string    `firestore:"address,omitempty" json:"address,omitempty"`
	Zone             string    `firestore:"zone,omitempty" json:"zone,omitempty"`
	Level            string    `firestore:"level,omitempty" json:"level,omitempty"`
	Row              string    `firestore:"row,omitempty" json:"row,omitempty"`
	Sent             bool      `firestore:"sent" json:"sent"`
}

// SlotDescriptor ghép vị trí chỗ đỗ theo định dạng app đang hiển thị.
func (b Booking) SlotDescriptor() string {
	return fmt.Sprintf("Zone : %s, Level : %s, Row : %s", b.Zone, b.Level, b.Row)
}

// Due báo booking này đã đến hạn gửi nhắc nhở chưa.
func (b Booking) Due(now time.Time) bool {
	return !b.NotificationTime.After(now)
}
