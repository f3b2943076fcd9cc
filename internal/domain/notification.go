package domain

import "time"

type NotificationType string

const (
	NotificationReminder NotificationType = "Reminder"
)

// Notification là bản ghi audit cho một lần gửi nhắc nhở, append-only
// trong collection notifications. Chỉ được tạo sau khi đã gửi.
type Notification struct {
	ID               string           `firestore:"-" json:"id"`
	UserID           string           `firestore:"userId" json:"userId"`
	FCMToken         string           `firestore:"fcmToken" json:"fcmToken"`
	Address          string           `firestore:"address,omitempty" json:"address,omitempty"`
	Body             string           `firestore:"body" json:"body"`
	Type             NotificationType `firestore:"type" json:"type"`
	ParkingSlot      string           `firestore:"parkingSlot,omitempty" json:"parkingSlot,omitempty"`
	NotificationTime time.Time        `firestore:"notificationTime" json:"notificationTime"`
	ParkingTime      time.Time        `firestore:"parkingTime" json:"parkingTime"`
	Sent             bool             `firestore:"sent" json:"sent"`
	CreatedAt        time.Time        `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}
