package domain

import "time"

// ParkingSession là khoảng thời gian một người dùng chiếm một chỗ đỗ.
// Bất biến: tại mọi thời điểm, mỗi cặp (user_id, slot_id) có tối đa
// một phiên với Active = true.
type ParkingSession struct {
	ID        string     `firestore:"-" json:"id"`
	UserID    string     `firestore:"user_id" json:"user_id"`
	SlotID    string     `firestore:"slot_id" json:"slot_id"`
	VehicleID *string    `firestore:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	StartTime time.Time  `firestore:"start_time" json:"start_time"`
	EndTime   *time.Time `firestore:"end_time,omitempty" json:"end_time,omitempty"`
	Active    bool       `firestore:"is_active" json:"is_active"`
}

// SlotTransition mô tả một chuyển trạng thái chiếm chỗ đã phát hiện được
// từ hai reading liên tiếp, dùng để mở/đóng phiên đỗ xe.
type SlotTransition struct {
	UserID   string
	SlotID   string
	Occupied bool
}
