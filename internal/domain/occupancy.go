package domain

import (
	"fmt"
	"time"
)

// Trạng thái hiển thị của một chỗ đỗ, giữ nguyên quy ước "Full"/"Empty"
// mà thiết bị và app mobile đang dùng.
const (
	DisplayFull  = "Full"
	DisplayEmpty = "Empty"
)

// OccupancyReading là một mẫu đọc từ cảm biến: N cờ chiếm chỗ cộng với
// định danh người/thiết bị báo cáo (RFID/QR). Bất biến sau khi tạo.
type OccupancyReading struct {
	Slots      []bool    `json:"slots"`
	ReportedBy string    `json:"reported_by"`
	ReceivedAt time.Time `json:"received_at"`
}

func (r OccupancyReading) OccupiedCount() int {
	count := 0
	for _, occupied := range r.Slots {
		if occupied {
			count++
		}
	}
	return count
}

func (r OccupancyReading) SlotDisplays() []string {
	displays := make([]string, len(r.Slots))
	for i, occupied := range r.Slots {
		if occupied {
			displays[i] = DisplayFull
		} else {
			displays[i] = DisplayEmpty
		}
	}
	return displays
}

// SlotState là trạng thái đã lưu của một chỗ đỗ vật lý.
type SlotState struct {
	SlotID   string `firestore:"slot_id" json:"slot_id"`
	Occupied bool   `firestore:"occupied" json:"occupied"`
	Display  string `firestore:"display" json:"display"`
}

// OccupancyStatus là document trạng thái thô trong collection parking_status,
// ghi đè mỗi lần có reading mới. UpdatedAt do server gán (sentinel).
type OccupancyStatus struct {
	Slots         []SlotState `firestore:"slots" json:"slots"`
	TotalOccupied int         `firestore:"total" json:"total"`
	LastUpdatedBy string      `firestore:"last_updated_by" json:"last_updated_by"`
	UpdatedAt     time.Time   `firestore:"timestamp,serverTimestamp" json:"timestamp"`
}

// NewOccupancyStatus chuyển một reading thành document trạng thái.
func NewOccupancyStatus(reading OccupancyReading) OccupancyStatus {
	slots := make([]SlotState, len(reading.Slots))
	displays := reading.SlotDisplays()
	for i, occupied := range reading.Slots {
		slots[i] = SlotState{
			SlotID:   SlotIdentifier(i),
			Occupied: occupied,
			Display:  displays[i],
		}
	}
	return OccupancyStatus{
		Slots:         slots,
		TotalOccupied: reading.OccupiedCount(),
		LastUpdatedBy: reading.ReportedBy,
	}
}

// SlotIdentifier đặt tên chỗ đỗ theo chỉ số: "slot_1", "slot_2", ...
func SlotIdentifier(index int) string {
	return fmt.Sprintf("slot_%d", index+1)
}

// OccupancyUpdate là payload broadcast qua WebSocket cho dashboard.
type OccupancyUpdate struct {
	Type           string    `json:"type"` // "occupancy_update"
	Slots          []string  `json:"slots"`
	TotalOccupied  int       `json:"total_occupied"`
	AvailableSlots int       `json:"available_slots"`
	ReportedBy     string    `json:"reported_by"`
	Timestamp      time.Time `json:"timestamp"`
}
