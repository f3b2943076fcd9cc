package domain

import "time"

// LocationRecord là document trong collection parkings: sổ sách
// sức chứa/chỗ trống cho một bãi đỗ. Bất biến: 0 <= AvailableSlots <= TotalSlots.
type LocationRecord struct {
	ID             string    `firestore:"-" json:"id"`
	Name           string    `firestore:"name" json:"name"`
	Address        string    `firestore:"address,omitempty" json:"address,omitempty"`
	TotalSlots     int       `firestore:"total_slots" json:"total_slots"`
	AvailableSlots int       `firestore:"available_slots" json:"available_slots"`
	UnitPrice      float64   `firestore:"unit_price,omitempty" json:"unit_price,omitempty"`
	AccruedAmount  float64   `firestore:"accrued_amount,omitempty" json:"accrued_amount,omitempty"`
	SlotDisplay    []string  `firestore:"slot_display,omitempty" json:"slot_display,omitempty"`
	LastUpdated    time.Time `firestore:"last_updated" json:"last_updated"`
}

// HasCapacity báo record này có đủ điều kiện để tham gia đối soát không.
func (l LocationRecord) HasCapacity() bool {
	return l.TotalSlots > 0
}

// LocationUpdate là một phần tử trong batch cập nhật của một lượt đối soát.
type LocationUpdate struct {
	LocationID     string
	AvailableSlots int
	AccruedAmount  float64
	SlotDisplay    []string
}
