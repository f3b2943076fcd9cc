package sensor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
)

// ErrMalformedReading: dòng không đúng định dạng dữ liệu cảm biến.
// Caller chỉ ghi log và bỏ qua, không được parse lại — những dòng như vậy
// thường là log chẩn đoán của thiết bị, không phải dữ liệu.
var ErrMalformedReading = errors.New("dòng dữ liệu cảm biến sai định dạng")

// ParseReading chuyển một dòng text từ thiết bị thành OccupancyReading.
// Định dạng: "<flag_1>,...,<flag_N>,<identifier>" — đúng slotCount cờ 0/1
// cộng một định danh (payload RFID/QR). Hàm thuần: không I/O, không side effect.
func ParseReading(line string, slotCount int, receivedAt time.Time) (*domain.OccupancyReading, error) {
	fields := strings.Split(line, ",")
	if len(fields) != slotCount+1 {
		return nil, fmt.Errorf("%w: cần %d trường, nhận được %d trong %q", ErrMalformedReading, slotCount+1, len(fields), line)
	}

	slots := make([]bool, slotCount)
	for i := 0; i < slotCount; i++ {
		value, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil {
			return nil, fmt.Errorf("%w: cờ thứ %d không phải số nguyên trong %q", ErrMalformedReading, i+1, line)
		}
		slots[i] = value != 0
	}

	reportedBy := strings.TrimSpace(fields[slotCount])
	if reportedBy == "" {
		return nil, fmt.Errorf("%w: thiếu định danh người báo cáo trong %q", ErrMalformedReading, line)
	}

	return &domain.OccupancyReading{
		Slots:      slots,
		ReportedBy: reportedBy,
		ReceivedAt: receivedAt.UTC(),
	}, nil
}
