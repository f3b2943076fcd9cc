package ingest

import (
	"context"
	"log"
	"sync"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
)

// Handler được gọi sau khi một reading đã ghi thành công lên store.
// prev là snapshot trước khi ghi, nil nếu đây là lần ghi đầu tiên.
type Handler func(ctx context.Context, prev *domain.OccupancyStatus, reading domain.OccupancyReading) error

type subscription struct {
	name    string
	handler Handler
}

// Dispatcher mô hình hóa trigger "on document created" của store dưới dạng
// subscription tường minh: các handler (đối soát, phiên đỗ xe, broadcast)
// được gọi tách khỏi đường ghi tạo ra thay đổi. Lỗi của handler chỉ được
// ghi log — không bao giờ ảnh hưởng tới kết quả của lần ghi gốc.
type Dispatcher struct {
	mu            sync.RWMutex
	subscriptions []subscription
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Subscribe(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscriptions = append(d.subscriptions, subscription{name: name, handler: handler})
}

// Dispatch gọi lần lượt từng handler đã đăng ký. Các handler chạy tuần tự:
// vòng ingest xử lý trọn parse -> upload -> đối soát -> cập nhật phiên
// trước khi đọc dòng kế tiếp.
func (d *Dispatcher) Dispatch(ctx context.Context, prev *domain.OccupancyStatus, reading domain.OccupancyReading) {
	d.mu.RLock()
	subs := make([]subscription, len(d.subscriptions))
	copy(subs, d.subscriptions)
	d.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.handler(ctx, prev, reading); err != nil {
			log.Printf("Dispatcher: Handler '%s' báo lỗi: %v", sub.name, err)
		}
	}
}
