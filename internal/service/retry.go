package service

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RetryPolicy là chính sách thử lại đặt tên được: số lần thử tối đa và
// delay cố định giữa hai lần. Tách riêng để test và tinh chỉnh độc lập
// thay vì hardcode 3 lần / 2 giây rải rác trong code.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultUploadPolicy khớp với hành vi của thiết bị gốc: 3 lần, cách nhau 2 giây.
var DefaultUploadPolicy = RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}

// Do chạy fn tối đa MaxAttempts lần. Mỗi lần thất bại đều được ghi log;
// lỗi chỉ được trả về sau khi đã hết lượt. Delay giữa hai lần tôn trọng
// context: hủy context thì dừng ngay.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		log.Printf("Lỗi %s (lần %d/%d): %v", op, attempt, p.MaxAttempts, lastErr)

		if attempt < p.MaxAttempts {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return fmt.Errorf("%s bị hủy giữa chừng: %w", op, ctx.Err())
			}
		}
	}
	return fmt.Errorf("%s thất bại sau %d lần thử: %w", op, p.MaxAttempts, lastErr)
}
