package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

// Job là một tác vụ định kỳ single-pass: mỗi lần chạy độc lập, không giữ
// state giữa các lượt.
type Job func(ctx context.Context) error

// Scheduler bọc cron runner với chain SkipIfStillRunning: một job đang
// chạy thì lượt kích hoạt kế tiếp của chính nó bị bỏ qua, không bao giờ
// có hai lượt quét cùng đọc/ghi một tập booking.
type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
	}
}

// AddJob đăng ký một job theo biểu thức cron chuẩn 5 trường. Mỗi lượt chạy
// có context riêng với timeout chặn trên; lỗi của job chỉ được ghi log.
func (s *Scheduler) AddJob(spec, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := job(ctx); err != nil {
			log.Printf("Scheduler: Job '%s' báo lỗi: %v", name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("lỗi đăng ký job '%s' với lịch '%s': %w", name, spec, err)
	}
	log.Printf("Scheduler: Đã đăng ký job '%s' với lịch '%s'.", name, spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop dừng kích hoạt job mới và chờ các job đang chạy kết thúc,
// tối đa jobTimeout.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(jobTimeout):
		log.Println("Scheduler: Job chưa dừng trong thời gian chờ.")
	}
}
