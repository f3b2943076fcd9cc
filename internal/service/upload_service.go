package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

// ErrUploadFailed: reading không ghi được lên store sau khi hết lượt thử.
// Reading bị loại bỏ, không có hàng đợi bền — chấp nhận ngữ nghĩa
// "ít nhất một lần thử", không phải "ít nhất một lần thành công".
var ErrUploadFailed = errors.New("tải occupancy reading lên store thất bại")

type UploadService struct {
	occupancyRepo repository.OccupancyRepository
	retry         RetryPolicy
}

func NewUploadService(occupancyRepo repository.OccupancyRepository, retry RetryPolicy) *UploadService {
	return &UploadService{occupancyRepo: occupancyRepo, retry: retry}
}

// Upload thực hiện một lần ghi logic duy nhất: set document trạng thái thô
// với trạng thái từng slot, timestamp do server gán và định danh người báo cáo.
// Mỗi lần gọi độc lập; an toàn khi gọi lặp với các reading chồng lấn.
func (s *UploadService) Upload(ctx context.Context, reading domain.OccupancyReading) error {
	occ := domain.NewOccupancyStatus(reading)

	err := s.retry.Do(ctx, "upload occupancy", func() error {
		return s.occupancyRepo.SetCurrent(ctx, occ)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	log.Printf("[OK] Đã upload: slots=%v, user=%s", reading.SlotDisplays(), reading.ReportedBy)
	return nil
}
