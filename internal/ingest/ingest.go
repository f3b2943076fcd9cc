package ingest

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
	"github.com/DarkMooN-SYS/smartparknew/internal/sensor"
	"github.com/DarkMooN-SYS/smartparknew/internal/service"
)

const errorPause = 2 * time.Second

// LineSource là nguồn dòng text từ thiết bị, có thể kết nối lại sau lỗi I/O.
// *sensor.Link là nguồn thật; test dùng nguồn kịch bản.
type LineSource interface {
	ReadLine() (string, error)
	Reopen() error
}

var _ LineSource = (*sensor.Link)(nil)

// Ingestor chạy vòng đọc cảm biến: một tiến trình duy nhất sở hữu kênh
// serial, đọc từng dòng, parse, upload rồi phát sự kiện cho các handler.
type Ingestor struct {
	link          LineSource
	occupancyRepo repository.OccupancyRepository
	uploadService *service.UploadService
	dispatcher    *Dispatcher
	slotCount     int
}

func NewIngestor(
	link LineSource,
	occupancyRepo repository.OccupancyRepository,
	uploadService *service.UploadService,
	dispatcher *Dispatcher,
	slotCount int,
) *Ingestor {
	return &Ingestor{
		link:          link,
		occupancyRepo: occupancyRepo,
		uploadService: uploadService,
		dispatcher:    dispatcher,
		slotCount:     slotCount,
	}
}

// Run chạy tới khi context bị hủy. Không lỗi nào trong vòng lặp được phép
// kết thúc tiến trình: dòng hỏng bị loại, upload thất bại bị loại, lỗi I/O
// kích hoạt kết nối lại.
func (in *Ingestor) Run(ctx context.Context) {
	log.Println("Ingestor: Bắt đầu vòng đọc cảm biến.")
	for {
		select {
		case <-ctx.Done():
			log.Println("Ingestor: context bị hủy, dừng vòng đọc.")
			return
		default:
			line, err := in.link.ReadLine()
			if errors.Is(err, sensor.ErrNoData) {
				continue
			}
			if err != nil {
				log.Printf("Ingestor: Lỗi đọc từ kênh serial: %v. Đang kết nối lại...", err)
				if rerr := in.link.Reopen(); rerr != nil {
					log.Printf("Ingestor: Kết nối lại thất bại: %v", rerr)
					sleepCtx(ctx, errorPause)
				}
				continue
			}

			log.Printf("[DATA] Từ thiết bị: %s", line)
			reading, err := sensor.ParseReading(line, in.slotCount, time.Now())
			if err != nil {
				// Dòng không đúng định dạng dữ liệu được coi là log của
				// thiết bị: ghi lại rồi đọc tiếp.
				log.Printf("[WARN] Định dạng không xác định: %v", err)
				continue
			}

			in.process(ctx, *reading)
		}
	}
}

func (in *Ingestor) process(ctx context.Context, reading domain.OccupancyReading) {
	prev, err := in.occupancyRepo.GetCurrent(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Ingestor: Lỗi đọc snapshot trước đó: %v. Xử lý như lần ghi đầu tiên.", err)
		}
		prev = nil
	}

	if err := in.uploadService.Upload(ctx, reading); err != nil {
		// Reading bị loại bỏ, vòng đọc vẫn tiếp tục với dòng kế tiếp.
		log.Printf("Ingestor: %v. Reading bị loại bỏ.", err)
		return
	}

	in.dispatcher.Dispatch(ctx, prev, reading)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
