package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/DarkMooN-SYS/smartparknew/internal/api"
	"github.com/DarkMooN-SYS/smartparknew/internal/api/handler"
	"github.com/DarkMooN-SYS/smartparknew/internal/config"
	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/ingest"
	"github.com/DarkMooN-SYS/smartparknew/internal/push"
	fsrepo "github.com/DarkMooN-SYS/smartparknew/internal/repository/firestore"
	"github.com/DarkMooN-SYS/smartparknew/internal/scheduler"
	"github.com/DarkMooN-SYS/smartparknew/internal/sensor"
	"github.com/DarkMooN-SYS/smartparknew/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Cấu hình đã được tải.")

	// 2. Kết nối Firebase / Firestore
	ctx := context.Background()
	app, err := fsrepo.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Không thể khởi tạo Firebase app: %v", err)
	}
	fsClient, err := fsrepo.NewClient(ctx, app)
	if err != nil {
		log.Fatalf("Không thể kết nối Firestore: %v", err)
	}
	log.Println("Đã kết nối Firestore thành công!")

	fcmSender, err := push.NewFCMSender(ctx, app)
	if err != nil {
		log.Fatalf("Không thể khởi tạo FCM client: %v", err)
	}

	// 3. Initialize Repositories
	occupancyRepo := fsrepo.NewFsOccupancyRepository(fsClient)
	locationRepo := fsrepo.NewFsLocationRepository(fsClient)
	sessionRepo := fsrepo.NewFsParkingSessionRepository(fsClient)
	bookingRepo := fsrepo.NewFsBookingRepository(fsClient)
	notificationRepo := fsrepo.NewFsNotificationRepository(fsClient)

	// 4. Mở kênh serial tới thiết bị cảm biến
	link, err := sensor.Open(cfg)
	if err != nil {
		log.Fatalf("Không thể mở kênh serial tới thiết bị cảm biến: %v", err)
	}
	log.Println("Đã mở kênh serial tới thiết bị cảm biến.")

	// init websocket manager
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket Manager đã được khởi động.")

	// 5. Initialize Services
	uploadPolicy := service.RetryPolicy{MaxAttempts: cfg.UploadMaxAttempts, Delay: cfg.UploadRetryDelay}
	uploadService := service.NewUploadService(occupancyRepo, uploadPolicy)
	reconcileService := service.NewReconcileService(locationRepo, fcmSender, webSocketManager, cfg.UpdateTopic)
	sessionService := service.NewSessionService(sessionRepo)
	notificationService := service.NewNotificationService(bookingRepo, notificationRepo, fcmSender, cfg.ReminderTopic)
	parkingService := service.NewParkingService(occupancyRepo, locationRepo, sessionRepo, notificationRepo)

	// 6. Đăng ký các handler phản ứng theo ghi mới vào parking_status
	dispatcher := ingest.NewDispatcher()
	dispatcher.Subscribe("reconcile", func(ctx context.Context, _ *domain.OccupancyStatus, reading domain.OccupancyReading) error {
		return reconcileService.Reconcile(ctx, reading)
	})
	dispatcher.Subscribe("sessions", sessionService.HandleReadingChange)

	// 7. Khởi chạy vòng ingest
	var wg sync.WaitGroup
	ingestCtx, cancelIngest := context.WithCancel(context.Background())
	ingestor := ingest.NewIngestor(link, occupancyRepo, uploadService, dispatcher, cfg.SensorSlotCount)
	wg.Add(1)
	go func() {
		defer wg.Done()
		ingestor.Run(ingestCtx)
	}()

	// 8. Scheduler cho hai job thông báo
	sched := scheduler.New()
	if err := sched.AddJob(cfg.DailyReminderCron, "daily_reminder", notificationService.SendDailyReminder); err != nil {
		log.Fatalf("Không thể đăng ký job nhắc nhở hàng ngày: %v", err)
	}
	if err := sched.AddJob(cfg.BookingScanCron, "booking_scan", notificationService.ProcessDueBookings); err != nil {
		log.Fatalf("Không thể đăng ký job quét booking: %v", err)
	}
	sched.Start()

	// 9. Start HTTP Server
	router := api.SetupRouter(parkingService, link, webSocketManager)
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server đang chạy trên port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Lỗi ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Đang tắt server...")

	// Thứ tự dọn dẹp: dừng ingest -> dừng scheduler -> tắt HTTP ->
	// đóng kênh serial (kèm RESET best-effort) -> đóng Firestore.
	// Mỗi bước thất bại chỉ được ghi log, không chặn các bước còn lại.
	cancelIngest()

	c := make(chan struct{})
	go func() {
		defer close(c)
		wg.Wait()
	}()
	select {
	case <-c:
		log.Println("Vòng ingest đã dừng hoàn toàn.")
	case <-time.After(5 * time.Second):
		log.Println("Vòng ingest không dừng trong thời gian chờ.")
	}

	sched.Stop()
	log.Println("Scheduler đã dừng.")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Lỗi tắt HTTP server: %v", err)
	}

	if err := link.Close(); err != nil {
		log.Printf("Lỗi đóng kênh serial: %v", err)
	}
	if err := fsClient.Close(); err != nil {
		log.Printf("Lỗi đóng kết nối Firestore: %v", err)
	}

	log.Println("Server đã tắt.")
}
