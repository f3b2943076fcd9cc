package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/DarkMooN-SYS/smartparknew/internal/config"
)

// Tên các collection trong Firestore. Giữ nguyên tên mà app mobile
// và thiết bị đang dùng.
const (
	collectionStatus        = "parking_status"
	collectionLocations     = "parkings"
	collectionSessions      = "sessions"
	collectionBookings      = "bookings"
	collectionNotifications = "notifications"

	statusDocID = "current"
)

// NewApp khởi tạo Firebase app từ file credential trong cấu hình.
func NewApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	fbConfig := &firebase.Config{ProjectID: cfg.FirebaseProjectID}

	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		if _, err := os.Stat(cfg.FirebaseCredentialsFile); err != nil {
			return nil, fmt.Errorf("không đọc được file credential '%s': %w", cfg.FirebaseCredentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("lỗi khởi tạo Firebase app: %w", err)
	}
	return app, nil
}

// NewClient mở kết nối Firestore từ Firebase app.
func NewClient(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("lỗi mở kết nối Firestore: %w", err)
	}
	return client, nil
}
