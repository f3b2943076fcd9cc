package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	FirebaseProjectID       string
	FirebaseCredentialsFile string

	// Cấu hình cổng serial nối với thiết bị cảm biến
	SensorPortHint    string // Gợi ý để nhận diện thiết bị (ví dụ: "Arduino", "CH340")
	SensorDefaultPort string // Cổng mặc định nếu không tìm thấy theo gợi ý
	SensorBaudRate    int
	SensorSlotCount   int // Số chỗ đỗ mà thiết bị báo cáo (N cờ trên mỗi dòng)

	SensorOpenMaxAttempts int
	SensorOpenRetryDelay  time.Duration
	SensorPollInterval    time.Duration

	UploadMaxAttempts int
	UploadRetryDelay  time.Duration

	DailyReminderCron string // Lịch gửi nhắc nhở hàng ngày
	BookingScanCron   string // Lịch quét booking đến hạn

	ReminderTopic string // Topic FCM cho nhắc nhở hàng ngày
	UpdateTopic   string // Topic FCM cho cập nhật chỗ trống
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Cảnh báo: Không thể tải file .env: %v", err)
	}

	baudRate := getEnvInt("SENSOR_BAUD_RATE", 9600)
	slotCount := getEnvInt("SENSOR_SLOT_COUNT", 3)
	openAttempts := getEnvInt("SENSOR_OPEN_MAX_ATTEMPTS", 5)
	openDelaySec := getEnvInt("SENSOR_OPEN_RETRY_DELAY_SECONDS", 2)
	pollMs := getEnvInt("SENSOR_POLL_INTERVAL_MS", 200)
	uploadAttempts := getEnvInt("UPLOAD_MAX_ATTEMPTS", 3)
	uploadDelaySec := getEnvInt("UPLOAD_RETRY_DELAY_SECONDS", 2)

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", "parkme-246a0"),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "firebase_config.json"),

		SensorPortHint:    getEnv("SENSOR_PORT_HINT", "Arduino"),
		SensorDefaultPort: getEnv("SENSOR_DEFAULT_PORT", "/dev/ttyUSB0"),
		SensorBaudRate:    baudRate,
		SensorSlotCount:   slotCount,

		SensorOpenMaxAttempts: openAttempts,
		SensorOpenRetryDelay:  time.Duration(openDelaySec) * time.Second,
		SensorPollInterval:    time.Duration(pollMs) * time.Millisecond,

		UploadMaxAttempts: uploadAttempts,
		UploadRetryDelay:  time.Duration(uploadDelaySec) * time.Second,

		DailyReminderCron: getEnv("DAILY_REMINDER_CRON", "0 13 * * *"),
		BookingScanCron:   getEnv("BOOKING_SCAN_CRON", "*/5 * * * *"),

		ReminderTopic: getEnv("FCM_REMINDER_TOPIC", "parking_reminders"),
		UpdateTopic:   getEnv("FCM_UPDATE_TOPIC", "parking_updates"),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Biến môi trường '%s' không được đặt, sử dụng giá trị mặc định: '%s'", key, fallback)
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := getEnv(key, strconv.Itoa(fallback))
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Biến môi trường '%s' không phải số ('%s'), sử dụng giá trị mặc định: %d", key, raw, fallback)
		return fallback
	}
	return value
}
