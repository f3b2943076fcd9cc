package config

import (
	"testing"
	"time"
)

func TestLoadFallsBackOnNonNumericValues(t *testing.T) {
	t.Setenv("SENSOR_SLOT_COUNT", "abc")
	t.Setenv("SENSOR_BAUD_RATE", "")
	t.Setenv("UPLOAD_MAX_ATTEMPTS", "ba")

	cfg := Load()

	// Giá trị không parse được không bao giờ thành 0: cảm biến với slot
	// count 0 sẽ loại mọi dòng dữ liệu như dòng hỏng.
	if cfg.SensorSlotCount != 3 {
		t.Errorf("SensorSlotCount: got %d, want 3", cfg.SensorSlotCount)
	}
	if cfg.SensorBaudRate != 9600 {
		t.Errorf("SensorBaudRate: got %d, want 9600", cfg.SensorBaudRate)
	}
	if cfg.UploadMaxAttempts != 3 {
		t.Errorf("UploadMaxAttempts: got %d, want 3", cfg.UploadMaxAttempts)
	}
}

func TestLoadParsesNumericValues(t *testing.T) {
	t.Setenv("SENSOR_SLOT_COUNT", "6")
	t.Setenv("SENSOR_OPEN_RETRY_DELAY_SECONDS", "5")

	cfg := Load()

	if cfg.SensorSlotCount != 6 {
		t.Errorf("SensorSlotCount: got %d, want 6", cfg.SensorSlotCount)
	}
	if cfg.SensorOpenRetryDelay != 5*time.Second {
		t.Errorf("SensorOpenRetryDelay: got %v, want 5s", cfg.SensorOpenRetryDelay)
	}
}
