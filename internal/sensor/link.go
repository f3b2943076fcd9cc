package sensor

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/DarkMooN-SYS/smartparknew/internal/config"
)

var ErrConnectionUnavailable = errors.New("không mở được kênh serial nào tới thiết bị cảm biến")
var ErrNoData = errors.New("chưa có dòng dữ liệu hoàn chỉnh")
var ErrLinkClosed = errors.New("kênh serial đã đóng")

// ControlReset là lệnh điều khiển duy nhất gửi xuống thiết bị, best-effort,
// không chờ phản hồi.
const ControlReset = "RESET"

type LinkState string

const (
	StateDisconnected LinkState = "disconnected"
	StateConnecting   LinkState = "connecting"
	StateConnected    LinkState = "connected"
	StateStreaming    LinkState = "streaming"
	StateReconnecting LinkState = "reconnecting"
	StateClosed       LinkState = "closed"
)

// Link sở hữu độc quyền kết nối vật lý tới thiết bị cảm biến và phát ra
// chuỗi dòng text không giới hạn, có thể khởi động lại sau lỗi I/O.
type Link struct {
	portHint    string
	defaultPort string
	baudRate    int
	maxAttempts int
	retryDelay  time.Duration
	pollTimeout time.Duration

	// openPort mặc định là serial.Open; test thay bằng hàm giả.
	openPort func(name string, mode *serial.Mode) (serial.Port, error)

	closeOnce sync.Once
	closed    chan struct{} // đóng khi Close được gọi, kể cả giữa lượt chờ kết nối lại

	mu      sync.Mutex
	port    serial.Port
	state   LinkState
	pending []byte // byte đã đọc nhưng chưa gặp newline
}

// Open dò các cổng serial khả dụng, ưu tiên cổng khớp với gợi ý nhận diện
// thiết bị, fallback về cổng mặc định. Thử lại tối đa maxAttempts lần với
// delay cố định (cổng có thể đang bị process khác giữ); hết lượt thì trả
// ErrConnectionUnavailable.
func Open(cfg *config.Config) (*Link, error) {
	l := &Link{
		portHint:    cfg.SensorPortHint,
		defaultPort: cfg.SensorDefaultPort,
		baudRate:    cfg.SensorBaudRate,
		maxAttempts: cfg.SensorOpenMaxAttempts,
		retryDelay:  cfg.SensorOpenRetryDelay,
		pollTimeout: cfg.SensorPollInterval,
		openPort:    serial.Open,
		closed:      make(chan struct{}),
		state:       StateDisconnected,
	}
	if err := l.connect(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Link) connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connectLocked()
}

func (l *Link) connectLocked() error {
	l.state = StateConnecting

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		select {
		case <-l.closed:
			l.state = StateClosed
			return ErrLinkClosed
		default:
		}

		portName := l.probePort()
		port, err := l.openPort(portName, &serial.Mode{BaudRate: l.baudRate})
		if err == nil {
			if err := port.SetReadTimeout(l.pollTimeout); err != nil {
				port.Close()
				return fmt.Errorf("lỗi đặt read timeout cho cổng '%s': %w", portName, err)
			}
			l.port = port
			l.pending = nil
			l.state = StateConnected
			log.Printf("SensorLink: Đã mở cổng serial '%s' (baud %d).", portName, l.baudRate)
			return nil
		}

		// Cổng đang bị process khác giữ hoặc chưa sẵn sàng: chờ rồi thử lại.
		log.Printf("SensorLink: Không mở được cổng '%s' (lần %d/%d): %v", portName, attempt, l.maxAttempts, err)
		if attempt < l.maxAttempts {
			// Không chờ mù: Close giữa hai lượt thử phải ngắt ngay để
			// teardown không bị treo theo retryDelay.
			select {
			case <-time.After(l.retryDelay):
			case <-l.closed:
				l.state = StateClosed
				return ErrLinkClosed
			}
		}
	}

	l.state = StateDisconnected
	return ErrConnectionUnavailable
}

// probePort liệt kê các cổng hiện có và chọn cổng có metadata khớp với
// gợi ý thiết bị; không có gợi ý hoặc không tìm thấy thì dùng cổng mặc định
// đã cấu hình.
func (l *Link) probePort() string {
	if l.portHint == "" {
		return l.defaultPort
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		log.Printf("SensorLink: Lỗi liệt kê cổng serial: %v. Dùng cổng mặc định '%s'.", err, l.defaultPort)
		return l.defaultPort
	}

	for _, p := range ports {
		if strings.Contains(p.Product, l.portHint) || strings.Contains(p.Name, l.portHint) {
			return p.Name
		}
	}
	return l.defaultPort
}

// ReadLine trả về dòng kế tiếp đã kết thúc bằng newline. Nếu hết khoảng
// poll mà chưa đủ một dòng thì trả ErrNoData — không bao giờ coi việc
// thiếu dữ liệu là lỗi. Lỗi I/O thật sự được trả lên để caller Reopen.
func (l *Link) ReadLine() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil {
		return "", ErrLinkClosed
	}

	if line, ok := l.takeLineLocked(); ok {
		return line, nil
	}

	buf := make([]byte, 256)
	n, err := l.port.Read(buf)
	if err != nil {
		return "", fmt.Errorf("lỗi đọc từ cổng serial: %w", err)
	}
	if n > 0 {
		l.pending = append(l.pending, buf[:n]...)
		l.state = StateStreaming
	}

	if line, ok := l.takeLineLocked(); ok {
		return line, nil
	}
	return "", ErrNoData
}

func (l *Link) takeLineLocked() (string, bool) {
	for i, b := range l.pending {
		if b == '\n' {
			line := strings.TrimRight(string(l.pending[:i]), "\r")
			l.pending = l.pending[i+1:]
			return line, true
		}
	}
	return "", false
}

// Reopen đóng cổng hiện tại và kết nối lại, dùng khi vòng ingest gặp lỗi I/O.
func (l *Link) Reopen() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = StateReconnecting
	if l.port != nil {
		if err := l.port.Close(); err != nil {
			log.Printf("SensorLink: Lỗi đóng cổng trước khi kết nối lại: %v", err)
		}
		l.port = nil
	}
	return l.connectLocked()
}

// SendControl ghi một lệnh điều khiển xuống thiết bị, best-effort:
// lỗi chỉ được ghi log, không lan ra caller.
func (l *Link) SendControl(command string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil {
		log.Printf("SensorLink: Bỏ qua lệnh '%s' vì kênh đã đóng.", command)
		return
	}
	if _, err := l.port.Write([]byte(command + "\n")); err != nil {
		log.Printf("SensorLink: Lỗi gửi lệnh '%s': %v", command, err)
	}
}

// Close gửi RESET best-effort rồi giải phóng cổng. An toàn khi gọi nhiều lần.
// Kênh closed được đóng trước khi lấy mutex để một Reopen đang giữ mutex
// trong lượt chờ kết nối lại nhả ra ngay thay vì chạy hết số lần thử.
func (l *Link) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.port == nil {
		return nil
	}

	if _, err := l.port.Write([]byte(ControlReset + "\n")); err != nil {
		log.Printf("SensorLink: Lỗi gửi RESET khi đóng kênh: %v", err)
	}

	err := l.port.Close()
	l.port = nil
	l.state = StateClosed
	if err != nil {
		return fmt.Errorf("lỗi đóng cổng serial: %w", err)
	}
	return nil
}

// State trả về trạng thái hiện tại của kênh, dùng cho endpoint health.
func (l *Link) State() LinkState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
