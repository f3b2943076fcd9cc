package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DarkMooN-SYS/smartparknew/internal/sensor"
)

type DeviceHandler struct {
	link *sensor.Link
}

func NewDeviceHandler(link *sensor.Link) *DeviceHandler {
	return &DeviceHandler{link: link}
}

// POST /api/v1/device/reset
// Gửi lệnh RESET best-effort xuống thiết bị; không chờ phản hồi.
func (h *DeviceHandler) ResetDevice(c *gin.Context) {
	requestID := uuid.NewString()
	log.Printf("DeviceHandler: Yêu cầu reset thiết bị, request ID: %s", requestID)

	h.link.SendControl(sensor.ControlReset)

	c.JSON(http.StatusAccepted, gin.H{
		"request_id": requestID,
		"status":     "reset_sent",
	})
}

// GET /health
func (h *DeviceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"sensor_state": h.link.State(),
	})
}
