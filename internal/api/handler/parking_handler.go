package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
	"github.com/DarkMooN-SYS/smartparknew/internal/service"
)

type ParkingHandler struct {
	parkingService *service.ParkingService
}

func NewParkingHandler(ps *service.ParkingService) *ParkingHandler {
	return &ParkingHandler{parkingService: ps}
}

// GET /api/v1/occupancy
func (h *ParkingHandler) GetCurrentOccupancy(c *gin.Context) {
	occ, err := h.parkingService.GetCurrentOccupancy(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chưa có reading nào được ghi nhận"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đọc trạng thái occupancy", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, occ)
}

// GET /api/v1/locations
func (h *ParkingHandler) GetAllLocations(c *gin.Context) {
	locations, err := h.parkingService.GetAllLocations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách location", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, locations)
}

// GET /api/v1/locations/:id
func (h *ParkingHandler) GetLocationByID(c *gin.Context) {
	location, err := h.parkingService.GetLocationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location không tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy location", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, location)
}

// GET /api/v1/parking-sessions/active?userId=...
func (h *ParkingHandler) GetActiveSessionsByUser(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu tham số userId"})
		return
	}

	sessions, err := h.parkingService.GetActiveSessionsByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy phiên đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /api/v1/notifications?limit=...
func (h *ParkingHandler) GetRecentNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, err := h.parkingService.GetRecentNotifications(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách thông báo", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notifications)
}
