package api

import (
	"github.com/gin-gonic/gin"

	"github.com/DarkMooN-SYS/smartparknew/internal/api/handler"
	"github.com/DarkMooN-SYS/smartparknew/internal/sensor"
	"github.com/DarkMooN-SYS/smartparknew/internal/service"
)

func SetupRouter(ps *service.ParkingService, link *sensor.Link, wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	deviceH := handler.NewDeviceHandler(link)
	r.GET("/health", deviceH.Health)

	// WebSocket endpoint cho dashboard realtime
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	parkingH := handler.NewParkingHandler(ps)
	v1 := r.Group("/api/v1")
	{
		v1.GET("/occupancy", parkingH.GetCurrentOccupancy)

		v1.GET("/locations", parkingH.GetAllLocations)
		v1.GET("/locations/:id", parkingH.GetLocationByID)

		v1.GET("/parking-sessions/active", parkingH.GetActiveSessionsByUser)
		v1.GET("/notifications", parkingH.GetRecentNotifications)

		v1.POST("/device/reset", deviceH.ResetDevice)
	}

	return r
}
