package service

import (
	"context"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

// ParkingService gom các truy vấn đọc phục vụ API ops/dashboard.
type ParkingService struct {
	occupancyRepo    repository.OccupancyRepository
	locationRepo     repository.LocationRepository
	sessionRepo      repository.ParkingSessionRepository
	notificationRepo repository.NotificationRepository
}

func NewParkingService(
	occupancyRepo repository.OccupancyRepository,
	locationRepo repository.LocationRepository,
	sessionRepo repository.ParkingSessionRepository,
	notificationRepo repository.NotificationRepository,
) *ParkingService {
	return &ParkingService{
		occupancyRepo:    occupancyRepo,
		locationRepo:     locationRepo,
		sessionRepo:      sessionRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *ParkingService) GetCurrentOccupancy(ctx context.Context) (*domain.OccupancyStatus, error) {
	return s.occupancyRepo.GetCurrent(ctx)
}

func (s *ParkingService) GetAllLocations(ctx context.Context) ([]domain.LocationRecord, error) {
	return s.locationRepo.FindAll(ctx)
}

func (s *ParkingService) GetLocationByID(ctx context.Context, id string) (*domain.LocationRecord, error) {
	return s.locationRepo.FindByID(ctx, id)
}

func (s *ParkingService) GetActiveSessionsByUser(ctx context.Context, userID string) ([]domain.ParkingSession, error) {
	return s.sessionRepo.FindActiveByUser(ctx, userID)
}

func (s *ParkingService) GetRecentNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.notificationRepo.FindRecent(ctx, limit)
}
