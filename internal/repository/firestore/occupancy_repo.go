package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

type fsOccupancyRepository struct {
	client *firestore.Client
}

func NewFsOccupancyRepository(client *firestore.Client) repository.OccupancyRepository {
	return &fsOccupancyRepository{client: client}
}

func (r *fsOccupancyRepository) GetCurrent(ctx context.Context) (*domain.OccupancyStatus, error) {
	snap, err := r.client.Collection(collectionStatus).Doc(statusDocID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("OccupancyRepository.GetCurrent: %w", err)
	}

	var current domain.OccupancyStatus
	if err := snap.DataTo(&current); err != nil {
		return nil, fmt.Errorf("OccupancyRepository.GetCurrent (decode): %w", err)
	}
	return &current, nil
}

func (r *fsOccupancyRepository) SetCurrent(ctx context.Context, occ domain.OccupancyStatus) error {
	// Set ghi đè toàn bộ document; timestamp do server gán qua tag
	// serverTimestamp trên domain.OccupancyStatus.
	_, err := r.client.Collection(collectionStatus).Doc(statusDocID).Set(ctx, occ)
	if err != nil {
		return fmt.Errorf("OccupancyRepository.SetCurrent: %w", err)
	}
	return nil
}
