package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

type fsLocationRepository struct {
	client *firestore.Client
}

func NewFsLocationRepository(client *firestore.Client) repository.LocationRepository {
	return &fsLocationRepository{client: client}
}

func (r *fsLocationRepository) FindByID(ctx context.Context, id string) (*domain.LocationRecord, error) {
	snap, err := r.client.Collection(collectionLocations).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("LocationRepository.FindByID: %w", err)
	}

	var record domain.LocationRecord
	if err := snap.DataTo(&record); err != nil {
		return nil, fmt.Errorf("LocationRepository.FindByID (decode): %w", err)
	}
	record.ID = snap.Ref.ID
	return &record, nil
}

func (r *fsLocationRepository) FindAll(ctx context.Context) ([]domain.LocationRecord, error) {
	iter := r.client.Collection(collectionLocations).Documents(ctx)
	defer iter.Stop()

	var records []domain.LocationRecord
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("LocationRepository.FindAll: %w", err)
		}

		var record domain.LocationRecord
		if err := snap.DataTo(&record); err != nil {
			// Một record hỏng không làm hỏng cả lượt đọc: bỏ qua và ghi log.
			log.Printf("LocationRepository.FindAll: bỏ qua document '%s' không decode được: %v", snap.Ref.ID, err)
			continue
		}
		record.ID = snap.Ref.ID
		records = append(records, record)
	}
	return records, nil
}

func (r *fsLocationRepository) CommitAvailability(ctx context.Context, updates []domain.LocationUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	// WriteBatch commit nguyên tử: hoặc tất cả location được cập nhật,
	// hoặc không location nào cả.
	batch := r.client.Batch()
	for _, u := range updates {
		ref := r.client.Collection(collectionLocations).Doc(u.LocationID)
		batch.Update(ref, []firestore.Update{
			{Path: "available_slots", Value: u.AvailableSlots},
			{Path: "accrued_amount", Value: u.AccruedAmount},
			{Path: "slot_display", Value: u.SlotDisplay},
			{Path: "last_updated", Value: firestore.ServerTimestamp},
		})
	}

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("LocationRepository.CommitAvailability: %w", err)
	}
	return nil
}
