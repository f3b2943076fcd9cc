package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

type fsParkingSessionRepository struct {
	client *firestore.Client
}

func NewFsParkingSessionRepository(client *firestore.Client) repository.ParkingSessionRepository {
	return &fsParkingSessionRepository{client: client}
}

func (r *fsParkingSessionRepository) activeQuery(userID, slotID string) firestore.Query {
	return r.client.Collection(collectionSessions).
		Where("user_id", "==", userID).
		Where("slot_id", "==", slotID).
		Where("is_active", "==", true).
		Limit(1)
}

func (r *fsParkingSessionRepository) FindActive(ctx context.Context, userID, slotID string) (*domain.ParkingSession, error) {
	iter := r.activeQuery(userID, slotID).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, repository.ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindActive: %w", err)
	}

	var session domain.ParkingSession
	if err := snap.DataTo(&session); err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindActive (decode): %w", err)
	}
	session.ID = snap.Ref.ID
	return &session, nil
}

func (r *fsParkingSessionRepository) FindActiveByUser(ctx context.Context, userID string) ([]domain.ParkingSession, error) {
	iter := r.client.Collection(collectionSessions).
		Where("user_id", "==", userID).
		Where("is_active", "==", true).
		Documents(ctx)
	defer iter.Stop()

	var sessions []domain.ParkingSession
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ParkingSessionRepository.FindActiveByUser: %w", err)
		}

		var session domain.ParkingSession
		if err := snap.DataTo(&session); err != nil {
			return nil, fmt.Errorf("ParkingSessionRepository.FindActiveByUser (decode): %w", err)
		}
		session.ID = snap.Ref.ID
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Start mở phiên mới trong một transaction. Query-rồi-ghi được Firestore
// serialize theo cặp (user_id, slot_id): hai transition chạy đua cho cùng
// một cặp không thể tạo ra hai phiên active.
func (r *fsParkingSessionRepository) Start(ctx context.Context, userID, slotID string, startTime time.Time) (*domain.ParkingSession, error) {
	newRef := r.client.Collection(collectionSessions).NewDoc()
	session := &domain.ParkingSession{
		UserID:    userID,
		SlotID:    slotID,
		StartTime: startTime.UTC(),
		Active:    true,
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(r.activeQuery(userID, slotID))
		defer iter.Stop()

		_, err := iter.Next()
		if err == nil {
			return repository.ErrSessionAlreadyActive
		}
		if !errors.Is(err, iterator.Done) {
			return err
		}
		return tx.Create(newRef, session)
	})
	if err != nil {
		if errors.Is(err, repository.ErrSessionAlreadyActive) {
			return nil, repository.ErrSessionAlreadyActive
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Start: %w", err)
	}

	session.ID = newRef.ID
	return session, nil
}

// End đóng phiên active của cặp (user, slot) trong một transaction.
func (r *fsParkingSessionRepository) End(ctx context.Context, userID, slotID string, endTime time.Time) (*domain.ParkingSession, error) {
	endTime = endTime.UTC()
	var closed *domain.ParkingSession

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(r.activeQuery(userID, slotID))
		defer iter.Stop()

		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return repository.ErrNoActiveSession
		}
		if err != nil {
			return err
		}

		var session domain.ParkingSession
		if err := snap.DataTo(&session); err != nil {
			return err
		}
		session.ID = snap.Ref.ID
		session.Active = false
		session.EndTime = &endTime
		closed = &session

		return tx.Update(snap.Ref, []firestore.Update{
			{Path: "is_active", Value: false},
			{Path: "end_time", Value: endTime},
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.End: %w", err)
	}
	return closed, nil
}
