package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/DarkMooN-SYS/smartparknew/internal/domain"
	"github.com/DarkMooN-SYS/smartparknew/internal/repository"
)

type fsNotificationRepository struct {
	client *firestore.Client
}

func NewFsNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &fsNotificationRepository{client: client}
}

func (r *fsNotificationRepository) Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	ref, _, err := r.client.Collection(collectionNotifications).Add(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("NotificationRepository.Create: %w", err)
	}
	notification.ID = ref.ID
	return notification, nil
}

func (r *fsNotificationRepository) FindRecent(ctx context.Context, limit int) ([]domain.Notification, error) {
	iter := r.client.Collection(collectionNotifications).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var notifications []domain.Notification
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("NotificationRepository.FindRecent: %w", err)
		}

		var notification domain.Notification
		if err := snap.DataTo(&notification); err != nil {
			return nil, fmt.Errorf("NotificationRepository.FindRecent (decode): %w", err)
		}
		notification.ID = snap.Ref.ID
		notifications = append(notifications, notification)
	}
	return notifications, nil
}
