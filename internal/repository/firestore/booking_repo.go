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

type fsBookingRepository struct {
	client *firestore.Client
}

func NewFsBookingRepository(client *firestore.Client) repository.BookingRepository {
	return &fsBookingRepository{client: client}
}

func (r *fsBookingRepository) FindUnsent(ctx context.Context) ([]domain.Booking, error) {
	iter := r.client.Collection(collectionBookings).
		Where("sent", "==", false).
		Documents(ctx)
	defer iter.Stop()

	var bookings []domain.Booking
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("BookingRepository.FindUnsent: %w", err)
		}

		var booking domain.Booking
		if err := snap.DataTo(&booking); err != nil {
			log.Printf("BookingRepository.FindUnsent: bỏ qua booking '%s' không decode được: %v", snap.Ref.ID, err)
			continue
		}
		booking.ID = snap.Ref.ID
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

func (r *fsBookingRepository) MarkSent(ctx context.Context, bookingID string) error {
	_, err := r.client.Collection(collectionBookings).Doc(bookingID).Update(ctx, []firestore.Update{
		{Path: "sent", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrNotFound
		}
		return fmt.Errorf("BookingRepository.MarkSent: %w", err)
	}
	return nil
}
