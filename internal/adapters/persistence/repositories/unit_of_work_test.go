package repositories

import (
	"context"
	"errors"
	"testing"

	"swadhrama-api/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_DoCommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	uow := NewUnitOfWork(db)
	bookings := NewBookingRepository(db)
	ctx := context.Background()

	err := uow.Do(ctx, func(ctx context.Context) error {
		return bookings.Create(ctx, &models.BookingRequest{
			MemberID: 1, ServiceType: "HomePooja", RequestedDate: "2026-02-20", RequestedTime: "09:00", Address: "X", Status: "pending",
		})
	})
	require.NoError(t, err)

	total, err := bookings.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	err = uow.Do(ctx, func(ctx context.Context) error {
		if err := bookings.Create(ctx, &models.BookingRequest{
			MemberID: 1, ServiceType: "HomePooja", RequestedDate: "2026-02-21", RequestedTime: "10:00", Address: "Y", Status: "pending",
		}); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	require.Error(t, err)

	total, err = bookings.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "second insert must be rolled back")
}

func TestUnitOfWork_NestedDoReusesTransaction(t *testing.T) {
	db := newTestDB(t)
	uow := NewUnitOfWork(db)

	err := uow.Do(context.Background(), func(outer context.Context) error {
		outerTx := GetDB(outer, db)
		return uow.Do(outer, func(inner context.Context) error {
			assert.Same(t, outerTx, GetDB(inner, db))
			return nil
		})
	})
	require.NoError(t, err)
}
