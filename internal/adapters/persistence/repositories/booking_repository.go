package repositories

import (
	"context"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/core/domain"

	"gorm.io/gorm"
)

// bookingRepository implements BookingRepository interface
type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create creates a new booking request
func (r *bookingRepository) Create(ctx context.Context, booking *models.BookingRequest) error {
	return GetDB(ctx, r.db).Create(booking).Error
}

// GetByID gets a booking request by ID
func (r *bookingRepository) GetByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	var booking models.BookingRequest
	err := GetDB(ctx, r.db).Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Transition applies a pending -> terminal update guarded on the current status.
// It returns the number of rows changed; zero means the guard did not match.
func (r *bookingRepository) Transition(ctx context.Context, t BookingTransition) (int64, error) {
	updates := map[string]interface{}{
		"status":       string(t.To),
		"responded_at": t.At,
		"responded_by": t.ActorID,
		"updated_at":   t.At,
	}

	query := GetDB(ctx, r.db).
		Model(&models.BookingRequest{}).
		Where("id = ? AND status = ?", t.ID, string(domain.BookingPending))

	if t.ProviderID != nil {
		query = query.Where("provider_id IS NULL OR provider_id = ?", *t.ProviderID)
		updates["provider_id"] = gorm.Expr("COALESCE(provider_id, ?)", *t.ProviderID)
	}

	result := query.UpdateColumns(updates)
	return result.RowsAffected, result.Error
}

// List lists booking requests matching the filter, newest first
func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]*models.BookingRequest, int64, error) {
	var bookings []*models.BookingRequest
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.filtered(ctx, filter).Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// CountAll counts every booking request ever made
func (r *bookingRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.BookingRequest{}).Count(&count).Error
	return count, err
}

// CreateScheduled inserts the scheduled service projected from an accepted request
func (r *bookingRepository) CreateScheduled(ctx context.Context, scheduled *models.ScheduledService) error {
	return GetDB(ctx, r.db).Create(scheduled).Error
}

// ListScheduled lists scheduled services ordered by date and time
func (r *bookingRepository) ListScheduled(ctx context.Context, filter ScheduledFilter) ([]*models.ScheduledService, int64, error) {
	var items []*models.ScheduledService
	var total int64

	base := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.ScheduledService{})
		if filter.MemberID != nil {
			q = q.Where("member_id = ?", *filter.MemberID)
		}
		if filter.ProviderID != nil {
			q = q.Where("provider_id = ?", *filter.ProviderID)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base().Order("date ASC").Order("time ASC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *bookingRepository) filtered(ctx context.Context, filter BookingFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&models.BookingRequest{})

	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.ProviderID != nil {
		if filter.IncludeUnassigned {
			query = query.Where("provider_id = ? OR provider_id IS NULL", *filter.ProviderID)
		} else {
			query = query.Where("provider_id = ?", *filter.ProviderID)
		}
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}
