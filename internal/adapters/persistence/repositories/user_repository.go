package repositories

import (
	"context"
	"strings"
	"time"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user together with its profile
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := GetDB(ctx, r.db).Preload("Profile").Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDs loads several users keyed by id; unknown ids are absent from the map
func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
	out := make(map[uint]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []*models.User
	if err := GetDB(ctx, r.db).Preload("Profile").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := GetDB(ctx, r.db).Preload("Profile").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByPhone gets a user by phone
func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := GetDB(ctx, r.db).Preload("Profile").Where("phone = ?", phone).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByContact looks the user up by email or phone depending on the contact shape
func (r *userRepository) GetByContact(ctx context.Context, contact string) (*models.User, error) {
	if domain.IsEmail(contact) {
		return r.GetByEmail(ctx, contact)
	}
	return r.GetByPhone(ctx, contact)
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ExistsByPhone checks if phone exists
func (r *userRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

// UpdateFields updates the given columns and returns the number of matched rows
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// UpdatePassword replaces the password hash
func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return GetDB(ctx, r.db).Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

// UpsertProfile creates or replaces the profile row of a user
func (r *userRepository) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "language_preference", "updated_at"}),
	}).Create(profile).Error
}

// MarkVerified sets the verification flag and activates a pending account
func (r *userRepository) MarkVerified(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Model(&models.User{}).Where("id = ?", id).Update("email_verified", true).Error; err != nil {
		return err
	}
	return db.Model(&models.User{}).
		Where("id = ? AND status = ?", id, string(domain.StatusPending)).
		Update("status", string(domain.StatusActive)).Error
}

// TouchLastLogin records the login time
func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return GetDB(ctx, r.db).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// Delete hard deletes a user with its profile and refresh tokens.
// Booking history is left in place.
func (r *userRepository) Delete(ctx context.Context, id uint) (int64, error) {
	db := GetDB(ctx, r.db)
	if err := db.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("id = ?", id).Delete(&models.User{})
	return result.RowsAffected, result.Error
}

// List lists users matching the filter, newest first
func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.filtered(ctx, filter).
		Preload("Profile").
		Order("users.created_at DESC").
		Order("users.id DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Count counts users matching the filter
func (r *userRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

func (r *userRepository) filtered(ctx context.Context, filter UserFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("users.role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("users.status = ?", filter.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.
			Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
			Where("LOWER(users.email) LIKE ? OR LOWER(users.phone) LIKE ? OR LOWER(profiles.full_name) LIKE ?", like, like, like)
	}
	return query
}
