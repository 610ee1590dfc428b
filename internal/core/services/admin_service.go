package services

import (
	"context"
	"errors"
	"strings"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/adapters/persistence/repositories"
	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/pkg/logger"
	"swadhrama-api/internal/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminService handles user moderation and platform statistics.
// Every operation rejects non-admin actors before touching the database.
type AdminService struct {
	uow              repositories.UnitOfWork
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	bookingRepo      repositories.BookingRepository
}

// NewAdminService creates a new admin service
func NewAdminService(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	bookingRepo repositories.BookingRepository,
) *AdminService {
	return &AdminService{
		uow:              uow,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		bookingRepo:      bookingRepo,
	}
}

// ListUsersInput represents admin user list filters
type ListUsersInput struct {
	Role   string
	Status string
	Search string
}

// Stats represents platform counters for the admin dashboard
type Stats struct {
	TotalUsers    int64 `json:"totalUsers"`
	Members       int64 `json:"members"`
	Providers     int64 `json:"providers"`
	ActiveUsers   int64 `json:"activeUsers"`
	PendingUsers  int64 `json:"pendingUsers"`
	TotalRequests int64 `json:"totalRequests"`
}

func requireAdmin(actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.ErrAuthorization
	}
	return nil
}

// ListUsers lists users newest first, filtered by role, status and a
// case-insensitive search over email, phone and full name.
func (s *AdminService) ListUsers(ctx context.Context, actor domain.Actor, input *ListUsersInput, params *pagination.Params) ([]*models.UserResponse, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}

	filter := repositories.UserFilter{
		Search: strings.TrimSpace(input.Search),
		Offset: params.Offset,
		Limit:  params.Limit,
	}
	if input.Role != "" {
		role, err := domain.ParseRole(input.Role)
		if err != nil {
			return nil, 0, err
		}
		filter.Role = string(role)
	}
	if input.Status != "" {
		status, err := domain.ParseUserStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = string(status)
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, total, nil
}

// UpdateStatus changes a user's status. Suspending a user revokes their sessions.
func (s *AdminService) UpdateStatus(ctx context.Context, actor domain.Actor, id uint, status string) (*models.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	st, err := domain.ParseUserStatus(status)
	if err != nil {
		return nil, err
	}
	if id == actor.UserID {
		return nil, domain.ErrSelfModification
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if _, err := s.getUser(ctx, id); err != nil {
			return err
		}
		if _, err := s.userRepo.UpdateFields(ctx, id, map[string]interface{}{"status": string(st)}); err != nil {
			return err
		}
		if st == domain.StatusSuspended {
			return s.refreshTokenRepo.RevokeAllByUserID(ctx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "User status changed",
		zap.Uint("user_id", id),
		zap.String("status", string(st)),
		zap.Uint("admin_id", actor.UserID),
	)
	return s.getUser(ctx, id)
}

// UpdateRole changes a user's role
func (s *AdminService) UpdateRole(ctx context.Context, actor domain.Actor, id uint, role string) (*models.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if id == actor.UserID {
		return nil, domain.ErrSelfModification
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if _, err := s.getUser(ctx, id); err != nil {
			return err
		}
		_, err := s.userRepo.UpdateFields(ctx, id, map[string]interface{}{"role": string(r)})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "User role changed",
		zap.Uint("user_id", id),
		zap.String("role", string(r)),
		zap.Uint("admin_id", actor.UserID),
	)
	return s.getUser(ctx, id)
}

// DeleteUser hard-deletes a user with their profile and sessions.
// Booking history is kept.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return domain.ErrSelfDeletion
	}

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		n, err := s.userRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "User deleted", zap.Uint("user_id", id), zap.Uint("admin_id", actor.UserID))
	return nil
}

// Stats returns user and booking counters
func (s *AdminService) Stats(ctx context.Context, actor domain.Actor) (*Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var stats Stats
	counts := []struct {
		dst    *int64
		filter repositories.UserFilter
	}{
		{&stats.TotalUsers, repositories.UserFilter{}},
		{&stats.Members, repositories.UserFilter{Role: string(domain.RoleMember)}},
		{&stats.Providers, repositories.UserFilter{Role: string(domain.RoleProvider)}},
		{&stats.ActiveUsers, repositories.UserFilter{Status: string(domain.StatusActive)}},
		{&stats.PendingUsers, repositories.UserFilter{Status: string(domain.StatusPending)}},
	}
	for _, c := range counts {
		n, err := s.userRepo.Count(ctx, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	total, err := s.bookingRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalRequests = total

	return &stats, nil
}

func (s *AdminService) getUser(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}
