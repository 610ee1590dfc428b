package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/adapters/persistence/repositories"
	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/pkg/logger"
	"swadhrama-api/internal/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// timeLayouts are accepted for a requested time; the stored form is HH:MM
var timeLayouts = []string{"15:04", "3:04 PM", "3:04PM", "15:04:05"}

// BookingService handles the booking request lifecycle
type BookingService struct {
	uow         repositories.UnitOfWork
	bookingRepo repositories.BookingRepository
	userRepo    repositories.UserRepository
	notifier    BookingNotifier
	now         func() time.Time
}

// NewBookingService creates a new booking service. notifier may be nil.
func NewBookingService(
	uow repositories.UnitOfWork,
	bookingRepo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	notifier BookingNotifier,
) *BookingService {
	return &BookingService{
		uow:         uow,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateBookingInput represents a new booking request
type CreateBookingInput struct {
	ServiceType string `json:"serviceType"`
	ServiceName string `json:"serviceName"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
	ProviderID  *uint  `json:"providerId"`
	// MemberID is honoured only when an admin books on behalf of a member
	MemberID *uint `json:"memberId"`
}

// Create records a pending booking request
func (s *BookingService) Create(ctx context.Context, actor domain.Actor, input *CreateBookingInput) (*models.BookingResponse, error) {
	var memberID uint
	switch actor.Role {
	case domain.RoleMember:
		memberID = actor.UserID
	case domain.RoleAdmin:
		if input.MemberID == nil {
			return nil, domain.NewValidationError("memberId is required when booking on behalf of a member")
		}
		member, err := s.userRepo.GetByID(ctx, *input.MemberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.NewValidationError("Member not found")
			}
			return nil, err
		}
		if domain.Role(member.Role) != domain.RoleMember {
			return nil, domain.NewValidationError("memberId must reference a MEMBER")
		}
		memberID = member.ID
	default:
		return nil, domain.ErrAuthorization
	}

	serviceType := domain.ServiceType(strings.TrimSpace(input.ServiceType))
	if !serviceType.Valid() {
		return nil, domain.NewValidationError("Invalid serviceType. Must be HomamYagam, HomePooja, PoojaSamagri, or FamilyConnect")
	}

	date := strings.TrimSpace(input.Date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, domain.NewValidationError("Invalid date. Expected YYYY-MM-DD")
	}

	at, err := NormalizeTime(input.Time)
	if err != nil {
		return nil, err
	}

	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, domain.NewValidationError("Address is required")
	}

	if input.ProviderID != nil {
		provider, err := s.userRepo.GetByID(ctx, *input.ProviderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.NewValidationError("Provider not found")
			}
			return nil, err
		}
		if domain.Role(provider.Role) != domain.RoleProvider {
			return nil, domain.NewValidationError("providerId must reference a PROVIDER")
		}
	}

	name := strings.TrimSpace(input.ServiceName)
	if name == "" {
		name = serviceType.Label()
	}

	booking := &models.BookingRequest{
		MemberID:      memberID,
		ProviderID:    input.ProviderID,
		ServiceType:   string(serviceType),
		ServiceName:   name,
		RequestedDate: date,
		RequestedTime: at,
		Address:       address,
		Notes:         strings.TrimSpace(input.Notes),
		Status:        string(domain.BookingPending),
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Booking request created",
		zap.String("booking_id", booking.ID),
		zap.Uint("member_id", memberID),
		zap.String("service_type", booking.ServiceType),
	)

	return s.withNames(ctx, booking), nil
}

// Accept moves a pending request to accepted and schedules the service in the same transaction
func (s *BookingService) Accept(ctx context.Context, actor domain.Actor, id string) (*models.ScheduledService, error) {
	var scheduled *models.ScheduledService
	booking, err := s.decide(ctx, actor, id, domain.BookingAccepted, func(ctx context.Context, b *models.BookingRequest) error {
		scheduled = b.ToScheduled()
		return s.bookingRepo.CreateScheduled(ctx, scheduled)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, booking)
	return scheduled, nil
}

// Reject moves a pending request to rejected
func (s *BookingService) Reject(ctx context.Context, actor domain.Actor, id string) (*models.BookingResponse, error) {
	booking, err := s.decide(ctx, actor, id, domain.BookingRejected, nil)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, booking)
	return s.withNames(ctx, booking), nil
}

// Reschedule is not supported
func (s *BookingService) Reschedule(ctx context.Context, actor domain.Actor, id string) error {
	return domain.ErrNotImplemented
}

// decide applies the guarded transition and runs after with the updated request
// inside the same transaction.
func (s *BookingService) decide(
	ctx context.Context,
	actor domain.Actor,
	id string,
	to domain.BookingStatus,
	after func(ctx context.Context, b *models.BookingRequest) error,
) (*models.BookingRequest, error) {
	if actor.Role != domain.RoleProvider && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrAuthorization
	}

	t := repositories.BookingTransition{
		ID:      id,
		To:      to,
		ActorID: actor.UserID,
		At:      s.now(),
	}
	if actor.Role == domain.RoleProvider {
		providerID := actor.UserID
		t.ProviderID = &providerID
	}

	var booking *models.BookingRequest
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		n, err := s.bookingRepo.Transition(ctx, t)
		if err != nil {
			return err
		}
		if n == 0 {
			return s.explainNoTransition(ctx, id, to)
		}

		booking, err = s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if after != nil {
			return after(ctx, booking)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Booking request decided",
		zap.String("booking_id", id),
		zap.String("status", string(to)),
		zap.Uint("actor_id", actor.UserID),
	)
	return booking, nil
}

// explainNoTransition finds out why a guarded update matched no row
func (s *BookingService) explainNoTransition(ctx context.Context, id string, to domain.BookingStatus) error {
	current, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrBookingNotFound
		}
		return err
	}
	if !domain.CanTransition(current.StatusValue(), to) {
		return domain.ErrInvalidTransition
	}
	// still pending, so the provider guard excluded it
	return domain.ErrAuthorization
}

// Get returns a request visible to the actor
func (s *BookingService) Get(ctx context.Context, actor domain.Actor, id string) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	if !canView(actor, booking) {
		return nil, domain.ErrAuthorization
	}
	return s.withNames(ctx, booking), nil
}

func canView(actor domain.Actor, b *models.BookingRequest) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleMember:
		return b.MemberID == actor.UserID
	case domain.RoleProvider:
		if b.ProviderID == nil {
			return true
		}
		return *b.ProviderID == actor.UserID
	}
	return false
}

// List returns the requests relevant to the actor: a member's own requests, a
// provider's assigned and unassigned requests, or everything for an admin.
func (s *BookingService) List(ctx context.Context, actor domain.Actor, status string, params *pagination.Params) ([]*models.BookingResponse, int64, error) {
	filter := repositories.BookingFilter{Offset: params.Offset, Limit: params.Limit}

	if status != "" {
		st := domain.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
		if st != domain.BookingPending && !st.IsTerminal() {
			return nil, 0, domain.NewValidationError("Invalid status. Must be pending, accepted, or rejected")
		}
		filter.Status = string(st)
	}

	switch actor.Role {
	case domain.RoleMember:
		id := actor.UserID
		filter.MemberID = &id
	case domain.RoleProvider:
		id := actor.UserID
		filter.ProviderID = &id
		filter.IncludeUnassigned = true
	case domain.RoleAdmin:
	default:
		return nil, 0, domain.ErrAuthorization
	}

	items, total, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.withNamesAll(ctx, items), total, nil
}

// ListScheduled returns scheduled services for the actor
func (s *BookingService) ListScheduled(ctx context.Context, actor domain.Actor, params *pagination.Params) ([]*models.ScheduledService, int64, error) {
	filter := repositories.ScheduledFilter{Offset: params.Offset, Limit: params.Limit}

	switch actor.Role {
	case domain.RoleMember:
		id := actor.UserID
		filter.MemberID = &id
	case domain.RoleProvider:
		id := actor.UserID
		filter.ProviderID = &id
	case domain.RoleAdmin:
	default:
		return nil, 0, domain.ErrAuthorization
	}

	return s.bookingRepo.ListScheduled(ctx, filter)
}

// notify tells the member about the decision; failures are only logged
func (s *BookingService) notify(ctx context.Context, booking *models.BookingRequest) {
	if s.notifier == nil {
		return
	}
	member, err := s.userRepo.GetByID(ctx, booking.MemberID)
	if err != nil {
		logger.Warn(ctx, "Booking notification skipped", zap.String("booking_id", booking.ID), zap.Error(err))
		return
	}
	contact := member.Contact()
	if contact == "" {
		return
	}
	if err := s.notifier.NotifyBookingDecision(ctx, contact, booking); err != nil {
		logger.Warn(ctx, "Booking notification failed", zap.String("booking_id", booking.ID), zap.Error(err))
	}
}

func (s *BookingService) withNames(ctx context.Context, b *models.BookingRequest) *models.BookingResponse {
	return s.withNamesAll(ctx, []*models.BookingRequest{b})[0]
}

// withNamesAll converts requests to responses with member and provider display names
func (s *BookingService) withNamesAll(ctx context.Context, items []*models.BookingRequest) []*models.BookingResponse {
	ids := make([]uint, 0, len(items)*2)
	for _, b := range items {
		ids = append(ids, b.MemberID)
		if b.ProviderID != nil {
			ids = append(ids, *b.ProviderID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		logger.Warn(ctx, "Failed to load booking participants", zap.Error(err))
		users = map[uint]*models.User{}
	}

	out := make([]*models.BookingResponse, 0, len(items))
	for _, b := range items {
		resp := b.ToResponse()
		if u, ok := users[b.MemberID]; ok {
			resp.MemberName = u.DisplayName()
		}
		if b.ProviderID != nil {
			if u, ok := users[*b.ProviderID]; ok {
				resp.ProviderName = u.DisplayName()
			}
		}
		out = append(out, resp)
	}
	return out
}

// NormalizeTime accepts "HH:MM" or "hh:mm AM/PM" and returns "HH:MM"
func NormalizeTime(s string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", domain.NewValidationError("Invalid time. Expected HH:MM or hh:mm AM/PM")
}
