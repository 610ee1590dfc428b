package models

import (
	"time"

	"swadhrama-api/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Bookings
// ============================================================

// BookingRequest represents booking_requests table.
// Rows are never deleted and carry no FK to users so history survives account removal.
type BookingRequest struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	MemberID      uint       `gorm:"not null;index" json:"memberId"`
	ProviderID    *uint      `gorm:"index" json:"providerId"`
	ServiceType   string     `gorm:"size:30;not null" json:"serviceType"`
	ServiceName   string     `gorm:"size:200" json:"serviceName"`
	RequestedDate string     `gorm:"size:10;not null" json:"requestedDate"`
	RequestedTime string     `gorm:"size:5;not null" json:"requestedTime"`
	Address       string     `gorm:"type:text;not null" json:"address"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	Status        string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RespondedAt   *time.Time `json:"respondedAt"`
	RespondedBy   *uint      `json:"respondedBy"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (BookingRequest) TableName() string {
	return "booking_requests"
}

// BeforeCreate assigns a uuid when the caller did not
func (b *BookingRequest) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// StatusValue returns the typed status
func (b *BookingRequest) StatusValue() domain.BookingStatus {
	return domain.BookingStatus(b.Status)
}

// ToScheduled projects an accepted request into its scheduled service
func (b *BookingRequest) ToScheduled() *ScheduledService {
	return &ScheduledService{
		ID:          b.ID,
		MemberID:    b.MemberID,
		ProviderID:  b.ProviderID,
		ServiceType: b.ServiceType,
		ServiceName: b.ServiceName,
		Date:        b.RequestedDate,
		Time:        b.RequestedTime,
		Address:     b.Address,
	}
}

// BookingResponse DTO
type BookingResponse struct {
	ID            string     `json:"id"`
	MemberID      uint       `json:"memberId"`
	MemberName    string     `json:"memberName,omitempty"`
	ProviderID    *uint      `json:"providerId"`
	ProviderName  string     `json:"providerName,omitempty"`
	ServiceType   string     `json:"serviceType"`
	ServiceName   string     `json:"serviceName"`
	RequestedDate string     `json:"requestedDate"`
	RequestedTime string     `json:"requestedTime"`
	Address       string     `json:"address"`
	Notes         string     `json:"notes,omitempty"`
	Status        string     `json:"status"`
	RespondedAt   *time.Time `json:"respondedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (b *BookingRequest) ToResponse() *BookingResponse {
	resp := &BookingResponse{
		ID:            b.ID,
		MemberID:      b.MemberID,
		ProviderID:    b.ProviderID,
		ServiceType:   b.ServiceType,
		ServiceName:   b.ServiceName,
		RequestedDate: b.RequestedDate,
		RequestedTime: b.RequestedTime,
		Address:       b.Address,
		Notes:         b.Notes,
		Status:        b.Status,
		RespondedAt:   b.RespondedAt,
		CreatedAt:     b.CreatedAt,
	}
	return resp
}

// ScheduledService represents scheduled_services table.
// ID equals the originating BookingRequest ID.
type ScheduledService struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	MemberID    uint      `gorm:"not null;index" json:"memberId"`
	ProviderID  *uint     `gorm:"index" json:"providerId"`
	ServiceType string    `gorm:"size:30;not null" json:"serviceType"`
	ServiceName string    `gorm:"size:200" json:"serviceName"`
	Date        string    `gorm:"size:10;not null;index" json:"date"`
	Time        string    `gorm:"size:5;not null" json:"time"`
	Address     string    `gorm:"type:text;not null" json:"address"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (ScheduledService) TableName() string {
	return "scheduled_services"
}
