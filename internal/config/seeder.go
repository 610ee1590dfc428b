package config

import (
	"errors"
	"log"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/pkg/password"

	"gorm.io/gorm"
)

// devAdminPassword is used only in dev mode when SEED_ADMIN_PASSWORD is unset
const devAdminPassword = "admin123456"

// demoPassword is shared by the demo provider and member accounts
const demoPassword = "password123"

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

type seedAccount struct {
	email    string
	fullName string
	role     domain.Role
	password string
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if s.cfg.Seed.DemoUsers {
		if err := s.seedDemoUsers(); err != nil {
			return err
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the first admin account if none exists
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	pass := s.cfg.Seed.AdminPassword
	if pass == "" {
		if !s.cfg.IsDev() {
			return errors.New("SEED_ADMIN_PASSWORD is not set")
		}
		pass = devAdminPassword
	}

	return s.ensureAccount(seedAccount{
		email:    s.cfg.Seed.AdminEmail,
		fullName: "Administrator",
		role:     domain.RoleAdmin,
		password: pass,
	})
}

// seedDemoUsers provisions a provider and a member for local testing
func (s *Seeder) seedDemoUsers() error {
	accounts := []seedAccount{
		{email: "provider@example.com", fullName: "Pandit Sharma", role: domain.RoleProvider, password: demoPassword},
		{email: "test@example.com", fullName: "Test User", role: domain.RoleMember, password: demoPassword},
	}
	for _, a := range accounts {
		if err := s.ensureAccount(a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) ensureAccount(a seedAccount) error {
	var existing models.User
	err := s.db.Where("email = ?", a.email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(a.password)
	if err != nil {
		return err
	}

	email := a.email
	user := &models.User{
		Email:         &email,
		PasswordHash:  hashed,
		Role:          string(a.role),
		Status:        string(domain.StatusActive),
		EmailVerified: true,
		Profile: &models.Profile{
			FullName:           a.fullName,
			LanguagePreference: "en",
		},
	}
	if err := s.db.Create(user).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %s account: %s", a.role, a.email)
	return nil
}
