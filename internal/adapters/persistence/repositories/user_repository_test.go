package repositories

import (
	"context"
	"testing"
	"time"

	"swadhrama-api/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo UserRepository, email, phone, role, status, name string) *models.User {
	t.Helper()
	u := &models.User{
		PasswordHash: "x",
		Role:         role,
		Status:       status,
		Profile:      &models.Profile{FullName: name, LanguagePreference: "en"},
	}
	if email != "" {
		u.Email = strPtr(email)
	}
	if phone != "" {
		u.Phone = strPtr(phone)
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateRequiresContact(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &models.User{PasswordHash: "x", Role: "MEMBER", Status: "ACTIVE"})
	assert.ErrorIs(t, err, models.ErrNoContact)
}

func TestUserRepository_GetByContactLoadsProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	seedUser(t, repo, "pandit@example.com", "", "PROVIDER", "ACTIVE", "Pandit Sharma")
	seedUser(t, repo, "", "+919876543210", "MEMBER", "PENDING", "Ravi")

	u, err := repo.GetByContact(context.Background(), "pandit@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Pandit Sharma", u.FullName())

	u, err = repo.GetByContact(context.Background(), "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", u.DisplayName())
}

func TestUserRepository_ListFilterAndSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, repo, "provider@example.com", "", "PROVIDER", "ACTIVE", "Pandit Sharma")
	seedUser(t, repo, "test@example.com", "", "MEMBER", "ACTIVE", "Test User")
	seedUser(t, repo, "", "+919812345678", "MEMBER", "PENDING", "Lakshmi Iyer")

	users, total, err := repo.List(ctx, UserFilter{Role: "MEMBER"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)

	users, total, err = repo.List(ctx, UserFilter{Search: "SHARMA"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "provider@example.com", *users[0].Email)

	_, total, err = repo.List(ctx, UserFilter{Search: "98123"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = repo.List(ctx, UserFilter{Role: "MEMBER", Status: "PENDING", Search: "lakshmi"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestUserRepository_MarkVerifiedActivatesPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	pending := seedUser(t, repo, "a@x.com", "", "MEMBER", "PENDING", "A")
	suspended := seedUser(t, repo, "b@x.com", "", "MEMBER", "SUSPENDED", "B")

	require.NoError(t, repo.MarkVerified(ctx, pending.ID))
	require.NoError(t, repo.MarkVerified(ctx, suspended.ID))

	got, err := repo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.Equal(t, "ACTIVE", got.Status)

	got, err = repo.GetByID(ctx, suspended.ID)
	require.NoError(t, err)
	assert.Equal(t, "SUSPENDED", got.Status, "suspension is not lifted by verification")
}

func TestUserRepository_DeleteCascadesProfileAndTokens(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	tokens := NewRefreshTokenRepository(db)
	ctx := context.Background()

	u := seedUser(t, repo, "gone@x.com", "", "MEMBER", "ACTIVE", "Gone")
	require.NoError(t, tokens.Create(ctx, &models.RefreshToken{UserID: u.ID, TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour)}))

	n, err := repo.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var profiles, rts int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", u.ID).Count(&profiles).Error)
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("user_id = ?", u.ID).Count(&rts).Error)
	assert.Zero(t, profiles)
	assert.Zero(t, rts)

	n, err = repo.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserRepository_UpsertProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, repo, "p@x.com", "", "MEMBER", "ACTIVE", "Old Name")
	require.NoError(t, repo.UpsertProfile(ctx, &models.Profile{UserID: u.ID, FullName: "New Name", LanguagePreference: "te"}))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Profile.FullName)
	assert.Equal(t, "te", got.Profile.LanguagePreference)
}
