package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"swadhrama-api/internal/adapters/persistence/models"
	"swadhrama-api/internal/adapters/persistence/repositories"
	"swadhrama-api/internal/config"
	"swadhrama-api/internal/core/domain"
	"swadhrama-api/internal/pkg/jwt"
	"swadhrama-api/internal/pkg/logger"
	"swadhrama-api/internal/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	uow              repositories.UnitOfWork
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	otp              *OTPService
	cfg              *config.Config
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	otp *OTPService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		uow:              uow,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		otp:              otp,
		cfg:              cfg,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Password           string `json:"password"`
	FullName           string `json:"fullName"`
	LanguagePreference string `json:"languagePreference"`
	Role               string `json:"role"`
}

// LoginInput represents login input. Contact is an email address or phone number.
type LoginInput struct {
	Contact  string `json:"contact"`
	Password string `json:"password"`
}

// ResetPasswordInput represents a password reset confirmed by a PASSWORD_RESET OTP
type ResetPasswordInput struct {
	Contact     string `json:"contact"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileInput represents profile changes; nil fields are left untouched
type UpdateProfileInput struct {
	FullName           *string `json:"fullName"`
	LanguagePreference *string `json:"languagePreference"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

// RegisterResponse is returned after registration; the account stays PENDING
// until the REGISTRATION code is verified.
type RegisterResponse struct {
	User    *models.UserResponse `json:"user"`
	OTPSent bool                 `json:"otpSent"`
	Contact string               `json:"contact"`
}

// OTPSendResult reports the outcome of an OTP issue
type OTPSendResult struct {
	Sent      bool      `json:"sent"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register creates a PENDING account and issues a REGISTRATION code
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*RegisterResponse, error) {
	email := domain.NormalizeContact(input.Email)
	phone := domain.NormalizeContact(input.Phone)
	if email == "" && phone == "" {
		return nil, domain.NewValidationError("Email or phone is required")
	}
	if email != "" && !domain.IsEmail(email) {
		return nil, domain.NewValidationError("Invalid email address")
	}
	if !password.ValidatePassword(input.Password) {
		return nil, domain.NewValidationError("Password must be at least 8 characters")
	}

	role := domain.RoleMember
	if input.Role != "" {
		r, err := domain.ParseRole(input.Role)
		if err != nil {
			return nil, err
		}
		if r == domain.RoleAdmin {
			return nil, domain.NewValidationError("Cannot self-register as ADMIN")
		}
		role = r
	}

	if email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrUserExists
		}
	}
	if phone != "" {
		exists, err := s.userRepo.ExistsByPhone(ctx, phone)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrUserExists
		}
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	lang := strings.TrimSpace(input.LanguagePreference)
	if lang == "" {
		lang = "en"
	}

	user := &models.User{
		PasswordHash: hashed,
		Role:         string(role),
		Status:       string(domain.StatusPending),
		Profile: &models.Profile{
			FullName:           strings.TrimSpace(input.FullName),
			LanguagePreference: lang,
		},
	}
	if email != "" {
		user.Email = &email
	}
	if phone != "" {
		user.Phone = &phone
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "User registered", zap.Uint("user_id", user.ID), zap.String("role", user.Role))

	contact := user.Contact()
	resp := &RegisterResponse{User: user.ToResponse(), Contact: contact}

	if _, err := s.otp.Issue(ctx, contact, domain.PurposeRegistration); err != nil {
		// The account exists either way; the client can ask for a new code.
		logger.Warn(ctx, "Registration OTP not sent", zap.Uint("user_id", user.ID), zap.Error(err))
		return resp, nil
	}
	resp.OTPSent = true
	return resp, nil
}

// Login authenticates a verified user with a password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	contact := domain.NormalizeContact(input.Contact)
	if contact == "" || input.Password == "" {
		return nil, domain.NewValidationError("Contact and password are required")
	}

	user, err := s.userRepo.GetByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if err := checkCanSignIn(user); err != nil {
		return nil, err
	}

	return s.authenticate(ctx, user)
}

// SendOTP issues a code for the contact. A delivery failure is reported with
// Sent=false rather than an error since the challenge was stored.
func (s *AuthService) SendOTP(ctx context.Context, contact string, purpose domain.OTPPurpose) (*OTPSendResult, error) {
	challenge, err := s.otp.Issue(ctx, contact, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrDelivery) && challenge != nil {
			return &OTPSendResult{Sent: false, ExpiresAt: challenge.ExpiresAt}, nil
		}
		return nil, err
	}
	return &OTPSendResult{Sent: true, ExpiresAt: challenge.ExpiresAt}, nil
}

// VerifyOTP consumes a REGISTRATION or LOGIN code and signs the user in.
// REGISTRATION additionally marks the contact verified and activates the account.
func (s *AuthService) VerifyOTP(ctx context.Context, contact string, purpose domain.OTPPurpose, code string) (*AuthResponse, error) {
	if purpose == domain.PurposePasswordReset {
		return nil, domain.NewValidationError("Use the password reset endpoint for PASSWORD_RESET codes")
	}

	contact = domain.NormalizeContact(contact)
	var user *models.User

	_, err := s.otp.VerifyWith(ctx, contact, purpose, code, func(ctx context.Context) error {
		u, err := s.userRepo.GetByContact(ctx, contact)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		if domain.UserStatus(u.Status) == domain.StatusSuspended {
			return domain.ErrUserSuspended
		}
		if purpose == domain.PurposeRegistration {
			if err := s.userRepo.MarkVerified(ctx, u.ID); err != nil {
				return err
			}
			if u, err = s.userRepo.GetByID(ctx, u.ID); err != nil {
				return err
			}
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.authenticate(ctx, user)
}

// ResetPassword sets a new password after verifying a PASSWORD_RESET code
// and revokes every session of the user.
func (s *AuthService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	if !password.ValidatePassword(input.NewPassword) {
		return domain.NewValidationError("Password must be at least 8 characters")
	}
	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	contact := domain.NormalizeContact(input.Contact)
	var userID uint

	_, err = s.otp.VerifyWith(ctx, contact, domain.PurposePasswordReset, input.OTP, func(ctx context.Context) error {
		user, err := s.userRepo.GetByContact(ctx, contact)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
			return err
		}
		userID = user.ID
		return s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "Password reset", zap.Uint("user_id", userID))
	return nil
}

// IssueTokens creates an access/refresh pair, stores the refresh token hash
// and records the login time on the user.
func (s *AuthService) IssueTokens(ctx context.Context, user *models.User) (*domain.TokenPair, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
			return err
		}
		return s.userRepo.TouchLastLogin(ctx, user.ID, now)
	})
	if err != nil {
		return nil, err
	}

	user.LastLoginAt = &now
	return tokens, nil
}

// Refresh rotates a refresh token. Presenting a revoked token revokes every
// session of its owner.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	tokenHash := password.HashToken(refreshToken)
	stored, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if stored.UserID != claims.UserID {
		return nil, domain.ErrTokenInvalid
	}
	if stored.IsRevoked() {
		logger.Warn(ctx, "Revoked refresh token presented, revoking all sessions", zap.Uint("user_id", stored.UserID))
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, stored.UserID); err != nil {
			return nil, err
		}
		return nil, domain.ErrTokenRevoked
	}
	if stored.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if err := checkCanSignIn(user); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context) error {
		n, err := s.refreshTokenRepo.Revoke(ctx, stored.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrTokenRevoked
		}
		return s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "Token refreshed", zap.Uint("user_id", user.ID))

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken))
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}
	logger.Info(ctx, "All sessions revoked", zap.Uint("user_id", userID))
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// Me returns the current user with profile
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// CurrentRole returns the role stored for userID, ignoring what an older access
// token claims. Suspended users get ErrUserSuspended.
func (s *AuthService) CurrentRole(ctx context.Context, userID uint) (domain.Role, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", err
	}
	if domain.UserStatus(user.Status) == domain.StatusSuspended {
		return "", domain.ErrUserSuspended
	}
	return domain.Role(user.Role), nil
}

// UpdateProfile changes the caller's full name or language preference
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	profile := models.Profile{UserID: userID, LanguagePreference: "en"}
	if user.Profile != nil {
		profile.FullName = user.Profile.FullName
		profile.LanguagePreference = user.Profile.LanguagePreference
	}
	if input.FullName != nil {
		profile.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.LanguagePreference != nil {
		lang := strings.TrimSpace(*input.LanguagePreference)
		if lang == "" || len(lang) > 10 {
			return nil, domain.NewValidationError("Invalid language preference")
		}
		profile.LanguagePreference = lang
	}

	if err := s.userRepo.UpsertProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

func (s *AuthService) authenticate(ctx context.Context, user *models.User) (*AuthResponse, error) {
	tokens, err := s.IssueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "User signed in", zap.Uint("user_id", user.ID), zap.String("role", user.Role))

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// checkCanSignIn enforces account state for password login and refresh
func checkCanSignIn(user *models.User) error {
	if domain.UserStatus(user.Status) == domain.StatusSuspended {
		return domain.ErrUserSuspended
	}
	if !user.EmailVerified {
		return domain.ErrEmailNotVerified
	}
	return nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token hash in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, token)
}
