package services

import (
	"context"
	"errors"

	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/adapters/persistence/repositories"
	"microcredit-api/internal/config"
	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/pkg/jwt"
	"microcredit-api/internal/pkg/logger"
	"microcredit-api/internal/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user account is inactive")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tenantRepo       repositories.TenantRepository
	bus              *StatusBus
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tenantRepo repositories.TenantRepository,
	bus *StatusBus,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tenantRepo:       tenantRepo,
		bus:              bus,
		cfg:              cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	TenantID  string `json:"tenantId" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,min=2"`
	LastName  string `json:"lastName" validate:"required,min=2"`
	Phone     string `json:"phone" validate:"required,min=9"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

// Register creates an unverified account inside an active tenant
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	address := NormalizeEmail(input.Email)
	if !emailPattern.MatchString(address) {
		return nil, domain.ErrInvalidInput
	}
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	tenant, err := s.tenantRepo.GetByID(ctx, input.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	if !tenant.IsActive {
		return nil, domain.ErrTenantNotFound
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, address)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		TenantID:  tenant.ID,
		Email:     address,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Password:  hashedPassword,
		Role:      string(domain.RoleUser),
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "✅ User registered", zap.String("email", user.Email), zap.String("tenant", user.TenantID))
	s.publish(user)
	return resp, nil
}

// Login authenticates a user
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "✅ User logged in", zap.String("email", user.Email))
	s.publish(user)
	return resp, nil
}

// RefreshToken rotates the refresh token and issues a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	tokenHash := password.HashToken(refreshToken)

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}

	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}
	if storedToken.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return nil, err
	}

	resp, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "token refreshed", zap.Uint("user_id", user.ID))
	return resp, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string, userID uint) error {
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}

	logger.Info(ctx, "✅ User logged out", zap.Uint("user_id", userID))
	if userID != 0 {
		s.bus.Publish(domain.AuthStatus{UserID: userID})
	}
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	logger.Info(ctx, "✅ All sessions revoked", zap.Uint("user_id", userID))
	s.bus.Publish(domain.AuthStatus{UserID: userID})
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Status returns the authentication state the application wizard reads
func (s *AuthService) Status(ctx context.Context, userID uint) (domain.AuthStatus, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return domain.AuthStatus{}, err
	}
	return statusOf(user), nil
}

// EmailVerified marks the account owning address as verified and tells
// the wizard sessions about it. Addresses without an account are ignored.
func (s *AuthService) EmailVerified(ctx context.Context, address string) {
	user, err := s.userRepo.MarkEmailVerified(ctx, address)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error(ctx, "failed to mark email verified", zap.String("email", address), zap.Error(err))
		}
		return
	}
	s.publish(user)
}

func statusOf(user *models.User) domain.AuthStatus {
	return domain.AuthStatus{
		UserID:        user.ID,
		Authenticated: user.IsActive,
		Verified:      user.EmailVerified,
	}
}

func (s *AuthService) publish(user *models.User) {
	if s.bus != nil {
		s.bus.Publish(statusOf(user))
	}
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*AuthResponse, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.TenantID,
		user.Email,
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

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
