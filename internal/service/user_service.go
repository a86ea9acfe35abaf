package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"
	"shoe-store/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// MaxPasswordBytes is the longest input bcrypt accepts
	MaxPasswordBytes = 72

	// Default token lifetimes
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour

	DefaultResetCodeTTL = 15 * time.Minute
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrAccountLocked       = errors.New("account is locked")
	ErrInvalidResetCode    = errors.New("invalid or expired reset code")
	ErrCannotLockSelf      = errors.New("administrators cannot lock their own account")
	ErrResetNotConfigured  = errors.New("password reset is not configured")
	ErrUploadNotConfigured = errors.New("image uploads are not configured")
)

// RegisterInput holds the fields of a new account
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
}

// ProfileInput holds the editable contact fields of an account
type ProfileInput struct {
	FullName string
	Phone    string
	Address  string
}

// UserService defines the interface for user business logic
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *domain.User, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	UpdateAvatar(ctx context.Context, userID uuid.UUID, image io.Reader) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	ListUsers(ctx context.Context, query string, page repository.Page) ([]*domain.User, int, error)
	SetLocked(ctx context.Context, actorID, userID uuid.UUID, locked bool) (*domain.User, error)
}

// Claims represents the JWT claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

type userService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	accessTTL        time.Duration
	refreshTTL       time.Duration
	resetCodes       ResetCodeStore
	resetCodeTTL     time.Duration
	notifier         Notifier
	images           storage.ImageStore
	logger           *zap.Logger
}

// UserServiceOption configures optional collaborators of the user service
type UserServiceOption func(*userService)

// WithTokenExpiry overrides the default token lifetimes
func WithTokenExpiry(access, refresh time.Duration) UserServiceOption {
	return func(s *userService) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

// WithPasswordReset enables forgot/reset password
func WithPasswordReset(store ResetCodeStore, notifier Notifier, ttl time.Duration) UserServiceOption {
	return func(s *userService) {
		s.resetCodes = store
		s.notifier = notifier
		if ttl > 0 {
			s.resetCodeTTL = ttl
		}
	}
}

// WithAvatarStore enables avatar uploads
func WithAvatarStore(images storage.ImageStore) UserServiceOption {
	return func(s *userService) {
		s.images = images
	}
}

// WithUserLogger sets the logger
func WithUserLogger(logger *zap.Logger) UserServiceOption {
	return func(s *userService) {
		s.logger = logger
	}
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtSecret string,
	opts ...UserServiceOption,
) UserService {
	s := &userService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        jwtSecret,
		accessTTL:        AccessTokenExpiration,
		refreshTTL:       RefreshTokenExpiration,
		resetCodeTTL:     DefaultResetCodeTTL,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new customer account with hashed password
func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, repository.ErrUserAlreadyExists
	}

	hashedPassword, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns JWT tokens
func (s *userService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *domain.User, err error) {
	user, err = s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.verifyPassword(user.PasswordHash, password); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	// Lock state is only revealed to callers holding the right password
	if user.IsLocked {
		return "", "", nil, ErrAccountLocked
	}

	accessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// Logout invalidates the refresh token
func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			// Token doesn't exist, consider it already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenRevoked) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user.IsLocked {
		return "", ErrAccountLocked
	}

	newAccessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.FullName = strings.TrimSpace(input.FullName)
	user.Phone = strings.TrimSpace(input.Phone)
	user.Address = strings.TrimSpace(input.Address)
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword requires the current password and signs the user out elsewhere
func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.verifyPassword(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	return s.setPassword(ctx, user.ID, newPassword)
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uuid.UUID, image io.Reader) (*domain.User, error) {
	if s.images == nil {
		return nil, ErrUploadNotConfigured
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	previous := user.AvatarURL
	url, err := s.images.Save(ctx, storage.FolderAvatars, image)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetAvatar(ctx, user.ID, url); err != nil {
		_ = s.images.Delete(ctx, url)
		return nil, fmt.Errorf("failed to set avatar: %w", err)
	}

	if previous != "" && previous != url {
		if err := s.images.Delete(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete previous avatar", zap.String("url", previous), zap.Error(err))
		}
	}

	user.AvatarURL = url
	return user, nil
}

// ForgotPassword issues a reset code. Unknown emails succeed silently.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	if s.resetCodes == nil || s.notifier == nil {
		return ErrResetNotConfigured
	}

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	if err := s.resetCodes.Save(ctx, user.Email, code, s.resetCodeTTL); err != nil {
		return err
	}

	if err := s.notifier.SendPasswordResetCode(ctx, user, code); err != nil {
		return fmt.Errorf("failed to send reset code: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset code and sets a new password
func (s *userService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if s.resetCodes == nil {
		return ErrResetNotConfigured
	}

	email = normalizeEmail(email)
	ok, err := s.resetCodes.Consume(ctx, email, strings.TrimSpace(code))
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetCode
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetCode
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	return s.setPassword(ctx, user.ID, newPassword)
}

func (s *userService) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

func (s *userService) ListUsers(ctx context.Context, query string, page repository.Page) ([]*domain.User, int, error) {
	return s.userRepo.List(ctx, query, page)
}

// SetLocked locks or unlocks an account. Locking ends its sessions.
func (s *userService) SetLocked(ctx context.Context, actorID, userID uuid.UUID, locked bool) (*domain.User, error) {
	if locked && actorID == userID {
		return nil, ErrCannotLockSelf
	}

	if err := s.userRepo.SetLocked(ctx, userID, locked); err != nil {
		return nil, err
	}

	if locked {
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to revoke sessions: %w", err)
		}
	}

	return s.userRepo.FindByID(ctx, userID)
}

// hashPassword hashes a password using bcrypt. bcrypt reads at most 72 bytes.
func (s *userService) hashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, MaxPasswordBytes)
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// verifyPassword verifies a password against a bcrypt hash
func (s *userService) verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// generateAccessToken generates a JWT access token with user ID and role claims
func (s *userService) generateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// generateRefreshToken generates a refresh token and stores it in the database
func (s *userService) generateRefreshToken(ctx context.Context, user *domain.User) (string, error) {
	tokenString := uuid.New().String()

	refreshToken := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(s.refreshTTL),
		CreatedAt: time.Now(),
		Revoked:   false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
