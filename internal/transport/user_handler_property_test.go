package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"
	"shoe-store/internal/service"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[strings.ToLower(email)]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	stored, err := m.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}
	stored.FullName, stored.Phone, stored.Address = user.FullName, user.Phone, user.Address
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepository) SetAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.AvatarURL = avatarURL
	return nil
}

func (m *mockUserRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.IsLocked = locked
	return nil
}

func (m *mockUserRepository) List(ctx context.Context, query string, page repository.Page) ([]*domain.User, int, error) {
	var users []*domain.User
	for _, user := range m.users {
		if query == "" || strings.Contains(user.Email, strings.ToLower(query)) {
			users = append(users, user)
		}
	}
	return users, len(users), nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func newTestUserHandler() (*UserHandler, service.UserService, *mockUserRepository) {
	userRepo := newMockUserRepository()
	userService := service.NewUserService(userRepo, newMockRefreshTokenRepository(), "test-secret")
	return NewUserHandler(userService, zap.NewNop(), 0), userService, userRepo
}

// Feature: shoe-store, Property: Invalid registration data is rejected
func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("registration with invalid data returns validation errors", prop.ForAll(
		func(invalidCase int) bool {
			handler, _, _ := newTestUserHandler()

			var reqBody RegisterRequest

			// Generate different invalid cases
			switch invalidCase % 4 {
			case 0:
				// Empty email
				reqBody = RegisterRequest{
					Email:    "",
					Password: "ValidPass123",
					FullName: "Minh Tran",
				}
			case 1:
				// Invalid email format
				reqBody = RegisterRequest{
					Email:    "not-an-email",
					Password: "ValidPass123",
					FullName: "Minh Tran",
				}
			case 2:
				// Short password (less than 8 characters)
				reqBody = RegisterRequest{
					Email:    "test@example.com",
					Password: "short",
					FullName: "Minh Tran",
				}
			case 3:
				// Missing required fields
				reqBody = RegisterRequest{
					Email:    "test@example.com",
					Password: "ValidPass123",
					// FullName missing
				}
			}

			// Create request
			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Execute
			handler.Register(w, req)

			// Verify response is 400 Bad Request or 409 Conflict
			if w.Code != http.StatusBadRequest && w.Code != http.StatusConflict {
				t.Logf("FAIL: Expected 400 or 409 status code, got %d", w.Code)
				return false
			}

			// Verify response contains error structure
			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("FAIL: Could not decode error response: %v", err)
				return false
			}

			// Verify error field exists
			if _, exists := response["error"]; !exists {
				t.Logf("FAIL: Response missing 'error' field")
				return false
			}

			return true
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: shoe-store, Property: Successful registration returns profile data
func TestProperty_SuccessfulRegistrationReturnsProfileData(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("successful registration returns user profile with all fields", prop.ForAll(
		func(email string, password string, fullName string) bool {
			handler, _, _ := newTestUserHandler()

			// Create request
			reqBody := RegisterRequest{
				Email:    email,
				Password: password,
				FullName: fullName,
			}
			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Execute
			handler.Register(w, req)

			// Skip if registration failed (e.g., duplicate email from previous iteration)
			if w.Code != http.StatusCreated {
				return true
			}

			// Verify response is 201 Created
			if w.Code != http.StatusCreated {
				t.Logf("FAIL: Expected 201 status code, got %d", w.Code)
				return false
			}

			// Decode response
			var profile UserProfile
			if err := json.NewDecoder(w.Body).Decode(&profile); err != nil {
				t.Logf("FAIL: Could not decode response: %v", err)
				return false
			}

			// Verify all profile fields are present
			if profile.ID == "" {
				t.Logf("FAIL: Profile missing ID")
				return false
			}

			if profile.Email != email {
				t.Logf("FAIL: Email mismatch. Expected %s, got %s", email, profile.Email)
				return false
			}

			if profile.FullName != fullName {
				t.Logf("FAIL: FullName mismatch. Expected %s, got %s", fullName, profile.FullName)
				return false
			}

			if profile.Role != domain.RoleCustomer {
				t.Logf("FAIL: Expected customer role, got %q", profile.Role)
				return false
			}

			// Verify ID is a valid UUID
			if _, err := uuid.Parse(profile.ID); err != nil {
				t.Logf("FAIL: Profile ID is not a valid UUID: %v", err)
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15} [A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: shoe-store, Property: Valid login returns both tokens
func TestProperty_ValidLoginReturnsBothTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid login returns access token and refresh token", prop.ForAll(
		func(email string, password string, fullName string) bool {
			handler, userService, _ := newTestUserHandler()

			// First, register the user
			_, err := userService.Register(context.Background(), service.RegisterInput{
				Email:    email,
				Password: password,
				FullName: fullName,
			})
			if err != nil {
				return true // Skip if registration fails
			}

			// Create login request
			loginReq := LoginRequest{
				Email:    email,
				Password: password,
			}
			body, _ := json.Marshal(loginReq)
			req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Execute login
			handler.Login(w, req)

			// Verify response is 200 OK
			if w.Code != http.StatusOK {
				t.Logf("FAIL: Expected 200 status code, got %d", w.Code)
				return false
			}

			// Decode response
			var loginResp LoginResponse
			if err := json.NewDecoder(w.Body).Decode(&loginResp); err != nil {
				t.Logf("FAIL: Could not decode login response: %v", err)
				return false
			}

			// Verify access token is present and not empty
			if loginResp.AccessToken == "" {
				t.Logf("FAIL: Access token is empty")
				return false
			}

			// Verify refresh token is present and not empty
			if loginResp.RefreshToken == "" {
				t.Logf("FAIL: Refresh token is empty")
				return false
			}

			// Verify user profile is included
			if loginResp.User.ID == "" {
				t.Logf("FAIL: User profile missing ID")
				return false
			}

			if loginResp.User.Email != email {
				t.Logf("FAIL: User email mismatch")
				return false
			}

			// Verify access token is valid
			claims, err := userService.ValidateToken(loginResp.AccessToken)
			if err != nil {
				t.Logf("FAIL: Access token validation failed: %v", err)
				return false
			}

			// Verify claims contain user information
			if claims.UserID.String() != loginResp.User.ID {
				t.Logf("FAIL: Token user ID doesn't match profile ID")
				return false
			}

			// Verify refresh token can be used
			newAccessToken, err := userService.RefreshToken(context.Background(), loginResp.RefreshToken)
			if err != nil {
				t.Logf("FAIL: Refresh token is not valid: %v", err)
				return false
			}

			if newAccessToken == "" {
				t.Logf("FAIL: Refresh token returned empty access token")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15} [A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
