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
	"shoe-store/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Message
}

type userFixture struct {
	router  chi.Router
	repo    *mockUserRepository
	handler *UserHandler
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	handler, _, repo := newTestUserHandler()
	router := chi.NewRouter()
	handler.RegisterRoutes(router, middleware.AuthMiddleware("test-secret", zap.NewNop()))
	return &userFixture{router: router, repo: repo, handler: handler}
}

// signup registers an account, optionally promotes it and returns an access token
func (f *userFixture) signup(t *testing.T, email, role string) (string, *domain.User) {
	t.Helper()
	w := serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/register", RegisterRequest{
		Email:    email,
		Password: "Sneakers123",
		FullName: "Test User",
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	user, err := f.repo.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	user.Role = role

	w = serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/login", LoginRequest{Email: email, Password: "Sneakers123"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken, user
}

func TestUserHandler_RegisterAndLoginStatuses(t *testing.T) {
	f := newUserFixture(t)
	f.signup(t, "buyer@shop.com", domain.RoleCustomer)

	w := serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/register", RegisterRequest{
		Email: "BUYER@shop.com", Password: "Sneakers123", FullName: "Again",
	}))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/login", LoginRequest{Email: "buyer@shop.com", Password: "wrong-pass"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/login", LoginRequest{Email: "nobody@shop.com", Password: "Sneakers123"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/refresh", RefreshRequest{RefreshToken: "not-a-token"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/register", RegisterRequest{
		Email: "long@shop.com", Password: strings.Repeat("a", 73), FullName: "Long",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code, "bcrypt input limit is a client error")

	w = serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/register", RegisterRequest{
		Email: "wide@shop.com", Password: strings.Repeat("é", 40), FullName: "Wide",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code, "80 bytes in 40 characters")
}

func TestUserHandler_ProfileAndPassword(t *testing.T) {
	f := newUserFixture(t)
	token, _ := f.signup(t, "buyer@shop.com", domain.RoleCustomer)

	w := serve(f.router, jsonRequest(t, http.MethodGet, "/api/users/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(f.router, withBearer(jsonRequest(t, http.MethodPut, "/api/users/profile", ProfileRequest{
		FullName: "Lan Nguyen",
		Phone:    "0901234567",
		Address:  "12 Le Loi, District 1",
	}), token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Lan Nguyen", profile.FullName)
	assert.Equal(t, "0901234567", profile.Phone)

	w = serve(f.router, withBearer(jsonRequest(t, http.MethodPut, "/api/users/password", ChangePasswordRequest{
		CurrentPassword: "not-my-password",
		NewPassword:     "NewSneakers456",
	}), token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(f.router, withBearer(jsonRequest(t, http.MethodPut, "/api/users/password", ChangePasswordRequest{
		CurrentPassword: "Sneakers123",
		NewPassword:     "NewSneakers456",
	}), token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/login", LoginRequest{Email: "buyer@shop.com", Password: "NewSneakers456"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_AdminLock(t *testing.T) {
	f := newUserFixture(t)
	customerToken, customer := f.signup(t, "buyer@shop.com", domain.RoleCustomer)
	adminToken, admin := f.signup(t, "owner@shop.com", domain.RoleAdmin)

	w := serve(f.router, withBearer(jsonRequest(t, http.MethodGet, "/api/users", nil), customerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(f.router, withBearer(jsonRequest(t, http.MethodGet, "/api/users?q=buyer", nil), adminToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page PageResponse[UserProfile]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, "buyer@shop.com", page.Items[0].Email)

	locked := true
	w = serve(f.router, withBearer(jsonRequest(t, http.MethodPatch, "/api/users/"+admin.ID.String()+"/lock", LockRequest{Locked: &locked}), adminToken))
	assert.Equal(t, http.StatusForbidden, w.Code, "admins cannot lock themselves")

	w = serve(f.router, withBearer(jsonRequest(t, http.MethodPatch, "/api/users/"+customer.ID.String()+"/lock", LockRequest{Locked: &locked}), adminToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/login", LoginRequest{Email: "buyer@shop.com", Password: "Sneakers123"}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "account is locked", errorMessage(t, w))

	w = serve(f.router, withBearer(jsonRequest(t, http.MethodGet, "/api/users/not-a-uuid", nil), adminToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_ResetWithoutStoreIsUnavailable(t *testing.T) {
	f := newUserFixture(t)

	w := serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/forgot-password", ForgotPasswordRequest{Email: "buyer@shop.com"}))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(f.router, jsonRequest(t, http.MethodPost, "/api/users/reset-password", ResetPasswordRequest{
		Email: "buyer@shop.com", Code: "12ab", NewPassword: "Sneakers999",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code, "malformed code fails validation")
}
