package transport

import (
	"net/http"

	"shoe-store/internal/domain"
	"shoe-store/internal/middleware"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Address  string `json:"address" validate:"omitempty,max=255"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ProfileRequest updates the contact fields of the caller
type ProfileRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Address  string `json:"address" validate:"omitempty,max=255"`
}

// ChangePasswordRequest replaces the password of the caller
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// ForgotPasswordRequest asks for a reset code
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password with a reset code
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// LockRequest locks or unlocks an account
type LockRequest struct {
	Locked *bool `json:"locked" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserProfile `json:"user"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// UserProfile represents user profile data
type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
	IsLocked  bool   `json:"is_locked"`
}

func newUserProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:        user.ID.String(),
		Email:     user.Email,
		FullName:  user.FullName,
		Phone:     user.Phone,
		Address:   user.Address,
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
		IsLocked:  user.IsLocked,
	}
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService    service.UserService
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger, maxUploadBytes int64) *UserHandler {
	return &UserHandler{
		userService:    userService,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Post("/profile/avatar", h.UploadAvatar)
			r.Put("/password", h.ChangePassword)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			adminOnly(r, authMiddleware, h.logger)
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Patch("/{id}/lock", h.SetLocked)
		})
	})
}

// Register handles user registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to register user")
		return
	}

	h.logger.Info("User registered successfully", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, newUserProfile(user))
}

// Login handles user authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	accessToken, refreshToken, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to login")
		return
	}

	h.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         newUserProfile(user),
	})
}

// Logout revokes the given refresh token
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if err := h.userService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

// RefreshToken handles token refresh
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	newAccessToken, err := h.userService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to refresh token")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{AccessToken: newAccessToken})
}

// GetProfile returns the caller's profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get user profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}

// UpdateProfile changes name, phone and address of the caller
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	var req ProfileRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, service.ProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}

// UploadAvatar stores a new avatar image for the caller
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	file, ok := imageFile(w, r, h.logger, "image", h.maxUploadBytes)
	if !ok {
		return
	}
	defer file.Close()

	user, err := h.userService.UpdateAvatar(r.Context(), userID, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update avatar")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}

// ChangePassword replaces the caller's password after checking the current one
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, h.logger, err, "failed to change password")
		return
	}

	h.logger.Info("Password changed", zap.String("user_id", userID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "password changed"})
}

// ForgotPassword sends a reset code. The answer does not reveal whether the email exists.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if err := h.userService.ForgotPassword(r.Context(), req.Email); err != nil {
		respondServiceError(w, h.logger, err, "failed to send reset code")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{
		Message: "if the email is registered, a reset code has been sent",
	})
}

// ResetPassword consumes a reset code and sets a new password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondServiceError(w, h.logger, err, "failed to reset password")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "password has been reset"})
}

// ListUsers pages through accounts, optionally filtered by q
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	users, total, err := h.userService.ListUsers(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list users")
		return
	}

	profiles := make([]UserProfile, len(users))
	for i, user := range users {
		profiles[i] = newUserProfile(user)
	}
	middleware.RespondWithJSON(w, http.StatusOK, newPageResponse(profiles, total, page))
}

// GetUser returns one account
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}

// SetLocked locks or unlocks an account
func (h *UserHandler) SetLocked(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req LockRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	user, err := h.userService.SetLocked(r.Context(), actorID, id, *req.Locked)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update account lock")
		return
	}

	h.logger.Info("Account lock changed",
		zap.String("user_id", user.ID.String()),
		zap.Bool("locked", user.IsLocked),
		zap.String("by", actorID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, newUserProfile(user))
}
