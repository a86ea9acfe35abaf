package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/middleware"
	"shoe-store/internal/repository"
	"shoe-store/internal/service"
	"shoe-store/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PageResponse is the envelope of every paginated list
type PageResponse[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func newPageResponse[T any](items []T, total int, page repository.Page) PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{Items: items, Total: total, Page: page.Number, PageSize: page.Size}
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// ActiveRequest toggles an is_active flag
type ActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type statusRule struct {
	status int
	errs   []error
}

// Order matters: the first matching rule wins.
var statusRules = []statusRule{
	{http.StatusNotFound, []error{
		repository.ErrUserNotFound, repository.ErrCategoryNotFound, repository.ErrProductNotFound,
		repository.ErrVariantNotFound, repository.ErrBannerNotFound, repository.ErrCartItemNotFound,
		repository.ErrVoucherNotFound, repository.ErrOrderNotFound, repository.ErrReviewNotFound,
	}},
	{http.StatusConflict, []error{
		repository.ErrUserAlreadyExists, repository.ErrCategoryAlreadyExists, repository.ErrCategoryInUse,
		repository.ErrVariantAlreadyExists, repository.ErrVoucherCodeExists, repository.ErrReviewAlreadyExists,
		service.ErrInsufficientStock, service.ErrInvalidStatusTransition, service.ErrOrderNotCancellable,
	}},
	{http.StatusUnauthorized, []error{
		service.ErrInvalidCredentials, service.ErrInvalidToken, service.ErrTokenExpired,
	}},
	{http.StatusForbidden, []error{
		service.ErrForbidden, service.ErrAccountLocked, service.ErrCannotLockSelf,
	}},
	{http.StatusRequestEntityTooLarge, []error{storage.ErrImageTooLarge}},
	{http.StatusServiceUnavailable, []error{
		service.ErrResetNotConfigured, service.ErrUploadNotConfigured,
	}},
	{http.StatusBadRequest, []error{
		service.ErrInvalidInput, service.ErrVariantUnavailable, service.ErrReviewNotAllowed,
		service.ErrInvalidResetCode, repository.ErrInvalidCategory, repository.ErrInvalidVariant,
		domain.ErrVoucherInactive, domain.ErrVoucherNotStarted, domain.ErrVoucherExpired,
		domain.ErrVoucherExhausted, domain.ErrVoucherMinOrder, domain.ErrInvalidDiscountType,
		storage.ErrUnsupportedImage, storage.ErrEmptyImage,
	}},
}

// statusFor maps a service error to an HTTP status; 0 means unknown
func statusFor(err error) int {
	for _, rule := range statusRules {
		for _, target := range rule.errs {
			if errors.Is(err, target) {
				return rule.status
			}
		}
	}
	return 0
}

// respondServiceError writes the status mapped from err. Unknown errors are
// logged and answered with 500 and the fallback message.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	status := statusFor(err)
	if status == 0 {
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
		return
	}
	logger.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	middleware.RespondWithError(w, status, err.Error())
}

// decodeRequest decodes and validates a JSON body, answering 400 on failure
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// uuidParam parses a chi URL parameter, answering 400 when it is malformed
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated caller, answering 401 when absent
func currentUser(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pageFromQuery reads page and page_size; bad values fall back to defaults
func pageFromQuery(r *http.Request) repository.Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return repository.NewPage(number, size)
}

func intQuery(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// timeQuery accepts RFC3339 or a plain date
func timeQuery(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

// adminOnly mounts auth followed by the admin role check
func adminOnly(r chi.Router, auth func(http.Handler) http.Handler, logger *zap.Logger) {
	r.Use(auth, middleware.RequireAdmin(logger))
}
