package transport

import (
	"net/http"
	"strconv"

	"shoe-store/internal/domain"
	"shoe-store/internal/middleware"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BannerRequest updates a banner's metadata; the image is only set on create
type BannerRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	LinkURL  string `json:"link_url" validate:"omitempty,max=500"`
	Position int    `json:"position" validate:"gte=0"`
	IsActive *bool  `json:"is_active"`
}

// BannerHandler handles HTTP requests for storefront banners
type BannerHandler struct {
	bannerService  service.BannerService
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewBannerHandler creates a new BannerHandler
func NewBannerHandler(bannerService service.BannerService, logger *zap.Logger, maxUploadBytes int64) *BannerHandler {
	return &BannerHandler{bannerService: bannerService, logger: logger, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes registers all banner routes
func (h *BannerHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/banners", func(r chi.Router) {
		r.Get("/", h.ListActive)

		r.Group(func(r chi.Router) {
			adminOnly(r, authMiddleware, h.logger)
			r.Get("/all", h.ListAll)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}/active", h.SetActive)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *BannerHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *BannerHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *BannerHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	banners, err := h.bannerService.List(r.Context(), activeOnly)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list banners")
		return
	}
	if banners == nil {
		banners = []*domain.Banner{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, banners)
}

// Create reads title, link_url, position, is_active and image from a multipart form
func (h *BannerHandler) Create(w http.ResponseWriter, r *http.Request) {
	file, ok := imageFile(w, r, h.logger, "image", h.maxUploadBytes)
	if !ok {
		return
	}
	defer file.Close()

	input := service.BannerInput{
		Title:    r.FormValue("title"),
		LinkURL:  r.FormValue("link_url"),
		IsActive: true,
	}
	if raw := r.FormValue("position"); raw != "" {
		position, err := strconv.Atoi(raw)
		if err != nil || position < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid position")
			return
		}
		input.Position = position
	}
	if raw := r.FormValue("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid is_active")
			return
		}
		input.IsActive = active
	}

	banner, err := h.bannerService.Create(r.Context(), input, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create banner")
		return
	}
	h.logger.Info("Banner created", zap.String("banner_id", banner.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, banner)
}

func (h *BannerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req BannerRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	banner, err := h.bannerService.Update(r.Context(), id, service.BannerInput{
		Title:    req.Title,
		LinkURL:  req.LinkURL,
		Position: req.Position,
		IsActive: req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update banner")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, banner)
}

func (h *BannerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req ActiveRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	if err := h.bannerService.SetActive(r.Context(), id, *req.IsActive); err != nil {
		respondServiceError(w, h.logger, err, "failed to update banner")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"is_active": *req.IsActive,
	})
}

func (h *BannerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.bannerService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete banner")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
