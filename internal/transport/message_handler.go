package transport

import (
	"net/http"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/middleware"
	"shoe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SendMessageRequest posts a chat message
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	Content    string `json:"content" validate:"required"`
}

// CountResponse wraps a single counter
type CountResponse struct {
	Count int `json:"count"`
}

// MessageHandler handles HTTP requests for customer and shop chat
type MessageHandler struct {
	messageService service.MessageService
	logger         *zap.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

// RegisterRoutes registers all message routes
func (h *MessageHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/messages", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Send)
		r.Get("/unread-count", h.UnreadCount)
		r.Get("/conversations", h.Conversations)
		r.Get("/{user_id}", h.Conversation)
		r.Patch("/{user_id}/read", h.MarkRead)
	})
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}
	msg, err := h.messageService.Send(r.Context(), userID, uuid.MustParse(req.ReceiverID), req.Content)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to send message")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, msg)
}

// Conversation returns messages with one user, oldest first. Older pages are
// fetched with before=<created_at of the first message>.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	otherID, ok := uuidParam(w, r, "user_id")
	if !ok {
		return
	}

	var before *time.Time
	cursor, err := timeQuery(r, "before")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid before")
		return
	}
	if !cursor.IsZero() {
		before = &cursor
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	messages, err := h.messageService.Conversation(r.Context(), userID, otherID, before, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load conversation")
		return
	}
	if messages == nil {
		messages = []*domain.Message{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, messages)
}

// MarkRead marks everything the other user sent to the caller as read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	otherID, ok := uuidParam(w, r, "user_id")
	if !ok {
		return
	}
	count, err := h.messageService.MarkRead(r.Context(), userID, otherID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to mark messages read")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, CountResponse{Count: count})
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	count, err := h.messageService.UnreadCount(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to count unread messages")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, CountResponse{Count: count})
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	conversations, err := h.messageService.Conversations(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list conversations")
		return
	}
	if conversations == nil {
		conversations = []*domain.Conversation{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, conversations)
}
