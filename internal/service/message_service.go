package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"

	"github.com/google/uuid"
)

const (
	MaxMessageLength        = 2000
	DefaultConversationPage = 50
	MaxConversationPage     = 200
)

// MessageService defines the interface for chat business logic
type MessageService interface {
	Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*domain.Message, error)
	Conversation(ctx context.Context, userID, otherID uuid.UUID, before *time.Time, limit int) ([]*domain.Message, error)
	MarkRead(ctx context.Context, userID, otherID uuid.UUID) (int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	Conversations(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

// NewMessageService creates a new instance of MessageService
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) MessageService {
	return &messageService{messageRepo: messageRepo, userRepo: userRepo}
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message is longer than %d characters", ErrInvalidInput, MaxMessageLength)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidInput)
	}

	if _, err := s.userRepo.FindByID(ctx, receiverID); err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// Conversation pages backwards from before (default now), oldest first within the page
func (s *messageService) Conversation(ctx context.Context, userID, otherID uuid.UUID, before *time.Time, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = DefaultConversationPage
	}
	if limit > MaxConversationPage {
		limit = MaxConversationPage
	}

	cursor := time.Now()
	if before != nil {
		cursor = *before
	}
	return s.messageRepo.Conversation(ctx, userID, otherID, cursor, limit)
}

func (s *messageService) MarkRead(ctx context.Context, userID, otherID uuid.UUID) (int, error) {
	return s.messageRepo.MarkRead(ctx, otherID, userID)
}

func (s *messageService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.messageRepo.UnreadCount(ctx, userID)
}

func (s *messageService) Conversations(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	return s.messageRepo.Conversations(ctx, userID)
}
