package repository

import (
	"context"
	"fmt"
	"time"

	"shoe-store/internal/domain"

	"github.com/google/uuid"
)

// MessageRepository defines the interface for chat message data access
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	Conversation(ctx context.Context, a, b uuid.UUID, before time.Time, limit int) ([]*domain.Message, error)
	MarkRead(ctx context.Context, from, to uuid.UUID) (int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	Conversations(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)
}

type messageRepository struct {
	db DBTX
}

// NewMessageRepository creates a new instance of MessageRepository
func NewMessageRepository(db DBTX) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.SenderID,
		message.ReceiverID,
		message.Content,
		message.IsRead,
		message.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err, "fk_messages_receiver") {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// Conversation returns up to limit messages between a and b sent before the
// given instant, oldest first
func (r *messageRepository) Conversation(ctx context.Context, a, b uuid.UUID, before time.Time, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, is_read, created_at
		FROM (
			SELECT id, sender_id, receiver_id, content, is_read, created_at
			FROM messages
			WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
			  AND created_at < $3
			ORDER BY created_at DESC
			LIMIT $4
		) page
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, a, b, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	defer rows.Close()

	messages := []*domain.Message{}
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// MarkRead marks every unread message from -> to as read and returns how many changed
func (r *messageRepository) MarkRead(ctx context.Context, from, to uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE WHERE sender_id = $1 AND receiver_id = $2 AND is_read = FALSE`, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// Conversations lists each counterpart of userID with the latest message, most recent first
func (r *messageRepository) Conversations(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	query := `
		WITH latest AS (
			SELECT DISTINCT ON (peer) peer, id, sender_id, receiver_id, content, is_read, created_at
			FROM (
				SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer,
				       id, sender_id, receiver_id, content, is_read, created_at
				FROM messages
				WHERE sender_id = $1 OR receiver_id = $1
			) m
			ORDER BY peer, created_at DESC
		)
		SELECT l.peer, u.full_name, u.email,
		       l.id, l.sender_id, l.receiver_id, l.content, l.is_read, l.created_at,
		       (SELECT COUNT(*) FROM messages um WHERE um.sender_id = l.peer AND um.receiver_id = $1 AND um.is_read = FALSE)
		FROM latest l
		JOIN users u ON u.id = l.peer
		ORDER BY l.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []*domain.Conversation{}
	for rows.Next() {
		c := &domain.Conversation{LastMessage: &domain.Message{}}
		err := rows.Scan(
			&c.UserID,
			&c.FullName,
			&c.Email,
			&c.LastMessage.ID,
			&c.LastMessage.SenderID,
			&c.LastMessage.ReceiverID,
			&c.LastMessage.Content,
			&c.LastMessage.IsRead,
			&c.LastMessage.CreatedAt,
			&c.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return conversations, nil
}
