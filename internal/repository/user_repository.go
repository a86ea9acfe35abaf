package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shoe-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
	SetLocked(ctx context.Context, id uuid.UUID, locked bool) error
	List(ctx context.Context, query string, page Page) ([]*domain.User, int, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, phone, address, avatar_url, role, is_locked, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Phone,
		&user.Address,
		&user.AvatarURL,
		&user.Role,
		&user.IsLocked,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// Create inserts a new user
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Phone,
		user.Address,
		user.AvatarURL,
		user.Role,
		user.IsLocked,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user by email, case-insensitively
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// UpdateProfile changes the contact fields of a user
func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET full_name = $2, phone = $3, address = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, user.ID, user.FullName, user.Phone, user.Address, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	return expectAffected(result, ErrUserNotFound)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectAffected(result, ErrUserNotFound)
}

func (r *userRepository) SetAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET avatar_url = $2 WHERE id = $1`, id, avatarURL)
	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}

	return expectAffected(result, ErrUserNotFound)
}

func (r *userRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET is_locked = $2 WHERE id = $1`, id, locked)
	if err != nil {
		return fmt.Errorf("failed to set lock flag: %w", err)
	}

	return expectAffected(result, ErrUserNotFound)
}

// List pages through users, newest first, optionally matching email or name
func (r *userRepository) List(ctx context.Context, query string, page Page) ([]*domain.User, int, error) {
	whereClause := ""
	args := []interface{}{}

	if q := strings.TrimSpace(query); q != "" {
		whereClause = `WHERE email ILIKE $1 ESCAPE '\' OR full_name ILIKE $1 ESCAPE '\'`
		args = append(args, containsPattern(q))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}
