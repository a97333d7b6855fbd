package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/messagely/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user record. The caller supplies an already
// hashed password; plaintext never reaches this layer.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.JoinAt = now
	user.LastLoginAt = now

	const query = `
		INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinAt,
		user.LastLoginAt,
	)
	if err != nil {
		if postgresErrorCode(err) == uniqueViolation {
			return types.User{}, ErrDuplicateUsername
		}
		return types.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.JoinAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// All returns the basic display profile of every user, ordered by
// username for stable output.
func (r *UserRepository) All(ctx context.Context) ([]types.UserSummary, error) {
	const query = `
		SELECT username, first_name, last_name, phone
		FROM users
		ORDER BY username`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.UserSummary, 0)
	for rows.Next() {
		var user types.UserSummary
		if err := rows.Scan(&user.Username, &user.FirstName, &user.LastName, &user.Phone); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateLoginTimestamp stamps last_login_at to the current time and
// returns the new value.
func (r *UserRepository) UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error) {
	now := time.Now()

	const query = `
		UPDATE users
		SET last_login_at = $1
		WHERE username = $2`
	result, err := r.db.ExecContext(ctx, query, now, username)
	if err != nil {
		return time.Time{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return time.Time{}, err
	}
	if affected == 0 {
		return time.Time{}, ErrNotFound
	}
	return now, nil
}

// MessagesFrom returns the messages sent by username, each joined with
// the recipient's display summary.
func (r *UserRepository) MessagesFrom(ctx context.Context, username string) ([]types.SentMessage, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
			u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON u.username = m.to_username
		WHERE m.from_username = $1
		ORDER BY m.sent_at, m.id`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.SentMessage, 0)
	for rows.Next() {
		var msg types.SentMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.Body,
			&msg.SentAt,
			&msg.ReadAt,
			&msg.ToUser.Username,
			&msg.ToUser.FirstName,
			&msg.ToUser.LastName,
			&msg.ToUser.Phone,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// MessagesTo returns the messages received by username, each joined
// with the sender's display summary.
func (r *UserRepository) MessagesTo(ctx context.Context, username string) ([]types.ReceivedMessage, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
			u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON u.username = m.from_username
		WHERE m.to_username = $1
		ORDER BY m.sent_at, m.id`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.ReceivedMessage, 0)
	for rows.Next() {
		var msg types.ReceivedMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.Body,
			&msg.SentAt,
			&msg.ReadAt,
			&msg.FromUser.Username,
			&msg.FromUser.FirstName,
			&msg.FromUser.LastName,
			&msg.FromUser.Phone,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
