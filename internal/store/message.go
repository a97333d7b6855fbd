package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/messagely/apiserver/types"
)

// MessageRepository handles persistence for messages.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a new message. Both endpoints must reference existing
// users; the foreign keys on the messages table enforce that.
func (r *MessageRepository) Create(ctx context.Context, msg types.Message) (types.Message, error) {
	msg.SentAt = time.Now()
	msg.ReadAt = nil

	const query = `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.db.QueryRowContext(
		ctx,
		query,
		msg.FromUsername,
		msg.ToUsername,
		msg.Body,
		msg.SentAt,
	).Scan(&msg.ID)
	if err != nil {
		if postgresErrorCode(err) == foreignKeyViolation {
			return types.Message{}, ErrInvalidReference
		}
		return types.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// Get returns the full message with both endpoints expanded to their
// display summaries.
func (r *MessageRepository) Get(ctx context.Context, id int64) (types.MessageDetail, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
			f.username, f.first_name, f.last_name, f.phone,
			t.username, t.first_name, t.last_name, t.phone
		FROM messages AS m
		JOIN users AS f ON f.username = m.from_username
		JOIN users AS t ON t.username = m.to_username
		WHERE m.id = $1`
	var detail types.MessageDetail
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.Body,
		&detail.SentAt,
		&detail.ReadAt,
		&detail.FromUser.Username,
		&detail.FromUser.FirstName,
		&detail.FromUser.LastName,
		&detail.FromUser.Phone,
		&detail.ToUser.Username,
		&detail.ToUser.FirstName,
		&detail.ToUser.LastName,
		&detail.ToUser.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MessageDetail{}, ErrNotFound
		}
		return types.MessageDetail{}, err
	}
	return detail, nil
}

// MarkRead stamps read_at and returns the resulting receipt. The update
// keeps the first stamp: marking an already-read message returns the
// original read_at unchanged, which also settles concurrent marks on
// the earliest writer.
func (r *MessageRepository) MarkRead(ctx context.Context, id int64) (types.ReadReceipt, error) {
	const query = `
		UPDATE messages
		SET read_at = COALESCE(read_at, $2)
		WHERE id = $1
		RETURNING id, read_at`
	var receipt types.ReadReceipt
	err := r.db.QueryRowContext(ctx, query, id, time.Now()).Scan(&receipt.ID, &receipt.ReadAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ReadReceipt{}, ErrNotFound
		}
		return types.ReadReceipt{}, err
	}
	return receipt, nil
}
