package types

import "time"

// Message represents a private message between two users as stored.
type Message struct {
	// ID is the unique identifier of the message.
	ID int64 `json:"id" db:"id"`

	// FromUsername references the sending user.
	FromUsername string `json:"from_username" db:"from_username"`

	// ToUsername references the receiving user.
	ToUsername string `json:"to_username" db:"to_username"`

	// Body is the message text. It is required and non-empty.
	Body string `json:"body" db:"body"`

	// SentAt is the timestamp at which the message was created.
	SentAt time.Time `json:"sent_at" db:"sent_at"`

	// ReadAt is the timestamp at which the recipient marked the message
	// as read. Nil means unread. Once set it never reverts.
	ReadAt *time.Time `json:"read_at" db:"read_at"`
}

// MessageDetail is the full view of a message with both endpoints
// expanded to their display summaries.
type MessageDetail struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
	ToUser   UserSummary `json:"to_user"`
}

// SentMessage is an outbox entry: a message joined with the recipient's
// display summary.
type SentMessage struct {
	ID     int64       `json:"id"`
	ToUser UserSummary `json:"to_user"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
}

// ReceivedMessage is an inbox entry: a message joined with the sender's
// display summary.
type ReceivedMessage struct {
	ID       int64       `json:"id"`
	FromUser UserSummary `json:"from_user"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
}

// ReadReceipt is the result of marking a message as read.
type ReadReceipt struct {
	ID     int64     `json:"id"`
	ReadAt time.Time `json:"read_at"`
}
