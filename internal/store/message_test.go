package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/messagely/apiserver/types"
)

func newTestMessageRepo(t *testing.T) (*MessageRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return NewMessageRepository(db), mock, db
}

func TestMessageCreate_Success(t *testing.T) {
	repo, mock, db := newTestMessageRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(42))
	mock.ExpectQuery("INSERT INTO messages").
		WithArgs("alice", "bob", "hi", sqlmock.AnyArg()).
		WillReturnRows(rows)

	msg, err := repo.Create(context.Background(), types.Message{
		FromUsername: "alice",
		ToUsername:   "bob",
		Body:         "hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ID != 42 {
		t.Errorf("expected id 42, got %d", msg.ID)
	}
	if msg.SentAt.IsZero() {
		t.Error("expected sent_at to be stamped")
	}
	if msg.ReadAt != nil {
		t.Errorf("expected new message to be unread, got %v", msg.ReadAt)
	}
}

func TestMessageCreate_UnknownRecipient(t *testing.T) {
	repo, mock, db := newTestMessageRepo(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO messages").
		WithArgs("alice", "ghost", "hi", sqlmock.AnyArg()).
		WillReturnError(pgViolation(foreignKeyViolation))

	_, err := repo.Create(context.Background(), types.Message{
		FromUsername: "alice",
		ToUsername:   "ghost",
		Body:         "hi",
	})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestMessageGet_NotFound(t *testing.T) {
	repo, mock, db := newTestMessageRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT m.id, m.body").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMessageGet_ExpandsBothEndpoints(t *testing.T) {
	repo, mock, db := newTestMessageRepo(t)
	defer db.Close()

	sentAt := time.Now()
	rows := sqlmock.
		NewRows([]string{
			"id", "body", "sent_at", "read_at",
			"f_username", "f_first_name", "f_last_name", "f_phone",
			"t_username", "t_first_name", "t_last_name", "t_phone",
		}).
		AddRow(int64(7), "hi", sentAt, nil,
			"alice", "Alice", "Ames", "+15551234567",
			"bob", "Bob", "Baker", "+15557654321")

	mock.ExpectQuery("SELECT m.id, m.body").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	detail, err := repo.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.FromUser.Username != "alice" || detail.ToUser.Username != "bob" {
		t.Errorf("unexpected endpoints: %+v", detail)
	}
	if detail.ReadAt != nil {
		t.Errorf("expected unread, got %v", detail.ReadAt)
	}
}

func TestMarkRead_StampsAndReturnsReceipt(t *testing.T) {
	repo, mock, db := newTestMessageRepo(t)
	defer db.Close()

	readAt := time.Now()
	rows := sqlmock.NewRows([]string{"id", "read_at"}).AddRow(int64(7), readAt)
	mock.ExpectQuery("UPDATE messages").
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnRows(rows)

	receipt, err := repo.MarkRead(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.ID != 7 || !receipt.ReadAt.Equal(readAt) {
		t.Errorf("unexpected receipt: %+v", receipt)
	}
}

// The UPDATE keeps the first stamp via COALESCE, so a repeated mark
// returns the original read_at rather than re-stamping.
func TestMarkRead_RepeatKeepsOriginalStamp(t *testing.T) {
	repo, mock, db := newTestMessageRepo(t)
	defer db.Close()

	original := time.Now().Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "read_at"}).AddRow(int64(7), original)
	mock.ExpectQuery("UPDATE messages").
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnRows(rows)

	receipt, err := repo.MarkRead(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !receipt.ReadAt.Equal(original) {
		t.Errorf("expected original stamp %v, got %v", original, receipt.ReadAt)
	}
}

func TestMarkRead_NotFound(t *testing.T) {
	repo, mock, db := newTestMessageRepo(t)
	defer db.Close()

	mock.ExpectQuery("UPDATE messages").
		WithArgs(int64(99), sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkRead(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
