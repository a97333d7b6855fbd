package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/messagely/apiserver/internal/apperr"
	"github.com/messagely/apiserver/internal/logger"
	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
)

// Broker channels for message lifecycle events.
const (
	ChannelMessageCreated = "message.created"
	ChannelMessageRead    = "message.read"
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, msg types.Message) (types.Message, error)
	Get(ctx context.Context, id int64) (types.MessageDetail, error)
	MarkRead(ctx context.Context, id int64) (types.ReadReceipt, error)
}

// Publisher abstracts the event broker used for delivery notifications.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// MessageService encapsulates message use-cases. When a publisher is
// wired, lifecycle events are emitted best-effort: a broker failure is
// logged and never fails the request.
type MessageService struct {
	repo      MessageRepository
	publisher Publisher
}

// NewMessageService constructs a MessageService. publisher may be nil,
// in which case no events are emitted.
func NewMessageService(repo MessageRepository, publisher Publisher) *MessageService {
	return &MessageService{repo: repo, publisher: publisher}
}

// Create stores a new message from fromUsername to toUsername. The
// caller is responsible for forcing fromUsername to the authenticated
// identity; it is never taken from client input.
func (s *MessageService) Create(ctx context.Context, fromUsername, toUsername, body string) (types.Message, error) {
	toUsername = strings.TrimSpace(toUsername)
	if toUsername == "" || strings.TrimSpace(body) == "" {
		return types.Message{}, apperr.InvalidInput("to_username and body are required")
	}

	msg, err := s.repo.Create(ctx, types.Message{
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return types.Message{}, apperr.Wrap(apperr.KindNotFound, "recipient does not exist", err)
		}
		return types.Message{}, err
	}

	s.publish(ctx, ChannelMessageCreated, messageCreatedEvent{
		ID:           msg.ID,
		FromUsername: msg.FromUsername,
		ToUsername:   msg.ToUsername,
		SentAt:       msg.SentAt.Format(timeLayout),
	}, msg.ID)

	return msg, nil
}

// Get returns the full message with expanded endpoints.
func (s *MessageService) Get(ctx context.Context, id int64) (types.MessageDetail, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.MessageDetail{}, apperr.Wrap(apperr.KindNotFound, "message not found", err)
		}
		return types.MessageDetail{}, err
	}
	return detail, nil
}

// MarkRead stamps the message as read. Repeated calls succeed and keep
// the original read_at, so the READ state is stable once reached.
func (s *MessageService) MarkRead(ctx context.Context, id int64) (types.ReadReceipt, error) {
	receipt, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ReadReceipt{}, apperr.Wrap(apperr.KindNotFound, "message not found", err)
		}
		return types.ReadReceipt{}, err
	}

	s.publish(ctx, ChannelMessageRead, messageReadEvent{
		ID:     receipt.ID,
		ReadAt: receipt.ReadAt.Format(timeLayout),
	}, receipt.ID)

	return receipt, nil
}

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

type messageCreatedEvent struct {
	ID           int64  `json:"id"`
	FromUsername string `json:"from_username"`
	ToUsername   string `json:"to_username"`
	SentAt       string `json:"sent_at"`
}

type messageReadEvent struct {
	ID     int64  `json:"id"`
	ReadAt string `json:"read_at"`
}

func (s *MessageService) publish(ctx context.Context, channel string, event any, messageID int64) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("channel", channel).Msg("marshal event failed")
		return
	}

	attrs := map[string]string{"message_id": strconv.FormatInt(messageID, 10)}
	if _, err := s.publisher.Publish(ctx, channel, data, attrs); err != nil {
		logger.FromContext(ctx).Err(err).Str("channel", channel).Msg("publish event failed")
	}
}
