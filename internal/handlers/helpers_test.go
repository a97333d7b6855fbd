package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/messagely/apiserver/internal/services"
	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

// In-memory repositories backing the handler tests. They reproduce the
// store package's sentinel-error contract.
type memUserRepo struct {
	users    map[string]types.User
	messages *memMessageRepo
}

type memMessageRepo struct {
	users    *memUserRepo
	nextID   int64
	messages map[int64]types.Message
}

func newMemRepos() (*memUserRepo, *memMessageRepo) {
	userRepo := &memUserRepo{users: make(map[string]types.User)}
	messageRepo := &memMessageRepo{
		users:    userRepo,
		nextID:   1,
		messages: make(map[int64]types.Message),
	}
	userRepo.messages = messageRepo
	return userRepo, messageRepo
}

func (m *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if _, exists := m.users[user.Username]; exists {
		return types.User{}, store.ErrDuplicateUsername
	}
	now := time.Now()
	user.JoinAt = now
	user.LastLoginAt = now
	m.users[user.Username] = user
	return user, nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	user, exists := m.users[username]
	if !exists {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memUserRepo) All(_ context.Context) ([]types.UserSummary, error) {
	summaries := make([]types.UserSummary, 0, len(m.users))
	for _, user := range m.users {
		summaries = append(summaries, user.Summary())
	}
	return summaries, nil
}

func (m *memUserRepo) UpdateLoginTimestamp(_ context.Context, username string) (time.Time, error) {
	user, exists := m.users[username]
	if !exists {
		return time.Time{}, store.ErrNotFound
	}
	user.LastLoginAt = time.Now()
	m.users[username] = user
	return user.LastLoginAt, nil
}

func (m *memUserRepo) MessagesFrom(_ context.Context, username string) ([]types.SentMessage, error) {
	messages := make([]types.SentMessage, 0)
	for _, msg := range m.messagesOf() {
		if msg.FromUsername == username {
			messages = append(messages, types.SentMessage{
				ID:     msg.ID,
				ToUser: m.users[msg.ToUsername].Summary(),
				Body:   msg.Body,
				SentAt: msg.SentAt,
				ReadAt: msg.ReadAt,
			})
		}
	}
	return messages, nil
}

func (m *memUserRepo) MessagesTo(_ context.Context, username string) ([]types.ReceivedMessage, error) {
	messages := make([]types.ReceivedMessage, 0)
	for _, msg := range m.messagesOf() {
		if msg.ToUsername == username {
			messages = append(messages, types.ReceivedMessage{
				ID:       msg.ID,
				FromUser: m.users[msg.FromUsername].Summary(),
				Body:     msg.Body,
				SentAt:   msg.SentAt,
				ReadAt:   msg.ReadAt,
			})
		}
	}
	return messages, nil
}

func (m *memUserRepo) messagesOf() map[int64]types.Message {
	if m.messages == nil {
		return nil
	}
	return m.messages.messages
}

func (m *memMessageRepo) Create(_ context.Context, msg types.Message) (types.Message, error) {
	if _, ok := m.users.users[msg.ToUsername]; !ok {
		return types.Message{}, store.ErrInvalidReference
	}
	if _, ok := m.users.users[msg.FromUsername]; !ok {
		return types.Message{}, store.ErrInvalidReference
	}
	msg.ID = m.nextID
	m.nextID++
	msg.SentAt = time.Now()
	msg.ReadAt = nil
	m.messages[msg.ID] = msg
	return msg, nil
}

func (m *memMessageRepo) Get(_ context.Context, id int64) (types.MessageDetail, error) {
	msg, ok := m.messages[id]
	if !ok {
		return types.MessageDetail{}, store.ErrNotFound
	}
	return types.MessageDetail{
		ID:       msg.ID,
		Body:     msg.Body,
		SentAt:   msg.SentAt,
		ReadAt:   msg.ReadAt,
		FromUser: m.users.users[msg.FromUsername].Summary(),
		ToUser:   m.users.users[msg.ToUsername].Summary(),
	}, nil
}

func (m *memMessageRepo) MarkRead(_ context.Context, id int64) (types.ReadReceipt, error) {
	msg, ok := m.messages[id]
	if !ok {
		return types.ReadReceipt{}, store.ErrNotFound
	}
	if msg.ReadAt == nil {
		now := time.Now()
		msg.ReadAt = &now
		m.messages[id] = msg
	}
	return types.ReadReceipt{ID: id, ReadAt: *msg.ReadAt}, nil
}

// newTestRouter wires the handlers exactly as the server package does,
// over in-memory repositories.
func newTestRouter(t *testing.T) (*chi.Mux, *memUserRepo, *memMessageRepo) {
	t.Helper()

	userRepo, messageRepo := newMemRepos()

	userService := services.NewUserService(userRepo, bcrypt.MinCost)
	messageService := services.NewMessageService(messageRepo, nil)
	authMiddleware := RequireAuth(testJWTSecret)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testJWTSecret, time.Hour)
	})
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, authMiddleware)
	})
	router.Route("/messages", func(r chi.Router) {
		MessageRouter(r, messageService, authMiddleware)
	})
	return router, userRepo, messageRepo
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(encoded)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func registerUser(t *testing.T, router http.Handler, username string) string {
	t.Helper()

	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username:  username,
		Password:  "s3cret-" + username,
		FirstName: "First",
		LastName:  "Last",
		Phone:     "+15551234567",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var auth AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)
	return auth.Token
}
