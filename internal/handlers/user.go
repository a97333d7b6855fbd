package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/messagely/apiserver/internal/policy"
	"github.com/messagely/apiserver/internal/services"
	"github.com/messagely/apiserver/types"
)

// UserHandler provides HTTP handlers for user profiles and mailboxes.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router. All routes
// require authentication; profile and mailbox routes are self-scoped.
func UserRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListUsers)
	r.Route("/{username}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Get("/to", handler.MessagesTo)
		r.Get("/from", handler.MessagesFrom)
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, UserListResponse{Users: users})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username, ok := h.authorizeMailbox(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Get(r.Context(), username)
	if err != nil {
		writeAppError(w, err, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// MessagesTo returns the inbox of the addressed user.
func (h *UserHandler) MessagesTo(w http.ResponseWriter, r *http.Request) {
	username, ok := h.authorizeMailbox(w, r)
	if !ok {
		return
	}

	messages, err := h.userService.MessagesTo(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	writeJSON(w, http.StatusOK, InboxResponse{Messages: messages})
}

// MessagesFrom returns the outbox of the addressed user.
func (h *UserHandler) MessagesFrom(w http.ResponseWriter, r *http.Request) {
	username, ok := h.authorizeMailbox(w, r)
	if !ok {
		return
	}

	messages, err := h.userService.MessagesFrom(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	writeJSON(w, http.StatusOK, OutboxResponse{Messages: messages})
}

// authorizeMailbox resolves the addressed username and checks that the
// authenticated identity owns it. On failure it writes the response
// and returns ok=false.
func (h *UserHandler) authorizeMailbox(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}

	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return "", false
	}

	if !policy.OwnsMailbox(identity, username) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return username, true
}

// UserListResponse is the user listing payload.
type UserListResponse struct {
	Users []types.UserSummary `json:"users"`
}

// InboxResponse is the received-messages payload.
type InboxResponse struct {
	Messages []types.ReceivedMessage `json:"messages"`
}

// OutboxResponse is the sent-messages payload.
type OutboxResponse struct {
	Messages []types.SentMessage `json:"messages"`
}
