package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/messagely/apiserver/internal/policy"
	"github.com/messagely/apiserver/internal/services"
	"github.com/messagely/apiserver/types"
)

// MessageHandler provides HTTP handlers for messages.
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler constructs a handler with the provided service.
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// MessageRouter registers message routes on the given router. All
// routes require authentication; detail and mark-read consult the
// access policy against the fetched record.
func MessageRouter(r chi.Router, messageService *services.MessageService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewMessageHandler(messageService)

	r.Use(authMiddleware)
	r.Post("/", handler.CreateMessage)
	r.Route("/{messageID}", func(r chi.Router) {
		r.Get("/", handler.GetMessage)
		r.Post("/read", handler.MarkMessageRead)
	})
}

// CreateMessage stores a new message. The sender is always the
// authenticated identity, never client input.
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	identity, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	msg, err := h.messageService.Create(r.Context(), identity, req.ToUsername, req.Body)
	if err != nil {
		writeAppError(w, err, "failed to create message")
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: msg})
}

// GetMessage returns the message detail to its sender or recipient.
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	identity, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseMessageID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.messageService.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err, "failed to fetch message")
		return
	}

	if !policy.CanView(identity, detail) {
		writeError(w, http.StatusUnauthorized, "invalid message access")
		return
	}

	writeJSON(w, http.StatusOK, MessageDetailResponse{Message: detail})
}

// MarkMessageRead stamps the message as read on behalf of the
// recipient.
func (h *MessageHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	identity, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseMessageID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.messageService.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err, "failed to fetch message")
		return
	}

	if !policy.CanMarkRead(identity, detail) {
		writeError(w, http.StatusUnauthorized, "cannot mark this message as read")
		return
	}

	receipt, err := h.messageService.MarkRead(r.Context(), id)
	if err != nil {
		writeAppError(w, err, "failed to mark message read")
		return
	}

	writeJSON(w, http.StatusOK, ReadReceiptResponse{Message: receipt})
}

type CreateMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// MessageResponse wraps a newly created message.
type MessageResponse struct {
	Message types.Message `json:"message"`
}

// MessageDetailResponse wraps a full message detail.
type MessageDetailResponse struct {
	Message types.MessageDetail `json:"message"`
}

// ReadReceiptResponse wraps a mark-read result.
type ReadReceiptResponse struct {
	Message types.ReadReceipt `json:"message"`
}

func parseMessageID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "messageID"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid message id")
	}
	return id, nil
}
