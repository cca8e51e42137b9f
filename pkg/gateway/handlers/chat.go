package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/digitalemployee/site-gateway/pkg/gateway/apierror"
	"github.com/digitalemployee/site-gateway/pkg/gateway/mw"
	"github.com/digitalemployee/site-gateway/pkg/site/chat"
)

// maxConversations bounds the in-memory conversation table; the oldest
// conversation is evicted when a new ID would exceed it.
const maxConversations = 512

// ChatHandler serves the assistant widget. Conversations are held in memory
// keyed by the ID handed to the client on first contact.
type ChatHandler struct {
	Generator chat.Generator
	Logger    *slog.Logger

	mu            sync.Mutex
	conversations map[string]*chat.Conversation
	order         []string
}

func NewChatHandler(gen chat.Generator, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		Generator:     gen,
		Logger:        logger,
		conversations: make(map[string]*chat.Conversation),
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if h.Generator == nil {
		writeAPIError(w, r, apierror.ErrProvider, "chat is not configured", "")
		return
	}

	var body struct {
		ConversationID string `json:"conversation_id"`
		Message        string `json:"message"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	convID := body.ConversationID
	if convID == "" {
		convID = "conv_" + mw.RequestIDFrom(r.Context())
	}
	conv := h.conversation(convID)

	reply, err := conv.Send(r.Context(), body.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeAPIError(w, r, apierror.ErrInvalidRequest, "message is empty", "message")
		return
	case errors.Is(err, chat.ErrBusy):
		writeAPIError(w, r, apierror.ErrRateLimit, "a reply is already being generated", "")
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		ConversationID string      `json:"conversation_id"`
		Reply          chat.Turn   `json:"reply"`
		Transcript     []chat.Turn `json:"transcript"`
	}{
		ConversationID: convID,
		Reply:          reply,
		Transcript:     conv.Transcript(),
	})
}

func (h *ChatHandler) conversation(id string) *chat.Conversation {
	h.mu.Lock()
	defer h.mu.Unlock()
	conv, ok := h.conversations[id]
	if !ok {
		if len(h.order) >= maxConversations {
			oldest := h.order[0]
			h.order = h.order[1:]
			delete(h.conversations, oldest)
		}
		conv = chat.NewConversation(h.Generator, h.Logger)
		h.conversations[id] = conv
		h.order = append(h.order, id)
	}
	return conv
}
