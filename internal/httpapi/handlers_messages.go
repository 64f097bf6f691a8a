package httpapi

import (
	"net/http"

	"skilltalk/internal/domain"
)

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

func (a *api) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUser(r.Context())

	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	msg, err := a.messages.Send(r.Context(), cu.ID, req.ReceiverID, req.Text)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

func (a *api) handleConversation(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUser(r.Context())
	userA := r.PathValue("userA")
	userB := r.PathValue("userB")
	if cu.ID != userA && cu.ID != userB {
		WriteError(w, http.StatusForbidden, "forbidden", "cannot read a conversation you are not part of")
		return
	}

	msgs, err := a.messages.Conversation(r.Context(), userA, userB)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (a *api) handleInbox(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUser(r.Context())
	userID := r.PathValue("userId")
	if cu.ID != userID {
		WriteError(w, http.StatusForbidden, "forbidden", "cannot read another user's inbox")
		return
	}

	entries, err := a.messages.Inbox(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.InboxEntry{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"conversations": entries})
}
