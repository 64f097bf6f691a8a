package httpapi

import (
	"net/http"

	"skilltalk/internal/domain"
)

// Follow and unfollow act as the authenticated user; the path id is the
// target. Accept and reject act as the addressee, so the path id must be
// the authenticated user's own.

func (a *api) handleFollow(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUser(r.Context())
	if err := a.follows.SendRequest(r.Context(), cu.ID, r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "requested"})
}

func (a *api) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUser(r.Context())
	if err := a.follows.Unfollow(r.Context(), cu.ID, r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "unfollowed"})
}

type followDecisionRequest struct {
	FollowerID string `json:"followerId"`
}

func (a *api) handleAcceptFollow(w http.ResponseWriter, r *http.Request) {
	userID, req, ok := a.followDecision(w, r)
	if !ok {
		return
	}
	if err := a.follows.Accept(r.Context(), userID, req.FollowerID); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (a *api) handleRejectFollow(w http.ResponseWriter, r *http.Request) {
	userID, req, ok := a.followDecision(w, r)
	if !ok {
		return
	}
	if err := a.follows.Reject(r.Context(), userID, req.FollowerID); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// followDecision does the shared accept/reject plumbing: ownership check
// on the path id plus body decoding.
func (a *api) followDecision(w http.ResponseWriter, r *http.Request) (string, followDecisionRequest, bool) {
	cu, _ := CurrentUser(r.Context())
	userID := r.PathValue("id")
	if cu.ID != userID {
		WriteError(w, http.StatusForbidden, "forbidden", "cannot decide another user's follow requests")
		return "", followDecisionRequest{}, false
	}

	var req followDecisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return "", followDecisionRequest{}, false
	}
	if req.FollowerID == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "followerId: required")
		return "", followDecisionRequest{}, false
	}
	return userID, req, true
}

func (a *api) handleListFollowers(w http.ResponseWriter, r *http.Request) {
	a.writeAcceptedList(w, r, domain.DirectionFollowers)
}

func (a *api) handleListFollowing(w http.ResponseWriter, r *http.Request) {
	a.writeAcceptedList(w, r, domain.DirectionFollowing)
}

func (a *api) writeAcceptedList(w http.ResponseWriter, r *http.Request, direction domain.FollowDirection) {
	entries, err := a.follows.ListAccepted(r.Context(), r.PathValue("id"), direction)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.FollowEntry{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{string(direction): entries})
}

func (a *api) handleNotifications(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUser(r.Context())
	userID := r.PathValue("id")
	if cu.ID != userID {
		WriteError(w, http.StatusForbidden, "forbidden", "cannot read another user's notifications")
		return
	}

	notifications, err := a.follows.ListPendingIncoming(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if notifications == nil {
		notifications = []domain.FollowNotification{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}
