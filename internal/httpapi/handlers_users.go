package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"skilltalk/internal/domain"
)

// userPayload is the wire shape of a user record. The password hash never
// reaches this type.
type userPayload struct {
	ID            string    `json:"id"`
	Handle        string    `json:"handle"`
	Email         string    `json:"email"`
	Bio           string    `json:"bio"`
	Website       string    `json:"website"`
	Qualification string    `json:"qualification"`
	Skills        []string  `json:"skills"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func userResponse(u domain.User) userPayload {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return userPayload{
		ID:            u.ID,
		Handle:        u.Handle,
		Email:         u.Email,
		Bio:           u.Bio,
		Website:       u.Website,
		Qualification: u.Qualification,
		Skills:        skills,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type profilePayload struct {
	userPayload
	Followers []domain.FollowEntry `json:"followers"`
	Following []domain.FollowEntry `json:"following"`
}

func profileResponse(p domain.Profile) profilePayload {
	followers := p.Followers
	if followers == nil {
		followers = []domain.FollowEntry{}
	}
	following := p.Following
	if following == nil {
		following = []domain.FollowEntry{}
	}
	return profilePayload{
		userPayload: userResponse(p.User),
		Followers:   followers,
		Following:   following,
	}
}

func (a *api) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := a.profile.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profileResponse(p))
}

type updateProfileRequest struct {
	Bio     string `json:"bio"`
	Website string `json:"website"`
}

func (a *api) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUser(r.Context())
	id := r.PathValue("id")
	if cu.ID != id {
		WriteError(w, http.StatusForbidden, "forbidden", "cannot edit another user's profile")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	u, err := a.profile.Update(r.Context(), id, req.Bio, req.Website)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, userResponse(u))
}

func (a *api) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUser(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be an integer")
			return
		}
		limit = n
	}

	results, err := a.users.Search(r.Context(), r.URL.Query().Get("query"), limit, cu.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if results == nil {
		results = []domain.UserSummary{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": results})
}
