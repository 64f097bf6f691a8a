package httpapi

import (
	"net"
	"net/http"
	"strings"
	"time"

	"skilltalk/internal/domain"
	"skilltalk/internal/service"
)

type signupRequest struct {
	Handle        string   `json:"handle"`
	Email         string   `json:"email"`
	Password      string   `json:"password"`
	Bio           string   `json:"bio"`
	Website       string   `json:"website"`
	Qualification string   `json:"qualification"`
	Skills        []string `json:"skills"`
}

func (a *api) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	req.Handle = normalizeHandle(req.Handle)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	fields := map[string]string{}
	if !validHandle(req.Handle) {
		fields["handle"] = "must be 3-24 characters: letters, digits, underscore"
	}
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "must be a valid email address"
	}
	if len(req.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if strings.TrimSpace(req.Qualification) == "" {
		fields["qualification"] = "required"
	}
	if len(req.Skills) == 0 {
		fields["skills"] = "required"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	u, err := a.auth.Signup(r.Context(), service.SignupParams{
		Handle:        req.Handle,
		Email:         email,
		Password:      req.Password,
		Bio:           req.Bio,
		Website:       req.Website,
		Qualification: req.Qualification,
		Skills:        req.Skills,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, userResponse(u))
}

type loginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if !a.limiter.Allow(loginLimiterKey(r), time.Now()) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many login attempts, try again later")
		return
	}

	u, token, err := a.auth.Login(r.Context(), req.Handle, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{Token: token, User: userResponse(u)})
}

func loginLimiterKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
