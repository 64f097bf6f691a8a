package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"skilltalk/internal/auth"
	"skilltalk/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	// DBPing reports storage reachability for the health endpoint.
	DBPing func(ctx context.Context) error

	Auth     *service.AuthService
	Users    *service.UsersService
	Profile  *service.ProfileService
	Follows  *service.FollowsService
	Messages *service.MessageService

	Tokens auth.TokenCodec

	// WS handles the realtime upgrade at /ws.
	WS http.Handler
}

type api struct {
	logger *slog.Logger

	auth     *service.AuthService
	users    *service.UsersService
	profile  *service.ProfileService
	follows  *service.FollowsService
	messages *service.MessageService

	tokens  auth.TokenCodec
	limiter *loginLimiter
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &api{
		logger:   logger,
		auth:     opts.Auth,
		users:    opts.Users,
		profile:  opts.Profile,
		follows:  opts.Follows,
		messages: opts.Messages,
		tokens:   opts.Tokens,
		limiter:  newLoginLimiter(5*time.Minute, 10),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", a.handleHealthz(opts.DBPing))

	mux.HandleFunc("POST /v1/auth/signup", a.handleSignup)
	mux.HandleFunc("POST /v1/auth/login", a.handleLogin)

	mux.HandleFunc("GET /v1/users/search", a.requireAuth(a.handleSearchUsers))
	mux.HandleFunc("GET /v1/users/{id}", a.requireAuth(a.handleGetProfile))
	mux.HandleFunc("PUT /v1/users/{id}", a.requireAuth(a.handleUpdateProfile))
	mux.HandleFunc("GET /v1/users/{id}/followers", a.requireAuth(a.handleListFollowers))
	mux.HandleFunc("GET /v1/users/{id}/following", a.requireAuth(a.handleListFollowing))
	mux.HandleFunc("POST /v1/users/{id}/follow", a.requireAuth(a.handleFollow))
	mux.HandleFunc("POST /v1/users/{id}/unfollow", a.requireAuth(a.handleUnfollow))
	mux.HandleFunc("PUT /v1/users/{id}/follow/accept", a.requireAuth(a.handleAcceptFollow))
	mux.HandleFunc("PUT /v1/users/{id}/follow/reject", a.requireAuth(a.handleRejectFollow))
	mux.HandleFunc("GET /v1/users/{id}/notifications", a.requireAuth(a.handleNotifications))

	mux.HandleFunc("POST /v1/messages", a.requireAuth(a.handleSendMessage))
	mux.HandleFunc("GET /v1/messages/inbox/{userId}", a.requireAuth(a.handleInbox))
	mux.HandleFunc("GET /v1/messages/{userA}/{userB}", a.requireAuth(a.handleConversation))

	if opts.WS != nil {
		mux.Handle("GET /ws", opts.WS)
	}

	var h http.Handler = mux
	h = RequestLogger(logger)(h)
	h = Recoverer(logger, opts.IsProd)(h)
	h = RequestID()(h)
	return h
}

func (a *api) handleHealthz(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				a.logger.Error("health check db ping failed", "err", err)
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		WriteJSON(w, code, map[string]string{"status": status})
	}
}
