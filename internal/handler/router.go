/*
Package handler provides the HTTP handlers and routing setup for the Pulsegram server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"pulsegram/internal/pkg/auth/jwt"
	"pulsegram/internal/pkg/limiter"
	"pulsegram/internal/pkg/logx"
	"pulsegram/internal/pkg/resp"
)

const (
	// Credential endpoints get a tight budget; everything behind them is bcrypt.
	AuthRate  = 0.2
	AuthBurst = 5

	// WebSocket connects are cheaper but still worth capping per IP.
	ConnectRate  = 0.5
	ConnectBurst = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Pulsegram Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.With(authLimiter.Middleware).Post("/register", HandleRegister(deps))
			auth.With(authLimiter.Middleware).Post("/login", HandleLogin(deps))

			if deps.Config.GoogleClientID != "" {
				auth.Get("/google", HandleGoogleLogin(deps))
				auth.Get("/google/callback", HandleGoogleCallback(deps))
			}
		})

		api.Route("/users", func(users chi.Router) {
			users.Get("/me", HandleGetProfile(deps))
			users.Patch("/me", HandleUpdateProfile(deps))
			users.Post("/me/avatar", HandleUploadAvatar(deps))
		})

		api.Route("/posts", func(posts chi.Router) {
			posts.Get("/", HandleListPosts(deps))
			posts.Post("/", HandleCreatePost(deps))
			posts.Get("/{postID}", HandleGetPost(deps))
			posts.Patch("/{postID}", HandleUpdatePost(deps))
			posts.Delete("/{postID}", HandleDeletePost(deps))

			posts.Get("/{postID}/comments", HandleListComments(deps))
			posts.Post("/{postID}/comments", HandleCreateComment(deps))
		})

		api.Route("/comments", func(comments chi.Router) {
			comments.Patch("/{commentID}", HandleUpdateComment(deps))
			comments.Delete("/{commentID}", HandleDeleteComment(deps))
		})

		api.Get("/admin/stats", HandleAdminStats(deps))
	})

	r.With(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret)).
		Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
