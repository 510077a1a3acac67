/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting, upgrading
the HTTP connection to WebSocket, attaching the connection to the presence hub, and announcing
authenticated identities so the first presence frame reflects them immediately.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"pulsegram/internal/app/presence"
	"pulsegram/internal/pkg/auth/jwt"
	"pulsegram/internal/pkg/errs"
	"pulsegram/internal/pkg/limiter"
	"pulsegram/internal/pkg/logx"
	"pulsegram/internal/pkg/resp"
)

// wsIdentity resolves the connecting user's identity. The extractor middleware
// handles Authorization headers; browser WebSocket clients can't set those, so
// a ?token= query parameter is accepted as a fallback. A nil result means the
// connection starts anonymous and must announce itself over the socket.
func wsIdentity(r *http.Request, secretKey string) *jwt.Payload {
	if identity := jwt.GetPayloadFromContext(r); identity != nil {
		return identity
	}

	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		return nil
	}

	payload, err := jwt.ParseToken(tokenString, secretKey)
	if err != nil {
		logx.Warn("WebSocket token rejected, connection continues as anonymous", "error", err.Error())
		return nil
	}
	return payload
}

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		identity := wsIdentity(r, deps.Config.JWTSecret)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := presence.NewClient(deps.Hub, conn)

		go client.WritePump()

		deps.Hub.Attach(client)

		if identity != nil {
			logx.Info("WebSocket connection established", "user_id", identity.ID, "ip", ip)
			deps.Hub.Announce(client, presence.AnnouncePayload{
				UserID:      identity.ID,
				DisplayName: identity.Name,
			})
		} else {
			logx.Info("WebSocket connection established, awaiting announce", "ip", ip)
		}

		client.ReadPump()
	}
}
