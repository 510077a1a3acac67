/*
Package handler provides HTTP handler functions for the admin dashboard counters.
*/
package handler

import (
	"net/http"

	"pulsegram/internal/app/feed"
	"pulsegram/internal/pkg/auth/jwt"
	"pulsegram/internal/pkg/errs"
	"pulsegram/internal/pkg/logx"
	"pulsegram/internal/pkg/resp"
)

// HandleAdminStats returns account, post, and comment counts together with
// the live presence figures. Admin role required.
func HandleAdminStats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		if identity.Role != feed.RoleAdmin {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		userCount, err := deps.Store.CountUsers(r.Context())
		if err != nil {
			logx.Error(err, "admin_stats: count users failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		postCount, err := deps.Store.CountPosts(r.Context())
		if err != nil {
			logx.Error(err, "admin_stats: count posts failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		commentCount, err := deps.Store.CountComments(r.Context())
		if err != nil {
			logx.Error(err, "admin_stats: count comments failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users":       userCount,
			"posts":       postCount,
			"comments":    commentCount,
			"onlineUsers": deps.Hub.OnlineUserCount(),
			"presence":    deps.Hub.OnlineUsers(),
			"delivery":    deps.Hub.MetricsSnapshot(),
		})
	}
}
