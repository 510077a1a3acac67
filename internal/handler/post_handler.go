/*
Package handler provides HTTP handler functions for creating and managing feed posts.
*/
package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"pulsegram/internal/app/db"
	"pulsegram/internal/app/feed"
	"pulsegram/internal/app/presence"
	"pulsegram/internal/pkg/auth/jwt"
	"pulsegram/internal/pkg/errs"
	"pulsegram/internal/pkg/logx"
	"pulsegram/internal/pkg/req"
	"pulsegram/internal/pkg/resp"
)

const (
	// MaxPostTitleLength limits post titles in runes.
	MaxPostTitleLength = 120

	// MaxPostContentLength limits post bodies in runes.
	MaxPostContentLength = 10000
)

type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p *PostInput) Validate() *errs.CustomError {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)

	if p.Title == "" {
		return errs.NewError(errs.ErrTitleRequired)
	}
	if p.Content == "" {
		return errs.NewError(errs.ErrContentRequired)
	}
	if utf8.RuneCountInString(p.Title) > MaxPostTitleLength ||
		utf8.RuneCountInString(p.Content) > MaxPostContentLength {
		return errs.NewError(errs.ErrContentTooLong)
	}
	return nil
}

// canModify reports whether the identity may edit or delete content owned by ownerID.
// Admins may act on any content.
func canModify(identity *jwt.Payload, ownerID string) bool {
	return identity.ID == ownerID || identity.Role == feed.RoleAdmin
}

// HandleCreatePost persists a post and relays it to every live connection.
func HandleCreatePost(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input PostInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := input.Validate(); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		post, err := deps.Store.CreatePost(r.Context(), identity.ID, input.Title, input.Content)
		if err != nil {
			logx.Error(err, "create_post: insert failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Hub.Relay(presence.EventNewPost, post)

		resp.RespondSuccess(w, r, map[string]any{
			"post": post,
		})
	}
}

// HandleListPosts returns all posts, newest first.
func HandleListPosts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := deps.Store.ListPosts(r.Context())
		if err != nil {
			logx.Error(err, "list_posts: query failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"posts": posts,
		})
	}
}

// HandleGetPost returns a single post by id.
func HandleGetPost(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := chi.URLParam(r, "postID")

		post, err := deps.Store.GetPost(r.Context(), postID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPostNotFound))
				return
			}
			logx.Error(err, "get_post: query failed", "post_id", postID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"post": post,
		})
	}
}

// HandleUpdatePost rewrites a post's title and content. Only the owner or an
// admin may update.
func HandleUpdatePost(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		postID := chi.URLParam(r, "postID")

		var input PostInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := input.Validate(); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		existing, err := deps.Store.GetPost(r.Context(), postID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPostNotFound))
				return
			}
			logx.Error(err, "update_post: lookup failed", "post_id", postID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if !canModify(identity, existing.UserID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		post, err := deps.Store.UpdatePost(r.Context(), postID, input.Title, input.Content)
		if err != nil {
			logx.Error(err, "update_post: update failed", "post_id", postID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"post": post,
		})
	}
}

// HandleDeletePost removes a post and, through ON DELETE CASCADE, its comments.
func HandleDeletePost(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		postID := chi.URLParam(r, "postID")

		existing, err := deps.Store.GetPost(r.Context(), postID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPostNotFound))
				return
			}
			logx.Error(err, "delete_post: lookup failed", "post_id", postID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if !canModify(identity, existing.UserID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		if err := deps.Store.DeletePost(r.Context(), postID); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPostNotFound))
				return
			}
			logx.Error(err, "delete_post: delete failed", "post_id", postID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"deleted": postID,
		})
	}
}
