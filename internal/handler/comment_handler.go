/*
Package handler provides HTTP handler functions for post comments.
*/
package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"pulsegram/internal/app/db"
	"pulsegram/internal/app/presence"
	"pulsegram/internal/pkg/auth/jwt"
	"pulsegram/internal/pkg/errs"
	"pulsegram/internal/pkg/logx"
	"pulsegram/internal/pkg/req"
	"pulsegram/internal/pkg/resp"
)

// MaxCommentLength limits comment text in runes.
const MaxCommentLength = 2000

type CommentInput struct {
	Text string `json:"text"`
}

func (c *CommentInput) Validate() *errs.CustomError {
	c.Text = strings.TrimSpace(c.Text)

	if c.Text == "" {
		return errs.NewError(errs.ErrContentRequired)
	}
	if utf8.RuneCountInString(c.Text) > MaxCommentLength {
		return errs.NewError(errs.ErrContentTooLong)
	}
	return nil
}

// HandleCreateComment attaches a comment to a post and relays it to every
// live connection together with the parent post id.
func HandleCreateComment(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		postID := chi.URLParam(r, "postID")

		var input CommentInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := input.Validate(); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if _, err := deps.Store.GetPost(r.Context(), postID); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPostNotFound))
				return
			}
			logx.Error(err, "create_comment: post lookup failed", "post_id", postID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		comment, err := deps.Store.CreateComment(r.Context(), postID, identity.ID, input.Text)
		if err != nil {
			logx.Error(err, "create_comment: insert failed", "post_id", postID, "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Hub.Relay(presence.EventNewComment, map[string]any{
			"postId":  postID,
			"comment": comment,
		})

		resp.RespondSuccess(w, r, map[string]any{
			"comment": comment,
		})
	}
}

// HandleListComments returns a post's comments in posting order.
func HandleListComments(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := chi.URLParam(r, "postID")

		if _, err := deps.Store.GetPost(r.Context(), postID); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPostNotFound))
				return
			}
			logx.Error(err, "list_comments: post lookup failed", "post_id", postID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		comments, err := deps.Store.ListComments(r.Context(), postID)
		if err != nil {
			logx.Error(err, "list_comments: query failed", "post_id", postID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"comments": comments,
		})
	}
}

// HandleUpdateComment rewrites a comment's text. Only the owner or an admin
// may update.
func HandleUpdateComment(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		commentID := chi.URLParam(r, "commentID")

		var input CommentInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := input.Validate(); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		existing, err := deps.Store.GetComment(r.Context(), commentID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrCommentNotFound))
				return
			}
			logx.Error(err, "update_comment: lookup failed", "comment_id", commentID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if !canModify(identity, existing.UserID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		comment, err := deps.Store.UpdateComment(r.Context(), commentID, input.Text)
		if err != nil {
			logx.Error(err, "update_comment: update failed", "comment_id", commentID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"comment": comment,
		})
	}
}

// HandleDeleteComment removes a comment. Only the owner or an admin may delete.
func HandleDeleteComment(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		commentID := chi.URLParam(r, "commentID")

		existing, err := deps.Store.GetComment(r.Context(), commentID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrCommentNotFound))
				return
			}
			logx.Error(err, "delete_comment: lookup failed", "comment_id", commentID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if !canModify(identity, existing.UserID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		if err := deps.Store.DeleteComment(r.Context(), commentID); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrCommentNotFound))
				return
			}
			logx.Error(err, "delete_comment: delete failed", "comment_id", commentID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"deleted": commentID,
		})
	}
}
