/*
Package handler provides HTTP handler functions for account profiles and avatar uploads.
*/
package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"pulsegram/internal/app/storage"
	"pulsegram/internal/pkg/auth/jwt"
	"pulsegram/internal/pkg/errs"
	"pulsegram/internal/pkg/logx"
	"pulsegram/internal/pkg/req"
	"pulsegram/internal/pkg/resp"
)

// HandleGetProfile returns the authenticated account's profile.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		user, err := deps.Store.GetUserByID(r.Context(), identity.ID)
		if err != nil {
			logx.Warn("get_profile: user not found", "id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": userResponse(deps, r, user),
		})
	}
}

type UpdateProfileInput struct {
	Name string `json:"name"`
}

// HandleUpdateProfile changes the display name and re-issues the token so the
// new name is reflected in subsequent announces.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !validDisplayName(input.Name) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}

		user, err := deps.Store.UpdateUserName(r.Context(), identity.ID, input.Name)
		if err != nil {
			logx.Error(err, "update_profile: failed to update name", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		token, err := issueToken(deps, user)
		if err != nil {
			logx.Error(err, "update_profile: jwt generation failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  userResponse(deps, r, user),
		})
	}
}

// HandleUploadAvatar accepts a multipart avatar upload, stores it, and records
// the storage key on the account.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if deps.Avatars == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageDisabled))
			return
		}

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}
		defer file.Close()

		if header.Size <= 0 || header.Size > storage.MaxAvatarSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrRequestEntityTooLarge))
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if customErr := storage.ValidateAvatarType(header.Filename, mimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		avatarKey := fmt.Sprintf("avatars/%s%s", identity.ID, ext)

		if err := deps.Avatars.Upload(r.Context(), avatarKey, mimeType, file); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		if err := deps.Store.UpdateUserAvatar(r.Context(), identity.ID, avatarKey); err != nil {
			logx.Error(err, "upload_avatar: failed to record avatar key", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"avatar": deps.AvatarURL(r.Context(), avatarKey),
		})
	}
}
