/*
Package handler provides HTTP handler functions for the Google OAuth sign-in flow.

The flow mirrors the password login: after a successful code exchange the server
upserts the account, signs the usual identity JWT, and redirects the browser back
to the frontend with the token in the query string.
*/
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"pulsegram/internal/pkg/errs"
	"pulsegram/internal/pkg/logx"
	"pulsegram/internal/pkg/randx"
	"pulsegram/internal/pkg/resp"
)

const (
	// oauthStateCookie carries the CSRF state between redirect and callback.
	oauthStateCookie = "oauth_state"

	// oauthStateTTL bounds how long a started sign-in stays completable.
	oauthStateTTL = 10 * time.Minute

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// googleProfile is the subset of the userinfo response the server stores.
type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// googleOAuthConfig builds the oauth2 exchange configuration from app settings.
func googleOAuthConfig(deps *AppDeps) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     deps.Config.GoogleClientID,
		ClientSecret: deps.Config.GoogleClientSecret,
		RedirectURL:  deps.Config.OAuthRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// HandleGoogleLogin starts the OAuth flow: it sets the state cookie and
// redirects the browser to Google's consent screen.
func HandleGoogleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := randx.StateToken()
		if err != nil {
			logx.Error(err, "oauth: failed to generate state token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/",
			MaxAge:   int(oauthStateTTL.Seconds()),
			HttpOnly: true,
			Secure:   deps.Config.Environment != "development",
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, googleOAuthConfig(deps).AuthCodeURL(state), http.StatusTemporaryRedirect)
	}
}

// HandleGoogleCallback finishes the OAuth flow: it validates the state,
// exchanges the code, fetches the Google profile, upserts the account, and
// redirects back to the frontend with a signed identity token.
func HandleGoogleCallback(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stateCookie, err := r.Cookie(oauthStateCookie)
		if err != nil || !randx.IsValidStateToken(stateCookie.Value) ||
			stateCookie.Value != r.URL.Query().Get("state") {
			logx.Warn("oauth: state mismatch on callback")
			resp.RespondError(w, r, errs.NewError(errs.ErrOAuthFailed))
			return
		}

		// The state is single-use.
		http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

		code := r.URL.Query().Get("code")
		if code == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrOAuthFailed))
			return
		}

		conf := googleOAuthConfig(deps)

		token, err := conf.Exchange(r.Context(), code)
		if err != nil {
			logx.Error(err, "oauth: code exchange failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrOAuthFailed))
			return
		}

		profile, err := fetchGoogleProfile(r, conf, token)
		if err != nil {
			logx.Error(err, "oauth: profile fetch failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrOAuthFailed))
			return
		}

		if profile.Name == "" {
			profile.Name = "Google User"
		}

		user, err := deps.Store.UpsertOAuthUser(r.Context(), "google", profile.ID, profile.Name, profile.Email)
		if err != nil {
			logx.Error(err, "oauth: account upsert failed", "subject", profile.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		identityToken, err := issueToken(deps, user)
		if err != nil {
			logx.Error(err, "oauth: jwt generation failed", "user_id", user.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		redirectURL := fmt.Sprintf("%s/auth-success?token=%s",
			deps.Config.FrontendURL, url.QueryEscape(identityToken))

		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}
}

// fetchGoogleProfile retrieves the signed-in user's profile with the exchanged token.
func fetchGoogleProfile(r *http.Request, conf *oauth2.Config, token *oauth2.Token) (googleProfile, error) {
	client := conf.Client(r.Context(), token)

	res, err := client.Get(googleUserInfoURL)
	if err != nil {
		return googleProfile{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo endpoint returned status %d", res.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(res.Body).Decode(&profile); err != nil {
		return googleProfile{}, err
	}

	if profile.ID == "" {
		return googleProfile{}, fmt.Errorf("userinfo response missing subject id")
	}

	return profile, nil
}
