package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/louisbranch/adpanel/internal/portal"
	"github.com/louisbranch/adpanel/internal/web/platform/flash"
	"github.com/louisbranch/adpanel/internal/web/sessions"
	webtemplates "github.com/louisbranch/adpanel/internal/web/templates"
)

// handleSignIn renders the sign-in page and exchanges credentials for a
// session. Signed-in users are sent back to the campaign list.
func (h *handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessionFromRequest(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		page := h.pageContext(w, r, sessions.Session{})
		templ.Handler(webtemplates.SignInPage(page, webtemplates.AuthParams{})).ServeHTTP(w, r)
	case http.MethodPost:
		h.signIn(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderErrorPage(w, r, http.StatusBadRequest, "Sign in failed", "failed to parse sign-in form")
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	client, err := h.anonPortalClient()
	if err != nil {
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Sign in failed", "portal client unavailable")
		return
	}
	creds, err := client.SignIn(r.Context(), email, password)
	if err != nil {
		page := h.pageContext(w, r, sessions.Session{})
		w.WriteHeader(authFailureStatus(err))
		params := webtemplates.AuthParams{Email: email, Errors: authMessages(err, "Invalid email or password")}
		templ.Handler(webtemplates.SignInPage(page, params)).ServeHTTP(w, r)
		return
	}

	accountEmail := creds.User.Email
	if accountEmail == "" {
		accountEmail = email
	}
	now := time.Now()
	sess, err := h.sessions.Create(r.Context(), sessions.Session{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Email:        accountEmail,
		ExpiresAt:    sessions.ExpiresAt(creds.AccessToken, now, sessions.DefaultTTL),
	})
	if err != nil {
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Sign in failed", "failed to store session")
		return
	}
	setSessionCookie(w, sess.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleSignUp renders the registration page and creates an account. A
// successful registration lands on sign-in with a notice rather than
// starting a session, matching the portal's 201 contract.
func (h *handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessionFromRequest(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		page := h.pageContext(w, r, sessions.Session{})
		templ.Handler(webtemplates.SignUpPage(page, webtemplates.AuthParams{})).ServeHTTP(w, r)
	case http.MethodPost:
		h.signUp(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *handler) signUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderErrorPage(w, r, http.StatusBadRequest, "Sign up failed", "failed to parse sign-up form")
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	passwordConfirm := r.FormValue("password_confirm")

	client, err := h.anonPortalClient()
	if err != nil {
		h.renderErrorPage(w, r, http.StatusInternalServerError, "Sign up failed", "portal client unavailable")
		return
	}
	if _, err := client.SignUp(r.Context(), email, password, passwordConfirm); err != nil {
		page := h.pageContext(w, r, sessions.Session{})
		w.WriteHeader(authFailureStatus(err))
		params := webtemplates.AuthParams{Email: email, Errors: authMessages(err, "Failed to create account")}
		templ.Handler(webtemplates.SignUpPage(page, params)).ServeHTTP(w, r)
		return
	}

	flash.Write(w, r, flash.Success("Account created. Sign in to continue."))
	http.Redirect(w, r, "/signin", http.StatusFound)
}

// handleSignOut drops the session and returns to sign-in.
func (h *handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.dropSession(w, r)
	http.Redirect(w, r, "/signin", http.StatusFound)
}

// authMessages extracts the portal's flattened messages for display on the
// auth pages, with a fallback for opaque failures.
func authMessages(err error, fallback string) []string {
	var perr *portal.Error
	if errors.As(err, &perr) && len(perr.Messages) > 0 {
		return perr.Messages
	}
	return []string{fallback}
}

func authFailureStatus(err error) int {
	switch {
	case portal.IsKind(err, portal.KindNetwork):
		return http.StatusBadGateway
	case portal.IsKind(err, portal.KindServer):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}
