package web

import (
	"net/http"

	"github.com/louisbranch/adpanel/internal/web/sessions"
)

const sessionCookieName = "adpanel_session"

// setSessionCookie writes the session cookie to the response.
func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionFromRequest reads the session cookie and looks up the session.
// Missing or expired sessions return false.
func (h *handler) sessionFromRequest(r *http.Request) (sessions.Session, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return sessions.Session{}, false
	}
	sess, err := h.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return sessions.Session{}, false
	}
	return sess, true
}

// requireSession resolves the current session or redirects to sign-in.
func (h *handler) requireSession(w http.ResponseWriter, r *http.Request) (sessions.Session, bool) {
	sess, ok := h.sessionFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/signin", http.StatusFound)
		return sessions.Session{}, false
	}
	return sess, true
}

// dropSession removes the stored session and its cookie.
func (h *handler) dropSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		_ = h.sessions.Delete(r.Context(), cookie.Value)
	}
	clearSessionCookie(w)
}
