package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/louisbranch/adpanel/internal/web/platform/flash"
	"github.com/louisbranch/adpanel/internal/web/sessions"
	webtemplates "github.com/louisbranch/adpanel/internal/web/templates"
)

// pageContext assembles the shared layout context for a render, consuming
// any pending flash notice.
func (h *handler) pageContext(w http.ResponseWriter, r *http.Request, sess sessions.Session) webtemplates.PageContext {
	page := webtemplates.PageContext{
		AppName:     h.appName,
		CurrentPath: r.URL.Path,
		UserEmail:   sess.Email,
	}
	if notice, ok := flash.ReadAndClear(w, r); ok {
		page.Notice = &notice
	}
	return page
}

func (h *handler) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, title string, message string) {
	sess, _ := h.sessionFromRequest(r)
	page := h.pageContext(w, r, sess)
	w.WriteHeader(status)
	templ.Handler(webtemplates.ErrorPage(page, title, message)).ServeHTTP(w, r)
}
