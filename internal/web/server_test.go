package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/louisbranch/adpanel/internal/web/sessions"
)

func newTestHandler(t *testing.T, apiBaseURL string) (http.Handler, *sessions.MemoryStore) {
	t.Helper()
	store := sessions.NewMemoryStore()
	return NewHandler(Config{APIBaseURL: apiBaseURL, AppName: "AdPanel"}, store), store
}

func seedSession(t *testing.T, store *sessions.MemoryStore) sessions.Session {
	t.Helper()
	sess, err := store.Create(context.Background(), sessions.Session{
		AccessToken: "token-1",
		Email:       "user@example.com",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return sess
}

func TestHomeRedirectsUnauthenticatedToSignIn(t *testing.T) {
	handler, _ := newTestHandler(t, "http://portal.local/api")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if location := w.Header().Get("Location"); location != "/signin" {
		t.Fatalf("location = %q, want %q", location, "/signin")
	}
}

func TestHomeRejectsNonGET(t *testing.T) {
	handler, _ := newTestHandler(t, "http://portal.local/api")
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	if allow := w.Header().Get("Allow"); allow != http.MethodGet {
		t.Fatalf("Allow = %q, want %q", allow, http.MethodGet)
	}
}

func TestSignOutRequiresPost(t *testing.T) {
	handler, _ := newTestHandler(t, "http://portal.local/api")
	req := httptest.NewRequest(http.MethodGet, "/signout", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestSignOutDropsSession(t *testing.T) {
	handler, store := newTestHandler(t, "http://portal.local/api")
	sess := seedSession(t, store)

	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.ID})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if location := w.Header().Get("Location"); location != "/signin" {
		t.Fatalf("location = %q, want %q", location, "/signin")
	}
	if _, err := store.Get(context.Background(), sess.ID); !errors.Is(err, sessions.ErrNotFound) {
		t.Fatalf("session lookup after signout = %v, want ErrNotFound", err)
	}
}

func TestSignInRedirectsAuthenticatedToHome(t *testing.T) {
	handler, store := newTestHandler(t, "http://portal.local/api")
	sess := seedSession(t, store)

	req := httptest.NewRequest(http.MethodGet, "/signin", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.ID})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if location := w.Header().Get("Location"); location != "/" {
		t.Fatalf("location = %q, want %q", location, "/")
	}
}

func TestSignInPageRendersForm(t *testing.T) {
	handler, _ := newTestHandler(t, "http://portal.local/api")
	req := httptest.NewRequest(http.MethodGet, "/signin", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	doc, err := html.Parse(w.Body)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	form := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "form" && attr(n, "action") == "/signin"
	})
	if form == nil {
		t.Fatal("no sign-in form in page")
	}
	for _, name := range []string{"email", "password"} {
		input := findNode(form, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "input" && attr(n, "name") == name
		})
		if input == nil {
			t.Fatalf("no %q input in sign-in form", name)
		}
	}
}

func TestUpHealth(t *testing.T) {
	handler, _ := newTestHandler(t, "http://portal.local/api")
	req := httptest.NewRequest(http.MethodGet, "/up", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "OK" {
		t.Fatalf("body = %q, want OK", w.Body.String())
	}
}

func TestNewServerRequiresAddr(t *testing.T) {
	if _, err := NewServer(Config{}); err == nil {
		t.Fatal("expected error for missing http address")
	}
}

// findNode walks the parsed document for the first node matching fn.
func findNode(n *html.Node, fn func(*html.Node) bool) *html.Node {
	if fn(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, fn); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
