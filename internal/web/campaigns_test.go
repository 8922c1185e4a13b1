package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/louisbranch/adpanel/internal/web/platform/flash"
	"github.com/louisbranch/adpanel/internal/web/sessions"
)

// fakePortal is a minimal remote API for handler tests.
type fakePortal struct {
	mux      *http.ServeMux
	requests []string
}

func newFakePortal(t *testing.T) (*fakePortal, *httptest.Server) {
	t.Helper()
	p := &fakePortal{mux: http.NewServeMux()}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requests = append(p.requests, r.Method+" "+r.URL.Path)
		p.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return p, server
}

func authedRequest(t *testing.T, store *sessions.MemoryStore, method, target string, form url.Values) *http.Request {
	t.Helper()
	sess := seedSession(t, store)
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.ID})
	return req
}

func TestHomeListsCampaigns(t *testing.T) {
	portal, server := newFakePortal(t)
	portal.mux.HandleFunc("/campaigns", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Fatalf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("search"); got != "promo" {
			t.Fatalf("search query = %q, want promo", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id":               7,
			"title":            "Spring Promo",
			"landing_page_url": "https://example.com",
			"is_running":       true,
			"payouts": []map[string]any{
				{"id": 1, "campaign_id": 7, "country": nil, "amount": 2.5, "currency": "EUR"},
			},
		}})
	})
	handler, store := newTestHandler(t, server.URL)

	req := authedRequest(t, store, http.MethodGet, "/?search=promo", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	doc, err := html.Parse(w.Body)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	title := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.TrimSpace(n.Data) == "Spring Promo"
	})
	if title == nil {
		t.Fatal("campaign title missing from list page")
	}
}

func TestHomeAuthFailureClearsSessionAndRedirects(t *testing.T) {
	portal, server := newFakePortal(t)
	portal.mux.HandleFunc("/campaigns", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	handler, store := newTestHandler(t, server.URL)

	req := authedRequest(t, store, http.MethodGet, "/", nil)
	sessionID := req.Cookies()[0].Value
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if location := w.Header().Get("Location"); location != "/signin" {
		t.Fatalf("location = %q, want %q", location, "/signin")
	}
	if _, err := store.Get(context.Background(), sessionID); !errors.Is(err, sessions.ErrNotFound) {
		t.Fatalf("session lookup = %v, want ErrNotFound", err)
	}
}

func TestSignInCreatesSessionAndRedirects(t *testing.T) {
	portal, server := newFakePortal(t)
	portal.mux.HandleFunc("/signin/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("sign-in sent Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh-token",
			"refresh_token": "fresh-refresh",
			"user":          map[string]any{"id": 1, "email": "user@example.com"},
		})
	})
	handler, store := newTestHandler(t, server.URL)

	form := url.Values{"email": {"user@example.com"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if location := w.Header().Get("Location"); location != "/" {
		t.Fatalf("location = %q, want %q", location, "/")
	}

	var sessionID string
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			sessionID = cookie.Value
		}
	}
	if sessionID == "" {
		t.Fatal("no session cookie set")
	}
	sess, err := store.Get(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("stored session: %v", err)
	}
	if sess.AccessToken != "fresh-token" || sess.Email != "user@example.com" {
		t.Fatalf("session = %+v", sess)
	}
}

func TestCampaignCreatePostSubmitsAndRedirects(t *testing.T) {
	var payload map[string]any
	portal, server := newFakePortal(t)
	portal.mux.HandleFunc("/campaigns", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "title": payload["title"]})
	})
	handler, store := newTestHandler(t, server.URL)

	form := url.Values{
		"title":            {"Test Campaign"},
		"landing_page_url": {"https://example.com"},
		"worldwide":        {"true"},
		"payout_country":   {"Worldwide"},
		"payout_amount":    {"10.50"},
		"payout_currency":  {"EUR"},
		"save":             {"true"},
	}
	req := authedRequest(t, store, http.MethodPost, "/campaigns/new", form)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if location := w.Header().Get("Location"); location != "/" {
		t.Fatalf("location = %q, want %q", location, "/")
	}

	payouts, ok := payload["payouts"].([]any)
	if !ok || len(payouts) != 1 {
		t.Fatalf("payouts = %v", payload["payouts"])
	}
	payout := payouts[0].(map[string]any)
	if country, present := payout["country"]; !present || country != nil {
		t.Fatalf("country = %v, want explicit null", country)
	}
	if payout["amount"] != 10.5 {
		t.Fatalf("amount = %v, want 10.5", payout["amount"])
	}
	if payload["is_running"] != false {
		t.Fatalf("is_running = %v, want false", payload["is_running"])
	}
}

func TestCampaignCreateValidationStaysLocal(t *testing.T) {
	portal, server := newFakePortal(t)
	handler, store := newTestHandler(t, server.URL)

	form := url.Values{
		"title":            {""},
		"landing_page_url": {"https://example.com"},
		"payout_country":   {"US"},
		"payout_amount":    {"10"},
		"payout_currency":  {"EUR"},
		"save":             {"true"},
	}
	req := authedRequest(t, store, http.MethodPost, "/campaigns/new", form)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if len(portal.requests) != 0 {
		t.Fatalf("portal requests = %v, want none", portal.requests)
	}

	doc, err := html.Parse(w.Body)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	message := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.TrimSpace(n.Data) == "Title is required"
	})
	if message == nil {
		t.Fatal("validation message missing from form page")
	}
	preserved := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "input" &&
			attr(n, "name") == "payout_amount" && attr(n, "value") == "10"
	})
	if preserved == nil {
		t.Fatal("entered amount not preserved after validation failure")
	}
}

func TestCampaignAddRowRerendersWithoutSubmit(t *testing.T) {
	portal, server := newFakePortal(t)
	handler, store := newTestHandler(t, server.URL)

	form := url.Values{
		"title":            {"Draft"},
		"landing_page_url": {"https://example.com"},
		"payout_country":   {"US"},
		"payout_amount":    {"5"},
		"payout_currency":  {"EUR"},
		"add_row":          {"true"},
	}
	req := authedRequest(t, store, http.MethodPost, "/campaigns/new", form)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(portal.requests) != 0 {
		t.Fatalf("portal requests = %v, want none", portal.requests)
	}
	doc, err := html.Parse(w.Body)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	var amounts int
	findNode(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "input" && attr(n, "name") == "payout_amount" {
			amounts++
		}
		return false
	})
	if amounts != 2 {
		t.Fatalf("amount inputs = %d, want 2", amounts)
	}
}

func TestCampaignToggleFailureFlashesError(t *testing.T) {
	portal, server := newFakePortal(t)
	portal.mux.HandleFunc("/campaigns/7/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler, store := newTestHandler(t, server.URL)

	form := url.Values{"is_running": {"true"}}
	req := authedRequest(t, store, http.MethodPost, "/campaigns/7/toggle", form)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if location := w.Header().Get("Location"); location != "/" {
		t.Fatalf("location = %q, want %q", location, "/")
	}
	var noticeCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == flash.CookieName && cookie.Value != "" {
			noticeCookie = cookie
		}
	}
	if noticeCookie == nil {
		t.Fatal("no flash notice cookie set")
	}
}

func TestCampaignDeletePostRemovesAndRedirects(t *testing.T) {
	portal, server := newFakePortal(t)
	portal.mux.HandleFunc("/campaigns/7/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	handler, store := newTestHandler(t, server.URL)

	req := authedRequest(t, store, http.MethodPost, "/campaigns/7/delete", url.Values{})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if got := portal.requests; len(got) != 1 || got[0] != "DELETE /campaigns/7/" {
		t.Fatalf("portal requests = %v", got)
	}
}

func TestCampaignEditNotFound(t *testing.T) {
	portal, server := newFakePortal(t)
	portal.mux.HandleFunc("/campaigns/9/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler, store := newTestHandler(t, server.URL)

	req := authedRequest(t, store, http.MethodGet, "/campaigns/9/edit", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
