// Package web hosts the browser-facing campaign portal: sign-in/sign-up,
// the campaign list, and the create/edit forms, all rendered server-side
// over the remote portal API.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/louisbranch/adpanel/internal/platform/timeouts"
	"github.com/louisbranch/adpanel/internal/portal"
	"github.com/louisbranch/adpanel/internal/web/sessions"
)

const defaultAppName = "AdPanel"

// Config defines the inputs for the web server.
type Config struct {
	HTTPAddr   string
	APIBaseURL string
	AppName    string
	// SessionDBPath selects the SQLite session store; in-memory when empty.
	SessionDBPath string
}

// Server hosts the campaign portal HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      sessions.Store
}

type handler struct {
	appName    string
	apiBaseURL string
	sessions   sessions.Store
	httpClient *http.Client
}

// NewHandler creates the HTTP handler with an injectable session store,
// mainly for tests. NewServer is the process entrypoint.
func NewHandler(config Config, store sessions.Store) http.Handler {
	appName := strings.TrimSpace(config.AppName)
	if appName == "" {
		appName = defaultAppName
	}
	h := &handler{
		appName:    appName,
		apiBaseURL: config.APIBaseURL,
		sessions:   store,
		httpClient: &http.Client{
			Timeout:   timeouts.PortalRequest,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/signin", h.handleSignIn)
	mux.HandleFunc("/signup", h.handleSignUp)
	mux.HandleFunc("/signout", h.handleSignOut)
	mux.HandleFunc("/campaigns/new", h.handleCampaignNew)
	mux.HandleFunc("/campaigns/", h.handleCampaignAction)
	mux.HandleFunc("/", h.handleHome)
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// portalClient builds a portal client bound to one session's access token.
// An auth failure drops the stored session so the next request falls back
// to the sign-in redirect.
func (h *handler) portalClient(sess sessions.Session) (*portal.Client, error) {
	return portal.NewClient(portal.Config{
		BaseURL:    h.apiBaseURL,
		Tokens:     staticToken(sess.AccessToken),
		HTTPClient: h.httpClient,
		OnAuthFailure: func() {
			_ = h.sessions.Delete(context.Background(), sess.ID)
		},
	})
}

// anonPortalClient builds a portal client without a session, for sign-in
// and sign-up.
func (h *handler) anonPortalClient() (*portal.Client, error) {
	return portal.NewClient(portal.Config{
		BaseURL:    h.apiBaseURL,
		HTTPClient: h.httpClient,
	})
}

type staticToken string

func (t staticToken) AccessToken() string { return string(t) }

// NewServer builds a configured web server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}

	var store sessions.Store
	if strings.TrimSpace(config.SessionDBPath) != "" {
		sqliteStore, err := sessions.OpenSQLite(config.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		store = sqliteStore
	} else {
		store = sessions.NewMemoryStore()
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(config, store),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
		store:      store,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends. On
// cancellation it performs a bounded shutdown so in-flight requests are
// drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("web listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases resources held by the server.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("close session store: %v", err)
		}
	}
}
