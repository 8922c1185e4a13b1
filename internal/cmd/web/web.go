// Package web wires configuration and lifecycle for the campaign portal
// web command.
package web

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/louisbranch/adpanel/internal/platform/config"
	"github.com/louisbranch/adpanel/internal/platform/otel"
	"github.com/louisbranch/adpanel/internal/web"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr      string `env:"ADPANEL_WEB_HTTP_ADDR"    envDefault:"localhost:8086"`
	APIBaseURL    string `env:"ADPANEL_WEB_API_BASE_URL" envDefault:"http://localhost:8000/api"`
	AppName       string `env:"ADPANEL_WEB_APP_NAME"`
	SessionDBPath string `env:"ADPANEL_WEB_SESSION_DB"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "campaign API base URL")
	fs.StringVar(&cfg.AppName, "app-name", cfg.AppName, "application display name")
	fs.StringVar(&cfg.SessionDBPath, "session-db", cfg.SessionDBPath, "SQLite session database path (in-memory when empty)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the campaign portal web server.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "adpanel-web")
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	server, err := web.NewServer(web.Config{
		HTTPAddr:      cfg.HTTPAddr,
		APIBaseURL:    cfg.APIBaseURL,
		AppName:       cfg.AppName,
		SessionDBPath: cfg.SessionDBPath,
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}
