package web

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:8086" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8086")
	}
	if cfg.APIBaseURL != "http://localhost:8000/api" {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "http://localhost:8000/api")
	}
	if cfg.AppName != "" {
		t.Fatalf("AppName = %q, want empty", cfg.AppName)
	}
	if cfg.SessionDBPath != "" {
		t.Fatalf("SessionDBPath = %q, want empty", cfg.SessionDBPath)
	}
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("ADPANEL_WEB_API_BASE_URL", "https://portal.example.com/api")

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.APIBaseURL != "https://portal.example.com/api" {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "https://portal.example.com/api")
	}
}

func TestParseConfigFlagOverride(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "127.0.0.1:9002", "-session-db", "/tmp/sessions.db"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9002" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "127.0.0.1:9002")
	}
	if cfg.SessionDBPath != "/tmp/sessions.db" {
		t.Fatalf("SessionDBPath = %q, want %q", cfg.SessionDBPath, "/tmp/sessions.db")
	}
}
