package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHAT_SERVER_URL", "")
	t.Setenv("CHAT_DATA_PATH", "")
	t.Setenv("CHAT_LOG_LEVEL", "")

	cfg := Load()
	if cfg.ServerURL != "http://localhost:3080" {
		t.Fatalf("server url = %q", cfg.ServerURL)
	}
	if cfg.DataPath != "" || cfg.LogFile != "" {
		t.Fatalf("optional paths not empty: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHAT_SERVER_URL", "https://chat.example.com")
	t.Setenv("CHAT_DATA_PATH", "/var/lib/chat")
	t.Setenv("CHAT_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.ServerURL != "https://chat.example.com" {
		t.Fatalf("server url = %q", cfg.ServerURL)
	}
	if cfg.DataPath != "/var/lib/chat" || cfg.LogLevel != "debug" {
		t.Fatalf("cfg = %+v", cfg)
	}
}
