package config

import (
	"strings"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DBPath != "safecast.db" {
		t.Errorf("expected default db path safecast.db, got %s", cfg.DBPath)
	}
	if cfg.MaxRooms != 1000 {
		t.Errorf("expected default max rooms 1000, got %d", cfg.MaxRooms)
	}
	if !cfg.PeerLeftEvents {
		t.Error("expected peer_left events on by default")
	}
	if len(cfg.STUNURLs) != 2 {
		t.Errorf("expected 2 default STUN urls, got %v", cfg.STUNURLs)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9091")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("MAX_ROOMS", "50")
	t.Setenv("PEER_LEFT_EVENTS", "false")
	t.Setenv("STUN_URLS", " stun:stun.example.org:3478 , ")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := Load()
	if cfg.Port != "9091" {
		t.Errorf("expected port 9091, got %s", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("expected db path /tmp/test.db, got %s", cfg.DBPath)
	}
	if cfg.MaxRooms != 50 {
		t.Errorf("expected max rooms 50, got %d", cfg.MaxRooms)
	}
	if cfg.PeerLeftEvents {
		t.Error("expected peer_left events disabled")
	}
	if len(cfg.STUNURLs) != 1 || cfg.STUNURLs[0] != "stun:stun.example.org:3478" {
		t.Errorf("unexpected stun urls %v", cfg.STUNURLs)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %s", cfg.ShutdownTimeout)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_ROOMS", "notanumber")
	t.Setenv("PEER_LEFT_EVENTS", "maybe")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()
	if cfg.MaxRooms != 1000 {
		t.Errorf("expected fallback max rooms 1000, got %d", cfg.MaxRooms)
	}
	if !cfg.PeerLeftEvents {
		t.Error("expected fallback to true")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected fallback 10s, got %s", cfg.ShutdownTimeout)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := map[string]func(*Config){
		"LOG_LEVEL":       func(c *Config) { c.LogLevel = "loud" },
		"LOG_FORMAT":      func(c *Config) { c.LogFormat = "xml" },
		"PUBLIC_BASE_URL": func(c *Config) { c.PublicBaseURL = "not a url" },
		"STUN_URLS":       func(c *Config) { c.STUNURLs = []string{"http://example.org"} },
		"TURN_URLS":       func(c *Config) { c.TURNURLs = []string{"stun:example.org:3478"} },
		"TURN_USERNAME":   func(c *Config) { c.TURNURLs = []string{"turn:example.org:3478"} },
	}
	for name, mutate := range cases {
		cfg := Load()
		mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", name)
			continue
		}
		if !strings.Contains(err.Error(), name) {
			t.Errorf("%s: error should name the setting, got %v", name, err)
		}
	}
}

func TestICEServers(t *testing.T) {
	cfg := Config{
		STUNURLs:       []string{"stun:stun1.l.google.com:19302"},
		TURNURLs:       []string{"turn:turn.example.org:3478?transport=udp"},
		TURNUsername:   "user",
		TURNCredential: "secret",
	}
	servers := cfg.ICEServers()
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(servers))
	}
	if servers[1].Username != "user" || servers[1].CredentialType != webrtc.ICECredentialTypePassword {
		t.Errorf("unexpected turn server %+v", servers[1])
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error: empty log level and base url")
	}
}

func TestConfigureLogging(t *testing.T) {
	cfg := Load()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	if err := cfg.ConfigureLogging(); err != nil {
		t.Fatalf("configure logging: %v", err)
	}
	cfg.LogLevel = "bogus"
	if err := cfg.ConfigureLogging(); err == nil {
		t.Error("expected error for bogus level")
	}
}
