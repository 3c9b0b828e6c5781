package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	log "github.com/sirupsen/logrus"
)

// DefaultSTUNURLs are the public STUN servers advertised when none are set.
const DefaultSTUNURLs = "stun:stun1.l.google.com:19302,stun:stun2.l.google.com:19302"

// Config holds server configuration loaded from environment variables.
type Config struct {
	Port              string
	MetricsPort       string
	DBPath            string
	MaxRooms          int
	SendBuffer        int
	MaxMessageBytes   int
	MessagesPerSecond int
	PeerLeftEvents    bool
	PublicBaseURL     string

	STUNURLs       []string
	TURNURLs       []string
	TURNUsername   string
	TURNCredential string

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:              envOrDefault("PORT", "8080"),
		MetricsPort:       envOrDefault("METRICS_PORT", "9090"),
		DBPath:            envOrDefault("DB_PATH", "safecast.db"),
		MaxRooms:          envOrDefaultInt("MAX_ROOMS", 1000),
		SendBuffer:        envOrDefaultInt("SEND_BUFFER", 256),
		MaxMessageBytes:   envOrDefaultInt("MAX_MESSAGE_BYTES", 64*1024),
		MessagesPerSecond: envOrDefaultInt("MESSAGES_PER_SECOND", 50),
		PeerLeftEvents:    envOrDefaultBool("PEER_LEFT_EVENTS", true),
		PublicBaseURL:     envOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		STUNURLs:          splitList(envOrDefault("STUN_URLS", DefaultSTUNURLs)),
		TURNURLs:          splitList(os.Getenv("TURN_URLS")),
		TURNUsername:      os.Getenv("TURN_USERNAME"),
		TURNCredential:    os.Getenv("TURN_CREDENTIAL"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout:   envOrDefaultDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate reports settings that cannot be fixed by falling back to a default.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT: invalid format %q (expected text or json)", c.LogFormat)
	}
	u, err := url.Parse(c.PublicBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PUBLIC_BASE_URL: invalid url %q", c.PublicBaseURL)
	}
	for _, raw := range c.STUNURLs {
		if err := checkICEURL(raw, stun.SchemeTypeSTUN, stun.SchemeTypeSTUNS); err != nil {
			return fmt.Errorf("STUN_URLS: %w", err)
		}
	}
	for _, raw := range c.TURNURLs {
		if err := checkICEURL(raw, stun.SchemeTypeTURN, stun.SchemeTypeTURNS); err != nil {
			return fmt.Errorf("TURN_URLS: %w", err)
		}
	}
	if len(c.TURNURLs) > 0 && (c.TURNUsername == "" || c.TURNCredential == "") {
		return fmt.Errorf("TURN_URLS set without TURN_USERNAME and TURN_CREDENTIAL")
	}
	return nil
}

// ICEServers returns the ICE server list handed to clients for their peer
// connections. The relay itself never dials them.
func (c Config) ICEServers() []webrtc.ICEServer {
	servers := []webrtc.ICEServer{}
	if len(c.STUNURLs) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: c.STUNURLs})
	}
	if len(c.TURNURLs) > 0 {
		servers = append(servers, webrtc.ICEServer{
			URLs:           c.TURNURLs,
			Username:       c.TURNUsername,
			Credential:     c.TURNCredential,
			CredentialType: webrtc.ICECredentialTypePassword,
		})
	}
	return servers
}

// ConfigureLogging applies the log level and format to the standard logrus logger.
func (c Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	switch c.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)
	return nil
}

func checkICEURL(raw string, schemes ...stun.SchemeType) error {
	uri, err := stun.ParseURI(raw)
	if err != nil {
		return fmt.Errorf("%q: %w", raw, err)
	}
	for _, s := range schemes {
		if uri.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%q: unexpected scheme %s", raw, uri.Scheme)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envOrDefaultBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
