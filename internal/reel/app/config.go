package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/reel/internal/reel/media"
	"github.com/aussiebroadwan/reel/pkg/httpx"
)

type Config struct {
	PublicBaseURL string // Required in production: scheme and host clients reach this service on (default: http://localhost:PORT)

	HLSTokenSecret          string        // Optional: master secret for HLS access tokens (default: ephemeral)
	HLSTokenPreviousSecrets []string      // Optional: retired secrets still accepted for verification (comma separated)
	HLSTokenTTL             time.Duration // Optional: access token lifetime (default: 10m)
	HLSTokenIssuer          string        // Optional: iss claim of access tokens (default: reel)
	SegmentExtension        string        // Optional: segment file extension (default: .ts)

	TicketTTL       time.Duration // Optional: ticket lifetime (default: 24h)
	TicketRetention time.Duration // Optional: how long expired tickets are kept (default: 7 days)
	TicketStore     string        // Optional: ticket storage (sqlite, redis) (default: sqlite)
	RedisAddr       string        // Required for TicketStore=redis
	RedisPassword   string        // Optional
	RedisDB         int           // Optional (default: 0)
	RedisKeyPrefix  string        // Optional (default: reel)

	PlayerSecurityKey string        // Required for ticket redemption: token authentication key of the video host
	PlayerBaseURL     string        // Optional: embed player base URL
	PlayerLinkTTL     time.Duration // Optional: signed player link lifetime (default: 3s)

	ObjectStore    string // Optional: media storage (fs, s3) (default: fs)
	ObjectStoreDir string // Optional: media root for ObjectStore=fs (default: ./media)
	S3             media.S3Config

	KeySource       string // Optional: where content keys live (fs, object) (default: fs)
	KeyDir          string // Optional: key directory for KeySource=fs (default: ./keys)
	KeyMasterSecret string // Optional: secret unsealing .key.sealed files

	AuthJWKSURL     string        // Required: JWKS of the platform identity service
	AuthIssuer      string        // Optional: expected iss of principal tokens
	AuthJWKSRefresh time.Duration // Optional: JWKS refresh interval (default: 5m)

	DatabaseFile      string // Optional: path to SQLite database file (default: ./reel.db)
	DirectorySeedFile string // Optional: YAML file of viewers, enrollments and sessions loaded at startup

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	RateLimitMedia  httpx.RateLimitConfig
	RateLimitMint   httpx.RateLimitConfig
	RateLimitRedeem httpx.RateLimitConfig
	RateLimitAdmin  httpx.RateLimitConfig
}

func LoadConfig() Config {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) Config {
	env := envReader(getenv)

	cfg := Config{
		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL"), "/"),

		HLSTokenSecret:          getenv("HLS_TOKEN_SECRET"),
		HLSTokenPreviousSecrets: splitList(getenv("HLS_TOKEN_PREVIOUS_SECRETS")),
		HLSTokenTTL:             env.duration("HLS_TOKEN_TTL", 10*time.Minute),
		HLSTokenIssuer:          env.str("HLS_TOKEN_ISSUER", "reel"),
		SegmentExtension:        env.str("SEGMENT_EXTENSION", ".ts"),

		TicketTTL:       env.duration("TICKET_TTL", 24*time.Hour),
		TicketRetention: env.duration("TICKET_RETENTION", 7*24*time.Hour),
		TicketStore:     strings.ToLower(env.str("TICKET_STORE", "sqlite")),
		RedisAddr:       getenv("REDIS_ADDR"),
		RedisPassword:   getenv("REDIS_PASSWORD"),
		RedisDB:         env.integer("REDIS_DB", 0),
		RedisKeyPrefix:  env.str("REDIS_KEY_PREFIX", "reel"),

		PlayerSecurityKey: getenv("PLAYER_SECURITY_KEY"),
		PlayerBaseURL:     getenv("PLAYER_BASE_URL"),
		PlayerLinkTTL:     env.duration("PLAYER_LINK_TTL", 3*time.Second),

		ObjectStore:    strings.ToLower(env.str("OBJECT_STORE", "fs")),
		ObjectStoreDir: env.str("OBJECT_STORE_DIR", "media"),
		S3: media.S3Config{
			Bucket:          getenv("S3_BUCKET"),
			Region:          env.str("S3_REGION", "us-east-1"),
			Endpoint:        getenv("S3_ENDPOINT"),
			AccessKeyID:     getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: getenv("S3_SECRET_ACCESS_KEY"),
			UsePathStyle:    env.boolean("S3_USE_PATH_STYLE", false),
		},

		KeySource:       strings.ToLower(env.str("KEY_SOURCE", "fs")),
		KeyDir:          env.str("KEY_DIR", "keys"),
		KeyMasterSecret: getenv("KEY_MASTER_SECRET"),

		AuthJWKSURL:     getenv("AUTH_JWKS_URL"),
		AuthIssuer:      getenv("AUTH_ISSUER"),
		AuthJWKSRefresh: env.duration("AUTH_JWKS_REFRESH", 5*time.Minute),

		DatabaseFile:      env.str("DATABASE_FILE", "reel.db"),
		DirectorySeedFile: getenv("DIRECTORY_SEED_FILE"),

		Env:                  env.str("ENV", "dev"),
		LogLevel:             env.str("LOG_LEVEL", "info"),
		LogFormat:            env.str("LOG_FORMAT", "json"),
		Port:                 env.integer("PORT", 8080),
		ShutdownGracePeriod:  env.duration("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: env.duration("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		RateLimitMedia:  httpx.RateLimitFromEnv(getenv, "MEDIA", httpx.PublicLimit),
		RateLimitMint:   httpx.RateLimitFromEnv(getenv, "MINT", httpx.ModerateLimit),
		RateLimitRedeem: httpx.RateLimitFromEnv(getenv, "REDEEM", httpx.StrictLimit),
		RateLimitAdmin:  httpx.RateLimitFromEnv(getenv, "ADMIN", httpx.ModerateLimit),
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	return cfg
}

type envReader func(string) string

func (e envReader) str(key, defaultValue string) string {
	if value := e(key); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) integer(key string, defaultValue int) int {
	value := e(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func (e envReader) boolean(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(e(key)); err == nil {
		return b
	}
	return defaultValue
}

func (e envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value := e(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are seconds, matching the token TTLs of the old service
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
