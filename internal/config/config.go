package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env               string        `envconfig:"APP_ENV" default:"development"`
	MongoURI          string        `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017/booking"`
	MongoDB           string        `envconfig:"MONGO_DB"`
	ServerAddr        string        `envconfig:"SERVER_ADDR" default:":8080"`
	CORSOrigins       []string      `envconfig:"CORS_ORIGINS" default:"*"`
	RequestTimeoutSec int           `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"30"`
	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiresIn      time.Duration `envconfig:"JWT_EXPIRES_IN" default:"168h"`
	JWTIssuer         string        `envconfig:"JWT_ISSUER" default:"booking-api"`
	GoogleClientID    string        `envconfig:"GOOGLE_CLIENT_ID"`
	RedisURL          string        `envconfig:"REDIS_URL"`
	RedisAddr         string        `envconfig:"REDIS_ADDR"`
	RedisPassword     string        `envconfig:"REDIS_PASSWORD"`
	RedisDB           int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTLSeconds   int           `envconfig:"CACHE_TTL_SECONDS" default:"60"`
	AMQPURL           string        `envconfig:"AMQP_URL"`
	AMQPExchange      string        `envconfig:"AMQP_EXCHANGE" default:"booking.events"`
	OTelEndpoint      string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SeedAdminEmail    string        `envconfig:"SEED_ADMIN_EMAIL" default:"admin@example.com"`
	SeedAdminPassword string        `envconfig:"SEED_ADMIN_PASSWORD"`
	SeedAdminName     string        `envconfig:"SEED_ADMIN_NAME" default:"Administrator"`
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Load reads .env (values already in the environment win) and binds the
// environment onto Config.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}

	if cfg.MongoDB == "" {
		cfg.MongoDB = mongoDBFromURI(cfg.MongoURI)
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "booking"
	}
	cfg.CORSOrigins = normalizeOrigins(cfg.CORSOrigins)

	return &cfg, nil
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// only the first path segment names the database
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
