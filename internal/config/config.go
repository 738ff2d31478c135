package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env         string
	HTTPAddr    string
	FrontendURL string
	CORSOrigins []string

	DB      DBConfig
	JWT     JWTConfig
	PayPal  PayPalConfig
	Webhook WebhookConfig
	SMTP    SMTPConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Archive ArchiveConfig
}

type DBConfig struct {
	Driver string // mysql|postgres
	DSN    string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type PayPalConfig struct {
	ClientID  string
	Secret    string
	Mode      string // sandbox|live
	WebhookID string
	BrandName string
	Timeout   time.Duration
}

// Configured reports whether credentials are present.
func (c PayPalConfig) Configured() bool {
	return c.ClientID != "" && c.Secret != ""
}

type WebhookConfig struct {
	// AllowUnverified accepts events without signature verification. Insecure; dev only.
	AllowUnverified bool
	DedupTTL        time.Duration
}

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	TLSMode       string // none|tls|starttls
	SkipVerifyTLS bool
	From          string
	FromName      string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type ArchiveConfig struct {
	Driver   string // none|local|s3
	LocalDir string
	S3Region string
	S3Bucket string
	S3Prefix string
}

var defaults = map[string]any{
	"APP_ENV":                  "development",
	"HTTP_ADDR":                ":8080",
	"FRONTEND_URL":             "http://localhost:3000",
	"DB_DRIVER":                "mysql",
	"JWT_TTL":                  "24h",
	"PAYPAL_MODE":              "sandbox",
	"PAYPAL_BRAND_NAME":        "Chronopost Mauritius Ltd",
	"PAYPAL_TIMEOUT":           "30s",
	"WEBHOOK_ALLOW_UNVERIFIED": false,
	"WEBHOOK_DEDUP_TTL":        "72h",
	"SMTP_PORT":                "465",
	"SMTP_TLS_MODE":            "tls",
	"SENDER_NAME":              "Chronopost Mauritius Ltd",
	"REDIS_DB":                 0,
	"KAFKA_TOPIC":              "payment-links",
	"ARCHIVE_DRIVER":           "none",
	"ARCHIVE_DIR":              "./storage/webhooks",
	"S3_PREFIX":                "webhooks",
}

// DefaultCORSOrigins is the allow-list used in addition to CORS_ORIGINS.
var DefaultCORSOrigins = []string{
	"https://portal.merchant.cim.mu",
	"http://portal.merchant.cim.mu",
	"https://www.portal.merchant.cim.mu",
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5500",
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	// prod uses real env vars
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	return fromViper(v)
}

// LoadDB reads only the database settings, for tools that do not serve HTTP.
func LoadDB() (DBConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DB_DRIVER", defaults["DB_DRIVER"])
	db := DBConfig{
		Driver: strings.ToLower(v.GetString("DB_DRIVER")),
		DSN:    v.GetString("DB_DSN"),
	}
	return db, db.Validate()
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:         v.GetString("APP_ENV"),
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		CORSOrigins: append(append([]string{}, DefaultCORSOrigins...), splitList(v.GetString("CORS_ORIGINS"))...),
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DB_DSN"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET_KEY"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		PayPal: PayPalConfig{
			ClientID:  v.GetString("PAYPAL_CLIENT_ID"),
			Secret:    v.GetString("PAYPAL_SECRET"),
			Mode:      strings.ToLower(v.GetString("PAYPAL_MODE")),
			WebhookID: v.GetString("PAYPAL_WEBHOOK_ID"),
			BrandName: v.GetString("PAYPAL_BRAND_NAME"),
			Timeout:   v.GetDuration("PAYPAL_TIMEOUT"),
		},
		Webhook: WebhookConfig{
			AllowUnverified: v.GetBool("WEBHOOK_ALLOW_UNVERIFIED"),
			DedupTTL:        v.GetDuration("WEBHOOK_DEDUP_TTL"),
		},
		SMTP: SMTPConfig{
			Host:          v.GetString("SMTP_HOST"),
			Port:          v.GetString("SMTP_PORT"),
			User:          v.GetString("SMTP_USER"),
			Pass:          v.GetString("SMTP_PASSWORD"),
			TLSMode:       strings.ToLower(v.GetString("SMTP_TLS_MODE")),
			SkipVerifyTLS: v.GetBool("SMTP_SKIP_VERIFY"),
			From:          v.GetString("SENDER_EMAIL"),
			FromName:      v.GetString("SENDER_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Archive: ArchiveConfig{
			Driver:   strings.ToLower(v.GetString("ARCHIVE_DRIVER")),
			LocalDir: v.GetString("ARCHIVE_DIR"),
			S3Region: v.GetString("S3_REGION"),
			S3Bucket: v.GetString("S3_BUCKET"),
			S3Prefix: v.GetString("S3_PREFIX"),
		},
	}
	return cfg, cfg.Validate()
}

func (c DBConfig) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("DB_DSN environment variable is required")
	}
	switch c.Driver {
	case "mysql", "postgres":
		return nil
	default:
		return fmt.Errorf("unknown DB_DRIVER: %s", c.Driver)
	}
}

func (c Config) Validate() error {
	if err := c.DB.Validate(); err != nil {
		return err
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}
	if c.PayPal.Mode != "sandbox" && c.PayPal.Mode != "live" {
		return fmt.Errorf("PAYPAL_MODE must be sandbox or live, got %q", c.PayPal.Mode)
	}
	if c.PayPal.Timeout <= 0 {
		return fmt.Errorf("PAYPAL_TIMEOUT must be positive")
	}
	for _, o := range c.CORSOrigins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("CORS_ORIGINS entry %q must start with http:// or https://", o)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
