package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	SessionSecret string `env:"SESSION_SECRET"`
	TimeZone      string `env:"APP_TIMEZONE" envDefault:"Asia/Kolkata"`

	DBDriver               string `env:"DB_DRIVER" envDefault:"mysql"` // mysql | postgres | sqlite
	DBDSN                  string `env:"DB_DSN"`                       // overrides the fields below when set
	DBUser                 string `env:"DB_USER"`
	DBPassword             string `env:"DB_PASSWORD"`
	DBHost                 string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME" envDefault:"petverse"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	GoogleCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	GatewayDriver     string        `env:"GATEWAY_DRIVER"` // razorpay | sandbox (dev auth only)
	RazorpayKeyID     string        `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string        `env:"RAZORPAY_KEY_SECRET"`
	Currency          string        `env:"GATEWAY_CURRENCY" envDefault:"INR"`
	GatewayTimeout    time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"PetVerse <no-reply@petverse.local>"`

	ReceiptStore  string `env:"RECEIPT_STORE" envDefault:"none"` // none | memory | gcs | s3
	ReceiptBucket string `env:"RECEIPT_BUCKET"`
	S3Region      string `env:"S3_REGION" envDefault:"ap-south-1"`
	S3Endpoint    string `env:"S3_ENDPOINT"`
	S3PathStyle   bool   `env:"S3_PATH_STYLE" envDefault:"false"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that let callers forge payments or carts once
// real Firebase auth is on. Dev auth accepts the sandbox gateway and an
// empty session secret (cmd/api then uses a random per-process key).
func (c *Config) Validate() error {
	if c.DevAuth() {
		return nil
	}
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.GatewayDriver != "razorpay" {
		errs = append(errs, errors.New("GATEWAY_DRIVER must be razorpay"))
	}
	if c.RazorpayKeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_SECRET is required"))
	}
	return errors.Join(errs...)
}

// Location resolves TimeZone, falling back to UTC when the zone is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DevAuth reports whether requests authenticate with the debug header
// instead of Firebase ID tokens.
func (c *Config) DevAuth() bool {
	return c.FirebaseProjectID == ""
}
