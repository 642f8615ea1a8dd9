package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime parameters, loaded from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Default cutoff for candidate matches; the confidence bands are fixed
	// constants in the matching service.
	MatchMinScore float64 `envconfig:"MATCH_MIN_SCORE" default:"0.3"`

	// Xero OAuth2 + Accounting API
	XeroClientID     string `envconfig:"XERO_CLIENT_ID"`
	XeroClientSecret string `envconfig:"XERO_CLIENT_SECRET"`
	XeroRedirectURL  string `envconfig:"XERO_REDIRECT_URL"`
	XeroAuthURL      string `envconfig:"XERO_AUTH_URL" default:"https://login.xero.com/identity/connect/authorize"`
	XeroTokenURL     string `envconfig:"XERO_TOKEN_URL" default:"https://identity.xero.com/connect/token"`
	XeroAPIBaseURL   string `envconfig:"XERO_API_BASE_URL" default:"https://api.xero.com/api.xro/2.0"`

	// Teamwork Desk
	TeamworkBaseURL string `envconfig:"TEAMWORK_BASE_URL"`
	TeamworkAPIKey  string `envconfig:"TEAMWORK_API_KEY"`

	// Resend transactional mail
	ResendAPIKey    string `envconfig:"RESEND_API_KEY"`
	ResendBaseURL   string `envconfig:"RESEND_BASE_URL" default:"https://api.resend.com"`
	ResendFromEmail string `envconfig:"RESEND_FROM_EMAIL" default:"ops@opsdesk.local"`
	NotifyEmail     string `envconfig:"NOTIFY_EMAIL"`

	// Nightly Xero invoice sync
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 2 * * *"`

	// Document storage (generated PDFs, uploaded spreadsheets)
	DocsS3Key    string `envconfig:"DOCS_S3_KEY" required:"true"`
	DocsS3Secret string `envconfig:"DOCS_S3_SECRET" required:"true"`
	DocsS3URL    string `envconfig:"DOCS_S3_URL" required:"true"`
	DocsS3Region string `envconfig:"DOCS_S3_REGION" required:"true"`
	DocsS3Bucket string `envconfig:"DOCS_S3_BUCKET" required:"true"`
}

// DSN returns the Data Source Name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
