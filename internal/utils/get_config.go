package utils

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server
	AppPort        string `yaml:"APP_PORT"`
	AppURL         string `yaml:"APP_URL"`
	LogLevel       string `yaml:"LOG_LEVEL"`
	LogFile        string `yaml:"LOG_FILE"`
	LogTimeZone    string `yaml:"LOG_TIME_ZONE"`
	CORSOrigins    string `yaml:"CORS_ALLOWED_ORIGINS"`
	RateLimitMax   int    `yaml:"RATE_LIMIT_MAX"`
	RateLimitEvery string `yaml:"RATE_LIMIT_EXPIRATION"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBTimeZone string `yaml:"DB_TIME_ZONE"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET"`
	JWTIssuer string `yaml:"JWT_ISSUER"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS configuration
	AWSRegion    string `yaml:"AWS_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	SNSSenderID  string `yaml:"SNS_SENDER_ID"`
	SMSEnabled   bool   `yaml:"SMS_ENABLED"`

	// Geocoding
	GoogleMapsAPIKey  string `yaml:"GOOGLE_MAPS_API_KEY"`
	GeocoderCacheSize int    `yaml:"GEOCODER_CACHE_SIZE"`
	GeocoderCacheTTL  string `yaml:"GEOCODER_CACHE_TTL"`
	GeocoderTimeout   string `yaml:"GEOCODER_TIMEOUT"`

	// Matching and listing
	MatchRadiusMiles  float64 `yaml:"MATCH_RADIUS_MILES"`
	MatchLimit        int     `yaml:"MATCH_LIMIT"`
	GeoMaxCandidates  int     `yaml:"GEO_MAX_CANDIDATES"`
	ListDefaultLimit  int     `yaml:"LIST_DEFAULT_LIMIT"`
	ListDefaultRadius float64 `yaml:"LIST_DEFAULT_RADIUS_MILES"`

	// Lifecycle scheduler
	SweepInterval      string `yaml:"SWEEP_INTERVAL"`
	SweepBatchSize     int    `yaml:"SWEEP_BATCH_SIZE"`
	ReminderLeadTime   string `yaml:"REMINDER_LEAD_TIME"`
	RemindersScheduled bool   `yaml:"REMINDERS_SCHEDULED"`

	// Notification dispatcher
	NotifyWorkers   int    `yaml:"NOTIFY_WORKERS"`
	NotifyQueueSize int    `yaml:"NOTIFY_QUEUE_SIZE"`
	NotifyTimeout   string `yaml:"NOTIFY_TIMEOUT"`
}

// LoadConfig reads the yaml file at path, applies environment overrides for
// secrets and fills defaults. A missing file is not an error: defaults and
// environment variables are enough to start.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	file, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrideString(&c.DBHost, "DB_HOST")
	overrideString(&c.DBPort, "DB_PORT")
	overrideString(&c.DBUser, "DB_USER")
	overrideString(&c.DBPassword, "DB_PASSWORD")
	overrideString(&c.DBName, "DB_NAME")
	overrideString(&c.JWTSecret, "JWT_SECRET")
	overrideString(&c.SMTPAuthPassword, "SMTP_AUTH_PASSWORD")
	overrideString(&c.AWSAccessKey, "AWS_ACCESS_KEY")
	overrideString(&c.AWSSecretKey, "AWS_SECRET_KEY")
	overrideString(&c.GoogleMapsAPIKey, "GOOGLE_MAPS_API_KEY")
	overrideString(&c.AppPort, "APP_PORT")
}

func (c *Config) applyDefaults() {
	defaultString(&c.AppPort, "8080")
	defaultString(&c.LogLevel, "info")
	defaultString(&c.LogFile, "./logs/app.log")
	defaultString(&c.LogTimeZone, "UTC")
	defaultString(&c.CORSOrigins, "http://localhost:3000")
	defaultInt(&c.RateLimitMax, 10)
	defaultString(&c.RateLimitEvery, "1s")
	defaultString(&c.DBTimeZone, "UTC")
	defaultString(&c.JWTIssuer, "FOODSHARE")
	defaultString(&c.SMTPSenderName, "Food Distribution Platform")
	defaultString(&c.AWSRegion, "us-east-1")
	defaultString(&c.AWSS3Region, c.AWSRegion)
	defaultInt(&c.GeocoderCacheSize, 1024)
	defaultString(&c.GeocoderCacheTTL, "24h")
	defaultString(&c.GeocoderTimeout, "5s")
	defaultFloat(&c.MatchRadiusMiles, 50)
	defaultInt(&c.MatchLimit, 50)
	defaultInt(&c.GeoMaxCandidates, 2000)
	defaultInt(&c.ListDefaultLimit, 10)
	defaultFloat(&c.ListDefaultRadius, 50)
	defaultString(&c.SweepInterval, "5m")
	defaultInt(&c.SweepBatchSize, 500)
	defaultString(&c.ReminderLeadTime, "24h")
	defaultInt(&c.NotifyWorkers, 4)
	defaultInt(&c.NotifyQueueSize, 256)
	defaultString(&c.NotifyTimeout, "30s")
}

// Duration parses a duration field, falling back to def when it is malformed.
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func (c *Config) SMTPPortNumber() int {
	port, err := strconv.Atoi(c.SMTPPort)
	if err != nil {
		return 587
	}
	return port
}

func overrideString(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

func defaultString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func defaultInt(field *int, def int) {
	if *field <= 0 {
		*field = def
	}
}

func defaultFloat(field *float64, def float64) {
	if *field <= 0 {
		*field = def
	}
}
