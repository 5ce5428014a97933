package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting the server needs. It is
// loaded once in main and passed down explicitly; nothing reads the
// environment after startup.
type Config struct {
	MongoURI  string
	DBName    string
	JWTSecret string
	JWTExpiry time.Duration
	Port      string

	Cloudinary CloudinaryConfig
	SMTP       SMTPConfig
}

// CloudinaryConfig carries the three-part asset gateway credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Configured reports whether all credentials are present. A partially
// configured gateway is treated as unconfigured.
func (c CloudinaryConfig) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// SMTPConfig carries the mail transport settings.
type SMTPConfig struct {
	Host   string
	Port   int
	Secure bool
	User   string
	Pass   string
	From   string
}

// Configured reports whether the transport can be used at all.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.User != ""
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	smtpPort, _ := strconv.Atoi(getEnvOrDefault("SMTP_PORT", "587"))
	smtpSecure, _ := strconv.ParseBool(getEnvOrDefault("SMTP_SECURE", "false"))

	cfg := Config{
		MongoURI:  getEnvOrDefault("MONGO_URI", ""),
		DBName:    getEnvOrDefault("DB_NAME", "company_site"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
		JWTExpiry: getDurationEnv("JWT_EXPIRES_HOURS", 24, time.Hour),
		Port:      getEnvOrDefault("PORT", "8080"),
		Cloudinary: CloudinaryConfig{
			CloudName: getEnvOrDefault("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnvOrDefault("CLOUDINARY_API_KEY", ""),
			APISecret: getEnvOrDefault("CLOUDINARY_API_SECRET", ""),
		},
		SMTP: SMTPConfig{
			Host:   getEnvOrDefault("SMTP_HOST", ""),
			Port:   smtpPort,
			Secure: smtpSecure,
			User:   getEnvOrDefault("SMTP_USER", ""),
			Pass:   getEnvOrDefault("SMTP_PASS", ""),
			From:   getEnvOrDefault("SMTP_FROM", ""),
		},
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
