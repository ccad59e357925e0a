package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
)

type Config struct {
	ServerAddr string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	RedisAddr  string

	// CAPTCHA verification
	CaptchaSecret    string
	CaptchaVerifyURL string

	// Rendered pages
	TemplateDir string
	StaticDir   string
}

func Load() *Config {
	return &Config{
		ServerAddr:       getEnvOrDefault("SERVER_ADDR", ":8080"),
		DBHost:           getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:           getEnvOrDefault("DB_PORT", "5432"),
		DBUser:           getEnvOrDefault("DB_USER", "noted"),
		DBPassword:       getEnvOrDefault("DB_PASSWORD", "noted_dev_password"),
		DBName:           getEnvOrDefault("DB_NAME", "noted"),
		JWTSecret:        getEnvOrDefault("JWT_SECRET", generateDefaultSecret()),
		RedisAddr:        getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		CaptchaSecret:    getEnvOrDefault("RECAPTCHA_SECRET", ""),
		CaptchaVerifyURL: getEnvOrDefault("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		TemplateDir:      getEnvOrDefault("TEMPLATE_DIR", "web/templates"),
		StaticDir:        getEnvOrDefault("STATIC_DIR", "web/static"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func generateDefaultSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "dev-secret-change-in-production"
	}
	return hex.EncodeToString(bytes)
}
