package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string
	AdminEmail  string
	FrontendURL string
	LogLevel    string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	KafkaAddress string
	ESURL        string
	ESUser       string
	ESPassword   string
	ESIndex      string
	RedisAddr    string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		HTTPAddr:    getDefault("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminEmail:  os.Getenv("ADMIN_EMAIL"),
		FrontendURL: getDefault("FRONTEND_URL", "http://localhost:5173"),
		LogLevel:    getDefault("LOG_LEVEL", "info"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getIntDefault("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		KafkaAddress: os.Getenv("KAFKA_ADDRESS"),
		ESURL:        os.Getenv("ES_URL"),
		ESUser:       os.Getenv("ES_USER"),
		ESPassword:   os.Getenv("ES_PASSWORD"),
		ESIndex:      getDefault("ES_INDEX", "products"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
	}

	for name, value := range map[string]string{
		"DATABASE_URL": config.DatabaseURL,
		"JWT_SECRET":   config.JWTSecret,
		"ADMIN_EMAIL":  config.AdminEmail,
	} {
		if value == "" {
			return nil, fmt.Errorf("required environment variable %s is not set", name)
		}
	}

	return config, nil
}

func getDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func getIntDefault(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
