package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string
	BackendURL    string
	SessionDBPath string
	KafkaBrokers  []string
	LogLevel      string
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(v string, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment", err)
	}

	return &Config{
		ListenAddr:    getenv("GATEWAY_ADDR", ":3000"),
		BackendURL:    must(os.Getenv("BACKEND_URL"), "BACKEND_URL"),
		SessionDBPath: getenv("SESSION_DB_PATH", "sessions.db"),
		KafkaBrokers:  csv(os.Getenv("KAFKA_BROKERS")),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}
}
