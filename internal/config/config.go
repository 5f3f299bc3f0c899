package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          int
	NatsURL       string
	NatsToken     string
	DatabaseURL   string
	LogLevel      string
	KolosalAPIKey string
	KolosalModel  string
	APIToken      string
}

func Load() Config {
	return Config{
		Port:          envInt("KASAI_PORT", 8760),
		NatsURL:       envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:     envStr("NATS_TOKEN", ""),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		KolosalAPIKey: envStr("KOLOSAL_API_KEY", ""),
		KolosalModel:  envStr("KASAI_MODEL", "meta-llama/llama-4-maverick-17b-128e-instruct"),
		APIToken:      envStr("KASAI_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
