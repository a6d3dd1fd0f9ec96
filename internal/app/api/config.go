package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port          string
	PostgresDSN   string
	KafkaBrokers  []string
	KafkaTopic    string
	FileStoreDir  string
	FileQueueSize int
	PasswordSalt  string
	GiftWrap      bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:         envDefault("PORT", "8080"),
		PostgresDSN:  strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		KafkaTopic:   envDefault("KAFKA_TOPIC", "shop.events"),
		FileStoreDir: envDefault("FILE_STORE_DIR", "data/files"),
		PasswordSalt: envDefault("PASSWORD_SALT", "shopkit-dev-salt"),
		GiftWrap:     isTruthy(os.Getenv("GIFT_WRAP")),
	}
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	if raw := strings.TrimSpace(os.Getenv("FILE_QUEUE_SIZE")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return Config{}, fmt.Errorf("FILE_QUEUE_SIZE must be a positive integer")
		}
		cfg.FileQueueSize = size
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
