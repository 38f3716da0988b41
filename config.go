package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the supply-order-service.
type Config struct {
	Port         string
	Env          string
	MongoURI     string
	MongoDB      string
	JWTSecret    string
	RedisAddr    string
	RedisDB      int
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig loads environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8085"),
		Env:        getEnv("APP_ENV", "development"),
		MongoURI:   getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getEnv("MONGO_DB", "supply_orders"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		KafkaTopic: getEnv("ORDER_EVENTS_TOPIC", "order.events"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
