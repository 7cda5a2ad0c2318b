// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command fightbot starts the MMA question-answering HTTP server.
//
// It reads configuration from environment variables and starts the
// server.
//
// # Environment Variables
//
//   - FIGHTBOT_PORT: HTTP server port (default: 12230)
//   - UPSTREAM_BASE_URL: roster/rankings API base URL (default: https://api.octagon-api.com)
//   - UPSTREAM_CALLS_PER_SECOND: upstream rate limit (default: 2)
//   - REDIS_ADDR: distributed cache address (optional)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (optional)
//   - LOG_DIR: directory for JSON log files (optional)
//   - REFRESH_INTERVAL_MINUTES: background refresh interval (default: 30)
//   - REFRESH_RETRY_MINUTES: post-failure refresh retry (default: 5)
//
// # Usage
//
//	go build -o fightbot ./cmd/fightbot
//	./fightbot
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/octagonops/fightbot/services/fightbot"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := fightbot.Config{
		Port:            getEnvInt("FIGHTBOT_PORT", 12230),
		UpstreamBaseURL: getEnvString("UPSTREAM_BASE_URL", "https://api.octagon-api.com"),
		CallsPerSecond:  getEnvFloat("UPSTREAM_CALLS_PER_SECOND", 2),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		OTelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogDir:          os.Getenv("LOG_DIR"),
		RefreshInterval: time.Duration(getEnvInt("REFRESH_INTERVAL_MINUTES", 30)) *
			time.Minute,
		RefreshRetryInterval: time.Duration(getEnvInt("REFRESH_RETRY_MINUTES", 5)) *
			time.Minute,
	}

	slog.Info("Starting fightbot",
		"port", cfg.Port,
		"upstream", cfg.UpstreamBaseURL,
		"redis", cfg.RedisAddr != "",
	)

	svc, err := fightbot.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create fightbot service: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Fightbot error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
