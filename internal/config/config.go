package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

const defaultSoundURL = "https://assets.mixkit.co/active_storage/sfx/2869/2869-preview.mp3"

type Config struct {
	ServerPort      string
	DatabaseURL     string
	TargetURL       string
	PollInterval    time.Duration
	PollTimeout     time.Duration
	SimulationOdds  float64
	ErrorThreshold  int
	CORSAllowOrigin string
	AlertSoundURL   string
	NotifyTitle     string
	NotifyBody      string
	NotifyIcon      string
}

func Load() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TargetURL:       requireEnv("TARGET_URL"),
		PollInterval:    getDuration("POLL_INTERVAL", 15*time.Second),
		PollTimeout:     getDuration("POLL_TIMEOUT", 10*time.Second),
		SimulationOdds:  getFloat("SIMULATION_PROBABILITY", 0.15),
		ErrorThreshold:  getInt("ERROR_THRESHOLD", 0),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "http://localhost:3000"),
		AlertSoundURL:   getEnv("ALERT_SOUND_URL", defaultSoundURL),
		NotifyTitle:     getEnv("NOTIFY_TITLE", "Irsa Kitchen"),
		NotifyBody:      getEnv("NOTIFY_BODY", "New Order Detected!"),
		NotifyIcon:      getEnv("NOTIFY_ICON", "/favicon.ico"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

// getFloat only accepts probabilities, values outside [0, 1] fall back.
func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		slog.Warn("invalid probability for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return f
}
