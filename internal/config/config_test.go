package config

import (
	"os"
	"testing"
	"time"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TARGET_URL", "https://orders.example.com/active")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Errorf("PollInterval = %v, want 15s", cfg.PollInterval)
	}
	if cfg.PollTimeout != 10*time.Second {
		t.Errorf("PollTimeout = %v, want 10s", cfg.PollTimeout)
	}
	if cfg.SimulationOdds != 0.15 {
		t.Errorf("SimulationOdds = %v, want 0.15", cfg.SimulationOdds)
	}
	if cfg.ErrorThreshold != 0 {
		t.Errorf("ErrorThreshold = %d, want 0", cfg.ErrorThreshold)
	}
	if cfg.CORSAllowOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowOrigin = %q, want default", cfg.CORSAllowOrigin)
	}
	if cfg.NotifyTitle != "Irsa Kitchen" {
		t.Errorf("NotifyTitle = %q, want default", cfg.NotifyTitle)
	}
	if cfg.AlertSoundURL != defaultSoundURL {
		t.Errorf("AlertSoundURL = %q, want default", cfg.AlertSoundURL)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setEnvs(t, map[string]string{
		"TARGET_URL":             "https://custom/orders",
		"DATABASE_URL":           "postgres://custom/db",
		"SERVER_PORT":            "9090",
		"POLL_INTERVAL":          "30s",
		"POLL_TIMEOUT":           "2s",
		"SIMULATION_PROBABILITY": "0.5",
		"ERROR_THRESHOLD":        "4",
		"CORS_ALLOW_ORIGIN":      "https://example.com",
		"NOTIFY_BODY":            "Order up",
	})

	cfg := Load()

	if cfg.TargetURL != "https://custom/orders" {
		t.Errorf("TargetURL = %q, want custom", cfg.TargetURL)
	}
	if cfg.DatabaseURL != "postgres://custom/db" {
		t.Errorf("DatabaseURL = %q, want custom", cfg.DatabaseURL)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9090")
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.PollTimeout != 2*time.Second {
		t.Errorf("PollTimeout = %v, want 2s", cfg.PollTimeout)
	}
	if cfg.SimulationOdds != 0.5 {
		t.Errorf("SimulationOdds = %v, want 0.5", cfg.SimulationOdds)
	}
	if cfg.ErrorThreshold != 4 {
		t.Errorf("ErrorThreshold = %d, want 4", cfg.ErrorThreshold)
	}
	if cfg.CORSAllowOrigin != "https://example.com" {
		t.Errorf("CORSAllowOrigin = %q, want custom", cfg.CORSAllowOrigin)
	}
	if cfg.NotifyBody != "Order up" {
		t.Errorf("NotifyBody = %q, want custom", cfg.NotifyBody)
	}
}

func TestLoad_MissingTargetURL_Panics(t *testing.T) {
	os.Unsetenv("TARGET_URL")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for missing TARGET_URL")
		}
		msg, ok := r.(string)
		if !ok || msg == "" {
			t.Errorf("expected string panic message, got %v", r)
		}
	}()

	Load()
}

func TestLoad_InvalidDuration_FallsBack(t *testing.T) {
	setEnvs(t, map[string]string{
		"TARGET_URL":    "https://orders.example.com",
		"POLL_INTERVAL": "not-a-duration",
		"POLL_TIMEOUT":  "-5s",
	})

	cfg := Load()

	if cfg.PollInterval != 15*time.Second {
		t.Errorf("PollInterval = %v, want fallback 15s", cfg.PollInterval)
	}
	if cfg.PollTimeout != 10*time.Second {
		t.Errorf("PollTimeout = %v, want fallback 10s", cfg.PollTimeout)
	}
}

func TestLoad_InvalidInt_FallsBack(t *testing.T) {
	setEnvs(t, map[string]string{
		"TARGET_URL":      "https://orders.example.com",
		"ERROR_THRESHOLD": "abc",
	})

	cfg := Load()

	if cfg.ErrorThreshold != 0 {
		t.Errorf("ErrorThreshold = %d, want fallback 0", cfg.ErrorThreshold)
	}
}

func TestLoad_ProbabilityOutOfRange_FallsBack(t *testing.T) {
	setEnvs(t, map[string]string{
		"TARGET_URL":             "https://orders.example.com",
		"SIMULATION_PROBABILITY": "1.5",
	})

	cfg := Load()

	if cfg.SimulationOdds != 0.15 {
		t.Errorf("SimulationOdds = %v, want fallback 0.15", cfg.SimulationOdds)
	}
}
