package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.LoginURL != defaultLoginURL {
		t.Errorf("unexpected login url: %s", cfg.LoginURL)
	}
	if cfg.DeadlineThresholdDays != 3 {
		t.Errorf("expected threshold 3, got %d", cfg.DeadlineThresholdDays)
	}
	if cfg.MaxLoginRetries != 3 || cfg.CaptchaSolveRetries != 3 {
		t.Errorf("unexpected retry defaults: %d/%d", cfg.MaxLoginRetries, cfg.CaptchaSolveRetries)
	}
	if cfg.WaitTimeout != 20*time.Second {
		t.Errorf("expected 20s wait timeout, got %s", cfg.WaitTimeout)
	}
	if cfg.PollInterval != 200*time.Millisecond {
		t.Errorf("expected 200ms poll interval, got %s", cfg.PollInterval)
	}
	if !cfg.Headless {
		t.Error("headless should default to true")
	}
	if cfg.APIPort != "8000" {
		t.Errorf("expected port 8000, got %s", cfg.APIPort)
	}
	if cfg.TaskTTL != time.Hour {
		t.Errorf("expected 1h task ttl, got %s", cfg.TaskTTL)
	}
	if cfg.ScrapeCron != "" {
		t.Errorf("cron should default to empty, got %q", cfg.ScrapeCron)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOGIN_URL", "https://example.com/Login.aspx")
	t.Setenv("MAX_LOGIN_RETRIES", "5")
	t.Setenv("HEADLESS_MODE", "false")
	t.Setenv("DEFAULT_TIMEOUT", "30s")
	t.Setenv("SCRAPE_CRON", "0 8 * * *")

	cfg := Load()

	if cfg.LoginURL != "https://example.com/Login.aspx" {
		t.Errorf("login url override ignored: %s", cfg.LoginURL)
	}
	if cfg.MaxLoginRetries != 5 {
		t.Errorf("expected 5 retries, got %d", cfg.MaxLoginRetries)
	}
	if cfg.Headless {
		t.Error("headless override ignored")
	}
	if cfg.WaitTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.WaitTimeout)
	}
	if cfg.ScrapeCron != "0 8 * * *" {
		t.Errorf("cron override ignored: %q", cfg.ScrapeCron)
	}
}

func TestGetDuration_Formats(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"20s", 20 * time.Second},
		{"5m", 5 * time.Minute},
		{"20", 20 * time.Second}, // голое число — секунды
		{"0.2", 200 * time.Millisecond},
		{"garbage", time.Minute}, // невалидное значение — default
		{"", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_DURATION", tt.value)
			}
			if got := getDuration("TEST_DURATION", time.Minute); got != tt.want {
				t.Errorf("getDuration(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}
