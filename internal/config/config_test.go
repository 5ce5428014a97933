package config

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("CONFIG_TEST_KEY", "value")
	if got := getEnvOrDefault("CONFIG_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("got %q, want value", got)
	}

	t.Setenv("CONFIG_TEST_KEY", "   ")
	if got := getEnvOrDefault("CONFIG_TEST_KEY", "fallback"); got != "fallback" {
		t.Errorf("blank value: got %q, want fallback", got)
	}

	if got := getEnvOrDefault("CONFIG_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("missing value: got %q, want fallback", got)
	}
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_HOURS", "72")
	if got := getDurationEnv("CONFIG_TEST_HOURS", 24, time.Hour); got != 72*time.Hour {
		t.Errorf("got %v, want 72h", got)
	}

	t.Setenv("CONFIG_TEST_HOURS", "not-a-number")
	if got := getDurationEnv("CONFIG_TEST_HOURS", 24, time.Hour); got != 24*time.Hour {
		t.Errorf("invalid value: got %v, want default 24h", got)
	}

	t.Setenv("CONFIG_TEST_HOURS", "-3")
	if got := getDurationEnv("CONFIG_TEST_HOURS", 24, time.Hour); got != 24*time.Hour {
		t.Errorf("negative value: got %v, want default 24h", got)
	}
}

func TestCloudinaryConfigured(t *testing.T) {
	full := CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret"}
	if !full.Configured() {
		t.Error("complete credentials must report configured")
	}

	partial := CloudinaryConfig{CloudName: "demo", APIKey: "key"}
	if partial.Configured() {
		t.Error("partial credentials must report unconfigured")
	}

	if (CloudinaryConfig{}).Configured() {
		t.Error("empty credentials must report unconfigured")
	}
}

func TestSMTPConfigured(t *testing.T) {
	if (SMTPConfig{}).Configured() {
		t.Error("empty transport must report unconfigured")
	}
	if (SMTPConfig{Host: "smtp.example.com"}).Configured() {
		t.Error("host without user must report unconfigured")
	}
	if !(SMTPConfig{Host: "smtp.example.com", User: "u"}).Configured() {
		t.Error("host plus user must report configured")
	}
}
