package runtimeconfig

import (
	"errors"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Publishing.BaseURL = "https://charts.example.com"
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRequiresBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrPublicBaseURLRequired) {
		t.Fatalf("expected base URL error, got %v", err)
	}
}

func TestValidateRejectsUnknownStorageProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Provider = "redis"
	if err := cfg.Validate(); !errors.Is(err, ErrStorageProviderUnknown) {
		t.Fatalf("expected storage provider error, got %v", err)
	}
}

func TestValidateRejectsUnknownLoggingProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Provider = "zap"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderUnknown) {
		t.Fatalf("expected logging provider error, got %v", err)
	}
}

func TestValidateRejectsInvalidLevelAndFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingLevelInvalid) {
		t.Fatalf("expected level error, got %v", err)
	}

	cfg = validConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingFormatInvalid) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestValidateAllowsEmptyLoggingProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Logging = LoggingConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected empty logging config to validate, got %v", err)
	}
}
