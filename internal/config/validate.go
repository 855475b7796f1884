package config

import (
	"fmt"
	"strings"
)

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid setting found by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(e), strings.Join(msgs, "; "))
}

// Validate returns nil or ValidationErrors.
func Validate(cfg Config) error {
	var errs ValidationErrors

	if cfg.Env != "dev" && cfg.Env != "prod" {
		errs = append(errs, ValidationError{"ENV", fmt.Sprintf("must be 'dev' or 'prod', got %q", cfg.Env)})
	}
	if cfg.IsProd() && (cfg.JWTSecret == "" || cfg.JWTSecret == DefaultJWTSecret) {
		errs = append(errs, ValidationError{"JWT_SECRET", "must be set to a non-default value in prod"})
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, ValidationError{"LOG_FORMAT", fmt.Sprintf("must be 'text' or 'json', got %q", cfg.LogFormat)})
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		errs = append(errs, ValidationError{"TLS_CERT_FILE", "TLS_CERT_FILE and TLS_KEY_FILE must be set together"})
	}
	if cfg.DatabaseURL == "" && cfg.DBHost == "" {
		errs = append(errs, ValidationError{"DATABASE_URL", "required when DB_HOST is empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
