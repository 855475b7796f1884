package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".reporthub_token"
)

// ErrNotLoggedIn is returned when no token has been stored.
var ErrNotLoggedIn = errors.New("not logged in: run `rh login` first")

// APIURL returns the base URL for the reporthub API.
// It can be overridden with the REPORTHUB_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("REPORTHUB_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is where the JWT is kept between commands. REPORTHUB_TOKEN_FILE
// overrides the default of ~/.reporthub_token.
func TokenPath() (string, error) {
	if v := os.Getenv("REPORTHUB_TOKEN_FILE"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, tokenFileName), nil
}

func SaveToken(token string) error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// ReadToken returns the stored token. REPORTHUB_TOKEN takes precedence.
func ReadToken() (string, error) {
	if v := os.Getenv("REPORTHUB_TOKEN"); v != "" {
		return v, nil
	}
	path, err := TokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

func ClearToken() error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
