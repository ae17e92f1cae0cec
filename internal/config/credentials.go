package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Environment variable names for TMS credentials.
const (
	EnvAccessToken  = "FPULSE_TMS_ACCESS_TOKEN"
	EnvRefreshToken = "FPULSE_TMS_REFRESH_TOKEN"
)

// Credentials is an immutable TMS token pair. Refreshing produces a new
// value; nothing mutates a Credentials in place.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IsConfigured reports whether an access token is present.
func (c Credentials) IsConfigured() bool {
	return c.AccessToken != ""
}

// WithAccessToken returns a copy with a new access token, keeping the
// refresh token.
func (c Credentials) WithAccessToken(token string) Credentials {
	return Credentials{AccessToken: token, RefreshToken: c.RefreshToken}
}

// LoadCredentials reads the TMS token pair from the environment, then
// overlays the local credentials file when present. The file takes
// precedence: operators drop a fresh token pair there without touching
// the process environment.
func LoadCredentials(path string) (Credentials, error) {
	creds := Credentials{
		AccessToken:  os.Getenv(EnvAccessToken),
		RefreshToken: os.Getenv(EnvRefreshToken),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return creds, fmt.Errorf("read credentials file %s: %w", path, err)
	}

	var fileCreds Credentials
	if err := json.Unmarshal(data, &fileCreds); err != nil {
		return creds, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	if fileCreds.AccessToken != "" {
		creds.AccessToken = fileCreds.AccessToken
	}
	if fileCreds.RefreshToken != "" {
		creds.RefreshToken = fileCreds.RefreshToken
	}
	return creds, nil
}

// SaveCredentials persists a token pair back to the credentials file.
// Write failures are logged and swallowed: on read-only filesystems the
// refreshed pair simply lives for the process lifetime.
func SaveCredentials(path string, creds Credentials, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		logger.Warn("marshal credentials failed", slog.String("error", err.Error()))
		return
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		logger.Warn("credentials not persisted",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}
