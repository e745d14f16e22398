// Package config provides process configuration for the redirect router.
// Settings come from environment variables (optionally via a .env file
// loaded in main) with sensible defaults, resolved through viper.
//
// Environment Variables:
//
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_FILE: Log file path; empty logs to stdout
//   - ROUTES_FILE: Path to the route configuration document (default: ./routes.json)
//   - TLS_CERT / TLS_KEY: Optional TLS certificate and key paths
//   - UA_CACHE_SIZE: LRU size for User-Agent classification results (default: 4096)
//
// The route document itself (rules, fallback) is loaded separately by the
// routing package: it is read exactly once at startup and shared immutably
// across requests for the process lifetime.
package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all process-level settings for the redirect router.
type Config struct {
	Port        string // Server port number
	LogLevel    string // Logging level (debug, info, warn, error)
	LogFile     string // Log file path, empty for stdout
	RoutesFile  string // Path to the route configuration document
	TLSCert     string // TLS certificate path (optional)
	TLSKey      string // TLS key path (optional)
	UACacheSize int    // User-Agent classification LRU size
}

// Load creates a Config with values resolved from the environment. Call
// Validate on the result before use.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("ROUTES_FILE", "./routes.json")
	v.SetDefault("TLS_CERT", "")
	v.SetDefault("TLS_KEY", "")
	v.SetDefault("UA_CACHE_SIZE", 4096)

	return &Config{
		Port:        v.GetString("PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFile:     v.GetString("LOG_FILE"),
		RoutesFile:  v.GetString("ROUTES_FILE"),
		TLSCert:     v.GetString("TLS_CERT"),
		TLSKey:      v.GetString("TLS_KEY"),
		UACacheSize: v.GetInt("UA_CACHE_SIZE"),
	}
}

// Validate checks that all settings are usable before startup.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}
	if c.RoutesFile == "" {
		return fmt.Errorf("ROUTES_FILE must not be empty")
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("TLS_CERT and TLS_KEY must be set together")
	}
	if c.UACacheSize < 1 {
		return fmt.Errorf("UA_CACHE_SIZE must be a positive number")
	}
	return nil
}
