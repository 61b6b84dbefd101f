// Package config reads the service configuration from the environment.
// A .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	logger "github.com/labstack/gommon/log"
)

const (
	DefaultModelSize = "dummy"
	DefaultOutDir    = "/tmp/outputs"
	DefaultPort      = 8001
	DefaultLedger    = "generations.sqlite"
)

// Config holds everything the service needs at startup.
type Config struct {
	ModelSize string
	NumGPUs   int
	OutDir    string
	Port      uint
	// APIHost is the public base used when building download URLs.
	// When nil the host of the incoming request is used.
	APIHost  *url.URL
	LedgerDB string
	LogLevel logger.Lvl
}

// Load reads the environment, applying defaults for anything unset.
// envFiles defaults to .env; missing files are ignored and never override the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	config := &Config{
		ModelSize: DefaultModelSize,
		OutDir:    DefaultOutDir,
		Port:      DefaultPort,
		LedgerDB:  DefaultLedger,
		LogLevel:  logger.INFO,
	}

	if m, ok := os.LookupEnv("MODEL_SIZE"); ok {
		config.ModelSize = m
	}

	if n := os.Getenv("NUM_GPUS"); n != "" {
		gpus, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("NUM_GPUS must be an integer: %w", err)
		}
		config.NumGPUs = gpus
	}

	if d := os.Getenv("OUT_DIR"); d != "" {
		config.OutDir = d
	}
	dir, err := ExpandUser(config.OutDir)
	if err != nil {
		return nil, err
	}
	config.OutDir = dir

	if p := os.Getenv("PORT"); p != "" {
		i, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("PORT must be a port number: %w", err)
		}
		config.Port = uint(i)
	}

	if h := os.Getenv("API_HOST"); h != "" {
		u, err := url.Parse(h)
		if err != nil {
			return nil, fmt.Errorf("API_HOST is not a valid url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("API_HOST must include scheme and host, got %q", h)
		}
		config.APIHost = u
	}

	if l := os.Getenv("LEDGER_DB"); l != "" {
		config.LedgerDB = l
	}

	if l := os.Getenv("LOG_LEVEL"); l != "" {
		lvl, err := ParseLevel(l)
		if err != nil {
			return nil, err
		}
		config.LogLevel = lvl
	}

	return config, nil
}

// LoadEnvFiles loads each file that exists into the process environment.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return nil
}

// ExpandUser replaces a leading ~ with the current user's home directory.
func ExpandUser(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ParseLevel maps a LOG_LEVEL value onto a gommon level.
func ParseLevel(s string) (logger.Lvl, error) {
	switch strings.ToLower(s) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warn", "warning":
		return logger.WARN, nil
	case "error":
		return logger.ERROR, nil
	case "off":
		return logger.OFF, nil
	}
	return 0, fmt.Errorf("unknown LOG_LEVEL %q", s)
}
