// Package config loads the runtime configuration from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/celestiaorg/faceswap/internal/constants"
	"github.com/celestiaorg/faceswap/internal/db"
	"github.com/celestiaorg/faceswap/internal/params"
	"github.com/celestiaorg/faceswap/internal/staging"
)

// Defaults used when the environment does not say otherwise
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = "5000"
	DefaultMaxUploadMB     = 512
	DefaultPipelineCommand = "python facefusion.py"
	DefaultOutputRetention = time.Hour
	DefaultJanitorInterval = 5 * time.Minute
)

// Config is the runtime configuration of the server and the CLI
type Config struct {
	Host        string
	Port        string
	MaxUploadMB int

	UploadDir       string
	OutputDir       string
	OutputRetention time.Duration
	JanitorInterval time.Duration

	PipelineCommand string
	PipelineWorkdir string
	DefaultsFile    string

	Capabilities params.Capabilities
	DB           db.Options
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// LoadDotEnv loads a .env file from the working directory when one exists
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	uploadDir, outputDir := staging.DefaultDirs()
	caps := params.DefaultCapabilities()

	cfg := &Config{
		Host:            GetEnv(constants.EnvHost, DefaultHost),
		Port:            GetEnv(constants.EnvPort, DefaultPort),
		UploadDir:       GetEnv(constants.EnvUploadDir, uploadDir),
		OutputDir:       GetEnv(constants.EnvOutputDir, outputDir),
		PipelineCommand: GetEnv(constants.EnvPipelineCommand, DefaultPipelineCommand),
		PipelineWorkdir: GetEnv(constants.EnvPipelineWorkdir, ""),
		DefaultsFile:    GetEnv(constants.EnvDefaultsFile, ""),
		DB: db.Options{
			Host:       GetEnv(constants.EnvDBHost, ""),
			User:       GetEnv(constants.EnvDBUser, db.DefaultUser),
			Password:   GetEnv(constants.EnvDBPassword, db.DefaultPassword),
			DBName:     GetEnv(constants.EnvDBName, db.DefaultDBName),
			SQLitePath: GetEnv(constants.EnvDBPath, defaultSQLitePath()),
		},
	}

	var err error
	if cfg.MaxUploadMB, err = envInt(constants.EnvMaxUploadMB, DefaultMaxUploadMB); err != nil {
		return nil, err
	}
	if cfg.OutputRetention, err = envDuration(constants.EnvOutputRetention, DefaultOutputRetention); err != nil {
		return nil, err
	}
	if cfg.JanitorInterval, err = envDuration(constants.EnvJanitorInterval, DefaultJanitorInterval); err != nil {
		return nil, err
	}
	if cfg.DB.Port, err = envInt(constants.EnvDBPort, db.DefaultPort); err != nil {
		return nil, err
	}
	sslEnabled := GetEnv(constants.EnvDBSSLMode, "disable") == "require"
	cfg.DB.SSLEnabled = &sslEnabled

	if providers := GetEnv(constants.EnvExecutionProviders, ""); providers != "" {
		caps.ExecutionProviders = splitList(providers)
		caps.ExecutionProviderCount = len(caps.ExecutionProviders)
	}
	if caps.ExecutionThreadCount, err = envInt(constants.EnvExecutionThreadCount, caps.ExecutionThreadCount); err != nil {
		return nil, err
	}
	if caps.ExecutionQueueCount, err = envInt(constants.EnvExecutionQueueCount, caps.ExecutionQueueCount); err != nil {
		return nil, err
	}
	cfg.Capabilities = caps

	return cfg, nil
}

// Address returns host:port for the listener
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// Defaults returns the parameter defaults: the built-in set for the
// configured capabilities, overlaid by the defaults file when one is set
func (c *Config) Defaults() (params.Params, error) {
	base := params.Defaults(c.Capabilities)
	if c.DefaultsFile == "" {
		return base, nil
	}
	return params.LoadDefaultsFile(c.DefaultsFile, base)
}

func envInt(key string, fallback int) (int, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, raw)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

// defaultSQLitePath keeps the local job database in the user cache directory
func defaultSQLitePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "faceswap", db.DefaultSQLiteFile)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
