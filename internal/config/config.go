/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageBackend selects the object storage client used for bucket listings.
type StorageBackend string

const (
	StorageS3    StorageBackend = "s3"
	StorageMinio StorageBackend = "minio"
)

const (
	DefaultProfile      = "default"
	DefaultMaxFiles     = 10
	DefaultTemplatePath = "parliament2_inputs.mustache"
)

// Config covers process level configuration for both command-line tools.
// Values come from defaults, an optional YAML file, environment variables and
// finally command-line flags, in that order.
type Config struct {
	Verbosity int    `yaml:"verbosity"`
	Profile   string `yaml:"profile"`

	Environment  string `yaml:"environment"`
	Region       string `yaml:"region"`
	MaxFiles     int    `yaml:"max_files"`
	TemplatePath string `yaml:"template_path"`

	// Object storage configuration
	StorageBackend    StorageBackend `yaml:"storage_backend"`
	S3Endpoint        string         `yaml:"s3_endpoint"` // For S3-compatible services (MinIO, Ceph, etc.)
	S3UsePathStyle    bool           `yaml:"s3_use_path_style"`
	S3UseSSL          bool           `yaml:"s3_use_ssl"`
	S3AccessKeyID     string         `yaml:"s3_access_key_id"`
	S3SecretAccessKey string         `yaml:"s3_secret_access_key"`

	// Workflow server client
	HTTPTimeout        time.Duration `yaml:"http_timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`

	// Tracing configuration
	TracingEnabled    bool    `yaml:"tracing_enabled"`
	OTLPEndpoint      string  `yaml:"otlp_endpoint"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate"`

	// Batch metrics are pushed here when set.
	PushgatewayURL string `yaml:"pushgateway_url"`
}

// Default returns a Config populated with built-in defaults only.
func Default() *Config {
	return &Config{
		Profile:            DefaultProfile,
		Environment:        "production",
		MaxFiles:           DefaultMaxFiles,
		TemplatePath:       DefaultTemplatePath,
		StorageBackend:     StorageS3,
		S3UseSSL:           true,
		InsecureSkipVerify: true,
		OTLPEndpoint:       "localhost:4317",
		TracingSampleRate:  1.0,
	}
}

// Load reads an optional YAML file, overlays environment variables, and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.Profile = getEnvAny([]string{"CROMWELL_PROFILE"}, c.Profile)
	c.Environment = getEnvAny([]string{"CROMWELL_ENV"}, c.Environment)
	c.Region = getEnvAny([]string{"CROMWELL_REGION", "AWS_REGION", "AWS_DEFAULT_REGION"}, c.Region)
	c.MaxFiles = getEnvIntAny([]string{"CROMWELL_MAX_FILES"}, c.MaxFiles)
	c.TemplatePath = getEnvAny([]string{"CROMWELL_TEMPLATE"}, c.TemplatePath)

	c.StorageBackend = StorageBackend(getEnvAny([]string{"CROMWELL_STORAGE_BACKEND"}, string(c.StorageBackend)))
	c.S3Endpoint = getEnvAny([]string{"CROMWELL_S3_ENDPOINT", "S3_ENDPOINT"}, c.S3Endpoint)
	c.S3UsePathStyle = getEnvBoolAny([]string{"CROMWELL_S3_USE_PATH_STYLE", "S3_USE_PATH_STYLE"}, c.S3UsePathStyle)
	c.S3UseSSL = getEnvBoolAny([]string{"CROMWELL_S3_USE_SSL"}, c.S3UseSSL)
	c.S3AccessKeyID = getEnvAny([]string{"CROMWELL_S3_ACCESS_KEY_ID"}, c.S3AccessKeyID)
	c.S3SecretAccessKey = getEnvAny([]string{"CROMWELL_S3_SECRET_ACCESS_KEY"}, c.S3SecretAccessKey)

	if secs := getEnvIntAny([]string{"CROMWELL_HTTP_TIMEOUT_SECONDS"}, -1); secs >= 0 {
		c.HTTPTimeout = time.Duration(secs) * time.Second
	}
	c.InsecureSkipVerify = getEnvBoolAny([]string{"CROMWELL_INSECURE_SKIP_VERIFY"}, c.InsecureSkipVerify)

	c.TracingEnabled = getEnvBoolAny([]string{"CROMWELL_TRACING_ENABLED"}, c.TracingEnabled)
	c.OTLPEndpoint = getEnvAny([]string{"CROMWELL_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"}, c.OTLPEndpoint)
	c.TracingSampleRate = getEnvFloatAny([]string{"CROMWELL_TRACING_SAMPLE_RATE"}, c.TracingSampleRate)

	c.PushgatewayURL = getEnvAny([]string{"CROMWELL_PUSHGATEWAY_URL"}, c.PushgatewayURL)
}

// Validate checks the combined configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Profile == "" {
		errs = append(errs, fmt.Errorf("profile must not be empty"))
	}
	if c.MaxFiles < 1 {
		errs = append(errs, fmt.Errorf("max files must be at least 1, got %d", c.MaxFiles))
	}
	if c.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("verbosity must not be negative"))
	}

	switch c.StorageBackend {
	case StorageS3:
	case StorageMinio:
		if c.S3Endpoint == "" {
			errs = append(errs, fmt.Errorf("CROMWELL_S3_ENDPOINT must be provided for the minio storage backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage backend %q", c.StorageBackend))
	}

	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing sample rate must be within [0,1], got %v", c.TracingSampleRate))
	}

	return errors.Join(errs...)
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseBool(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
