// Package config binds the engine's runtime configuration to cobra
// persistent flags with environment-variable fallback. No viper; plain
// flags with manual env lookups are enough for the handful of settings
// this engine takes.
package config

import (
	"os"

	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config is the engine's runtime configuration: which object store
// backend to use and where, plus logging verbosity.
type Config struct {
	StorageMode objectstore.StorageMode
	BucketName  string
	BasePath    string
	AWSRegion   string
	LogLevel    string
	LogJSON     bool
}

// DefaultBasePath is the default key prefix under the bucket, or root under
// the local filesystem.
const DefaultBasePath = "parquet-data"

// DefaultAWSRegion is used when neither the flag nor AWS_REGION is set.
const DefaultAWSRegion = "us-east-1"

// BindFlags registers the engine's persistent flags on cmd.
func BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config-file", "", "Path to a YAML config file providing defaults below flags and env vars")
	cmd.PersistentFlags().String("storage-mode", "local", "Storage backend: s3, local, mock")
	cmd.PersistentFlags().String("bucket-name", "", "S3 bucket name (required when storage-mode=s3)")
	cmd.PersistentFlags().String("base-path", DefaultBasePath, "Key prefix under the bucket, or root directory for local/mock storage")
	cmd.PersistentFlags().String("aws-region", DefaultAWSRegion, "AWS region for the S3 backend")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
}

// fileOverrides is the shape of an optional --config-file. Every field is a
// pointer so an absent key in the YAML document leaves the corresponding
// Config field untouched by the file layer.
type fileOverrides struct {
	StorageMode *string `yaml:"storage_mode"`
	BucketName  *string `yaml:"bucket_name"`
	BasePath    *string `yaml:"base_path"`
	AWSRegion   *string `yaml:"aws_region"`
	LogLevel    *string `yaml:"log_level"`
	LogJSON     *bool   `yaml:"log_json"`
}

// loadFileOverrides reads and parses path as YAML. A path of "" is not an
// error; it yields a zero-value fileOverrides that overrides nothing.
func loadFileOverrides(path string) (fileOverrides, error) {
	var overrides fileOverrides
	if path == "" {
		return overrides, nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return overrides, err
	}
	if err := yaml.Unmarshal(body, &overrides); err != nil {
		return overrides, err
	}
	return overrides, nil
}

// FromCommand resolves Config from cmd's flags, falling back to environment
// variables, then to an optional --config-file YAML document, then to
// defaults, in that order. A malformed or unreadable config file is
// ignored: FromCommand silently falls through to env vars and defaults so a
// missing optional file never blocks startup.
func FromCommand(cmd *cobra.Command) Config {
	configFile, _ := cmd.Flags().GetString("config-file")
	overrides, _ := loadFileOverrides(configFile)

	return Config{
		StorageMode: objectstore.StorageMode(flagOrEnv(cmd, "storage-mode", "STORAGE_MODE", stringOverride(overrides.StorageMode, "local"))),
		BucketName:  flagOrEnv(cmd, "bucket-name", "S3_BUCKET_NAME", stringOverride(overrides.BucketName, "")),
		BasePath:    flagOrEnv(cmd, "base-path", "BASE_PATH", stringOverride(overrides.BasePath, DefaultBasePath)),
		AWSRegion:   flagOrEnv(cmd, "aws-region", "AWS_REGION", stringOverride(overrides.AWSRegion, DefaultAWSRegion)),
		LogLevel:    flagOrEnv(cmd, "log-level", "LOG_LEVEL", stringOverride(overrides.LogLevel, "info")),
		LogJSON:     flagBoolOrEnv(cmd, "log-json", "LOG_JSON", boolOverride(overrides.LogJSON, false)),
	}
}

func stringOverride(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

func boolOverride(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

func flagOrEnv(cmd *cobra.Command, flag, env, fallback string) string {
	if cmd != nil && cmd.Flags().Changed(flag) {
		v, err := cmd.Flags().GetString(flag)
		if err == nil && v != "" {
			return v
		}
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

func flagBoolOrEnv(cmd *cobra.Command, flag, env string, fallback bool) bool {
	if cmd != nil && cmd.Flags().Changed(flag) {
		v, err := cmd.Flags().GetBool(flag)
		if err == nil {
			return v
		}
	}
	if v := os.Getenv(env); v != "" {
		return v == "1" || v == "true" || v == "yes"
	}
	return fallback
}

// ObjectStoreConfig projects Config onto objectstore.NewConfig.
func (c Config) ObjectStoreConfig() objectstore.NewConfig {
	return objectstore.NewConfig{
		StorageMode: c.StorageMode,
		BucketName:  c.BucketName,
		BasePath:    c.BasePath,
		AWSRegion:   c.AWSRegion,
	}
}
