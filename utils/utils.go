package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dynoquery/models"

	"github.com/google/uuid"
	"github.com/robfig/cron"
	"github.com/spf13/viper"
)

// GetConfig read the configuration from environment variables or config files
func GetConfig() (*models.Config, error) {
	config, err := Load("")
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper. An explicit
// configFile overrides the search paths.
func Load(configFile string) (*models.Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if dir, err := DataDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	setDefaults(v)

	// Enable environment variable support
	v.SetEnvPrefix("DYNOQUERY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, continue with defaults and env vars
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Handle nested JSON structure from config.json
	flattenNestedConfig(v)

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.StorePath == "" {
		dir, err := DataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		config.StorePath = filepath.Join(dir, "dynoquery.db")
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "dynoquery")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")

	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_profile", "")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("dynamodb_endpoint", "")

	v.SetDefault("store_path", "")
	v.SetDefault("page_size", 50)

	v.SetDefault("history_max_entries", 1000)
	v.SetDefault("history_retention_schedule", "0 0 * * * *")

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
}

// validate checks if the configuration is usable
func validate(c *models.Config) error {
	if c.PageSize <= 0 || c.PageSize > 1000 {
		return fmt.Errorf("page_size must be between 1 and 1000, got %d", c.PageSize)
	}
	if c.HistoryMaxEntries < 0 {
		return fmt.Errorf("history_max_entries cannot be negative")
	}
	if c.HistoryRetentionSchedule != "" {
		if _, err := cron.Parse(c.HistoryRetentionSchedule); err != nil {
			return fmt.Errorf("invalid history_retention_schedule '%s': %w", c.HistoryRetentionSchedule, err)
		}
	}
	if (c.AWSAccessKeyID == "") != (c.AWSSecretAccessKey == "") {
		return fmt.Errorf("aws_access_key_id and aws_secret_access_key must be set together")
	}
	return nil
}

// flattenNestedConfig flattens the nested JSON structure to flat keys for easier mapping
func flattenNestedConfig(v *viper.Viper) {
	nested := map[string]string{
		"app.name":                   "app_name",
		"app.version":                "app_version",
		"app.env":                    "app_env",
		"aws.region":                 "aws_region",
		"aws.profile":                "aws_profile",
		"aws.access_key_id":          "aws_access_key_id",
		"aws.secret_access_key":      "aws_secret_access_key",
		"aws.dynamodb_endpoint":      "dynamodb_endpoint",
		"store.path":                 "store_path",
		"results.page_size":          "page_size",
		"history.max_entries":        "history_max_entries",
		"history.retention_schedule": "history_retention_schedule",
		"logging.level":              "log_level",
		"logging.format":             "log_format",
	}
	for from, to := range nested {
		if v.IsSet(from) {
			v.Set(to, v.Get(from))
		}
	}
}

// DataDir returns the per-user directory holding the local store and config
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "dynoquery"), nil
}

// PrintPrettyJSON takes any struct or map and prints it as pretty JSON
func PrintPrettyJSON(data interface{}) string {
	prettyJSON, err := json.MarshalIndent(data, "", "    ") // 4 spaces indent
	if err != nil {
		fmt.Println("Failed to generate JSON:", err)
		return ""
	}
	return string(prettyJSON)
}

// GenerateUUID returns a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}
