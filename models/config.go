package models

// Config holds all configuration for the application
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`

	// AWS
	AWSRegion          string `mapstructure:"aws_region"`
	AWSProfile         string `mapstructure:"aws_profile"`
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	DynamoDBEndpoint   string `mapstructure:"dynamodb_endpoint"`

	// Local store
	StorePath string `mapstructure:"store_path"`

	// Results
	PageSize int `mapstructure:"page_size"`

	// History retention
	HistoryMaxEntries        int    `mapstructure:"history_max_entries"`
	HistoryRetentionSchedule string `mapstructure:"history_retention_schedule"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}
