package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// UtilsTestSuite defines a test suite for utils functions
type UtilsTestSuite struct {
	suite.Suite
	originalEnv map[string]string
}

var envVars = []string{
	"DYNOQUERY_APP_ENV", "DYNOQUERY_AWS_REGION", "DYNOQUERY_PAGE_SIZE",
	"DYNOQUERY_STORE_PATH", "DYNOQUERY_LOG_LEVEL", "DYNOQUERY_HISTORY_RETENTION_SCHEDULE",
	"DYNOQUERY_AWS_ACCESS_KEY_ID", "DYNOQUERY_AWS_SECRET_ACCESS_KEY",
}

// SetupTest runs before each test
func (suite *UtilsTestSuite) SetupTest() {
	suite.originalEnv = make(map[string]string)
	for _, envVar := range envVars {
		suite.originalEnv[envVar] = os.Getenv(envVar)
		os.Unsetenv(envVar)
	}
}

// TearDownTest runs after each test
func (suite *UtilsTestSuite) TearDownTest() {
	for envVar, value := range suite.originalEnv {
		if value != "" {
			os.Setenv(envVar, value)
		} else {
			os.Unsetenv(envVar)
		}
	}
}

// TestGetConfigDefaults tests the default values
func (suite *UtilsTestSuite) TestGetConfigDefaults() {
	config, err := GetConfig()
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "dynoquery", config.AppName)
	assert.Equal(suite.T(), "us-east-1", config.AWSRegion)
	assert.Equal(suite.T(), 50, config.PageSize)
	assert.Equal(suite.T(), 1000, config.HistoryMaxEntries)
	assert.Equal(suite.T(), "warn", config.LogLevel)
	assert.Equal(suite.T(), "dynoquery.db", filepath.Base(config.StorePath))
}

// TestGetConfigWithEnvironmentVariables tests env overrides
func (suite *UtilsTestSuite) TestGetConfigWithEnvironmentVariables() {
	os.Setenv("DYNOQUERY_AWS_REGION", "eu-west-1")
	os.Setenv("DYNOQUERY_PAGE_SIZE", "25")
	os.Setenv("DYNOQUERY_STORE_PATH", "/tmp/dq-test.db")

	config, err := GetConfig()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "eu-west-1", config.AWSRegion)
	assert.Equal(suite.T(), 25, config.PageSize)
	assert.Equal(suite.T(), "/tmp/dq-test.db", config.StorePath)
}

// TestLoadNestedConfigFile tests the nested JSON layout
func (suite *UtilsTestSuite) TestLoadNestedConfigFile() {
	path := filepath.Join(suite.T().TempDir(), "config.json")
	body := `{
		"aws": {"region": "ap-south-1", "dynamodb_endpoint": "http://localhost:8000"},
		"results": {"page_size": 10},
		"logging": {"level": "debug", "format": "json"},
		"store": {"path": "/var/tmp/q.db"}
	}`
	require.NoError(suite.T(), os.WriteFile(path, []byte(body), 0o600))

	config, err := Load(path)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ap-south-1", config.AWSRegion)
	assert.Equal(suite.T(), "http://localhost:8000", config.DynamoDBEndpoint)
	assert.Equal(suite.T(), 10, config.PageSize)
	assert.Equal(suite.T(), "debug", config.LogLevel)
	assert.Equal(suite.T(), "json", config.LogFormat)
	assert.Equal(suite.T(), "/var/tmp/q.db", config.StorePath)
}

// TestValidationFailures tests invalid configuration
func (suite *UtilsTestSuite) TestValidationFailures() {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"page size zero", "DYNOQUERY_PAGE_SIZE", "0"},
		{"bad cron schedule", "DYNOQUERY_HISTORY_RETENTION_SCHEDULE", "every day"},
		{"half static credentials", "DYNOQUERY_AWS_ACCESS_KEY_ID", "AKIA123"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			os.Setenv(tc.key, tc.value)
			defer os.Unsetenv(tc.key)

			_, err := GetConfig()
			assert.Error(suite.T(), err)
		})
	}
}

// TestLoadMissingExplicitFile tests that an explicit config path must exist
func (suite *UtilsTestSuite) TestLoadMissingExplicitFile() {
	_, err := Load(filepath.Join(suite.T().TempDir(), "nope.json"))
	assert.Error(suite.T(), err)
}

// TestGenerateUUID tests UUID generation
func (suite *UtilsTestSuite) TestGenerateUUID() {
	a := GenerateUUID()
	b := GenerateUUID()
	assert.NotEqual(suite.T(), a, b)
	_, err := uuid.Parse(a)
	assert.NoError(suite.T(), err)
}

// TestPrintPrettyJSON tests JSON pretty printing
func (suite *UtilsTestSuite) TestPrintPrettyJSON() {
	out := PrintPrettyJSON(map[string]int{"a": 1})
	assert.Equal(suite.T(), "{\n    \"a\": 1\n}", out)
	assert.Equal(suite.T(), "", PrintPrettyJSON(make(chan int)))
}

// TestUtilsTestSuite runs the utils test suite
func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}
