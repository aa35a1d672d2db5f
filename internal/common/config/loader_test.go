package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "budget-assistant", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.App.Host)
	assert.Equal(t, 5432, cfg.Database.Platform.Port)
	assert.Equal(t, "disable", cfg.Database.App.SSLMode)
	assert.Equal(t, "localhost:6379", cfg.Database.Redis.Address)
	assert.Equal(t, "gemini-1.5-flash", cfg.GenAI.Model)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/openai/", cfg.GenAI.BaseURL)
	assert.Equal(t, 30000, cfg.GenAI.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9000
	cfg.GenAI.Model = "gemini-1.5-pro"
	applyDefaults(cfg)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "gemini-1.5-pro", cfg.GenAI.Model)
}

func TestValidateConfig(t *testing.T) {
	valid := &Config{}
	applyDefaults(valid)
	valid.App.Environment = "development"
	valid.Database.App.Database = "assistant"
	valid.Database.Platform.Database = "platform"
	assert.NoError(t, validateConfig(valid))

	missingApp := *valid
	missingApp.Database.App.Database = ""
	assert.Error(t, validateConfig(&missingApp))

	missingPlatform := *valid
	missingPlatform.Database.Platform.Database = ""
	assert.Error(t, validateConfig(&missingPlatform))

	badPort := *valid
	badPort.Server.Port = -1
	assert.Error(t, validateConfig(&badPort))
}

func TestValidateConfig_APIKeyRequiredOutsideDevelopment(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.App.Database = "assistant"
	cfg.Database.Platform.Database = "platform"
	cfg.App.Environment = "production"
	cfg.GenAI.APIKey = ""

	assert.Error(t, validateConfig(cfg))

	cfg.GenAI.APIKey = "key"
	assert.NoError(t, validateConfig(cfg))
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "svc",
		Password: "secret",
		Database: "assistant",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=svc password=secret dbname=assistant sslmode=require",
		p.GetDSN())
}
