package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:           "5000",
		Env:            "development",
		JWTSecret:      "a-development-secret",
		JWTExpiryHours: 24,
		DBHost:         "localhost",
		DBPort:         "5432",
		DBUser:         "user",
		DBPassword:     "password",
		DBName:         "tekblog",
		DBSSLMode:      "disable",
	}
}

func TestValidate(t *testing.T) {
	t.Run("development defaults pass", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("port required", func(t *testing.T) {
		c := validConfig()
		c.Port = ""
		assert.EqualError(t, c.Validate(), "PORT is required")
	})

	t.Run("jwt secret required", func(t *testing.T) {
		c := validConfig()
		c.JWTSecret = ""
		assert.EqualError(t, c.Validate(), "JWT_SECRET is required")
	})

	t.Run("expiry must be positive", func(t *testing.T) {
		c := validConfig()
		c.JWTExpiryHours = 0
		assert.Error(t, c.Validate())
	})

	t.Run("production rejects default secret", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, c.Validate())
	})

	t.Run("production rejects short secret", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.JWTSecret = "short"
		c.DBPassword = "something-strong-enough"
		assert.Error(t, c.Validate())
	})

	t.Run("production rejects weak db password", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.JWTSecret = strings.Repeat("s", 32)
		c.DBPassword = "password"
		assert.Error(t, c.Validate())
	})

	t.Run("production with strong values passes", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.JWTSecret = strings.Repeat("s", 32)
		c.DBPassword = "definitely-not-the-default"
		c.DBSSLMode = "require"
		assert.NoError(t, c.Validate())
	})
}

func TestDSN(t *testing.T) {
	c := validConfig()
	dsn := c.DSN()
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "dbname=tekblog")
	require.Contains(t, dsn, "sslmode=disable")
}
