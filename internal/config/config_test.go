package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                     "5000",
		Env:                      "development",
		DBDriver:                 "postgres",
		DBPassword:               "secure-password",
		DBSSLMode:                "require",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		JWTKeyID:                 "k1",
		JWTTTLMinutes:            60,
		DBConnMaxLifetimeMinutes: 1,
		TracingSampleRatio:       1,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateSecrets(t *testing.T) {
	t.Run("missing secret and keyring", func(t *testing.T) {
		c := validConfig()
		c.JWTSecret = ""
		assert.Error(t, c.Validate())
	})

	t.Run("keyring file replaces secret", func(t *testing.T) {
		c := validConfig()
		c.JWTSecret = ""
		c.JWTKeyringFile = "/etc/inkwell/keys.yml"
		assert.NoError(t, c.Validate())
	})

	t.Run("default secret rejected in production", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.JWTSecret = DefaultJWTSecret
		assert.ErrorContains(t, c.Validate(), "default value")
	})

	t.Run("short secret rejected in production", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.JWTSecret = "short"
		assert.ErrorContains(t, c.Validate(), "32 characters")
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		c := validConfig()
		c.JWTTTLMinutes = 0
		assert.Error(t, c.Validate())
	})
}

func TestConfig_ValidateDriver(t *testing.T) {
	c := validConfig()
	c.DBDriver = "mysql"
	assert.ErrorContains(t, c.Validate(), "unsupported DB_DRIVER")

	c = validConfig()
	c.DBDriver = "sqlite"
	c.DBPath = ""
	assert.Error(t, c.Validate())

	c.DBPath = ":memory:"
	c.Env = "production"
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("PORT", "6001")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, 15, c.JWTTTLMinutes)
	assert.Equal(t, "6001", c.Port)
	assert.Equal(t, "inkwell.db", c.DBPath)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "test")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, 24*60, c.JWTTTLMinutes)
	assert.Equal(t, "default", c.JWTKeyID)
	assert.False(t, c.IsProduction())
}
