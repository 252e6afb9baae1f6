package main

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

// Every default in the Config tags must be parseable by go-env, otherwise
// the server cannot boot without the operator overriding it.
func TestConfig_Defaults_Parse(t *testing.T) {
	req := require.New(t)

	// Required variables only; everything else comes from the defaults.
	t.Setenv("LOG_LEVEL", "INFO")
	t.Setenv("BADGER_FILEPATH", t.TempDir())
	t.Setenv("BLUGE_FILEPATH", t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PROVIDER_BASE_URL", "http://localhost:8000/v1")
	t.Setenv("PROVIDER_API_KEY", "test-key")
	t.Setenv("PROVIDER_MODEL", "test-model")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal("*", config.ModerationCharReplacement)
	req.Equal(8080, config.Port)
	req.Equal(24*time.Hour, config.TokenDuration)
	req.Equal(30*time.Second, config.ProviderTimeout)
	req.Equal(200*time.Millisecond, config.RestartInterval)
	req.Equal(20, config.SearchLimit)
}

func TestConfig_Replacement_Override(t *testing.T) {
	req := require.New(t)

	t.Setenv("LOG_LEVEL", "INFO")
	t.Setenv("BADGER_FILEPATH", t.TempDir())
	t.Setenv("BLUGE_FILEPATH", t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PROVIDER_BASE_URL", "http://localhost:8000/v1")
	t.Setenv("PROVIDER_API_KEY", "test-key")
	t.Setenv("PROVIDER_MODEL", "test-model")
	t.Setenv("MODERATION_CHARACTER_REPLACEMENT", "#")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)
	req.Equal("#", config.ModerationCharReplacement)
}
