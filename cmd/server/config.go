package main

import "time"

type Config struct {
	Host string `env:"HOST,default=localhost"`
	Port int    `env:"PORT,default=8080"`

	LogLevel string `env:"LOG_LEVEL,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LimitMessages  *int   `env:"LIMIT_MESSAGES"`

	JwtSecret     string        `env:"JWT_SECRET,required=true"`
	TokenDuration time.Duration `env:"TOKEN_DURATION,default=24h"`

	ProviderBaseURL string        `env:"PROVIDER_BASE_URL,required=true"`
	ProviderAPIKey  string        `env:"PROVIDER_API_KEY,required=true"`
	ProviderModel   string        `env:"PROVIDER_MODEL,required=true"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT,default=30s"`

	ModerationWords []string `env:"MODERATION_WORDS"`
	// Declared as a string because go-env parses rune fields as integers;
	// only the first rune is used.
	ModerationCharReplacement string `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`

	SessionBufferSize int           `env:"SESSION_BUFFER_SIZE,default=64"`
	IndexBufferSize   int           `env:"INDEX_BUFFER_SIZE,default=256"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=5s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval    time.Duration `env:"METRIC_INTERVAL,default=30s"`
	SearchLimit       int           `env:"SEARCH_LIMIT,default=20"`
}
