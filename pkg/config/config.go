package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Env      string
	LogLevel string

	// APIBaseURL is the storefront backend, e.g. http://localhost:8000.
	APIBaseURL string
	// DataDir holds the durable client store (auth token, cart).
	DataDir        string
	RequestTimeout time.Duration

	// GatewayListenAddr is the loopback address the hosted payment
	// checkout page is served on while a payment is being collected.
	GatewayListenAddr string
}

func Load() Config {
	return Config{
		Env:               getEnv("MEKARO_ENV", "dev"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		APIBaseURL:        getEnv("MEKARO_API_URL", "http://localhost:8000"),
		DataDir:           getEnv("MEKARO_DATA_DIR", defaultDataDir()),
		RequestTimeout:    getEnvDuration("MEKARO_REQUEST_TIMEOUT", 30*time.Second),
		GatewayListenAddr: getEnv("MEKARO_GATEWAY_ADDR", "127.0.0.1:0"),
	}
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".mekaro"
	}
	return filepath.Join(base, "mekaro")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
