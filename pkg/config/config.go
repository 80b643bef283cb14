// Package config loads runtime settings from the environment.
package config

import "os"

// Config holds the application configuration. Everything is sourced
// from environment variables so the binaries run the same from a
// shell, a container, or a process manager.
type Config struct {
	// Host and Port form the HTTP bind address.
	Host string
	Port string

	// ModelPath points at the bundled groove generator model.
	ModelPath string
	// RuntimeLibrary optionally points at the onnxruntime shared
	// library on platforms where it is not on the loader search path.
	RuntimeLibrary string
}

// Load reads the configuration, falling back to defaults for anything
// unset.
func Load() *Config {
	return &Config{
		Host:           getEnv("HOST", "127.0.0.1"),
		Port:           getEnv("PORT", "8000"),
		ModelPath:      getEnv("VARIAMIDI_MODEL_PATH", "models/simple_gan.onnx"),
		RuntimeLibrary: getEnv("ONNXRUNTIME_SHARED_LIBRARY_PATH", ""),
	}
}

// Addr returns the host:port pair the HTTP server binds.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
