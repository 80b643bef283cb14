package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HOST", "PORT", "VARIAMIDI_MODEL_PATH", "ONNXRUNTIME_SHARED_LIBRARY_PATH"} {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want default", cfg.Host)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.ModelPath != "models/simple_gan.onnx" {
		t.Errorf("ModelPath = %q, want default", cfg.ModelPath)
	}
	if cfg.RuntimeLibrary != "" {
		t.Errorf("RuntimeLibrary = %q, want empty default", cfg.RuntimeLibrary)
	}
	if cfg.Addr() != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8000", cfg.Addr())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("VARIAMIDI_MODEL_PATH", "/opt/models/custom.onnx")
	t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "/usr/lib/libonnxruntime.so")

	cfg := Load()

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want env override", cfg.Host)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want env override", cfg.Port)
	}
	if cfg.ModelPath != "/opt/models/custom.onnx" {
		t.Errorf("ModelPath = %q, want env override", cfg.ModelPath)
	}
	if cfg.RuntimeLibrary != "/usr/lib/libonnxruntime.so" {
		t.Errorf("RuntimeLibrary = %q, want env override", cfg.RuntimeLibrary)
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:9000", cfg.Addr())
	}
}
