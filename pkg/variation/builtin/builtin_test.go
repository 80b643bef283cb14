package builtin

import (
	"path/filepath"
	"testing"

	"github.com/variamidi/variamidi/pkg/variation/groove"
)

func TestDiscover(t *testing.T) {
	cfg := groove.Config{ModelPath: filepath.Join(t.TempDir(), "missing.onnx")}

	r, err := Discover(cfg)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	descriptors := r.Descriptors()
	if len(descriptors) != 2 {
		t.Fatalf("Discover() registered %d modules, want 2", len(descriptors))
	}
	if descriptors[0].Name != "markov" || descriptors[1].Name != "groove" {
		t.Errorf("module order = %q, %q, want markov, groove", descriptors[0].Name, descriptors[1].Name)
	}
	if descriptors[0].Label != "Markov Chain (Melody)" {
		t.Errorf("markov label = %q", descriptors[0].Label)
	}
	if descriptors[1].Label != "Offline GAN Groove" {
		t.Errorf("groove label = %q", descriptors[1].Label)
	}
	if !descriptors[0].Ready {
		t.Error("markov module should always be ready")
	}
	if descriptors[1].Ready {
		t.Error("groove module should not be ready without its model file")
	}

	if _, err := r.Resolve("markov"); err != nil {
		t.Errorf("Resolve(markov) error = %v", err)
	}
	if _, err := r.Resolve("groove"); err != nil {
		t.Errorf("Resolve(groove) error = %v", err)
	}
}
