package variation

import "testing"

func TestResolveParams(t *testing.T) {
	descriptors := []Parameter{
		{Name: "state_size", Type: TypeInt, Minimum: 1, Maximum: 4, Default: 2},
		{Name: "temperature", Type: TypeFloat, Minimum: 0.1, Maximum: 2.5, Default: 1.0},
	}

	tests := []struct {
		name     string
		supplied Params
		want     Params
	}{
		{
			name:     "empty uses defaults",
			supplied: Params{},
			want:     Params{"state_size": 2, "temperature": 1.0},
		},
		{
			name:     "nil uses defaults",
			supplied: nil,
			want:     Params{"state_size": 2, "temperature": 1.0},
		},
		{
			name:     "values inside range pass through",
			supplied: Params{"state_size": 3, "temperature": 0.7},
			want:     Params{"state_size": 3, "temperature": 0.7},
		},
		{
			name:     "values above maximum clamp down",
			supplied: Params{"state_size": 99, "temperature": 100},
			want:     Params{"state_size": 4, "temperature": 2.5},
		},
		{
			name:     "values below minimum clamp up",
			supplied: Params{"state_size": -5, "temperature": -1},
			want:     Params{"state_size": 1, "temperature": 0.1},
		},
		{
			name:     "unknown names are dropped",
			supplied: Params{"state_size": 3, "bogus": 42},
			want:     Params{"state_size": 3, "temperature": 1.0},
		},
		{
			name:     "integer parameters truncate fractions",
			supplied: Params{"state_size": 2.9},
			want:     Params{"state_size": 2, "temperature": 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(descriptors, tt.supplied)
			if len(got) != len(tt.want) {
				t.Fatalf("Resolve() returned %d params, want %d", len(got), len(tt.want))
			}
			for name, want := range tt.want {
				if got[name] != want {
					t.Errorf("Resolve()[%q] = %v, want %v", name, got[name], want)
				}
			}
		})
	}
}

func TestParamsAccessors(t *testing.T) {
	p := Params{"length": 32.7, "temperature": 1.5}

	if got := p.Int("length"); got != 32 {
		t.Errorf("Int(length) = %d, want 32", got)
	}
	if got := p.Float("temperature"); got != 1.5 {
		t.Errorf("Float(temperature) = %v, want 1.5", got)
	}
	if got := p.Int("missing"); got != 0 {
		t.Errorf("Int(missing) = %d, want 0", got)
	}
	if got := p.Float("missing"); got != 0 {
		t.Errorf("Float(missing) = %v, want 0", got)
	}
}
