package variation

import "math"

// Resolve merges caller-supplied values over descriptor defaults. Unknown
// names are dropped, missing names fall back to their default, values
// outside [Minimum, Maximum] are clamped into range, and int-typed values
// are truncated. Generation therefore always proceeds for any numeric
// parameter mapping.
func Resolve(descriptors []Parameter, supplied Params) Params {
	resolved := make(Params, len(descriptors))
	for _, d := range descriptors {
		value, ok := supplied[d.Name]
		if !ok {
			value = d.Default
		} else {
			value = clamp(value, d.Minimum, d.Maximum)
		}
		if d.Type == TypeInt {
			value = math.Trunc(value)
		}
		resolved[d.Name] = value
	}
	return resolved
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
