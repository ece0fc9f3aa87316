package types

import (
	"math"
	"strconv"
)

// JSONFloat marshals like a float64 but emits null for NaN and ±Inf, which
// arise naturally from zero-division guards upstream and are not valid JSON.
type JSONFloat float64

// MarshalJSON implements json.Marshaler.
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler; null decodes to NaN.
func (f *JSONFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = JSONFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

// Floats converts a float64 map into its JSON-safe representation.
func Floats(m map[string]float64) map[string]JSONFloat {
	out := make(map[string]JSONFloat, len(m))
	for k, v := range m {
		out[k] = JSONFloat(v)
	}
	return out
}
