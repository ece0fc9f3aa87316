package features

// MinMaxScaler scales each column into [0, 1]. It is fit once during feature
// construction and reused for inverse-transforming predictions; column order
// must be identical between the two calls.
type MinMaxScaler struct {
	Min []float64
	Max []float64
}

// Fit records per-column minima and maxima.
func (s *MinMaxScaler) Fit(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	n := len(rows[0])
	s.Min = make([]float64, n)
	s.Max = make([]float64, n)
	copy(s.Min, rows[0])
	copy(s.Max, rows[0])
	for _, r := range rows {
		for j, v := range r {
			if v < s.Min[j] {
				s.Min[j] = v
			}
			if v > s.Max[j] {
				s.Max[j] = v
			}
		}
	}
}

// Transform returns a scaled copy of rows. Constant columns map to 0.
func (s *MinMaxScaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		sr := make([]float64, len(r))
		for j, v := range r {
			span := s.Max[j] - s.Min[j]
			if span == 0 {
				sr[j] = 0
				continue
			}
			sr[j] = (v - s.Min[j]) / span
		}
		out[i] = sr
	}
	return out
}

// InverseColumn maps a single scaled value back to the original units of
// column j.
func (s *MinMaxScaler) InverseColumn(v float64, j int) float64 {
	return v*(s.Max[j]-s.Min[j]) + s.Min[j]
}
