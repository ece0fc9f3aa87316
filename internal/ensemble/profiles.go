package ensemble

// Kind identifies one predictor variant in the model panel.
type Kind string

const (
	SequenceModel        Kind = "SequenceModel"
	KernelRegression     Kind = "KernelRegression"
	RandomForestEnsemble Kind = "RandomForestEnsemble"
	GradientBoostedTrees Kind = "GradientBoostedTrees"
	XGBoostEnsemble      Kind = "XGBoostEnsemble"
	AutoRegressive       Kind = "AutoRegressive"
	NearestNeighbors     Kind = "NearestNeighbors"
)

// WeightProfile maps model kinds to non-negative weights. Profiles are not
// required to sum to 1; weights are renormalized at combination time over
// the models that actually produced a prediction.
type WeightProfile map[Kind]float64

// defaultWeight is assumed for any surviving model a profile does not name.
const defaultWeight = 0.1

var profiles = map[string]WeightProfile{
	"Default": {
		SequenceModel:        0.30,
		XGBoostEnsemble:      0.15,
		RandomForestEnsemble: 0.15,
		AutoRegressive:       0.10,
		KernelRegression:     0.10,
		GradientBoostedTrees: 0.10,
		NearestNeighbors:     0.10,
	},
	"Trend-Focused": {
		SequenceModel:        0.35,
		XGBoostEnsemble:      0.20,
		RandomForestEnsemble: 0.15,
		AutoRegressive:       0.10,
		KernelRegression:     0.08,
		GradientBoostedTrees: 0.07,
		NearestNeighbors:     0.05,
	},
	"Statistical": {
		SequenceModel:        0.20,
		XGBoostEnsemble:      0.15,
		RandomForestEnsemble: 0.15,
		AutoRegressive:       0.20,
		KernelRegression:     0.15,
		GradientBoostedTrees: 0.10,
		NearestNeighbors:     0.05,
	},
	"Tree-Ensemble": {
		SequenceModel:        0.25,
		XGBoostEnsemble:      0.25,
		RandomForestEnsemble: 0.20,
		AutoRegressive:       0.10,
		KernelRegression:     0.08,
		GradientBoostedTrees: 0.07,
		NearestNeighbors:     0.05,
	},
	"Balanced": {
		SequenceModel:        0.25,
		XGBoostEnsemble:      0.20,
		RandomForestEnsemble: 0.15,
		AutoRegressive:       0.15,
		KernelRegression:     0.10,
		GradientBoostedTrees: 0.10,
		NearestNeighbors:     0.05,
	},
	"Volatility-Focused": {
		SequenceModel:        0.30,
		XGBoostEnsemble:      0.25,
		RandomForestEnsemble: 0.20,
		AutoRegressive:       0.05,
		KernelRegression:     0.10,
		GradientBoostedTrees: 0.07,
		NearestNeighbors:     0.03,
	},
}

// ProfileDescriptions documents the intended use of each built-in profile.
var ProfileDescriptions = map[string]string{
	"Default":            "Original configuration with balanced weights",
	"Trend-Focused":      "Best for growth stocks, tech stocks, clear trend patterns",
	"Statistical":        "Best for blue chip stocks, utilities, stable dividend stocks",
	"Tree-Ensemble":      "Best for stocks with complex relationships to market factors",
	"Balanced":           "Best for general purpose, unknown stock characteristics",
	"Volatility-Focused": "Best for small cap stocks, emerging market stocks, crypto-related stocks",
}

// Profile looks up a built-in weight profile by name.
func Profile(name string) (WeightProfile, bool) {
	p, ok := profiles[name]
	if !ok {
		return nil, false
	}
	// Copy so callers cannot mutate the shared table.
	out := make(WeightProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, true
}

// ProfileNames lists the built-in profile names.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	return names
}
