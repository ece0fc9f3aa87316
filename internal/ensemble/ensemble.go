package ensemble

import (
	"context"
	"math"
	"math/rand"

	"stock-advisor/internal/features"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// ExtraRows is the usable-row margin required beyond the sequence window
// before the panel is allowed to train.
const ExtraRows = 20

// Predict trains the model panel on the feature matrix and combines the
// surviving one-step-ahead predictions under the given weight profile.
//
// A model that fails to train is excluded and reported in the returned
// failure map, never aborting the whole prediction. The hard failures are
// too few usable rows and a panel with zero survivors.
func Predict(ctx context.Context, m *features.Matrix, profile WeightProfile, window int) (*types.EnsembleResult, map[Kind]error, error) {
	ctx, span := trace.StartSpan(ctx, "ensemble-predict")
	defer span.End()

	need := window + ExtraRows
	if m.NumRows() < need {
		return nil, nil, &types.InsufficientDataError{Need: need, Have: m.NumRows()}
	}

	ts := buildTrainingSet(m, window)
	rng := rand.New(rand.NewSource(42))

	preds := map[Kind]float64{}
	failures := map[Kind]error{}
	attempted := 0
	for _, spec := range panel() {
		if len(ts.yTrain) < spec.MinRows {
			logger.Debug(ctx, "Model skipped: below capability threshold",
				"model", string(spec.Kind), "train_rows", len(ts.yTrain), "min_rows", spec.MinRows)
			continue
		}
		attempted++
		pred, err := spec.Run(ts, rng)
		if err != nil {
			logger.Warn(ctx, "Model training failed, excluding from ensemble",
				"model", string(spec.Kind), "error", err)
			failures[spec.Kind] = err
			continue
		}
		preds[spec.Kind] = pred
	}
	if len(preds) == 0 {
		return nil, failures, &types.AllModelsFailedError{Attempted: attempted}
	}

	weights := adjustedWeights(profile, preds)
	scaled := 0.0
	for kind, p := range preds {
		scaled += weights[kind] * p
	}
	final := m.Scaler.InverseColumn(scaled, features.CloseColumn)

	individual := make(map[string]types.JSONFloat, len(preds))
	unscaled := make([]float64, 0, len(preds))
	for kind, p := range preds {
		v := m.Scaler.InverseColumn(p, features.CloseColumn)
		individual[string(kind)] = types.JSONFloat(v)
		unscaled = append(unscaled, v)
	}
	sigma := stdDev(unscaled)

	confidence := 0.0
	if final != 0 {
		confidence = clamp01(1.0 / (1.0 + sigma/final))
	}

	logger.Info(ctx, "Ensemble prediction combined",
		"models", len(preds), "failed", len(failures),
		"prediction", final, "confidence", confidence)

	return &types.EnsembleResult{
		Prediction:      types.JSONFloat(final),
		LowerBound:      types.JSONFloat(final - sigma),
		UpperBound:      types.JSONFloat(final + sigma),
		ConfidenceScore: types.JSONFloat(confidence),
		PerModel:        individual,
	}, failures, nil
}

// buildTrainingSet windows the scaled matrix and splits it 80/20 in time
// order; shuffling would leak future rows into training.
func buildTrainingSet(m *features.Matrix, window int) *trainingSet {
	rows := m.Rows
	nSamples := len(rows) - window

	seq := make([][][]float64, nSamples)
	flat := make([][]float64, nSamples)
	y := make([]float64, nSamples)
	for i := window; i < len(rows); i++ {
		k := i - window
		seq[k] = rows[i-window : i]
		flat[k] = rows[i]
		y[k] = rows[i][features.CloseColumn]
	}

	split := int(float64(nSamples) * 0.8)
	if split >= nSamples {
		split = nSamples - 1
	}
	if split < 1 {
		split = 1
	}

	closes := make([]float64, len(rows))
	for i, r := range rows {
		closes[i] = r[features.CloseColumn]
	}

	return &trainingSet{
		seqTrain:  seq[:split],
		seqTest:   seq[split:],
		flatTrain: flat[:split],
		flatTest:  flat[split:],
		yTrain:    y[:split],
		yTest:     y[split:],
		closes:    closes,
	}
}

// adjustedWeights renormalizes the profile over the surviving models only,
// defaulting unnamed survivors to defaultWeight first.
func adjustedWeights(profile WeightProfile, preds map[Kind]float64) map[Kind]float64 {
	total := 0.0
	for kind := range preds {
		total += weightFor(profile, kind)
	}
	out := make(map[Kind]float64, len(preds))
	if total == 0 {
		// All survivors zero-weighted; treat them as equals rather
		// than dividing into NaN.
		w := 1.0 / float64(len(preds))
		for kind := range preds {
			out[kind] = w
		}
		return out
	}
	for kind := range preds {
		out[kind] = weightFor(profile, kind) / total
	}
	return out
}

func weightFor(profile WeightProfile, kind Kind) float64 {
	if w, ok := profile[kind]; ok {
		return w
	}
	return defaultWeight
}

func stdDev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := 0.0
	for _, v := range vals {
		m += v
	}
	m /= float64(len(vals))
	s := 0.0
	for _, v := range vals {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(vals)))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
