package ensemble

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"stock-advisor/internal/mathx"
)

// trainingSet is the chronological 80/20 split the panel trains on. Targets
// are scaled closing values; flat rows are aligned with their own target
// row, sequence windows cover the preceding window rows.
type trainingSet struct {
	flatTrain [][]float64
	flatTest  [][]float64
	seqTrain  [][][]float64
	seqTest   [][][]float64
	yTrain    []float64
	yTest     []float64
	closes    []float64 // scaled close series over all usable rows
}

// ModelSpec declares one panel member: its identity, the data volume it can
// be trained on, and its train-and-predict routine. Each member is
// independently constructible and independently able to fail.
type ModelSpec struct {
	Kind    Kind
	MinRows int
	Run     func(ts *trainingSet, rng *rand.Rand) (float64, error)
}

// panel returns the full declared model panel. Members whose MinRows exceed
// the available training volume are skipped, not failed.
func panel() []ModelSpec {
	return []ModelSpec{
		{Kind: SequenceModel, MinRows: 40, Run: runSequence},
		{Kind: KernelRegression, MinRows: 20, Run: runKernel},
		{Kind: RandomForestEnsemble, MinRows: 30, Run: runForest},
		{Kind: GradientBoostedTrees, MinRows: 100, Run: runGBM},
		{Kind: XGBoostEnsemble, MinRows: 30, Run: runXGB},
		{Kind: AutoRegressive, MinRows: 25, Run: runAR},
		{Kind: NearestNeighbors, MinRows: 20, Run: runKNN},
	}
}

func runSequence(ts *trainingSet, rng *rand.Rand) (float64, error) {
	if len(ts.seqTrain) == 0 || len(ts.seqTest) == 0 {
		return 0, errors.New("no sequence windows available")
	}
	net := trainSequenceNet(ts.seqTrain, ts.yTrain, ts.seqTest, ts.yTest, rng)
	c := net.forward(ts.seqTest[len(ts.seqTest)-1], false, nil)
	if math.IsNaN(c.pred) || math.IsInf(c.pred, 0) {
		return 0, errors.New("sequence model diverged")
	}
	return c.pred, nil
}

// runKernel is Nadaraya-Watson regression with an RBF kernel; bandwidth
// from the median pairwise distance heuristic.
func runKernel(ts *trainingSet, rng *rand.Rand) (float64, error) {
	X, y := ts.flatTrain, ts.yTrain
	q := ts.flatTest[len(ts.flatTest)-1]

	dists := make([]float64, 0, 256)
	step := maxInt(1, len(X)/32)
	for i := 0; i < len(X); i += step {
		for j := i + step; j < len(X); j += step {
			dists = append(dists, euclid(X[i], X[j]))
		}
	}
	if len(dists) == 0 {
		return 0, errors.New("kernel regression: no pairs for bandwidth")
	}
	sort.Float64s(dists)
	sigma := dists[len(dists)/2]
	if sigma == 0 {
		return 0, errors.New("kernel regression: degenerate bandwidth")
	}
	gamma := 1.0 / (2 * sigma * sigma)

	num, den := 0.0, 0.0
	for i := range X {
		w := math.Exp(-gamma * sq(euclid(q, X[i])))
		num += w * y[i]
		den += w
	}
	if den == 0 {
		return 0, errors.New("kernel regression: zero kernel mass")
	}
	return num / den, nil
}

func runForest(ts *trainingSet, rng *rand.Rand) (float64, error) {
	trees := randomForest(ts.flatTrain, ts.yTrain, 50, rng)
	return forestPredict(trees, ts.flatTest[len(ts.flatTest)-1]), nil
}

func runGBM(ts *trainingSet, rng *rand.Rand) (float64, error) {
	base, trees := boostedTrees(ts.flatTrain, ts.yTrain, 50, 0.1, 0, rng)
	return boostedPredict(base, trees, 0.1, ts.flatTest[len(ts.flatTest)-1]), nil
}

func runXGB(ts *trainingSet, rng *rand.Rand) (float64, error) {
	base, trees := boostedTrees(ts.flatTrain, ts.yTrain, 50, 0.3, 1.0, rng)
	return boostedPredict(base, trees, 0.3, ts.flatTest[len(ts.flatTest)-1]), nil
}

// runAR fits an AR model on first differences of the scaled close series by
// least squares, the integrated-order-one formulation.
func runAR(ts *trainingSet, rng *rand.Rand) (float64, error) {
	const order = 2
	series := ts.closes
	if len(series) < order+10 {
		return 0, errors.New("autoregressive: series too short")
	}
	diffs := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		diffs[i-1] = series[i] - series[i-1]
	}
	phi, err := fitAR(diffs, order)
	if err != nil {
		return 0, err
	}
	next := phi[order]
	for j := 0; j < order; j++ {
		next += phi[j] * diffs[len(diffs)-1-j]
	}
	return series[len(series)-1] + next, nil
}

func runKNN(ts *trainingSet, rng *rand.Rand) (float64, error) {
	const k = 5
	X, y := ts.flatTrain, ts.yTrain
	if len(X) < k {
		return 0, errors.New("nearest neighbors: fewer rows than k")
	}
	q := ts.flatTest[len(ts.flatTest)-1]
	type nd struct {
		d float64
		y float64
	}
	ns := make([]nd, len(X))
	for i := range X {
		ns[i] = nd{d: euclid(q, X[i]), y: y[i]}
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i].d < ns[j].d })
	s := 0.0
	for i := 0; i < k; i++ {
		s += ns[i].y
	}
	return s / k, nil
}

// fitAR solves the least-squares system for AR coefficients over lagged
// rows [lag1..lagP, 1]. The intercept is the last coefficient.
func fitAR(series []float64, order int) ([]float64, error) {
	n := len(series) - order
	if n <= order {
		return nil, errors.New("autoregressive: not enough observations")
	}
	X := make([][]float64, 0, n)
	y := make([]float64, 0, n)
	for t := order; t < len(series); t++ {
		row := make([]float64, order+1)
		for j := 0; j < order; j++ {
			row[j] = series[t-1-j]
		}
		row[order] = 1.0
		X = append(X, row)
		y = append(y, series[t])
	}
	sol, err := mathx.LeastSquares(X, y, make([]float64, order+1))
	if err != nil {
		return nil, err
	}
	return sol, nil
}

func euclid(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func sq(v float64) float64 { return v * v }
