package mathx

import (
	"math"
	"testing"
)

func TestSolveExact(t *testing.T) {
	// 2x + y = 5, x - y = 1 has solution x=2, y=1
	aug := [][]float64{
		{2, 1, 5},
		{1, -1, 1},
	}
	sol, err := Solve(aug)
	if err != nil {
		t.Fatalf("Expected solution, got error: %v", err)
	}
	if math.Abs(sol[0]-2) > 1e-9 || math.Abs(sol[1]-1) > 1e-9 {
		t.Errorf("Expected [2 1], got %v", sol)
	}
}

func TestSolveSingular(t *testing.T) {
	aug := [][]float64{
		{1, 2, 3},
		{2, 4, 6},
	}
	if _, err := Solve(aug); err == nil {
		t.Error("Expected singular system error")
	}
}

func TestLeastSquaresRecoversLine(t *testing.T) {
	// y = 3 + 2x with no noise
	X := make([][]float64, 20)
	y := make([]float64, 20)
	for i := range X {
		X[i] = []float64{1, float64(i)}
		y[i] = 3 + 2*float64(i)
	}
	beta, err := LeastSquares(X, y, nil)
	if err != nil {
		t.Fatalf("Expected fit, got error: %v", err)
	}
	if math.Abs(beta[0]-3) > 1e-6 || math.Abs(beta[1]-2) > 1e-6 {
		t.Errorf("Expected [3 2], got %v", beta)
	}
}

func TestLeastSquaresPenaltyShrinks(t *testing.T) {
	X := make([][]float64, 20)
	y := make([]float64, 20)
	for i := range X {
		X[i] = []float64{1, float64(i)}
		y[i] = 2 * float64(i)
	}
	free, err := LeastSquares(X, y, nil)
	if err != nil {
		t.Fatal(err)
	}
	ridge, err := LeastSquares(X, y, []float64{0, 100})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ridge[1]) >= math.Abs(free[1]) {
		t.Errorf("Expected penalized slope %f to shrink below %f", ridge[1], free[1])
	}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	if q := Quantile(sorted, 0); q != 1 {
		t.Errorf("Expected 1, got %f", q)
	}
	if q := Quantile(sorted, 1); q != 5 {
		t.Errorf("Expected 5, got %f", q)
	}
	if q := Quantile(sorted, 0.5); q != 3 {
		t.Errorf("Expected 3, got %f", q)
	}
	if q := Quantile(sorted, 0.25); q != 2 {
		t.Errorf("Expected 2, got %f", q)
	}
}

func TestMeanStd(t *testing.T) {
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if m := Mean(vals); m != 5 {
		t.Errorf("Expected mean 5, got %f", m)
	}
	if s := Std(vals); math.Abs(s-2) > 1e-9 {
		t.Errorf("Expected std 2, got %f", s)
	}
}

func TestClamp(t *testing.T) {
	if v := Clamp(5, 0, 1); v != 1 {
		t.Errorf("Expected 1, got %f", v)
	}
	if v := Clamp(-5, 0, 1); v != 0 {
		t.Errorf("Expected 0, got %f", v)
	}
	if v := Clamp(0.5, 0, 1); v != 0.5 {
		t.Errorf("Expected 0.5, got %f", v)
	}
}
