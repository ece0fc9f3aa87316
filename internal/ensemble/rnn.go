package ensemble

import (
	"math"
	"math/rand"
)

// recurrentNet is a small two-layer Elman network trained with truncated
// backprop through time. Dropout is applied to the non-recurrent
// connections only, which keeps the recurrence stable.
type recurrentNet struct {
	in, h1, h2 int
	keep       float64 // dropout keep probability

	Wx1, Wh1 [][]float64
	b1       []float64
	Wx2, Wh2 [][]float64
	b2       []float64
	Wy       []float64
	by       float64
}

func newRecurrentNet(in, h1, h2 int, keep float64, rng *rand.Rand) *recurrentNet {
	n := &recurrentNet{in: in, h1: h1, h2: h2, keep: keep}
	n.Wx1 = randMatrix(h1, in, rng)
	n.Wh1 = randMatrix(h1, h1, rng)
	n.b1 = make([]float64, h1)
	n.Wx2 = randMatrix(h2, h1, rng)
	n.Wh2 = randMatrix(h2, h2, rng)
	n.b2 = make([]float64, h2)
	n.Wy = randVector(h2, rng)
	return n
}

func randMatrix(rows, cols int, rng *rand.Rand) [][]float64 {
	scale := math.Sqrt(1.0 / float64(cols))
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = (rng.Float64()*2 - 1) * scale
		}
	}
	return m
}

func randVector(n int, rng *rand.Rand) []float64 {
	scale := math.Sqrt(1.0 / float64(n))
	v := make([]float64, n)
	for i := range v {
		v[i] = (rng.Float64()*2 - 1) * scale
	}
	return v
}

type rnnCache struct {
	x      [][]float64
	h1raw  [][]float64
	h1drop [][]float64
	h2raw  [][]float64
	m1     [][]float64
	m2     []float64
	pred   float64
}

// forward runs the sequence through both layers. With train set, inverted
// dropout masks are sampled and recorded for the backward pass.
func (n *recurrentNet) forward(seq [][]float64, train bool, rng *rand.Rand) *rnnCache {
	T := len(seq)
	c := &rnnCache{
		x:      seq,
		h1raw:  make([][]float64, T),
		h1drop: make([][]float64, T),
		h2raw:  make([][]float64, T),
		m1:     make([][]float64, T),
	}
	prev1 := make([]float64, n.h1)
	prev2 := make([]float64, n.h2)
	for t := 0; t < T; t++ {
		h1 := make([]float64, n.h1)
		for i := 0; i < n.h1; i++ {
			s := n.b1[i]
			for j := 0; j < n.in; j++ {
				s += n.Wx1[i][j] * seq[t][j]
			}
			for j := 0; j < n.h1; j++ {
				s += n.Wh1[i][j] * prev1[j]
			}
			h1[i] = math.Tanh(s)
		}
		m1 := make([]float64, n.h1)
		hd := make([]float64, n.h1)
		for i := range h1 {
			m1[i] = 1.0
			if train && rng.Float64() >= n.keep {
				m1[i] = 0.0
			}
			hd[i] = h1[i] * m1[i] / n.keep
		}
		h2 := make([]float64, n.h2)
		for i := 0; i < n.h2; i++ {
			s := n.b2[i]
			for j := 0; j < n.h1; j++ {
				s += n.Wx2[i][j] * hd[j]
			}
			for j := 0; j < n.h2; j++ {
				s += n.Wh2[i][j] * prev2[j]
			}
			h2[i] = math.Tanh(s)
		}
		c.h1raw[t] = h1
		c.h1drop[t] = hd
		c.h2raw[t] = h2
		c.m1[t] = m1
		prev1 = h1
		prev2 = h2
	}
	c.m2 = make([]float64, n.h2)
	out := n.by
	last := c.h2raw[T-1]
	for i := 0; i < n.h2; i++ {
		c.m2[i] = 1.0
		if train && rng.Float64() >= n.keep {
			c.m2[i] = 0.0
		}
		out += n.Wy[i] * last[i] * c.m2[i] / n.keep
	}
	c.pred = out
	return c
}

// sgdStep backpropagates one sample through time and applies the update.
func (n *recurrentNet) sgdStep(c *rnnCache, target, lr float64) {
	T := len(c.x)
	dpred := c.pred - target

	dWy := make([]float64, n.h2)
	dh2 := make([][]float64, T)
	dh1 := make([][]float64, T)
	for t := range dh2 {
		dh2[t] = make([]float64, n.h2)
		dh1[t] = make([]float64, n.h1)
	}
	for i := 0; i < n.h2; i++ {
		scaled := c.m2[i] / n.keep
		dWy[i] = dpred * c.h2raw[T-1][i] * scaled
		dh2[T-1][i] = dpred * n.Wy[i] * scaled
	}
	dby := dpred

	dWx1 := zeroMatrix(n.h1, n.in)
	dWh1 := zeroMatrix(n.h1, n.h1)
	db1 := make([]float64, n.h1)
	dWx2 := zeroMatrix(n.h2, n.h1)
	dWh2 := zeroMatrix(n.h2, n.h2)
	db2 := make([]float64, n.h2)

	for t := T - 1; t >= 0; t-- {
		dz2 := make([]float64, n.h2)
		for i := 0; i < n.h2; i++ {
			h := c.h2raw[t][i]
			dz2[i] = dh2[t][i] * (1 - h*h)
		}
		var prev2 []float64
		if t > 0 {
			prev2 = c.h2raw[t-1]
		}
		for i := 0; i < n.h2; i++ {
			db2[i] += dz2[i]
			for j := 0; j < n.h1; j++ {
				dWx2[i][j] += dz2[i] * c.h1drop[t][j]
				dh1[t][j] += dz2[i] * n.Wx2[i][j] * c.m1[t][j] / n.keep
			}
			if prev2 != nil {
				for j := 0; j < n.h2; j++ {
					dWh2[i][j] += dz2[i] * prev2[j]
					dh2[t-1][j] += dz2[i] * n.Wh2[i][j]
				}
			}
		}

		dz1 := make([]float64, n.h1)
		for i := 0; i < n.h1; i++ {
			h := c.h1raw[t][i]
			dz1[i] = dh1[t][i] * (1 - h*h)
		}
		var prev1 []float64
		if t > 0 {
			prev1 = c.h1raw[t-1]
		}
		for i := 0; i < n.h1; i++ {
			db1[i] += dz1[i]
			for j := 0; j < n.in; j++ {
				dWx1[i][j] += dz1[i] * c.x[t][j]
			}
			if prev1 != nil {
				for j := 0; j < n.h1; j++ {
					dWh1[i][j] += dz1[i] * prev1[j]
					dh1[t-1][j] += dz1[i] * n.Wh1[i][j]
				}
			}
		}
	}

	clipGrads(5.0, dWx1, dWh1, dWx2, dWh2)
	applyMatrix(n.Wx1, dWx1, lr)
	applyMatrix(n.Wh1, dWh1, lr)
	applyVector(n.b1, db1, lr)
	applyMatrix(n.Wx2, dWx2, lr)
	applyMatrix(n.Wh2, dWh2, lr)
	applyVector(n.b2, db2, lr)
	applyVector(n.Wy, dWy, lr)
	n.by -= lr * dby
}

func zeroMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func clipGrads(limit float64, mats ...[][]float64) {
	norm := 0.0
	for _, m := range mats {
		for _, row := range m {
			for _, v := range row {
				norm += v * v
			}
		}
	}
	norm = math.Sqrt(norm)
	if norm <= limit {
		return
	}
	scale := limit / norm
	for _, m := range mats {
		for _, row := range m {
			for j := range row {
				row[j] *= scale
			}
		}
	}
}

func applyMatrix(w, g [][]float64, lr float64) {
	for i := range w {
		for j := range w[i] {
			w[i][j] -= lr * g[i][j]
		}
	}
}

func applyVector(w, g []float64, lr float64) {
	for i := range w {
		w[i] -= lr * g[i]
	}
}

func (n *recurrentNet) snapshot() *recurrentNet {
	cp := *n
	cp.Wx1 = copyMatrix(n.Wx1)
	cp.Wh1 = copyMatrix(n.Wh1)
	cp.b1 = append([]float64(nil), n.b1...)
	cp.Wx2 = copyMatrix(n.Wx2)
	cp.Wh2 = copyMatrix(n.Wh2)
	cp.b2 = append([]float64(nil), n.b2...)
	cp.Wy = append([]float64(nil), n.Wy...)
	return &cp
}

func copyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i := range m {
		out[i] = append([]float64(nil), m[i]...)
	}
	return out
}

// trainSequenceNet fits the network with early stopping on validation loss
// and returns the best network seen.
func trainSequenceNet(trainX [][][]float64, trainY []float64, valX [][][]float64, valY []float64, rng *rand.Rand) *recurrentNet {
	in := len(trainX[0][0])
	net := newRecurrentNet(in, 16, 8, 0.8, rng)
	best := net.snapshot()
	bestLoss := math.Inf(1)
	patience := 5
	bad := 0

	const epochs = 20
	lr := 0.02
	for e := 0; e < epochs; e++ {
		order := rng.Perm(len(trainX))
		for _, i := range order {
			c := net.forward(trainX[i], true, rng)
			net.sgdStep(c, trainY[i], lr)
		}
		loss := 0.0
		for i := range valX {
			c := net.forward(valX[i], false, nil)
			d := c.pred - valY[i]
			loss += d * d
		}
		loss /= float64(len(valX))
		if loss < bestLoss {
			bestLoss = loss
			best = net.snapshot()
			bad = 0
		} else {
			bad++
			if bad >= patience {
				break
			}
		}
		lr *= 0.95
	}
	return best
}
