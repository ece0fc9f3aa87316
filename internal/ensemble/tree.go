package ensemble

import (
	"math"
	"math/rand"
	"sort"
)

// treeNode is one node of a regression tree. Leaves hold the prediction.
type treeNode struct {
	feature     int
	threshold   float64
	value       float64
	left, right *treeNode
}

func (n *treeNode) isLeaf() bool { return n.left == nil }

func (n *treeNode) predict(x []float64) float64 {
	for !n.isLeaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// treeParams controls tree growth. leafLambda > 0 applies L2 shrinkage to
// leaf values, the regularization used by the boosted variant.
type treeParams struct {
	maxDepth    int
	minLeaf     int
	featureFrac float64
	leafLambda  float64
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

// buildTree grows a variance-reduction regression tree over the row indices
// in idx.
func buildTree(X [][]float64, y []float64, idx []int, depth int, p treeParams, rng *rand.Rand) *treeNode {
	leafValue := func() float64 {
		s := 0.0
		for _, i := range idx {
			s += y[i]
		}
		return s / (float64(len(idx)) + p.leafLambda)
	}
	if depth >= p.maxDepth || len(idx) < 2*p.minLeaf {
		return &treeNode{value: leafValue()}
	}

	nFeat := len(X[0])
	nTry := nFeat
	if p.featureFrac > 0 && p.featureFrac < 1 {
		nTry = int(math.Max(1, math.Round(p.featureFrac*float64(nFeat))))
	}
	candidates := rng.Perm(nFeat)[:nTry]

	bestScore := math.Inf(1)
	bestFeat := -1
	bestThr := 0.0
	vals := make([]float64, len(idx))

	for _, f := range candidates {
		for i, r := range idx {
			vals[i] = X[r][f]
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		for s := p.minLeaf; s <= len(sorted)-p.minLeaf; s += maxInt(1, len(sorted)/16) {
			if s >= len(sorted) {
				break
			}
			thr := (sorted[s-1] + sorted[s]) / 2
			var ls, lss, rs, rss float64
			var ln, rn int
			for _, r := range idx {
				v := y[r]
				if X[r][f] <= thr {
					ls += v
					lss += v * v
					ln++
				} else {
					rs += v
					rss += v * v
					rn++
				}
			}
			if ln < p.minLeaf || rn < p.minLeaf {
				continue
			}
			score := (lss - ls*ls/float64(ln)) + (rss - rs*rs/float64(rn))
			if score < bestScore {
				bestScore = score
				bestFeat = f
				bestThr = thr
			}
		}
	}

	if bestFeat < 0 {
		return &treeNode{value: leafValue()}
	}

	leftIdx := make([]int, 0, len(idx))
	rightIdx := make([]int, 0, len(idx))
	for _, r := range idx {
		if X[r][bestFeat] <= bestThr {
			leftIdx = append(leftIdx, r)
		} else {
			rightIdx = append(rightIdx, r)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return &treeNode{value: leafValue()}
	}
	return &treeNode{
		feature:   bestFeat,
		threshold: bestThr,
		left:      buildTree(X, y, leftIdx, depth+1, p, rng),
		right:     buildTree(X, y, rightIdx, depth+1, p, rng),
	}
}

// randomForest bags trees over bootstrap samples with random feature
// subsets per split.
func randomForest(X [][]float64, y []float64, nTrees int, rng *rand.Rand) []*treeNode {
	p := treeParams{maxDepth: 8, minLeaf: 3, featureFrac: 0.5}
	trees := make([]*treeNode, nTrees)
	n := len(X)
	for t := 0; t < nTrees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		trees[t] = buildTree(X, y, idx, 0, p, rng)
	}
	return trees
}

func forestPredict(trees []*treeNode, x []float64) float64 {
	s := 0.0
	for _, t := range trees {
		s += t.predict(x)
	}
	return s / float64(len(trees))
}

// boostedTrees fits shallow trees on residuals. lambda > 0 selects the
// regularized leaf estimate.
func boostedTrees(X [][]float64, y []float64, rounds int, lr, lambda float64, rng *rand.Rand) (base float64, trees []*treeNode) {
	p := treeParams{maxDepth: 3, minLeaf: 5, featureFrac: 1.0, leafLambda: lambda}
	base = mean(y)
	resid := make([]float64, len(y))
	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = base
	}
	all := make([]int, len(y))
	for i := range all {
		all[i] = i
	}
	for t := 0; t < rounds; t++ {
		for i := range resid {
			resid[i] = y[i] - pred[i]
		}
		tree := buildTree(X, resid, all, 0, p, rng)
		trees = append(trees, tree)
		for i := range pred {
			pred[i] += lr * tree.predict(X[i])
		}
	}
	return base, trees
}

func boostedPredict(base float64, trees []*treeNode, lr float64, x []float64) float64 {
	out := base
	for _, t := range trees {
		out += lr * t.predict(x)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
