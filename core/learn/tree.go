package learn

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// TreeParams controls how a single tree is grown.
type TreeParams struct {
	MaxDepth       int
	MinSamplesLeaf int
	// MaxFeatures limits the features considered per split. Zero means all.
	MaxFeatures int
}

func (p TreeParams) withDefaults() TreeParams {
	if p.MaxDepth <= 0 {
		p.MaxDepth = 6
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 1
	}
	return p
}

type node struct {
	leaf      bool
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// Tree is a fitted regression tree.
type Tree struct {
	nodes []node
	gains []float64
}

type grower struct {
	x     mat.Matrix
	grad  []float64
	hess  []float64
	p     TreeParams
	rng   *rand.Rand
	tree  *Tree
	nFeat int
}

// growTree fits a tree on the given rows. Leaf weights minimize the second
// order approximation of the loss: w = -G / H.
func growTree(x mat.Matrix, grad, hess []float64, rows []int, p TreeParams, rng *rand.Rand) *Tree {
	_, nFeat := x.Dims()
	g := &grower{
		x:     x,
		grad:  grad,
		hess:  hess,
		p:     p.withDefaults(),
		rng:   rng,
		tree:  &Tree{gains: make([]float64, nFeat)},
		nFeat: nFeat,
	}
	g.build(rows, 0)
	return g.tree
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	left      []int
	right     []int
}

func (g *grower) build(rows []int, depth int) int {
	var sg, sh float64
	for _, r := range rows {
		sg += g.grad[r]
		sh += g.hess[r]
	}
	idx := len(g.tree.nodes)
	g.tree.nodes = append(g.tree.nodes, node{leaf: true, value: -sg / sh})
	if depth >= g.p.MaxDepth || len(rows) < 2*g.p.MinSamplesLeaf {
		return idx
	}
	best, ok := g.bestSplit(rows, sg, sh)
	if !ok {
		return idx
	}
	g.tree.gains[best.feature] += best.gain
	left := g.build(best.left, depth+1)
	right := g.build(best.right, depth+1)
	g.tree.nodes[idx] = node{feature: best.feature, threshold: best.threshold, left: left, right: right}
	return idx
}

func (g *grower) features() []int {
	k := g.p.MaxFeatures
	if k <= 0 || k >= g.nFeat || g.rng == nil {
		all := make([]int, g.nFeat)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return g.rng.Perm(g.nFeat)[:k]
}

func (g *grower) score(sg, sh float64) float64 {
	return sg * sg / sh
}

func (g *grower) bestSplit(rows []int, sg, sh float64) (split, bool) {
	parent := g.score(sg, sh)
	best := split{gain: math.Inf(-1)}
	sorted := make([]int, len(rows))
	minLeaf := g.p.MinSamplesLeaf
	for _, f := range g.features() {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool { return g.x.At(sorted[i], f) < g.x.At(sorted[j], f) })
		var lg, lh float64
		for i := 0; i < len(sorted)-1; i++ {
			r := sorted[i]
			lg += g.grad[r]
			lh += g.hess[r]
			if i+1 < minLeaf || len(sorted)-i-1 < minLeaf {
				continue
			}
			cur, next := g.x.At(r, f), g.x.At(sorted[i+1], f)
			if cur == next {
				continue
			}
			gain := 0.5 * (g.score(lg, lh) + g.score(sg-lg, sh-lh) - parent)
			if gain > best.gain {
				best.gain = gain
				best.feature = f
				best.threshold = (cur + next) / 2
			}
		}
	}
	if math.IsInf(best.gain, -1) || best.gain <= 0 {
		return split{}, false
	}
	for _, r := range rows {
		if g.x.At(r, best.feature) <= best.threshold {
			best.left = append(best.left, r)
		} else {
			best.right = append(best.right, r)
		}
	}
	return best, true
}

// predictRow evaluates the tree on row i of x.
func (t *Tree) predictRow(x mat.Matrix, i int) float64 {
	n := t.nodes[0]
	for !n.leaf {
		if x.At(i, n.feature) <= n.threshold {
			n = t.nodes[n.left]
		} else {
			n = t.nodes[n.right]
		}
	}
	return n.value
}

// Depth returns the depth of the deepest leaf.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.leaf {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(0)
}

// normalize scales v in place so it sums to 1. A zero vector is left as is.
func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	if sum == 0 {
		return v
	}
	for i := range v {
		v[i] /= sum
	}
	return v
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
