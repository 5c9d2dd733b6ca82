package bsgraph

import (
	"math"
)

// Ranking defaults.
const (
	// DefaultDampingFactor is the probability of following an edge rather
	// than jumping to a random node.
	DefaultDampingFactor = 0.85
	// DefaultMaxIterations bounds the power iteration.
	DefaultMaxIterations = 100
	// DefaultMaxError is the convergence threshold for PageRank.
	DefaultMaxError = 1e-6
	// DefaultTolerance is the convergence threshold for eigenvector centrality.
	DefaultTolerance = 1e-6
)

// PageRankOptions configures PageRank.
type PageRankOptions struct {
	// DampingFactor must be in [0, 1]. Default: 0.85
	DampingFactor float64
	// MaxIterations must be > 0. Default: 100
	MaxIterations int
	// MaxError stops the iteration once no score changes by more than it.
	// Must be > 0. Default: 1e-6
	MaxError float64
	// RedistributeDanglingMass spreads the score held by nodes without
	// outbound edges evenly over all nodes in every round.
	RedistributeDanglingMass bool
	// Monotonic keeps the larger of the previous and the new score of a
	// node. Scores then no longer sum to 1.
	Monotonic bool
}

// DefaultPageRankOptions returns the default PageRank configuration.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		DampingFactor:            DefaultDampingFactor,
		MaxIterations:            DefaultMaxIterations,
		MaxError:                 DefaultMaxError,
		RedistributeDanglingMass: true,
	}
}

// Validate replaces out-of-range values with defaults.
func (o *PageRankOptions) Validate() {
	if o.DampingFactor < 0 || o.DampingFactor > 1 || math.IsNaN(o.DampingFactor) {
		o.DampingFactor = DefaultDampingFactor
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if !(o.MaxError > 0) {
		o.MaxError = DefaultMaxError
	}
}

// CentralityOptions configures eigenvector centrality.
type CentralityOptions struct {
	// MaxIterations must be > 0. Default: 100
	MaxIterations int
	// Tolerance stops the iteration once the summed absolute change of all
	// scores drops below it. Must be > 0. Default: 1e-6
	Tolerance float64
	// UseInbound scores a node by the nodes referencing it instead of the
	// nodes it references.
	UseInbound bool
	// IgnoreSelfEdges leaves a node's own score out of its sum.
	IgnoreSelfEdges bool
	// L2Norm normalizes by the Euclidean norm instead of the sum.
	L2Norm bool
}

// DefaultCentralityOptions returns the default centrality configuration.
func DefaultCentralityOptions() CentralityOptions {
	return CentralityOptions{
		MaxIterations:   DefaultMaxIterations,
		Tolerance:       DefaultTolerance,
		UseInbound:      true,
		IgnoreSelfEdges: true,
	}
}

// Validate replaces out-of-range values with defaults.
func (o *CentralityOptions) Validate() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if !(o.Tolerance > 0) {
		o.Tolerance = DefaultTolerance
	}
}

// RankResult is the outcome of an iterative ranking.
type RankResult struct {
	// Scores holds one score per node.
	Scores []float64
	// Iterations is the number of rounds performed.
	Iterations int
	// Converged reports whether the threshold was reached before the
	// iteration budget ran out.
	Converged bool
	// Delta is the change measured in the last round.
	Delta float64
}

// PageRank computes damped PageRank scores:
//
//	score(i) = (1-d)/n + d * Σ score(p)/outdeg(p) over predecessors p
//
// plus d * dangling/n when dangling mass is redistributed. Delta is the
// largest per-node change of the last round.
func (g *Graph) PageRank(opts PageRankOptions) RankResult {
	opts.Validate()

	n := g.Len()
	if n == 0 {
		return RankResult{Scores: []float64{}, Converged: true}
	}

	nf := float64(n)
	d := opts.DampingFactor
	scores := make([]float64, n)
	next := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / nf
	}

	outDeg := make([]float64, n)
	for i, v := range g.out {
		outDeg[i] = float64(v.Count())
	}

	result := RankResult{}
	for round := 1; round <= opts.MaxIterations; round++ {
		base := (1 - d) / nf
		if opts.RedistributeDanglingMass {
			var dangling float64
			for i, deg := range outDeg {
				if deg == 0 {
					dangling += scores[i]
				}
			}
			base += d * dangling / nf
		}

		var maxDiff float64
		for i := range next {
			var sum float64
			for p, ok := g.in[i].NextSet(0); ok; p, ok = g.in[i].NextSet(p + 1) {
				sum += scores[p] / outDeg[p]
			}
			s := base + d*sum
			if opts.Monotonic && s < scores[i] {
				s = scores[i]
			}
			next[i] = s
			maxDiff = math.Max(maxDiff, math.Abs(s-scores[i]))
		}
		scores, next = next, scores

		result.Iterations = round
		result.Delta = maxDiff
		if maxDiff < opts.MaxError {
			result.Converged = true
			break
		}
	}

	result.Scores = scores
	return result
}

// EigenvectorCentrality computes scores by power iteration: every round a
// node's score becomes the sum of its neighbors' scores and the vector is
// renormalized. Delta is the summed absolute change of the last round.
//
// In graphs without cycles the iteration can collapse to the zero vector;
// the last non-zero vector is returned in that case and Converged is false.
func (g *Graph) EigenvectorCentrality(opts CentralityOptions) RankResult {
	opts.Validate()

	n := g.Len()
	if n == 0 {
		return RankResult{Scores: []float64{}, Converged: true}
	}

	adj := g.out
	if opts.UseInbound {
		adj = g.in
	}

	scores := make([]float64, n)
	next := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}

	result := RankResult{}
	for round := 1; round <= opts.MaxIterations; round++ {
		for i := range next {
			var sum float64
			for j, ok := adj[i].NextSet(0); ok; j, ok = adj[i].NextSet(j + 1) {
				if opts.IgnoreSelfEdges && int(j) == i {
					continue
				}
				sum += scores[j]
			}
			next[i] = sum
		}

		norm := normOf(next, opts.L2Norm)
		result.Iterations = round
		if norm == 0 {
			break
		}

		var delta float64
		for i := range next {
			next[i] /= norm
			delta += math.Abs(next[i] - scores[i])
		}
		scores, next = next, scores

		result.Delta = delta
		if delta < opts.Tolerance {
			result.Converged = true
			break
		}
	}

	result.Scores = scores
	return result
}

func normOf(v []float64, l2 bool) float64 {
	var sum float64
	for _, x := range v {
		if l2 {
			sum += x * x
		} else {
			sum += math.Abs(x)
		}
	}
	if l2 {
		return math.Sqrt(sum)
	}
	return sum
}
