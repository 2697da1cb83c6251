package analysis

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/stocksim/stocksim/pkg/formulas"
)

// Clustering defaults
const (
	DefaultClusters = 3
	DefaultSeed     = 42

	kmeansInits   = 10
	kmeansMaxIter = 300
	kmeansTol     = 1e-4
)

// Classifier assigns a risk label to every ticker of a returns table.
type Classifier struct {
	Clusters int
	Seed     int64
}

// NewClassifier returns a classifier with K=3 and the fixed seed.
func NewClassifier() *Classifier {
	return &Classifier{Clusters: DefaultClusters, Seed: DefaultSeed}
}

// Classify normalizes [volatility, sharpe, tail] per ticker to [0,1] and
// partitions the tickers with K-means. Labels come back in ticker order.
// A single ticker is labelled 0 without clustering; K is reduced to the
// number of tickers when it exceeds it.
func (c *Classifier) Classify(returns *ReturnsTable) ([]int, error) {
	n := returns.NumTickers()
	if n == 0 || returns.NumRows() == 0 {
		return nil, ErrInsufficientData
	}

	points := clusterFeatures(returns)

	if n == 1 {
		return []int{0}, nil
	}

	k := c.Clusters
	if k <= 0 {
		k = DefaultClusters
	}
	if k > n {
		k = n
	}

	km := &kmeans{k: k, seed: c.Seed, inits: kmeansInits, maxIter: kmeansMaxIter, tol: kmeansTol}
	labels, _ := km.fit(points)
	return labels, nil
}

// clusterFeatures builds the min-max scaled feature matrix, one row per ticker,
// from the extracted feature vectors. NaN cells (undefined Sharpe) are skipped
// by the scaler and then placed at the origin of their axis.
func clusterFeatures(returns *ReturnsTable) [][]float64 {
	features := ExtractFeatures(returns)
	vols, sharpes, tails := splitFeatures(features)

	scaled := [][]float64{
		formulas.MinMaxScale(vols, 0, 1),
		formulas.MinMaxScale(sharpes, 0, 1),
		formulas.MinMaxScale(tails, 0, 1),
	}

	points := make([][]float64, len(features))
	for j := range points {
		row := make([]float64, len(scaled))
		for f := range scaled {
			row[f] = formulas.Finite(scaled[f][j])
		}
		points[j] = row
	}
	return points
}

// kmeans is Lloyd's algorithm with k-means++ seeding. Several seeded
// initialisations run and the one with the lowest inertia wins.
type kmeans struct {
	k       int
	seed    int64
	inits   int
	maxIter int
	tol     float64
}

func (km *kmeans) fit(points [][]float64) ([]int, float64) {
	rng := rand.New(rand.NewSource(km.seed))
	tol := km.tol * meanFeatureVariance(points)

	var bestLabels []int
	bestInertia := math.Inf(1)
	for run := 0; run < km.inits; run++ {
		centers := km.seedCenters(points, rng)
		labels, inertia := km.lloyd(points, centers, tol)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
		}
	}
	return bestLabels, bestInertia
}

// seedCenters picks the first center uniformly, then each next one with
// probability proportional to the squared distance to the closest chosen center.
func (km *kmeans) seedCenters(points [][]float64, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, km.k)
	centers = append(centers, clone(points[rng.Intn(len(points))]))

	dist := make([]float64, len(points))
	for len(centers) < km.k {
		total := 0.0
		for i, p := range points {
			dist[i] = math.Inf(1)
			for _, c := range centers {
				dist[i] = math.Min(dist[i], sqDist(p, c))
			}
			total += dist[i]
		}

		next := rng.Intn(len(points))
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dist {
				acc += d
				if acc >= target && d > 0 {
					next = i
					break
				}
			}
		}
		centers = append(centers, clone(points[next]))
	}
	return centers
}

func (km *kmeans) lloyd(points [][]float64, centers [][]float64, tol float64) ([]int, float64) {
	labels := make([]int, len(points))
	dims := len(points[0])

	for iter := 0; iter < km.maxIter; iter++ {
		changed := assign(points, centers, labels)

		sums := make([][]float64, km.k)
		counts := make([]int, km.k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			counts[labels[i]]++
			for d, v := range p {
				sums[labels[i]][d] += v
			}
		}

		shift := 0.0
		for c := range centers {
			if counts[c] == 0 {
				// empty cluster keeps its previous center
				continue
			}
			next := make([]float64, dims)
			for d := range next {
				next[d] = sums[c][d] / float64(counts[c])
			}
			shift += sqDist(next, centers[c])
			centers[c] = next
		}

		if (!changed && iter > 0) || shift <= tol {
			break
		}
	}

	assign(points, centers, labels)
	inertia := 0.0
	for i, p := range points {
		inertia += sqDist(p, centers[labels[i]])
	}
	return labels, inertia
}

// assign moves every point to its nearest center; ties go to the lower index.
func assign(points, centers [][]float64, labels []int) bool {
	changed := false
	for i, p := range points {
		best, bestD := 0, math.Inf(1)
		for c, center := range centers {
			if d := sqDist(p, center); d < bestD {
				best, bestD = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

func meanFeatureVariance(points [][]float64) float64 {
	dims := len(points[0])
	col := make([]float64, len(points))
	total := 0.0
	for d := 0; d < dims; d++ {
		for i, p := range points {
			col[i] = p[d]
		}
		total += stat.PopVariance(col, nil)
	}
	return total / float64(dims)
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
