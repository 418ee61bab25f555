package activelearn

import "math"

// RegressionLearner is the active learner's first sub-learner
// (SPEC_FULL.md §4.7): logistic regression trained online on
// accumulated (distance vector, label) rows, via batch gradient
// descent — no logistic-regression library turned up in the
// retrieval pack (see DESIGN.md), so this follows the teacher's own
// numeric-function style (pkg/resorank/math.go: small free functions
// over float64, a bare Sigmoid) rather than reaching for a learned
// stdlib replacement with unnecessary machinery.
type RegressionLearner struct {
	weights []float64
	bias    float64

	vectors [][]float64
	labels  []float64

	learningRate float64
	iterations   int

	positives int
	negatives int
}

// NewRegressionLearner returns a learner for dim-dimensional distance
// vectors.
func NewRegressionLearner(dim int) *RegressionLearner {
	return &RegressionLearner{
		weights:      make([]float64, dim),
		learningRate: 0.1,
		iterations:   200,
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func (r *RegressionLearner) score(vec []float64) float64 {
	z := r.bias
	for i, w := range r.weights {
		z += w * vec[i]
	}
	return sigmoid(z)
}

// Score returns the predicted match probability for vec.
func (r *RegressionLearner) Score(vec []float64) float64 { return r.score(vec) }

// Fit appends (vec, label) training rows — label is 1.0 for a match,
// 0.0 for a distinct pair — and refits by batch gradient descent.
func (r *RegressionLearner) Fit(vectors [][]float64, labels []float64) {
	for i, v := range vectors {
		r.vectors = append(r.vectors, v)
		r.labels = append(r.labels, labels[i])
		if labels[i] >= 0.5 {
			r.positives++
		} else {
			r.negatives++
		}
	}
	r.gradientDescent()
}

func (r *RegressionLearner) gradientDescent() {
	n := len(r.vectors)
	if n == 0 {
		return
	}
	dim := len(r.weights)

	for iter := 0; iter < r.iterations; iter++ {
		gradW := make([]float64, dim)
		gradB := 0.0
		for i, vec := range r.vectors {
			pred := r.score(vec)
			err := pred - r.labels[i]
			for j, x := range vec {
				gradW[j] += err * x
			}
			gradB += err
		}
		for j := range r.weights {
			r.weights[j] -= r.learningRate * gradW[j] / float64(n)
		}
		r.bias -= r.learningRate * gradB / float64(n)
	}
}

// Bias computes the original's class-balance-aware uncertainty target
// (SPEC_FULL.md SUPPLEMENTED feature 3): it drifts from 0.5 toward
// (1 - positive_rate) while few labels have accumulated, settling
// toward 0.5 as more labels arrive. Exposed for a caller that wants
// single-learner active learning without the disagreement wrapper;
// the disagreement loop itself (pop()) bypasses this in favour of the
// plain 0.5 threshold SPEC_FULL.md §4.7 specifies.
func (r *RegressionLearner) Bias() float64 {
	total := r.positives + r.negatives
	if total == 0 {
		return 0.5
	}
	positiveRate := float64(r.positives) / float64(total)
	const biasWeight = 10.0
	uncertaintyWeight := biasWeight / float64(total)
	if uncertaintyWeight > 1 {
		uncertaintyWeight = 1
	}
	target := 1 - positiveRate
	return uncertaintyWeight*target + (1-uncertaintyWeight)*0.5
}
