package neighbors

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrUnknownMetric reports a metric name ParseMetric cannot resolve.
var ErrUnknownMetric = errors.New("neighbors: unknown metric")

// Metric computes distances between feature vectors. Reduced may return a
// cheaper monotone transform of the true distance (e.g. squared Euclidean);
// it preserves the neighbor ordering and is what the search sorts on.
type Metric interface {
	Name() string
	Distance(a, b []float64) float64
	Reduced(a, b []float64) float64
}

// Euclidean is the L2 metric. Reduced skips the square root.
type Euclidean struct{}

func (Euclidean) Name() string { return "euclidean" }

func (Euclidean) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

func (Euclidean) Reduced(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Manhattan is the L1 (city-block) metric.
type Manhattan struct{}

func (Manhattan) Name() string { return "manhattan" }

func (Manhattan) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

func (m Manhattan) Reduced(a, b []float64) float64 { return m.Distance(a, b) }

// Chebyshev is the L-infinity metric.
type Chebyshev struct{}

func (Chebyshev) Name() string { return "chebyshev" }

func (Chebyshev) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

func (m Chebyshev) Reduced(a, b []float64) float64 { return m.Distance(a, b) }

// Cosine is 1 - cosine similarity. Zero vectors compare as maximally
// dissimilar (distance 1) rather than NaN.
type Cosine struct{}

func (Cosine) Name() string { return "cosine" }

func (Cosine) Distance(a, b []float64) float64 {
	dot := floats.Dot(a, b)
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)

	if normA == 0 || normB == 0 {
		return 1.0
	}

	return 1.0 - dot/(normA*normB)
}

func (c Cosine) Reduced(a, b []float64) float64 { return c.Distance(a, b) }

// Minkowski is the Lp metric for P >= 1. Reduced returns the pth-power sum
// without the final root.
type Minkowski struct {
	P float64
}

func (m Minkowski) Name() string { return fmt.Sprintf("minkowski:%g", m.P) }

func (m Minkowski) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, m.P)
}

func (m Minkowski) Reduced(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(a[i]-b[i]), m.P)
	}
	return sum
}

// ParseMetric resolves a metric name: euclidean (the default for an empty
// name), manhattan, chebyshev, cosine, or minkowski:<p> (e.g. minkowski:3).
func ParseMetric(name string) (Metric, error) {
	base, param, _ := strings.Cut(strings.ToLower(strings.TrimSpace(name)), ":")
	switch base {
	case "", "euclidean":
		return Euclidean{}, nil
	case "manhattan":
		return Manhattan{}, nil
	case "chebyshev":
		return Chebyshev{}, nil
	case "cosine":
		return Cosine{}, nil
	case "minkowski":
		if param == "" {
			return nil, fmt.Errorf("%w: minkowski needs an order, e.g. minkowski:3", ErrUnknownMetric)
		}
		p, err := strconv.ParseFloat(param, 64)
		if err != nil || p < 1 {
			return nil, fmt.Errorf("%w: bad minkowski order %q", ErrUnknownMetric, param)
		}
		return Minkowski{P: p}, nil
	default:
		return nil, fmt.Errorf("%w: %q (known: euclidean, manhattan, chebyshev, cosine, minkowski:<p>)", ErrUnknownMetric, name)
	}
}
