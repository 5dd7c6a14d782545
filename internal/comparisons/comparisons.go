// Package comparisons orchestrates dataset-level imbalance analyses: it
// builds the neighbor orderings induced by feature subsets of a dataset and
// measures how well each subset predicts the neighborhoods of the other.
package comparisons

import (
	"go.uber.org/zap"

	"github.com/manifold-labs/imbalance/pkg/imbalance"
	"github.com/manifold-labs/imbalance/pkg/neighbors"
)

type Comparer struct {
	k       int
	maxk    int
	metric  neighbors.Metric
	seed    uint64
	seeded  bool
	workers int
	logger  *zap.SugaredLogger
}

type ComparerOption func(*Comparer)

// WithK sets the rank order of the statistic.
func WithK(k int) ComparerOption {
	return func(c *Comparer) {
		c.k = k
	}
}

// WithMaxK sets the width of the neighbor windows built for each subset. It
// is clamped to N-1 at compare time.
func WithMaxK(maxk int) ComparerOption {
	return func(c *Comparer) {
		c.maxk = maxk
	}
}

// WithMetric sets the distance metric both subsets are searched under.
func WithMetric(m neighbors.Metric) ComparerOption {
	return func(c *Comparer) {
		c.metric = m
	}
}

// WithSeed fixes the fallback-draw seed for reproducible results.
func WithSeed(seed uint64) ComparerOption {
	return func(c *Comparer) {
		c.seed = seed
		c.seeded = true
	}
}

// WithWorkers caps the parallelism of both the neighbor search and the rank
// computation.
func WithWorkers(n int) ComparerOption {
	return func(c *Comparer) {
		c.workers = n
	}
}

// WithLogger routes progress logs to the given sugared logger.
func WithLogger(l *zap.SugaredLogger) ComparerOption {
	return func(c *Comparer) {
		c.logger = l
	}
}

func New(opts ...ComparerOption) *Comparer {
	c := &Comparer{
		k:      imbalance.DefaultK,
		maxk:   DefaultMaxK,
		metric: neighbors.Euclidean{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}

	return c
}

func (c *Comparer) estimator() *imbalance.Estimator {
	opts := []imbalance.EstimatorOption{
		imbalance.WithK(c.k),
		imbalance.WithWorkers(c.workers),
	}
	if c.seeded {
		opts = append(opts, imbalance.WithSeed(c.seed))
	}
	return imbalance.NewEstimator(opts...)
}
