// Package neighbors builds exact nearest-neighbor index matrices over
// in-memory datasets: for every point, its maxk nearest peers under a chosen
// metric, sorted by increasing distance with the point itself at column 0.
// These matrices are the inputs of the rank and imbalance computations.
package neighbors

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidMaxK reports a neighbor count outside [1, N-1].
var ErrInvalidMaxK = errors.New("neighbors: invalid maxk")

// Searcher runs brute-force exact kNN over the rows of a dense matrix.
type Searcher struct {
	metric  Metric
	workers int
}

type SearcherOption func(*Searcher)

// WithWorkers caps the concurrent per-point searches. Zero or negative
// selects GOMAXPROCS.
func WithWorkers(n int) SearcherOption {
	return func(s *Searcher) {
		s.workers = n
	}
}

func NewSearcher(metric Metric, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		metric: metric,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Index returns the (N x maxk+1) neighbor-index matrix of data: row i holds
// i itself followed by the maxk nearest other rows under the searcher's
// metric, nearest first. Distance ties break on the lower point index so the
// output is reproducible.
func (s *Searcher) Index(ctx context.Context, data *mat.Dense, maxk int) ([][]int, error) {
	n, _ := data.Dims()
	if maxk < 1 || maxk > n-1 {
		return nil, fmt.Errorf("%w: maxk=%d must be in [1, %d] for %d points", ErrInvalidMaxK, maxk, n-1, n)
	}

	workers := s.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rows := make([][]int, n)
	sem := semaphore.NewWeighted(int64(workers))

	var wg sync.WaitGroup
	for i := range n {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("neighbors: search canceled: %w", err)
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			rows[i] = s.nearest(data, i, maxk)
		}(i)
	}
	wg.Wait()

	return rows, nil
}

// nearest scans all other rows for point i's maxk nearest neighbors.
func (s *Searcher) nearest(data *mat.Dense, i, maxk int) []int {
	n, _ := data.Dims()
	self := data.RawRowView(i)

	type nodeDist struct {
		id       int
		distance float64
	}

	candidates := make([]nodeDist, 0, n-1)
	for j := range n {
		if j == i {
			continue
		}
		candidates = append(candidates, nodeDist{id: j, distance: s.metric.Reduced(self, data.RawRowView(j))})
	}

	sort.Slice(candidates, func(x, y int) bool {
		if candidates[x].distance != candidates[y].distance {
			return candidates[x].distance < candidates[y].distance
		}
		return candidates[x].id < candidates[y].id
	})

	row := make([]int, maxk+1)
	row[0] = i
	for j := range maxk {
		row[j+1] = candidates[j].id
	}
	return row
}
