package comparisons

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"
)

type ComparerTestSuite struct {
	suite.Suite
	data *mat.Dense
}

// SetupSuite builds a 60-point dataset with three features: col0 is a line,
// col1 doubles it (identical orderings), col2 is noise (uninformative
// orderings).
func (s *ComparerTestSuite) SetupSuite() {
	const n = 60
	rng := rand.New(rand.NewPCG(11, 13))
	raw := make([]float64, n*3)
	for i := range n {
		x := float64(i)
		raw[i*3+0] = x
		raw[i*3+1] = 2 * x
		raw[i*3+2] = rng.Float64() * 100
	}
	s.data = mat.NewDense(n, 3, raw)
}

func (s *ComparerTestSuite) TestRedundantColumnsReachFloor() {
	res, err := New(WithSeed(7)).CompareColumns(context.Background(), s.data, []int{0}, []int{1})
	s.Require().NoError(err)

	n, _ := s.data.Dims()
	floor := 2.0 / float64(n) // identical orderings: mean(1..k)/(N/2) with k=1
	s.InDelta(floor, res.AToB, 1e-12)
	s.InDelta(floor, res.BToA, 1e-12)
	s.Equal(0, res.SummaryAB.Misses)
	s.Equal(0, res.SummaryBA.Misses)
	s.Equal(1.0, res.SummaryAB.Mean)
	s.Equal(n, res.N)
}

func (s *ComparerTestSuite) TestNoiseIsUninformative() {
	res, err := New(WithSeed(7)).CompareColumns(context.Background(), s.data, []int{0}, []int{2})
	s.Require().NoError(err)

	// A noise ordering says nothing about the line's neighbors, so the
	// statistic sits near 1 in both directions.
	s.Greater(res.AToB, 0.6)
	s.Less(res.AToB, 1.5)
	s.Greater(res.BToA, 0.6)
	s.NotEmpty(res.ID)
	s.Equal("euclidean", res.Metric)
}

func (s *ComparerTestSuite) TestCompareIndicesReverseSkipped() {
	// B's window holds fewer than k non-self columns: reverse is impossible.
	indicesA := [][]int{{0, 1, 2}, {1, 0, 2}, {2, 1, 0}}
	indicesB := [][]int{{0, 1}, {1, 0}, {2, 1}}

	res, err := New(WithK(2), WithSeed(5)).CompareIndices(indicesA, indicesB)
	s.Require().NoError(err)
	s.False(math.IsNaN(res.AToB))
	s.True(math.IsNaN(res.BToA))
	s.Zero(res.SummaryBA.Mean)
}

func (s *ComparerTestSuite) TestGrid() {
	grid, err := New(WithSeed(3)).Grid(context.Background(), s.data, [][]int{{0}, {1}, {2}})
	s.Require().NoError(err)

	r, c := grid.Dims()
	s.Equal(3, r)
	s.Equal(3, c)

	n, _ := s.data.Dims()
	floor := 2.0 / float64(n)
	s.InDelta(floor, grid.At(0, 0), 1e-12)
	s.InDelta(floor, grid.At(0, 1), 1e-12)
	s.InDelta(floor, grid.At(1, 0), 1e-12)
	s.Greater(grid.At(2, 0), 0.6)
	s.Greater(grid.At(0, 2), 0.6)
}

func (s *ComparerTestSuite) TestResultMetadata() {
	res, err := New().CompareColumns(context.Background(), s.data, []int{0, 1}, []int{2})
	s.Require().NoError(err)

	_, err = uuid.Parse(res.ID)
	s.NoError(err)
	s.Equal(1, res.K)
	s.Equal(59, res.MaxK)
	s.Positive(res.Elapsed)
}

func (s *ComparerTestSuite) TestBadColumns() {
	_, err := New().CompareColumns(context.Background(), s.data, []int{0}, []int{9})
	s.Error(err)

	_, err = New().CompareColumns(context.Background(), s.data, nil, []int{1})
	s.Error(err)
}

func TestComparerTestSuite(t *testing.T) {
	suite.Run(t, new(ComparerTestSuite))
}
