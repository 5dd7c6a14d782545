package comparisons

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/manifold-labs/imbalance/pkg/imbalance"
)

// RankSummary describes the distribution of one direction's conditional
// ranks, including how many were fallback draws rather than exact positions.
type RankSummary struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	P90      float64 `json:"p90"`
	Max      float64 `json:"max"`
	Misses   int     `json:"misses"`
	MissRate float64 `json:"missRate"`
}

// Result is one two-way imbalance measurement. AToB is the imbalance of the
// first subset's ordering with respect to the second (how well A predicts
// B's neighborhoods); BToA is the reverse. BToA is NaN when the reverse
// direction could not be computed.
type Result struct {
	ID        string        `json:"id"`
	N         int           `json:"n"`
	K         int           `json:"k"`
	MaxK      int           `json:"maxk,omitempty"`
	Metric    string        `json:"metric,omitempty"`
	AToB      float64       `json:"aToB"`
	BToA      float64       `json:"bToA"`
	SummaryAB RankSummary   `json:"summaryAB"`
	SummaryBA RankSummary   `json:"summaryBA"`
	Elapsed   time.Duration `json:"elapsed"`

	// RanksAB holds the raw forward ranks for local consumers like the CLI
	// histogram. It never crosses the wire.
	RanksAB []float64 `json:"-"`
}

func summarize(r *imbalance.RankMatrix) RankSummary {
	data := r.Ranks.RawMatrix().Data

	// The rank matrix is never empty once the core validated its inputs, so
	// the stats errors cannot fire.
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	p90, _ := stats.Percentile(data, 90)
	maxRank, _ := stats.Max(data)

	return RankSummary{
		Mean:     mean,
		Median:   median,
		P90:      p90,
		Max:      maxRank,
		Misses:   r.Misses,
		MissRate: r.MissRate(),
	}
}
