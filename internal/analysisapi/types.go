package analysisapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/manifold-labs/imbalance/internal/config"
)

const (
	// APIKeyHeader carries the shared secret when the server is configured
	// to require one.
	APIKeyHeader = "X-API-Key"
)

// Server wraps the fiber app together with the configuration it was built
// from and the optional result cache.
type Server struct {
	App    *fiber.App
	cfg    *config.AppConfig
	limits *config.LimitsConfig
	cache  *resultCache
}

// CompareRequest asks for the two-way imbalance between two column subsets
// of an inline dataset. Zero-valued tuning fields fall back to the server's
// configured defaults.
type CompareRequest struct {
	Data   [][]float64 `json:"data"`
	ColsA  []int       `json:"colsA"`
	ColsB  []int       `json:"colsB"`
	K      int         `json:"k,omitempty"`
	MaxK   int         `json:"maxk,omitempty"`
	Metric string      `json:"metric,omitempty"`
	Seed   *uint64     `json:"seed,omitempty"`
}

// RanksRequest asks for the conditional ranks between two precomputed
// neighbor-index matrices.
type RanksRequest struct {
	Indices1 [][]int `json:"indices1"`
	Indices2 [][]int `json:"indices2"`
	K        int     `json:"k,omitempty"`
	Seed     *uint64 `json:"seed,omitempty"`
}

// RanksResponse is the rank matrix plus its summary statistics.
type RanksResponse struct {
	Ranks     [][]float64 `json:"ranks"`
	Misses    int         `json:"misses"`
	MissRate  float64     `json:"missRate"`
	Imbalance float64     `json:"imbalance"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// StdResponse is the standardized envelope every route answers with.
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

func newResponse[T any](body T, err error) StdResponse[T] {
	if err != nil {
		errMsg := err.Error()
		return StdResponse[T]{
			Body:  body,
			Error: &errMsg,
		}
	}
	return StdResponse[T]{Body: body}
}
