package analysisapi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bytedance/sonic"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/manifold-labs/imbalance/internal/comparisons"
)

// resultCache memoizes compare results keyed by the normalized request, so
// repeated analyses of the same dataset skip the quadratic neighbor search.
// Only seeded requests are cached: without a seed the fallback draws are
// meant to be fresh on every call.
type resultCache struct {
	entries *lru.Cache[string, *comparisons.Result]
}

func newResultCache(size int) (*resultCache, error) {
	entries, err := lru.New[string, *comparisons.Result](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

func (rc *resultCache) Get(key string) (*comparisons.Result, bool) {
	return rc.entries.Get(key)
}

func (rc *resultCache) Add(key string, res *comparisons.Result) {
	rc.entries.Add(key, res)
}

// cacheKey hashes the request with every tuning field resolved to its
// effective value, so a request relying on server defaults and one spelling
// them out land on the same entry.
func cacheKey(req CompareRequest) (string, error) {
	payload, err := sonic.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("analysisapi: cache key: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
