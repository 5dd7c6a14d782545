package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// Fetch downloads a dataset over HTTP(S) with retries and parses it as CSV.
// URLs whose path ends in .zst are zstd-decoded first.
func Fetch(ctx context.Context, url string) (*Table, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = 5
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 20 * time.Second
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dataset: building request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset: fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if strings.HasSuffix(strings.ToLower(resp.Request.URL.Path), ".zst") {
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("dataset: zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	log.Debug().Str("url", url).Msg("Fetched remote dataset")
	return readCSV(r)
}
