package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/manifold-labs/imbalance/internal/comparisons"
	"github.com/manifold-labs/imbalance/internal/dataset"
	"github.com/manifold-labs/imbalance/internal/utils/logger"
	"github.com/manifold-labs/imbalance/pkg/neighbors"
)

var rootCmd = &cobra.Command{
	Use:   "imbalance",
	Short: "Measure information imbalance between feature spaces",
	Long: `imbalance compares the neighbor structure that different feature subsets
of a dataset induce: a value near 0 from A to B means distances under A
predict the nearest neighbors found under B, a value near 1 means they
carry no information about them.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// Dataset source flags, shared by every subcommand.
var (
	dataPath string
	dataURL  string
)

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dataPath, "data", "", "dataset file (.csv, .csv.zst or .xlsx)")
	cmd.Flags().StringVar(&dataURL, "url", "", "dataset URL (CSV, optionally zstd-compressed)")
}

func loadTable(ctx context.Context) (*dataset.Table, error) {
	switch {
	case dataPath != "" && dataURL != "":
		return nil, fmt.Errorf("--data and --url are mutually exclusive")
	case dataPath != "":
		return dataset.Load(dataPath)
	case dataURL != "":
		return dataset.Fetch(ctx, dataURL)
	default:
		return nil, fmt.Errorf("a dataset is required: pass --data or --url")
	}
}

// tuningFlags carries the knobs common to local and remote analyses.
type tuningFlags struct {
	k      int
	maxk   int
	metric string
	seed   uint64
}

func addTuningFlags(cmd *cobra.Command, t *tuningFlags) {
	cmd.Flags().IntVar(&t.k, "k", 1, "number of nearest neighbors ranked per point")
	cmd.Flags().IntVar(&t.maxk, "maxk", comparisons.DefaultMaxK, "width of the neighbor window")
	cmd.Flags().StringVar(&t.metric, "metric", "euclidean",
		"distance metric (euclidean, manhattan, chebyshev, cosine, minkowski:<p>)")
	cmd.Flags().Uint64Var(&t.seed, "seed", 0, "seed for fallback draws (omit for fresh randomness)")
}

func (t *tuningFlags) comparerOptions(cmd *cobra.Command, workers int) ([]comparisons.ComparerOption, error) {
	metric, err := neighbors.ParseMetric(t.metric)
	if err != nil {
		return nil, err
	}

	opts := []comparisons.ComparerOption{
		comparisons.WithK(t.k),
		comparisons.WithMaxK(t.maxk),
		comparisons.WithMetric(metric),
		comparisons.WithWorkers(workers),
		comparisons.WithLogger(logger.Sugar()),
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, comparisons.WithSeed(t.seed))
	}
	return opts, nil
}

// resolveColumns turns a comma-separated list of column indices or header
// names into column indices.
func resolveColumns(table *dataset.Table, spec string) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("empty column list")
	}

	_, width := table.Dims()
	cols := make([]int, 0, 4)
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if idx, err := strconv.Atoi(token); err == nil {
			if idx < 0 || idx >= width {
				return nil, fmt.Errorf("column %d out of range [0, %d)", idx, width)
			}
			cols = append(cols, idx)
			continue
		}

		named, err := table.Columns(token)
		if err != nil {
			return nil, err
		}
		cols = append(cols, named...)
	}
	return cols, nil
}

// writeResult prints res as indented JSON, or writes it to path when given.
func writeResult(res any, path string) error {
	out, err := sonic.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if path == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
