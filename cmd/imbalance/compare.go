package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manifold-labs/imbalance/internal/comparisons"
)

var (
	compareColsA   string
	compareColsB   string
	compareTuning  tuningFlags
	compareWorkers int
	compareOut     string
	compareHist    bool
	compareBins    int
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Two-way imbalance between two column subsets",
	Example: `  imbalance compare --data iris.csv --cols-a sepal_length,sepal_width --cols-b petal_length,petal_width
  imbalance compare --data embeddings.csv.zst --cols-a 0,1,2 --cols-b 3 --k 3 --metric cosine --seed 7`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	addDataFlags(compareCmd)
	addTuningFlags(compareCmd, &compareTuning)
	compareCmd.Flags().StringVar(&compareColsA, "cols-a", "", "first column subset (indices or names, comma separated)")
	compareCmd.Flags().StringVar(&compareColsB, "cols-b", "", "second column subset (indices or names, comma separated)")
	compareCmd.Flags().IntVar(&compareWorkers, "workers", 0, "worker goroutines (0 uses all CPUs)")
	compareCmd.Flags().StringVar(&compareOut, "out", "", "write the result JSON to a file instead of stdout")
	compareCmd.Flags().BoolVar(&compareHist, "hist", false, "plot the forward rank distribution")
	compareCmd.Flags().IntVar(&compareBins, "bins", 10, "histogram buckets for --hist")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	table, err := loadTable(cmd.Context())
	if err != nil {
		return err
	}

	colsA, err := resolveColumns(table, compareColsA)
	if err != nil {
		return fmt.Errorf("--cols-a: %w", err)
	}
	colsB, err := resolveColumns(table, compareColsB)
	if err != nil {
		return fmt.Errorf("--cols-b: %w", err)
	}

	opts, err := compareTuning.comparerOptions(cmd, compareWorkers)
	if err != nil {
		return err
	}

	res, err := comparisons.New(opts...).CompareColumns(cmd.Context(), table.Data, colsA, colsB)
	if err != nil {
		return err
	}

	if err := writeResult(res, compareOut); err != nil {
		return err
	}

	if compareHist {
		comparisons.PlotRankHistogram(res.RanksAB, compareBins,
			fmt.Sprintf("Conditional ranks %s -> %s (k=%d)", compareColsA, compareColsB, res.K))
	}
	return nil
}
