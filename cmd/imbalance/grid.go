package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/manifold-labs/imbalance/internal/comparisons"
)

var (
	gridSubsets string
	gridTuning  tuningFlags
	gridWorkers int
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Pairwise imbalance matrix over column subsets",
	Example: `  imbalance grid --data iris.csv --subsets "0,1;2,3;0,1,2,3"
  imbalance grid --data features.csv --subsets "raw;pca_1,pca_2" --seed 7`,
	RunE: runGrid,
}

func init() {
	rootCmd.AddCommand(gridCmd)

	addDataFlags(gridCmd)
	addTuningFlags(gridCmd, &gridTuning)
	gridCmd.Flags().StringVar(&gridSubsets, "subsets", "", `column subsets separated by ";" (e.g. "0,1;2,3")`)
	gridCmd.Flags().IntVar(&gridWorkers, "workers", 0, "worker goroutines (0 uses all CPUs)")
}

func runGrid(cmd *cobra.Command, _ []string) error {
	table, err := loadTable(cmd.Context())
	if err != nil {
		return err
	}

	specs := strings.Split(gridSubsets, ";")
	subsets := make([][]int, 0, len(specs))
	for _, spec := range specs {
		cols, err := resolveColumns(table, spec)
		if err != nil {
			return fmt.Errorf("--subsets: %w", err)
		}
		subsets = append(subsets, cols)
	}

	opts, err := gridTuning.comparerOptions(cmd, gridWorkers)
	if err != nil {
		return err
	}

	grid, err := comparisons.New(opts...).Grid(cmd.Context(), table.Data, subsets)
	if err != nil {
		return err
	}

	fmt.Printf("Imbalance grid (metric=%s, k=%d), entry (i,j) = imbalance subset i -> subset j:\n", gridTuning.metric, gridTuning.k)
	for i, spec := range specs {
		fmt.Printf("  [%d] %s\n", i, strings.TrimSpace(spec))
	}
	fmt.Printf("\n%.4f\n", mat.Formatted(grid, mat.Prefix(""), mat.Squeeze()))
	return nil
}
