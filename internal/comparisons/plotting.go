package comparisons

import (
	"fmt"
	"strings"
)

// PlotRankHistogram renders the distribution of conditional ranks as a
// horizontal bar chart on stdout. Low ranks piled into the first bucket mean
// the first ordering predicts the second well.
func PlotRankHistogram(ranks []float64, bins int, title string) {
	if len(ranks) == 0 || bins < 1 {
		return
	}

	minRank, maxRank := ranks[0], ranks[0]
	for _, r := range ranks {
		if r < minRank {
			minRank = r
		}
		if r > maxRank {
			maxRank = r
		}
	}

	width := (maxRank - minRank) / float64(bins)
	if width == 0 {
		width = 1
	}

	counts := make([]int, bins)
	for _, r := range ranks {
		b := int((r - minRank) / width)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}

	maxCount := 0
	for _, count := range counts {
		if count > maxCount {
			maxCount = count
		}
	}

	fmt.Printf("\n%s:\n", title)
	fmt.Println("Rank range        | Count  | Bar Chart")
	fmt.Println("------------------|--------|" + strings.Repeat("-", 50))

	maxBarWidth := 50
	for b, count := range counts {
		lo := minRank + float64(b)*width
		hi := lo + width

		barWidth := 0
		if maxCount > 0 {
			barWidth = count * maxBarWidth / maxCount
		}
		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 && count > 0 {
			bar = "▏"
		}

		fmt.Printf("%8.1f-%-8.1f | %6d | %s\n", lo, hi, count, bar)
	}

	fmt.Printf("\nScale: Min=%.1f, Max=%.1f, N=%d ranks\n", minRank, maxRank, len(ranks))
}
