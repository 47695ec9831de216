package main

import (
	"os"

	"github.com/wcharczuk/go-chart/v2"
)

// ratioChart writes a bar chart of the compression ratio of each codec.
func ratioChart(path string, results []result) error {
	bars := make([]chart.Value, 0, len(results))
	for _, r := range results {
		if r.size == 0 {
			continue
		}
		bars = append(bars, chart.Value{Label: r.codec, Value: r.ratio()})
	}
	graph := chart.BarChart{
		Title:    "compressed size / input size",
		Height:   512,
		BarWidth: 60,
		Bars:     bars,
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.SVG, fh); err != nil {
		fh.Close()
		return err
	}
	log.Info().Str("path", path).Msg("chart written")
	return fh.Close()
}
