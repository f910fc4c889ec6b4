package bench

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Summary aggregates per-file benchmark results for reporting.
type Summary struct {
	// Results for files with a defined DER.
	Results []FileResult

	// Undefined lists files whose reference had no speech. They carry
	// no DER and are excluded from the averages.
	Undefined []string
}

// Averages returns the mean metrics and RTFx over the defined results.
func (s *Summary) Averages() (Metrics, float64) {
	if len(s.Results) == 0 {
		return Metrics{}, 0
	}
	var m Metrics
	var rtfx float64
	for _, r := range s.Results {
		m.DER += r.DER
		m.Miss += r.Miss
		m.FA += r.FA
		m.SE += r.SE
		rtfx += r.RTFx
	}
	n := float64(len(s.Results))
	m.DER /= n
	m.Miss /= n
	m.FA /= n
	m.SE /= n
	return m, rtfx / n
}

// Render writes the benchmark summary table, sorted by DER, followed
// by the averages row, the skipped-file list and the target check.
func (s *Summary) Render(w io.Writer) {
	sorted := append([]FileResult(nil), s.Results...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DER < sorted[j].DER
	})

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Meeting", "DER %", "Miss %", "FA %", "SE %", "Speakers", "RTFx"})

	for _, r := range sorted {
		tw.AppendRow(table.Row{
			r.Meeting,
			fmt.Sprintf("%.1f", r.DER),
			fmt.Sprintf("%.1f", r.Miss),
			fmt.Sprintf("%.1f", r.FA),
			fmt.Sprintf("%.1f", r.SE),
			fmt.Sprintf("%d/%d", r.DetectedSpeakers, r.GTSpeakers),
			fmt.Sprintf("%.1f", r.RTFx),
		})
	}

	avg, avgRTFx := s.Averages()
	tw.AppendFooter(table.Row{
		"AVERAGE",
		fmt.Sprintf("%.1f", avg.DER),
		fmt.Sprintf("%.1f", avg.Miss),
		fmt.Sprintf("%.1f", avg.FA),
		fmt.Sprintf("%.1f", avg.SE),
		"-",
		fmt.Sprintf("%.1f", avgRTFx),
	})

	columns := make([]table.ColumnConfig, 0, 7)
	for i := 2; i <= 7; i++ {
		columns = append(columns, table.ColumnConfig{
			Number:      i,
			Align:       text.AlignRight,
			AlignFooter: text.AlignRight,
		})
	}
	tw.SetColumnConfigs(columns)

	tw.Render()

	if len(s.Undefined) > 0 {
		fmt.Fprintf(w, "Skipped (no reference speech): %v\n", s.Undefined)
	}

	if len(s.Results) > 0 {
		switch {
		case avg.DER < 15:
			fmt.Fprintf(w, "Target check: DER < 15%% (achieved: %.1f%%)\n", avg.DER)
		case avg.DER < 20:
			fmt.Fprintf(w, "Target check: DER < 20%% (achieved: %.1f%%)\n", avg.DER)
		default:
			fmt.Fprintf(w, "Target check: DER > 20%% (achieved: %.1f%%)\n", avg.DER)
		}
	}
}
