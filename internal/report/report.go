// Package report renders HTML reports of the auxiliary conditions recorded
// alongside gamma- and delta-generation datasets: electron counts, room
// temperature and room humidity over the course of an acquisition.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is one condition tracked over the acquisition, ordered by time.
type Series struct {
	Name   string
	Labels []string
	Values []float64
}

// SeriesFromTable builds a time-ordered series from a per-frame value
// table and the matching acquisition-timestamp table. Frames with no
// recorded timestamp are ordered after the rest, by path.
func SeriesFromTable(name string, values, timestamps map[string]float64) Series {
	type entry struct {
		key   string
		ts    float64
		hasTS bool
		value float64
	}
	entries := make([]entry, 0, len(values))
	for k, v := range values {
		ts, ok := timestamps[k]
		entries = append(entries, entry{key: k, ts: ts, hasTS: ok, value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.hasTS != b.hasTS {
			return a.hasTS
		}
		if a.hasTS && a.ts != b.ts {
			return a.ts < b.ts
		}
		return a.key < b.key
	})

	s := Series{Name: name}
	for _, e := range entries {
		label := e.key
		if e.hasTS {
			label = time.Unix(int64(e.ts), 0).UTC().Format("15:04:05")
		}
		s.Labels = append(s.Labels, label)
		s.Values = append(s.Values, e.value)
	}
	return s
}

// WriteHTML renders one line chart per series into a single HTML page.
func WriteHTML(w io.Writer, title string, series []Series) error {
	page := components.NewPage()
	page.PageTitle = title

	for _, s := range series {
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: s.Name}),
			charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		)
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.SetXAxis(s.Labels).AddSeries(s.Name, data)
		page.AddCharts(line)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering report %q: %w", title, err)
	}
	return nil
}
