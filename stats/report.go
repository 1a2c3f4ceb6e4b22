// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package stats

import (
	"io"
	"math"
	"sort"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReportOptions controls WriteReport output.
type ReportOptions struct {
	// Borders draws table borders. Disable for non-terminal output.
	Borders bool

	// Language selects number formatting. Zero value means English.
	Language language.Tag

	// Attributes restricts the report to the named attributes. Empty
	// means every attribute seen in the range.
	Attributes []string
}

// Summary aggregates one attribute over a frame range.
type Summary struct {
	Name    string
	Frames  int
	Min     float64
	Max     float64
	Average float64
}

// Summarize aggregates every attribute recorded in [start, end], sorted by
// name.
func (s *Stats) Summarize(start, end uint64) []Summary {
	if end < start {
		start, end = end, start
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if start < s.earliestFrame {
		start = s.earliestFrame
	}
	if end > s.latestFrame {
		end = s.latestFrame
	}

	acc := make(map[string]*Summary)
	for f := start; f <= end; f++ {
		for name, v := range s.frames[s.slot(f)] {
			sum := acc[name]
			if sum == nil {
				sum = &Summary{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
				acc[name] = sum
			}
			sum.Frames++
			sum.Average += v
			sum.Min = math.Min(sum.Min, v)
			sum.Max = math.Max(sum.Max, v)
		}
		if f == math.MaxUint64 {
			break
		}
	}

	out := make([]Summary, 0, len(acc))
	for _, sum := range acc {
		sum.Average /= float64(sum.Frames)
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WriteReport renders a table of per-attribute summaries over [start, end].
func (s *Stats) WriteReport(w io.Writer, start, end uint64, opts ReportOptions) error {
	tag := opts.Language
	if tag == (language.Tag{}) {
		tag = language.English
	}
	p := message.NewPrinter(tag)

	var filter map[string]bool
	if len(opts.Attributes) > 0 {
		filter = make(map[string]bool, len(opts.Attributes))
		for _, a := range opts.Attributes {
			filter[a] = true
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(opts.Borders)
	table.SetHeader([]string{s.name, "Frames", "Min", "Max", "Average"})

	rows := 0
	for _, sum := range s.Summarize(start, end) {
		if filter != nil && !filter[sum.Name] {
			continue
		}
		table.Append([]string{
			sum.Name,
			p.Sprintf("%d", sum.Frames),
			p.Sprintf("%.4f", sum.Min),
			p.Sprintf("%.4f", sum.Max),
			p.Sprintf("%.4f", sum.Average),
		})
		rows++
	}
	table.SetFooter([]string{"", "", "", "frames", p.Sprintf("%d..%d", start, end)})
	table.Render()

	if rows == 0 {
		return ErrNoData
	}
	return nil
}
