// Package tabular holds the parsed representation of uploaded CSV data and
// the text renderings (preview, summary statistics) that go into a prompt.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Table is an immutable parsed CSV: a header row plus data rows. All cells
// are kept as strings; numeric interpretation happens at Describe time.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Parse reads CSV from r, treating the first record as the header.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}
	t := &Table{Columns: records[0]}
	if len(records) > 1 {
		t.Rows = records[1:]
	}
	return t, nil
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// Head returns up to n leading rows as column name to value records, used
// for upload response previews.
func (t *Table) Head(n int) []map[string]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([]map[string]string, 0, n)
	for _, row := range t.Rows[:n] {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

// HeadString renders up to n leading rows as an aligned text table.
func (t *Table) HeadString(n int) string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
	}
	for _, row := range t.Rows[:n] {
		for i := range t.Columns {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}
	var b strings.Builder
	writeRow := func(cells []string) {
		for i := range t.Columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
		b.WriteByte('\n')
	}
	writeRow(t.Columns)
	for _, row := range t.Rows[:n] {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

// columnStats holds the summary statistics of one numeric column.
type columnStats struct {
	name                string
	count               int
	mean, std, min, max float64
}

// Describe renders summary statistics (count, mean, std, min, max) for every
// numeric column. Columns with no parseable numbers are skipped; the std is
// the sample standard deviation. Returns "" when no column is numeric.
func (t *Table) Describe() string {
	var stats []columnStats
	for i, col := range t.Columns {
		var vals []float64
		for _, row := range t.Rows {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				vals = nil
				break
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			continue
		}
		stats = append(stats, summarize(col, vals))
	}
	if len(stats) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range stats {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: count=%d mean=%s std=%s min=%s max=%s",
			s.name, s.count, formatStat(s.mean), formatStat(s.std), formatStat(s.min), formatStat(s.max))
	}
	return b.String()
}

func summarize(name string, vals []float64) columnStats {
	s := columnStats{name: name, count: len(vals), min: vals[0], max: vals[0]}
	var sum float64
	for _, v := range vals {
		sum += v
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	s.mean = sum / float64(len(vals))
	if len(vals) > 1 {
		var sq float64
		for _, v := range vals {
			d := v - s.mean
			sq += d * d
		}
		s.std = math.Sqrt(sq / float64(len(vals)-1))
	}
	return s
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
