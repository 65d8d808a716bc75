package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/portfolio-admin/internal/types"
)

// maxCount bounds chart values so float input cannot overflow an int.
const maxCount = math.MaxInt32

// ParseNumber coerces number-field input. Anything that is not a finite
// number, including empty input, becomes 0.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseCount coerces a chart value: a number truncated toward zero and
// clamped to [0, MaxInt32].
func ParseCount(s string) int {
	f := math.Trunc(ParseNumber(s))
	switch {
	case f < 0:
		return 0
	case f > maxCount:
		return maxCount
	}
	return int(f)
}

// ParseCommaList splits on commas, trims entries and drops empty ones.
func ParseCommaList(s string) []string {
	return splitTrim(s, ",")
}

// JoinCommaList is the display form of a comma list.
func JoinCommaList(items []string) string {
	return strings.Join(items, ", ")
}

// ParseLines splits on newlines, trims lines and drops empty ones.
func ParseLines(s string) []string {
	return splitTrim(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// JoinLines is the display form of a multi-line list.
func JoinLines(items []string) string {
	return strings.Join(items, "\n")
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Row is one key-value editor row as typed: the value is raw number input.
type Row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SyncRows turns editor rows into a chart mapping. Keys are trimmed, rows with
// an empty key are dropped, and a repeated key keeps its first position with
// the last value.
func SyncRows(rows []Row) *types.Counts {
	out := types.NewCounts()
	for _, r := range rows {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			continue
		}
		out.Set(key, ParseCount(r.Value))
	}
	return out
}

// RowsOf is the editor form of a chart mapping.
func RowsOf(c *types.Counts) []Row {
	pairs := types.CountPairs(c)
	rows := make([]Row, len(pairs))
	for i, p := range pairs {
		rows[i] = Row{Key: p.Key, Value: strconv.Itoa(p.Value)}
	}
	return rows
}
