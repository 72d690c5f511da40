package cli

import (
	"io"
	"strings"
	"text/tabwriter"
)

// writeTable prints headers and rows as space-aligned columns. A nil header
// row is skipped.
func writeTable(out io.Writer, headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range append([][]string{headers}, rows...) {
		if len(row) == 0 {
			continue
		}
		if _, err := io.WriteString(w, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
