package main

import (
	"fmt"
	"strings"

	"github.com/odbccore/engine/internal/codec"
)

// printRowBuffer renders a decoded row-buffer as a simple aligned table,
// good enough for a development tool without pulling in a table-rendering
// dependency the teacher never needed.
func printRowBuffer(rb codec.RowBuffer) {
	if len(rb.Columns) == 0 {
		fmt.Println("(no columns)")
		return
	}

	names := make([]string, len(rb.Columns))
	widths := make([]int, len(rb.Columns))
	for i, c := range rb.Columns {
		names[i] = c.Name
		widths[i] = len(c.Name)
	}

	rows := make([][]string, len(rb.Rows))
	for r, row := range rb.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
			if len(cells[i]) > widths[i] {
				widths[i] = len(cells[i])
			}
		}
		rows[r] = cells
	}

	printRow(names, widths)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	printRow(sep, widths)
	for _, row := range rows {
		printRow(row, widths)
	}
	fmt.Printf("(%d row(s))\n", len(rb.Rows))
}

func printRow(cells []string, widths []int) {
	padded := make([]string, len(cells))
	for i, c := range cells {
		padded[i] = fmt.Sprintf("%-*s", widths[i], c)
	}
	fmt.Println(strings.Join(padded, "  "))
}

func formatCell(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
