package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

// WriteEquityCSVFile writes the equity curve to a CSV file at the given
// path.
func WriteEquityCSVFile(path string, curve []EquityPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create equity file: %w", err)
	}
	defer f.Close()

	return WriteEquityCSV(f, curve)
}

// WriteEquityCSV writes the equity curve to any io.Writer as CSV.
// You can pass os.Stdout for debugging, or a file.
func WriteEquityCSV(w io.Writer, curve []EquityPoint) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"date", "equity"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, point := range curve {
		row := []string{
			point.Date.Format(time.DateOnly),
			point.Equity.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}
