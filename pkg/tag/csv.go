package tag

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV reads tag requests from CSV rows of the form label,reference.
// A first row whose reference column does not parse is treated as a header
// and skipped; any later malformed row is an error.
func LoadCSV(r io.Reader) ([]Request, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var reqs []Request
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", row+1, err)
		}
		row++
		if len(record) < 2 {
			return nil, fmt.Errorf("row %d: want label,reference, got %d column(s)", row, len(record))
		}
		label := strings.TrimSpace(record[0])
		ref, err := ParseReference(record[1])
		if err != nil {
			if row == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if label == "" {
			return nil, fmt.Errorf("row %d: empty label", row)
		}
		reqs = append(reqs, Request{Label: label, Reference: ref})
	}
	return reqs, nil
}

// LoadCSVFile reads tag requests from a CSV file on disk.
func LoadCSVFile(path string) ([]Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tag file: %w", err)
	}
	defer f.Close()
	reqs, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}
