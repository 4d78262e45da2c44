package probe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Frame is a raw tabular file: a header row plus string records. It is the
// handoff point between file ingestion and dataset construction.
type Frame struct {
	Name    string
	Header  []string
	Records [][]string
}

// ReadCSV loads a CSV/TSV file into a Frame. If delim is 0 the delimiter is
// sniffed from the file extension (tab for .tsv, comma otherwise).
func ReadCSV(path string, delim rune) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read csv %s: file is empty", filepath.Base(path))
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	fr := &Frame{Name: filepath.Base(path), Header: header}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(fr.Records)+1, err)
		}
		row := make([]string, len(header))
		copy(row, rec)
		fr.Records = append(fr.Records, row)
	}
	return fr, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Column returns the index of a named column, or -1 when absent.
func (f *Frame) Column(name string) int {
	for i, h := range f.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
