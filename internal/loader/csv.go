package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// CSVDecoder reads a CSV document with a header row. Empty cells become absent fields.
type CSVDecoder struct{}

func (CSVDecoder) Format() string { return "csv" }

func (CSVDecoder) Supports(ext string) bool { return ext == ".csv" }

func (CSVDecoder) Decode(r io.Reader) ([]models.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedDocument, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	records := make([]models.RawRecord, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrMalformedDocument, line, len(row), len(header))
		}

		rec := make(models.RawRecord, len(row))
		for i, cell := range row {
			if cell == "" {
				continue
			}
			rec[header[i]] = cell
		}
		records = append(records, rec)
	}
	return records, nil
}
