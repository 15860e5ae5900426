package generator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

type splunkRow struct {
	Preview bool             `json:"preview"`
	Result  models.RawRecord `json:"result"`
}

// WriteSplunkJSON writes records as a Splunk search export: an array of
// {"preview": false, "result": {...}} rows.
func WriteSplunkJSON(w io.Writer, records []models.RawRecord) error {
	rows := make([]splunkRow, len(records))
	for i, rec := range records {
		rows[i] = splunkRow{Result: rec}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteJSON writes records as a plain JSON array.
func WriteJSON(w io.Writer, records []models.RawRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteNDJSON writes one compact JSON object per line.
func WriteNDJSON(w io.Writer, records []models.RawRecord) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes records with a header made of every field name, sorted.
// Sequence values are joined with "|" since CSV cells are flat.
func WriteCSV(w io.Writer, records []models.RawRecord) error {
	seen := make(map[string]bool)
	header := make([]string, 0)
	for _, rec := range records {
		for field := range rec {
			if !seen[field] {
				seen[field] = true
				header = append(header, field)
			}
		}
	}
	sort.Strings(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, field := range header {
			v, ok := rec[field]
			if !ok {
				continue
			}
			if seq, ok := v.([]interface{}); ok {
				parts := make([]string, len(seq))
				for j, elem := range seq {
					parts[j] = models.ValueText(elem)
				}
				row[i] = strings.Join(parts, "|")
				continue
			}
			row[i] = models.ValueText(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
