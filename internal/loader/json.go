package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// JSONDecoder accepts an array of objects, an object holding that array under
// UnwrapKey, a single object, or a stream of objects (NDJSON).
//
// Array elements whose only data is an object under UnwrapKey are replaced by that
// object; Splunk search exports wrap every row that way. Elements carrying other
// fields are kept whole.
type JSONDecoder struct {
	UnwrapKey string
}

func (JSONDecoder) Format() string { return "json" }

func (JSONDecoder) Supports(ext string) bool {
	switch ext {
	case ".json", ".jsonl", ".ndjson":
		return true
	}
	return false
}

func (d JSONDecoder) Decode(r io.Reader) ([]models.RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var docs []interface{}
	for {
		var doc interface{}
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		docs = append(docs, doc)
	}

	if len(docs) == 1 {
		return d.fromDocument(docs[0])
	}

	records := make([]models.RawRecord, 0, len(docs))
	for i, doc := range docs {
		rec, err := d.fromElement(doc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (d JSONDecoder) fromDocument(doc interface{}) ([]models.RawRecord, error) {
	switch t := doc.(type) {
	case []interface{}:
		return d.fromArray(t)
	case map[string]interface{}:
		if d.UnwrapKey != "" {
			if inner, ok := t[d.UnwrapKey].([]interface{}); ok {
				return d.fromArray(inner)
			}
		}
		rec, err := d.fromElement(t)
		if err != nil {
			return nil, err
		}
		return []models.RawRecord{rec}, nil
	default:
		return nil, fmt.Errorf("%w: top-level value is %T, want array or object", ErrMalformedDocument, doc)
	}
}

func (d JSONDecoder) fromArray(items []interface{}) ([]models.RawRecord, error) {
	records := make([]models.RawRecord, 0, len(items))
	for i, item := range items {
		rec, err := d.fromElement(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (d JSONDecoder) fromElement(item interface{}) (models.RawRecord, error) {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: record is %T, want object", ErrMalformedDocument, item)
	}
	if d.UnwrapKey != "" {
		if inner, ok := obj[d.UnwrapKey].(map[string]interface{}); ok && d.isExportRow(obj) {
			return models.RawRecord(inner), nil
		}
	}
	return models.RawRecord(obj), nil
}

// Flags Splunk adds next to "result" in export rows.
var exportRowFlags = map[string]bool{"preview": true, "lastrow": true, "offset": true}

// isExportRow reports whether UnwrapKey is the only data-bearing key of obj.
func (d JSONDecoder) isExportRow(obj map[string]interface{}) bool {
	for key := range obj {
		if key != d.UnwrapKey && !exportRowFlags[key] {
			return false
		}
	}
	return true
}
