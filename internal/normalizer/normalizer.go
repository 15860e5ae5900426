// Package normalizer flattens raw log records into a uniform tabular shape.
//
// Normalization is column-wise: a first pass decides a policy per field name across
// the whole record set, a second pass applies it to every record. A field that holds
// a sequence in any record is a join column; its sequence values are rendered as a
// single ", "-separated string while its scalar values are left untouched.
package normalizer

import (
	"reflect"
	"sort"
	"strings"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// Separator joins the elements of a sequence value.
const Separator = ", "

// Policy decides how values of one field are rewritten.
type Policy int

const (
	// PolicyPassthrough leaves every value of the field as-is.
	PolicyPassthrough Policy = iota
	// PolicyJoin collapses sequence values of the field into delimited text.
	PolicyJoin
)

func (p Policy) String() string {
	switch p {
	case PolicyJoin:
		return "join"
	default:
		return "passthrough"
	}
}

// Schema maps field names to the policy inferred for them.
type Schema map[string]Policy

// Infer scans every record and marks a field as a join column when at least one
// of its values is a sequence.
func Infer(records []models.RawRecord) Schema {
	schema := make(Schema)
	for _, rec := range records {
		for field, value := range rec {
			if isSequence(value) {
				schema[field] = PolicyJoin
				continue
			}
			if _, seen := schema[field]; !seen {
				schema[field] = PolicyPassthrough
			}
		}
	}
	return schema
}

// Policy returns the policy for field. Unknown fields pass through.
func (s Schema) Policy(field string) Policy {
	return s[field]
}

// JoinColumns lists the join columns in name order.
func (s Schema) JoinColumns() []string {
	cols := make([]string, 0)
	for field, p := range s {
		if p == PolicyJoin {
			cols = append(cols, field)
		}
	}
	sort.Strings(cols)
	return cols
}

// Apply rewrites records according to the schema. The output has the same length
// and order as the input; input records are not modified.
func (s Schema) Apply(records []models.RawRecord) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, len(records))
	for i, rec := range records {
		norm := make(models.NormalizedRecord, len(rec))
		for field, value := range rec {
			if s.Policy(field) == PolicyJoin && isSequence(value) {
				norm[field] = join(value)
				continue
			}
			norm[field] = value
		}
		out[i] = norm
	}
	return out
}

// Normalize infers the schema of records and applies it.
func Normalize(records []models.RawRecord) []models.NormalizedRecord {
	return Infer(records).Apply(records)
}

// Raw converts normalized records back to raw form, e.g. to normalize them again.
func Raw(records []models.NormalizedRecord) []models.RawRecord {
	out := make([]models.RawRecord, len(records))
	for i, rec := range records {
		out[i] = models.RawRecord(rec)
	}
	return out
}

func isSequence(v interface{}) bool {
	switch v.(type) {
	case nil, string, []byte:
		return false
	case []interface{}, []string:
		return true
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func join(v interface{}) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, Separator)
	case []interface{}:
		parts := make([]string, len(t))
		for i, elem := range t {
			parts[i] = models.ValueText(elem)
		}
		return strings.Join(parts, Separator)
	}
	rv := reflect.ValueOf(v)
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = models.ValueText(rv.Index(i).Interface())
	}
	return strings.Join(parts, Separator)
}
