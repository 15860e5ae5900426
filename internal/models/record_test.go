package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueText(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "4624", "4624"},
		{"json number", json.Number("4688"), "4688"},
		{"integral float", float64(4625), "4625"},
		{"fractional float", 1.5, "1.5"},
		{"int", 42, "42"},
		{"bool", true, "true"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueText(tt.value))
		})
	}
}

func TestNormalizedRecord_Text(t *testing.T) {
	rec := NormalizedRecord{"EventCode": json.Number("4624"), "empty": nil}

	v, ok := rec.Text("EventCode")
	assert.True(t, ok)
	assert.Equal(t, "4624", v)

	_, ok = rec.Text("empty")
	assert.False(t, ok)

	_, ok = rec.Text("missing")
	assert.False(t, ok)
}

func TestDefaults_ReturnCopies(t *testing.T) {
	ids := DefaultSuspiciousEventIDs()
	ids[0] = "mutated"
	assert.Equal(t, "4624", DefaultSuspiciousEventIDs()[0])

	tlds := DefaultSuspiciousTLDs()
	assert.Equal(t, []string{".xyz", ".top", ".bid", "download", ".science", ".win"}, tlds)
	tlds[0] = "mutated"
	assert.Equal(t, ".xyz", DefaultSuspiciousTLDs()[0])
}
