package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func captureStdout(f func()) string {
	color.NoColor = true
	old := Stdout
	var buf bytes.Buffer
	Stdout = &buf
	defer func() { Stdout = old }()

	f()
	return buf.String()
}

func captureStderr(f func()) string {
	color.NoColor = true
	old := Stderr
	var buf bytes.Buffer
	Stderr = &buf
	defer func() { Stderr = old }()

	f()
	return buf.String()
}

func TestSuccess(t *testing.T) {
	output := captureStdout(func() {
		Success("Analysis completed")
	})

	assert.Contains(t, output, "✓")
	assert.Contains(t, output, "Analysis completed")
}

func TestSuccess_WithFormatting(t *testing.T) {
	output := captureStdout(func() {
		Success("Loaded %d records from %s", 5, "botsv1.json")
	})

	assert.Contains(t, output, "Loaded 5 records from botsv1.json")
}

func TestError(t *testing.T) {
	output := captureStderr(func() {
		Error("source %s not found", "dns")
	})

	assert.Contains(t, output, "✗")
	assert.Contains(t, output, "source dns not found")
}

func TestInfoAndWarn(t *testing.T) {
	output := captureStdout(func() {
		Info("info line")
		Warn("warn line")
	})

	assert.Contains(t, output, "info line")
	assert.Contains(t, output, "⚠ warn line")
}

func TestJSON(t *testing.T) {
	data := map[string]interface{}{"key": "4624", "count": 2}

	output := captureStdout(func() {
		require.NoError(t, JSON(data))
	})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, "4624", decoded["key"])
	assert.Equal(t, float64(2), decoded["count"])
	assert.Contains(t, output, "  ")
}

func TestYAML(t *testing.T) {
	data := map[string]interface{}{"key": "evil.xyz", "count": 2}

	output := captureStdout(func() {
		require.NoError(t, YAML(data))
	})

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, "evil.xyz", decoded["key"])
	assert.Equal(t, 2, decoded["count"])
}

func TestTable_Render(t *testing.T) {
	table := NewTable([]string{"RANK", "EVENT / DOMAIN", "COUNT"})
	table.AddRow([]string{"1", "4624", "120"})
	table.AddRow([]string{"2", "averyveryverylongdomain.xyz", "7"})

	output := captureStdout(func() {
		table.Render()
	})

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "EVENT / DOMAIN")
	assert.True(t, strings.HasPrefix(lines[1], "----"))
	assert.Contains(t, lines[3], "averyveryverylongdomain.xyz")

	// Columns line up: the COUNT column starts at the same offset in every row
	offset := strings.Index(lines[0], "COUNT")
	assert.Equal(t, "120", strings.TrimSpace(lines[2][offset:]))
	assert.Equal(t, "7", strings.TrimSpace(lines[3][offset:]))
	assert.Equal(t, 2, table.Len())
}

func TestTable_RenderTo_Empty(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	NewTable([]string{"A", "B"}).RenderTo(&buf)

	assert.Equal(t, "A  B  \n-  -  \n", buf.String())
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4))
	assert.Equal(t, "abcdef", pad("abcdef", 4))
	assert.Equal(t, "é ", pad("é", 2))
}
