// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/staranto/evectl/internal/attrs"
)

const pricesJSON = `[
	{"type_id": 34, "average_price": 5.12, "adjusted_price": 5.3},
	{"type_id": 35, "average_price": 11.9, "adjusted_price": 12.4},
	{"type_id": 44992, "average_price": 2950000.5, "adjusted_price": 2900000}
]`

func priceAttrs(t *testing.T, spec string) attrs.AttrList {
	t.Helper()
	var al attrs.AttrList
	require.NoError(t, al.Set(spec))
	return al
}

func TestSortDataset(t *testing.T) {
	testData := []map[string]interface{}{
		{"name": "Jita", "security": 0.9, "region": "The Forge"},
		{"name": "amarr", "security": 1.0, "region": "Domain"},
		{"name": "Dodixie", "security": 0.9, "region": "Sinq Laison"},
	}

	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{name: "ascending by name", spec: "name", wantOrder: []string{"amarr", "Dodixie", "Jita"}},
		{name: "descending by name", spec: "-name", wantOrder: []string{"Jita", "Dodixie", "amarr"}},
		{name: "case sensitive", spec: "!name", wantOrder: []string{"Dodixie", "Jita", "amarr"}},
		{name: "numeric then name", spec: "security,name", wantOrder: []string{"Dodixie", "Jita", "amarr"}},
		{name: "descending numeric is stable", spec: "-security", wantOrder: []string{"amarr", "Jita", "Dodixie"}},
		{name: "both prefixes", spec: "-!name", wantOrder: []string{"amarr", "Jita", "Dodixie"}},
		{name: "empty spec", spec: "", wantOrder: []string{"Jita", "amarr", "Dodixie"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]map[string]interface{}, len(testData))
			copy(data, testData)
			SortDataset(data, tt.spec)
			for i, expectedName := range tt.wantOrder {
				assert.Equal(t, expectedName, data[i]["name"], "at index %d", i)
			}
		})
	}
}

func TestSortDataset_MissingValuesFirst(t *testing.T) {
	data := []map[string]interface{}{
		{"name": "b", "ticker": "BBB"},
		{"name": "a"},
	}
	SortDataset(data, "ticker")
	assert.Equal(t, "a", data[0]["name"])
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{name: "string", value: "hello", want: "hello"},
		{name: "empty string", value: "", emptyVal: "-", want: "-"},
		{name: "int", value: 42, want: "42"},
		{name: "integral float64", value: 30000142.0, want: "30000142"},
		{name: "float64 with decimals", value: 5.12, want: "5.12"},
		{name: "zero float64", value: 0.0, want: "0"},
		{name: "bool true", value: true, want: "true"},
		{name: "bool false", value: false, want: "false"},
		{name: "nil default", value: nil, want: ""},
		{name: "nil custom", value: nil, emptyVal: "-", want: "-"},
		{name: "slice", value: []interface{}{"market", "reprocessing"}, want: `["market","reprocessing"]`},
		{name: "empty slice", value: []interface{}{}, emptyVal: "-", want: "-"},
		{name: "map", value: map[string]int{"x": 1}, want: `{"x":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSliceDiceSpit_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit([]byte(pricesJSON), priceAttrs(t, "type_id,average_price:avg,!adjusted_price"),
		Options{Format: "json", Filter: "avg>10", Sort: "-avg"}, &buf)
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, float64(44992), rows[0]["type_id"])
	assert.Equal(t, 11.9, rows[1]["avg"])
	assert.NotContains(t, rows[0], "adjusted_price")
}

func TestSliceDiceSpit_YAML(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit([]byte(pricesJSON), priceAttrs(t, "type_id"),
		Options{Format: "yaml", Filter: "type_id=34"}, &buf)
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 34, rows[0]["type_id"])
}

func TestSliceDiceSpit_Text(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit([]byte(pricesJSON), priceAttrs(t, "type_id:type,average_price:avg:c"),
		Options{Format: "text", Titles: true, Sort: "type"}, &buf)
	require.NoError(t, err)

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "type")
	assert.Contains(t, lines[0], "avg")
	assert.Contains(t, lines[1], "34")
	assert.Contains(t, lines[3], "2,950,000.5")
}

func TestSliceDiceSpit_SingleObject(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit([]byte(`{"system_id":30000142,"name":"Jita","security_status":0.9459}`),
		priceAttrs(t, "name,security_status:sec"), Options{Format: "json"}, &buf)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Jita","sec":0.9459}]`, buf.String())
}

func TestSliceDiceSpit_Raw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SliceDiceSpit([]byte(`{"a":1}`), nil, Options{Format: "raw"}, &buf))
	assert.Equal(t, "{\"a\":1}\n", buf.String())
}

func TestSliceDiceSpit_InvalidJSON(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, SliceDiceSpit([]byte(`[{`), priceAttrs(t, "type_id"), Options{Format: "json"}, &buf))
}

func TestTableWriter_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TableWriter(nil, priceAttrs(t, "type_id"), Options{Titles: true}, &buf))
	assert.Empty(t, buf.String())
}

func TestGetColors(t *testing.T) {
	header, even, odd := getColors("colors")

	assert.NotEmpty(t, header)
	assert.NotEmpty(t, even)
	assert.NotEmpty(t, odd)
}

func BenchmarkSortDataset(b *testing.B) {
	testData := []map[string]interface{}{
		{"name": "Jita", "count": 3.0},
		{"name": "Amarr", "count": 1.0},
		{"name": "Rens", "count": 2.0},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data := make([]map[string]interface{}, len(testData))
		copy(data, testData)
		SortDataset(data, "name")
	}
}
