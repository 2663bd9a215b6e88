package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnAlignsWithRows(t *testing.T) {
	tab := &Table{
		Headers: []string{"Country", "Population"},
		Rows: []Row{
			{"Country": "Italy", "Population": "59037474"},
			{"Country": "France"},
		},
	}
	assert.Equal(t, []string{"Italy", "France"}, tab.Column("Country"))
	assert.Equal(t, []string{"59037474", ""}, tab.Column("Population"))
}

func TestHasHeader(t *testing.T) {
	tab := &Table{Headers: []string{"Country", "Population"}}
	assert.True(t, tab.HasHeader("Population"))
	assert.False(t, tab.HasHeader("population"), "header match is exact")
}

func TestNumericCell(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"59037474", 59037474, true},
		{" 42 ", 42, true},
		{"59,037,474", 59037474, true},
		{"3.14", 3.14, true},
		{"-5", -5, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"12abc", 0, false},
	}
	for _, tc := range tests {
		got, ok := NumericCell(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}
