package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumeric(t *testing.T) {
	cases := []struct {
		cell string
		want float64
	}{
		{"12345", 12345},
		{"-12345", -12345},
		{"12345.67", 12345.67},
		{"1,23,456", 123456},
		{"(500)", -500},
		{"(1,23,456)", -123456},
		{"₹1,500", 1500},
		{"Rs. 2500", 2500},
		{"Rs 2500", 2500},
		{"$1000", 1000},
		{"150Cr", 150},
		{"150 crore", 150},
		{"Nil", 0},
		{"nil", 0},
		{"  42  ", 42},
	}
	for _, tc := range cases {
		t.Run(tc.cell, func(t *testing.T) {
			got, ok := ToNumeric(tc.cell)
			assert.True(t, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestToNumericRejectsPlaceholders(t *testing.T) {
	for _, cell := range []string{
		"", " ", "-", "--", "N/A", "NA", "n/a", "nan", "NaN", "None",
		"Particulars", "Total", "12x34",
	} {
		t.Run(cell, func(t *testing.T) {
			_, ok := ToNumeric(cell)
			assert.False(t, ok)
		})
	}
}
