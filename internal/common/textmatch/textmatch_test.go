package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		phrase   string
		suffixes []string
		wantIdx  int
		wantLen  int
	}{
		{name: "whole word", text: "sales from yesterday", phrase: "yesterday", wantIdx: 11, wantLen: 9},
		{name: "inside a word", text: "sales from late payers", phrase: "ayer", wantIdx: -1},
		{name: "word prefix", text: "ahoy, show customers", phrase: "hoy", wantIdx: -1},
		{name: "punctuation is a boundary", text: "¿ventas de hoy?", phrase: "hoy", wantIdx: 12, wantLen: 3},
		{name: "later occurrence is whole", text: "payers paid ayer", phrase: "ayer", wantIdx: 12, wantLen: 4},
		{name: "multi-word phrase", text: "ventas del año pasado", phrase: "año pasado", wantIdx: 11, wantLen: 11},
		{name: "plural suffix", text: "list my top customers", phrase: "customer", suffixes: []string{"s", "es"}, wantIdx: 12, wantLen: 9},
		{name: "suffix still needs a boundary", text: "solar panels", phrase: "panel", suffixes: []string{"es"}, wantIdx: -1},
		{name: "plural without suffixes", text: "top customers", phrase: "customer", wantIdx: -1},
		{name: "empty phrase", text: "anything", phrase: "", wantIdx: -1},
		{name: "empty text", text: "", phrase: "hoy", wantIdx: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, n := Index(tt.text, tt.phrase, tt.suffixes...)
			assert.Equal(t, tt.wantIdx, idx)
			if tt.wantIdx >= 0 {
				assert.Equal(t, tt.wantLen, n)
			}
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("how many units in stock", "stock"))
	assert.False(t, Contains("stockholders meeting", "stock"))
	assert.True(t, Contains("informes de ventas", "informe", "s", "es"))
}
