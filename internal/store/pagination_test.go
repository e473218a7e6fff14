package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPage(t *testing.T) {
	p := DefaultPage()
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, 100, p.Limit)
}

func TestPage_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input Page
		want  Page
	}{
		{"valid", Page{Offset: 5, Limit: 50}, Page{Offset: 5, Limit: 50}},
		{"zero limit defaults", Page{Limit: 0}, Page{Limit: 100}},
		{"negative limit defaults", Page{Limit: -10}, Page{Limit: 100}},
		{"limit capped", Page{Limit: 5000}, Page{Limit: 1000}},
		{"limit exactly max", Page{Limit: 1000}, Page{Limit: 1000}},
		{"negative offset", Page{Offset: -3, Limit: 10}, Page{Offset: 0, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.input.Normalize())
		})
	}
}
