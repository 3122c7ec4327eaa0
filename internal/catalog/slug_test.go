package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Widget":               "widget",
		"  Coffee Mugs  ":      "coffee-mugs",
		"T-Shirts & Hoodies!!": "t-shirts-hoodies",
		"Crème Brûlée":         "creme-brulee",
		"Ｆｕｌｌ Width":          "full-width",
		"2024 -- Edition":      "2024-edition",
		"日本":                   "",
		"---":                  "",
	}
	for input, want := range tests {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}
