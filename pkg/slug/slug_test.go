package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"electronics", "electronics"},
		{"men's clothing", "mens-clothing"},
		{"women’s clothing", "womens-clothing"},
		{"jewelery", "jewelery"},
		{"  Electronics & More!  ", "electronics-more"},
		{"Café Crème", "cafe-creme"},
		{"all", "all"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.in))
		})
	}
}
