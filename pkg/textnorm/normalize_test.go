package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farmavida/pos-api/pkg/textnorm"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Paracetamól", "paracetamol"},
		{"  IBUPROFENO 400mg  ", "ibuprofeno 400mg"},
		{"Ácido Acetilsalicílico", "acido acetilsalicilico"},
		{"suero", "suero"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, textnorm.Normalize(c.in), "entrada: %q", c.in)
	}
}
