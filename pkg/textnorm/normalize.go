// Package textnorm normaliza texto para búsquedas insensibles a mayúsculas y
// acentos, como exige el catálogo de la farmacia ("paracetamol" debe encontrar
// "Paracetamól").
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize devuelve el texto en minúsculas, sin diacríticos y sin espacios
// en los extremos.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
