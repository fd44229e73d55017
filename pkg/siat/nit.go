package siat

import "unicode"

// Tipos de documento de identidad aceptados por el SIN.
const (
	DocTypeCI  = "CI"  // cédula de identidad
	DocTypeNIT = "NIT" // número de identificación tributaria
	DocTypeCEX = "CEX" // carnet de extranjería
)

// NITAnonimo es el código genérico "consumidor final" (venta sin nombre).
// No es válido como NIT real para ventas sobre el umbral fiscal.
const NITAnonimo = "4444"

// Códigos reservados del SIN con nombre canónico fijo; nunca se crean como
// clientes en blanco.
var reservedNames = map[string]string{
	NITAnonimo: "SIN NOMBRE",
	"99001":    "CONTROL TRIBUTARIO",
	"99002":    "EXTRANJERO SIN NIT",
	"99003":    "CONSOLIDADO MENORES",
}

// IsReserved indica si el código pertenece al set reservado del SIN.
func IsReserved(code string) bool {
	_, ok := reservedNames[code]
	return ok
}

// ReservedName devuelve el nombre canónico de un código reservado ("" si no lo es).
func ReservedName(code string) string {
	return reservedNames[code]
}

// InferDocumentType deduce el tipo de documento a partir del identificador:
// con letras es carnet de extranjería; hasta 8 dígitos es CI; más largo es NIT.
func InferDocumentType(id string) string {
	digits := ExtractDigits(id)
	if len(digits) != len([]rune(id)) {
		return DocTypeCEX
	}
	if len(digits) <= 8 {
		return DocTypeCI
	}
	return DocTypeNIT
}

// ExtractDigits devuelve solo los dígitos del identificador (quita puntos y guiones).
func ExtractDigits(s string) string {
	var out []rune
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
