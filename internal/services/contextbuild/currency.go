package contextbuild

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a value with Brazilian grouping and decimal convention,
// e.g. 1234.56 -> "R$ 1.234,56".
func FormatBRL(v float64) string {
	return ptBR.Sprintf("R$ %.2f", v)
}
