package domain

import "fmt"

// FormatBRL renders cents as "R$ 80,00": two decimals, decimal comma,
// no thousands grouping.
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("R$ %s%d,%02d", sign, cents/100, cents%100)
}
