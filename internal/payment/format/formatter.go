package format

import "fmt"

// FormatMinor renders a minor-unit amount as a display string, e.g.
// FormatMinor(2750, "USD") == "USD 27.50".
//
// This function is PURE:
// - No side effects
// - Fully deterministic
func FormatMinor(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if currency == "" {
		return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, amount/100, amount%100)
}
