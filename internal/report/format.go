package report

import (
	"fmt"
	"math"
	"strings"
)

// Currency is appended to every formatted amount.
const Currency = "TL"

// FormatAmount renders v with thousands separators and two decimals.
func FormatAmount(v float64) string {
	return FormatNumber(v) + " " + Currency
}

// FormatNumber renders v as 1,234,567.89.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	negative := v < 0
	if negative {
		v = -v
	}
	cents := int64(math.Round(v * 100))
	intPart := cents / 100
	decPart := cents % 100

	intStr := fmt.Sprintf("%d", intPart)
	if len(intStr) > 3 {
		var parts []string
		for len(intStr) > 3 {
			parts = append([]string{intStr[len(intStr)-3:]}, parts...)
			intStr = intStr[:len(intStr)-3]
		}
		parts = append([]string{intStr}, parts...)
		intStr = strings.Join(parts, ",")
	}

	result := fmt.Sprintf("%s.%02d", intStr, decPart)
	if negative && cents != 0 {
		result = "-" + result
	}
	return result
}

// FormatPercent renders a share in [0,1] as a percentage with one decimal.
func FormatPercent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}
