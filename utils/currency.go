package utils

import (
	"strconv"
	"strings"
)

// FormatKyats formats an amount with thousands separators.
// Example: 15000 -> "15,000 Kyats"
func FormatKyats(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var groups []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{digits[start:i]}, groups...)
	}

	return sign + strings.Join(groups, ",") + " Kyats"
}
