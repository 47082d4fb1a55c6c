package stats

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatMarketCap renders a capitalization as $1.23T, $4.56B, $7.89M or $12,345.
// Nil renders as an empty string.
func FormatMarketCap(v *float64) string {
	if v == nil {
		return ""
	}
	c := *v
	switch {
	case c >= 1e12:
		return fmt.Sprintf("$%.2fT", c/1e12)
	case c >= 1e9:
		return fmt.Sprintf("$%.2fB", c/1e9)
	case c >= 1e6:
		return fmt.Sprintf("$%.2fM", c/1e6)
	}
	return "$" + humanize.Comma(int64(math.Round(c)))
}
