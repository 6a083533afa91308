package simconfig

import (
	"math"
	"strconv"
	"strings"
)

// formatNumber renders a float the way the consuming schema expects: integral
// values keep one decimal place ("12.0"), everything else uses the shortest
// exact representation. Both the tabular and XML codecs share it so the two
// encodings of one rule always agree.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
