package conversation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/farmgate/whatsapp-engine/internal/util"
)

var (
	nonNumeric = regexp.MustCompile(`[^0-9.]`)
	isoDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

const dateLayout = "2006-01-02"

// parseNumber strips everything but digits and dots and parses the rest.
// Results must be finite and positive, or zero when allowZero is set.
func parseNumber(raw string, allowZero bool) (float64, bool) {
	cleaned := nonNumeric.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 || (v == 0 && !allowZero) {
		return 0, false
	}
	return v, true
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if !isoDate.MatchString(raw) {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// isSkip reports whether the user asked to leave an optional field empty.
func isSkip(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "skip")
}

func cleanText(raw string, max int) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	r := []rune(s)
	if len(r) > max {
		s = string(r[:max])
	}
	return s, true
}

func validEmail(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	return s, util.IsValidEmail(s)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
