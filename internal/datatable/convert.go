package datatable

// convert.go turns raw cell values into text.
//
// Cell values come straight from decoded JSON, so they may be json.Number,
// float64, string, bool, nil, or nested objects. Formatters here mirror the
// dashboard defaults:
//   - numbers use a "0,0.[000]" pattern (grouping, up to three decimals)
//   - dates are epoch milliseconds or timestamps, shown as "Jan 2, 2006 @ 15:04:05.000"
//   - booleans are "true" / "false"

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// DefaultDateLayout is the display layout for date columns.
const DefaultDateLayout = "Jan 2, 2006 @ 15:04:05.000"

// DefaultNumberDecimals is the maximum number of fraction digits shown.
const DefaultNumberDecimals = 3

var dateInputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// IsNumeric reports whether s is a plain number. Surrounding whitespace and
// thousands separators are ignored, so "1,234.5" counts as numeric.
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	s = strings.ReplaceAll(s, ",", "")
	return numericRegex.MatchString(s)
}

// RawString renders a value without any field format applied.
func RawString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func formatString(v any, _ map[string]any) string {
	return RawString(v)
}

func formatBoolean(v any, _ map[string]any) string {
	switch val := v.(type) {
	case bool:
		return strconv.FormatBool(val)
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return strconv.FormatBool(b)
		}
	}
	return RawString(v)
}

func formatNumber(v any, params map[string]any) string {
	f, ok := toFloat(v)
	if !ok {
		return RawString(v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return RawString(v)
	}

	decimals := DefaultNumberDecimals
	if d, ok := intParam(params, "decimals"); ok && d >= 0 {
		decimals = d
	}

	s := strconv.FormatFloat(f, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return groupThousands(s)
}

func formatDate(v any, params map[string]any) string {
	t, ok := toTime(v)
	if !ok {
		return RawString(v)
	}

	loc := time.UTC
	if tz, ok := params["timezone"].(string); ok && tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	layout := DefaultDateLayout
	if p, ok := params["pattern"].(string); ok && p != "" {
		layout = p
	}
	return t.In(loc).Format(layout)
}

// groupThousands inserts commas into the integer part of a decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if !numericRegex.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateInputLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if IsNumeric(s) {
			if f, ok := toFloat(s); ok {
				return time.UnixMilli(int64(f)).UTC(), true
			}
		}
		return time.Time{}, false
	default:
		f, ok := toFloat(v)
		if !ok {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)).UTC(), true
	}
}

func intParam(params map[string]any, key string) (int, bool) {
	raw, ok := params[key]
	if !ok {
		return 0, false
	}
	f, ok := toFloat(raw)
	if !ok {
		return 0, false
	}
	return int(f), true
}
