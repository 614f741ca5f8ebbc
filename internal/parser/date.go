package parser

import (
	"math"
	"strings"
	"time"
)

const (
	// excelEpochOffset is the number of days between the 1900 date-system epoch
	// and 1970-01-01.
	excelEpochOffset = 25569
	secondsPerDay    = 86400
)

var textDateLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04Z",
}

// ParseDate turns a date cell into a UTC instant. Text cells are "<date> <time>"
// and read as UTC; numeric cells are spreadsheet date serials. Anything else,
// including text that does not parse, reports false.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case string:
		return parseTextDate(v)
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	default:
		return time.Time{}, false
	}
}

func parseTextDate(s string) (time.Time, bool) {
	parts := strings.Split(s, " ")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return time.Time{}, false
	}
	iso := parts[0] + "T" + parts[1] + "Z"
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func fromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	ms := math.Trunc((serial - excelEpochOffset) * secondsPerDay * 1000)
	if ms > math.MaxInt64/2 || ms < math.MinInt64/2 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}
