package importsheet

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// SerialEpoch is day zero of the 1900 date system as spreadsheets count it,
// so that serial 25569 lands on 1970-01-01.
var SerialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// SerialToDate converts a day-count serial to a calendar date. The time of
// day carried in the fraction is rounded to the nearest whole day.
func SerialToDate(serial float64) time.Time {
	return SerialEpoch.AddDate(0, 0, int(math.Round(serial)))
}

func FormatSerial(serial float64) string {
	return SerialToDate(serial).Format(DateLayout)
}

// MaxSerial is 9999-12-31, the last day spreadsheets can represent.
const MaxSerial = 2958465

var textDateLayouts = []string{DateLayout, "02/01/2006"}

// ParseDateCell accepts a serial number within 0..MaxSerial or a hand-typed
// YYYY-MM-DD or DD/MM/YYYY date.
func ParseDateCell(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(serial) || serial < 0 || serial >= MaxSerial+0.5 {
			return time.Time{}, false
		}
		return SerialToDate(serial), true
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
