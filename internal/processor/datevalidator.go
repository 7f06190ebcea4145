// datevalidator.go - Payment date vs match date comparison

package processor

import (
	"log"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate parses a date string into a day-granular time. Strict
// YYYY-MM-DD is tried first; anything else goes through a lenient free-text
// parse. Returns the zero time and false when parsing fails - never errors.
func ParseDate(dateString string) (time.Time, bool) {
	if dateString == "" {
		return time.Time{}, false
	}

	if len(dateString) == 10 && dateString[4] == '-' && dateString[7] == '-' {
		if t, err := time.Parse("2006-01-02", dateString); err == nil {
			return t, true
		}
	}

	t, err := dateparse.ParseAny(dateString)
	if err != nil {
		log.Printf("⚠️  Failed to parse date %q: %v", dateString, err)
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// ValidatePaymentDate checks that the payment date is not older than the
// match date. A payment date before the match date usually means a reused
// old screenshot or a bad extraction.
//
// Inability to validate is NOT invalidity: when either input is empty or
// unparseable the check defers to the other validations and returns
// (true, ""). When both parse, valid ⇔ payment_date >= match_date, and the
// reason on failure is "date_mismatch".
func ValidatePaymentDate(paymentDateStr, matchDateStr string) (bool, string) {
	if paymentDateStr == "" || matchDateStr == "" {
		return true, ""
	}

	paymentDate, ok := ParseDate(paymentDateStr)
	if !ok {
		log.Printf("⚠️  Could not parse payment date: %s", paymentDateStr)
		return true, ""
	}
	matchDate, ok := ParseDate(matchDateStr)
	if !ok {
		log.Printf("⚠️  Could not parse match date: %s", matchDateStr)
		return true, ""
	}

	if paymentDate.Before(matchDate) {
		log.Printf("⚠️  Payment date (%s) is older than match date (%s)",
			paymentDate.Format("2006-01-02"), matchDate.Format("2006-01-02"))
		return false, "date_mismatch"
	}

	return true, ""
}

// DayDifference returns payment − match in whole days (positive when the
// payment is after the match date). ok is false when either date fails to
// parse.
func DayDifference(paymentDateStr, matchDateStr string) (days int, ok bool) {
	paymentDate, ok1 := ParseDate(paymentDateStr)
	matchDate, ok2 := ParseDate(matchDateStr)
	if !ok1 || !ok2 {
		return 0, false
	}
	return int(paymentDate.Sub(matchDate).Hours() / 24), true
}
