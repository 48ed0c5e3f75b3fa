// Package format turns raw market values into display strings.
//
// Every function accepts possibly invalid input (NaN and ±Inf stand for a
// missing value) and always returns a printable string. Rounding goes
// through decimal so that 1.005 rounds the way a reader expects.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	zeroMoney   = "$0.00"
	zeroPercent = "0.00%"
	zeroRate    = "0.000000"
	zeroAmount  = "0.00"
	recentLabel = "Recent"
	notAvail    = "N/A"
)

// Price formats a quote price with precision that grows as the price
// shrinks: two decimals from 1000 up, up to four from 1, up to six below 1.
func Price(v float64) string {
	if !finite(v) || v == 0 {
		return zeroMoney
	}

	a := math.Abs(v)
	var s string
	switch {
	case a >= 1000:
		s = fixed(a, 2, 2)
	case a >= 1:
		s = fixed(a, 2, 4)
	default:
		s = fixed(a, 4, 6)
	}
	return money(v, s)
}

// Compact abbreviates large amounts with B, M and K suffixes.
func Compact(v float64) string {
	if !finite(v) || v == 0 {
		return zeroMoney
	}
	return money(v, compact(math.Abs(v), false))
}

// MarketCap is Compact with an extra trillion tier. Missing values read N/A.
func MarketCap(v float64) string {
	if !finite(v) || v == 0 {
		return notAvail
	}
	return money(v, compact(math.Abs(v), true))
}

// Percent formats a percentage change with an explicit sign.
func Percent(v float64) string {
	if !finite(v) {
		return zeroPercent
	}
	s := fixed(math.Abs(v), 2, 2)
	if s == "0.00" {
		return zeroPercent
	}
	if v > 0 {
		return "+" + s + "%"
	}
	return "-" + s + "%"
}

// Rate formats an exchange rate with six decimals.
func Rate(v float64) string {
	if !finite(v) || v == 0 {
		return zeroRate
	}
	return decimal.NewFromFloat(v).StringFixed(6)
}

// Amount formats a converted amount with two decimals and grouping.
func Amount(v float64) string {
	if !finite(v) || v == 0 {
		return zeroAmount
	}
	s := fixed(math.Abs(v), 2, 2)
	if v < 0 && s != "0.00" {
		return "-" + s
	}
	return s
}

// SignedChange formats an absolute change with a leading + or -.
func SignedChange(v float64, places int) string {
	if places < 0 {
		places = 0
	}
	zero := decimal.Zero.StringFixed(int32(places))
	if !finite(v) {
		return zero
	}
	s := decimal.NewFromFloat(math.Abs(v)).StringFixed(int32(places))
	switch {
	case s == zero:
		return zero
	case v > 0:
		return "+" + s
	default:
		return "-" + s
	}
}

// RelativeDate renders t relative to now: "just now" within the hour,
// "{n}h ago" within the day, a short date otherwise. A zero t, which is
// what an unparsable timestamp decodes to, renders as "Recent".
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return recentLabel
	}
	d := now.Sub(t)
	if d < time.Hour {
		return "just now"
	}
	hours := int(d / time.Hour)
	if hours < 24 {
		return strconv.Itoa(hours) + "h ago"
	}
	return t.Format("Jan 2")
}

// DateTime renders an absolute publish time.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return recentLabel
	}
	return t.Format("Jan 2, 2006, 03:04 PM")
}

func compact(a float64, trillions bool) string {
	switch {
	case trillions && a >= 1e12:
		return fixed(a/1e12, 2, 2) + "T"
	case a >= 1e9:
		return fixed(a/1e9, 2, 2) + "B"
	case a >= 1e6:
		return fixed(a/1e6, 2, 2) + "M"
	case a >= 1e3:
		return fixed(a/1e3, 2, 2) + "K"
	}
	return fixed(a, 2, 2)
}

func money(v float64, digits string) string {
	if v < 0 {
		return "-$" + digits
	}
	return "$" + digits
}

// fixed rounds a non-negative value to maxPlaces, trims trailing zeros down
// to minPlaces, and groups the integer part by thousands.
func fixed(a float64, minPlaces, maxPlaces int) string {
	s := decimal.NewFromFloat(a).StringFixed(int32(maxPlaces))

	intPart, frac, _ := strings.Cut(s, ".")
	for len(frac) > minPlaces && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}

	intPart = group(intPart)
	if frac == "" {
		return intPart
	}
	return intPart + "." + frac
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
