package report

import (
	"fmt"
	"math"
	"strconv"
)

// SignClass is the visual class a delta value renders with.
type SignClass string

const (
	SignPositive SignClass = "positive"
	SignNegative SignClass = "negative"
	SignNeutral  SignClass = "neutral"
)

// ZeroDelta is the placeholder for a true zero delta, distinct from a small
// nonzero value that would round to zero.
const ZeroDelta = "—"

// Undefined is the display sentinel for a percentage with a zero denominator.
const Undefined = "--"

// FormatRowPercent renders a data-row percentage rounded to a whole number.
func FormatRowPercent(p Percent) string {
	if !p.Valid {
		return Undefined
	}
	return strconv.Itoa(int(math.Round(p.Value))) + "%"
}

// FormatTotalPercent renders a grand-total percentage with one decimal place.
// Grand totals are computed from raw sums and rounded only here.
func FormatTotalPercent(p Percent) string {
	if !p.Valid {
		return Undefined
	}
	return strconv.FormatFloat(math.Round(p.Value*10)/10, 'f', 1, 64) + "%"
}

// FormatManhours renders a manhour value: one decimal below 10, whole with
// thousands separators from 10 up.
func FormatManhours(v float64) string {
	abs := math.Abs(v)
	if abs < 10 {
		return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
	}
	n := int64(math.Round(v))
	return groupThousands(n)
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return sign + s
	}
	var out []byte
	for i, ch := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, ch)
	}
	return sign + string(out)
}

// FormatDeltaManhours renders a delta manhour value with its sign class.
// Exact zero gets an em-dash so "no movement" reads differently from "moved
// by less than one manhour", which renders as <1 MH / >-1 MH.
func FormatDeltaManhours(v float64) (string, SignClass) {
	switch {
	case v == 0:
		return ZeroDelta, SignNeutral
	case v > 0 && v < 1:
		return "<1 MH", SignPositive
	case v < 0 && v > -1:
		return ">-1 MH", SignNegative
	case v > 0:
		return "+" + FormatManhours(v) + " MH", SignPositive
	default:
		return "-" + FormatManhours(-v) + " MH", SignNegative
	}
}

// FormatDeltaCount renders an integer count delta (fit-ups, completed welds,
// accepted welds, new welds) with the same sign rules as manhour deltas.
func FormatDeltaCount(n int) (string, SignClass) {
	switch {
	case n == 0:
		return ZeroDelta, SignNeutral
	case n > 0:
		return "+" + strconv.Itoa(n), SignPositive
	default:
		return strconv.Itoa(n), SignNegative
	}
}

// FormatDeltaPercent renders a delta percentage with sign prefix, one
// decimal place.
func FormatDeltaPercent(p Percent) (string, SignClass) {
	if !p.Valid {
		return Undefined, SignNeutral
	}
	rounded := math.Round(p.Value*10) / 10
	switch {
	case rounded == 0:
		return ZeroDelta, SignNeutral
	case rounded > 0:
		return fmt.Sprintf("+%.1f%%", rounded), SignPositive
	default:
		return fmt.Sprintf("%.1f%%", rounded), SignNegative
	}
}
