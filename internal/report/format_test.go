package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRowPercent(t *testing.T) {
	assert.Equal(t, "67%", FormatRowPercent(Percent{Value: 66.666, Valid: true}))
	assert.Equal(t, "0%", FormatRowPercent(Percent{Value: 0, Valid: true}))
	assert.Equal(t, "--", FormatRowPercent(Percent{}))
}

func TestFormatTotalPercent(t *testing.T) {
	// Grand totals keep one decimal: 100/150 renders as 66.7%.
	assert.Equal(t, "66.7%", FormatTotalPercent(Percent{Value: 66.666666, Valid: true}))
	assert.Equal(t, "0.0%", FormatTotalPercent(Percent{Value: 0, Valid: true}))
	assert.Equal(t, "--", FormatTotalPercent(Percent{}))
}

func TestFormatManhours(t *testing.T) {
	assert.Equal(t, "9.5", FormatManhours(9.54))
	assert.Equal(t, "0.0", FormatManhours(0))
	assert.Equal(t, "10", FormatManhours(10.2))
	assert.Equal(t, "1,250", FormatManhours(1249.6))
	assert.Equal(t, "1,000,000", FormatManhours(1e6))
}

func TestFormatDeltaManhours(t *testing.T) {
	// Negative values carry no extra prefix: -12 renders as -12 MH.
	text, class := FormatDeltaManhours(-12)
	assert.Equal(t, "-12 MH", text)
	assert.Equal(t, SignNegative, class)

	text, class = FormatDeltaManhours(42)
	assert.Equal(t, "+42 MH", text)
	assert.Equal(t, SignPositive, class)

	text, class = FormatDeltaManhours(5.25)
	assert.Equal(t, "+5.3 MH", text)
	assert.Equal(t, SignPositive, class)
}

func TestFormatDeltaManhours_ZeroBands(t *testing.T) {
	// True zero renders as an em-dash, not as "0 MH".
	text, class := FormatDeltaManhours(0)
	assert.Equal(t, ZeroDelta, text)
	assert.Equal(t, SignNeutral, class)

	// Nonzero values that would round to zero render as a band instead.
	text, class = FormatDeltaManhours(0.3)
	assert.Equal(t, "<1 MH", text)
	assert.Equal(t, SignPositive, class)

	text, class = FormatDeltaManhours(-0.3)
	assert.Equal(t, ">-1 MH", text)
	assert.Equal(t, SignNegative, class)
}

func TestFormatDeltaCount(t *testing.T) {
	text, class := FormatDeltaCount(7)
	assert.Equal(t, "+7", text)
	assert.Equal(t, SignPositive, class)

	text, class = FormatDeltaCount(-2)
	assert.Equal(t, "-2", text)
	assert.Equal(t, SignNegative, class)

	text, class = FormatDeltaCount(0)
	assert.Equal(t, ZeroDelta, text)
	assert.Equal(t, SignNeutral, class)
}

func TestFormatDeltaPercent(t *testing.T) {
	text, class := FormatDeltaPercent(Percent{Value: 3.14, Valid: true})
	assert.Equal(t, "+3.1%", text)
	assert.Equal(t, SignPositive, class)

	text, class = FormatDeltaPercent(Percent{Value: -1.5, Valid: true})
	assert.Equal(t, "-1.5%", text)
	assert.Equal(t, SignNegative, class)

	text, class = FormatDeltaPercent(Percent{})
	assert.Equal(t, Undefined, text)
	assert.Equal(t, SignNeutral, class)
}
