package qasm

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnknownExpression marks a textual parameter expression outside the
// supported catalogue. It is always a hard failure: an unparseable angle
// is never silently defaulted.
var ErrUnknownExpression = errors.New("qasm: unknown parameter expression")

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, 3*pi/4, -pi, -pi/2, -3*pi/4
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// ParseParam parses a single parameter expression.
//
// Supported formats:
//   - Plain numbers: "1.5707", "3.14", "-0.5", "3.14e-2"
//   - Pi constant: "pi"
//   - Pi fractions: "pi/2", "pi/4", "pi/3"
//   - Coefficients: "2pi", "2*pi", "3pi/4", "3*pi/4"
//   - Negative: "-pi", "-pi/2", "-3*pi/4"
func ParseParam(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty expression", ErrUnknownExpression)
	}

	// Plain number first
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, nil
	}

	lower := strings.ToLower(s)
	matches := piExprRegex.FindStringSubmatch(lower)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownExpression, s)
	}
	negative := matches[1] == "-"
	coeffStr := matches[2]
	denomStr := matches[3]

	coeff := 1.0
	if coeffStr != "" {
		var err error
		coeff, err = strconv.ParseFloat(coeffStr, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnknownExpression, s)
		}
	}

	result := coeff * math.Pi
	if denomStr != "" {
		denom, err := strconv.ParseFloat(denomStr, 64)
		if err != nil || denom == 0 {
			return 0, fmt.Errorf("%w: %q", ErrUnknownExpression, s)
		}
		result /= denom
	}
	if negative {
		result = -result
	}
	return result, nil
}

// FormatParam formats a parameter value, using pi notation when the value
// matches a recognized pi fraction.
func FormatParam(val float64) string {
	type piForm struct {
		value   float64
		display string
	}
	piForms := []piForm{
		{2 * math.Pi, "2*pi"},
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 3, "pi/3"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 6, "pi/6"},
		{math.Pi / 8, "pi/8"},
		{3 * math.Pi / 4, "3*pi/4"},
		{3 * math.Pi / 2, "3*pi/2"},
		{2 * math.Pi / 3, "2*pi/3"},
	}

	for _, pf := range piForms {
		if math.Abs(val-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(val+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}

	return strconv.FormatFloat(val, 'g', -1, 64)
}
