package delivery

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimensions of a single item in meters, as the carrier expects them.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Defaults applied when the free-text description fields cannot be
// parsed. A shipment request must never fail over bad catalog text.
const defaultWeightKg = 1.0

func defaultDimensions() Dimensions {
	return Dimensions{Length: 0.1, Width: 0.05, Height: 0.03}
}

// multiplication-sign variants seen in catalog data
var dimensionDelimiters = strings.NewReplacer(
	"×", " ",
	"х", " ", // Cyrillic
	"Х", " ",
	"x", " ",
	"X", " ",
	"*", " ",
)

// parseDimensions parses a "H×W×D <unit>" string with centimeter
// values, e.g. "178×60×63 см", into meters. The carrier's size block
// is length/width/height, so depth becomes length and height stays
// height. Exactly three strictly positive numbers are required.
func parseDimensions(s string) (Dimensions, error) {
	fields := strings.Fields(dimensionDelimiters.Replace(s))

	values := make([]float64, 0, 3)
	for _, f := range fields {
		v, err := leadingNumber(f)
		if err != nil {
			// Unit tokens like "см" ride along with the numbers; skip
			// anything that does not start with a digit.
			if !startsWithDigit(f) {
				continue
			}
			return Dimensions{}, fmt.Errorf("dimension %q: %w", f, err)
		}
		values = append(values, v)
	}

	if len(values) != 3 {
		return Dimensions{}, fmt.Errorf("expected 3 dimensions, got %d in %q", len(values), s)
	}
	for _, v := range values {
		if v <= 0 {
			return Dimensions{}, fmt.Errorf("non-positive dimension in %q", s)
		}
	}

	height, width, depth := values[0], values[1], values[2]
	return Dimensions{
		Length: depth / 100,
		Width:  width / 100,
		Height: height / 100,
	}, nil
}

// parseWeight parses a "<number> <unit>" string like "68 кг" into
// kilograms.
func parseWeight(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty weight")
	}
	v, err := leadingNumber(fields[0])
	if err != nil {
		return 0, fmt.Errorf("weight %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("non-positive weight in %q", s)
	}
	return v, nil
}

// leadingNumber parses the numeric prefix of a token, tolerating an
// attached unit suffix ("63см") and comma decimal separators.
func leadingNumber(s string) (float64, error) {
	end := 0
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			end += len(string(r))
			continue
		}
		break
	}
	if end == 0 {
		return 0, fmt.Errorf("no numeric prefix in %q", s)
	}
	num := strings.ReplaceAll(s[:end], ",", ".")
	return strconv.ParseFloat(num, 64)
}

func startsWithDigit(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}
