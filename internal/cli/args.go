package cli

import (
	"strconv"
	"strings"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/header"
)

// parseParam parses a KEY=VALUE argument. The key is upper-cased. The
// value is read as an integer, then a float, then a FITS or Go boolean,
// and otherwise kept as a string. An empty value leaves the parameter
// undefined.
func parseParam(arg string) (header.Card, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.ToUpper(strings.TrimSpace(key))
	if !ok || key == "" {
		return header.Card{}, errors.New(errors.ErrCodeInvalidInput, "expected KEY=VALUE, got %q", arg)
	}
	return header.Card{Key: key, Value: parseValue(value)}, nil
}

func parseValue(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "T", "true":
		return true
	case "F", "false":
		return false
	}
	return s
}

func parseParams(args []string) ([]header.Card, error) {
	cards := make([]header.Card, 0, len(args))
	for _, a := range args {
		c, err := parseParam(a)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// isParam reports whether a positional argument is a KEY=VALUE pair.
func isParam(arg string) bool {
	return strings.Contains(arg, "=")
}

func parseNaxis(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "NAXIS1 must be an integer, got %q", s)
	}
	return n, nil
}

func parsePixelSize(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "PIXELSIZE must be a number, got %q", s)
	}
	return f, nil
}
