package io

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/header"
)

// ReadParams decodes a parameter document from r and returns its cards
// in document order.
//
// Each entry needs a key. The recorded type, when present, decides how
// the value is read back, so a float written as 1 stays a float. Entries
// without a type take the natural type of their value: integers, floats,
// booleans and strings. A null value is an undefined parameter.
//
// ReadParams does not close r.
func ReadParams(r io.Reader, format string) ([]header.Card, error) {
	var doc document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidOption, "unknown parameter format %q", format)
	}

	cards := make([]header.Card, 0, len(doc.Params))
	for i, p := range doc.Params {
		if p.Key == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "parameter %d has no key", i+1)
		}
		v, err := coerce(p.Value, p.Type)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parameter %s", p.Key)
		}
		cards = append(cards, header.Card{Key: p.Key, Value: v, Comment: p.Comment})
	}
	return cards, nil
}

// ImportParams reads the parameter document at path, choosing the format
// from its extension.
func ImportParams(path string) ([]header.Card, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	return ReadParams(bytes.NewReader(data), format)
}

func coerce(v any, typ string) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case "":
		return natural(v)
	case typeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case typeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case typeFloat:
		switch v := v.(type) {
		case json.Number:
			return v.Float64()
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			// Non-finite floats are written as strings.
			if f, err := strconv.ParseFloat(v, 64); err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
				return f, nil
			}
		}
	case typeInt:
		switch v := v.(type) {
		case json.Number:
			n, err := v.Int64()
			return int(n), err
		case int:
			return v, nil
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown type %q", typ)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "value %v is not a %s", v, typ)
}

func natural(v any) (any, error) {
	switch v := v.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
		return v.Float64()
	case string, bool, int, float64:
		return v, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported value %v (%T)", v, v)
}
