package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/header"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Value types recorded next to each parameter.
const (
	typeString = "string"
	typeFloat  = "float"
	typeInt    = "int"
	typeBool   = "bool"
)

type document struct {
	Params []param `json:"params" yaml:"params"`
}

type param struct {
	Key     string `json:"key" yaml:"key"`
	Value   any    `json:"value" yaml:"value"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
}

// FormatFromPath returns the format matching the extension of path.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOption,
		"cannot tell parameter format of %s (use .json, .yaml or .yml)", path)
}

func toParam(c header.Card) (param, error) {
	p := param{Key: c.Key, Value: c.Value, Comment: c.Comment}
	switch v := c.Value.(type) {
	case nil:
	case string:
		p.Type = typeString
	case float64:
		p.Type = typeFloat
		if math.IsNaN(v) || math.IsInf(v, 0) {
			p.Value = strconv.FormatFloat(v, 'g', -1, 64)
		}
	case int:
		p.Type = typeInt
	case bool:
		p.Type = typeBool
	default:
		return param{}, errors.New(errors.ErrCodeTypeNotSupported,
			"%s: cannot export value of type %T", c.Key, c.Value)
	}
	return p, nil
}

// WriteParams encodes the cards of h, in order, to w. Every value is
// written with its type so that ReadParams restores it exactly.
func WriteParams(w io.Writer, h *header.Header, format string) error {
	var doc document
	for _, c := range h.Cards() {
		p, err := toParam(c)
		if err != nil {
			return err
		}
		doc.Params = append(doc.Params, p)
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "encode json")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "encode yaml")
		}
	default:
		return errors.New(errors.ErrCodeInvalidOption, "unknown parameter format %q", format)
	}
	return nil
}

// ExportParams writes h to path in the format given by its extension.
func ExportParams(h *header.Header, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if err := WriteParams(f, h, format); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", path)
	}
	return nil
}
