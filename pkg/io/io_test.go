package io

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/header"
)

func sampleParams() *header.Header {
	h := header.New(
		header.Card{Key: "TARGET", Comment: "Identifier of target to select"},
		header.Card{Key: "WAVE_MIN", Value: 1e-7},
		header.Card{Key: "USE_VIS", Value: "ALL"},
		header.Card{Key: "USE_VIS2", Value: true},
		header.Card{Key: "MAXITER", Value: 200, Comment: "Maximum number of iterations to run"},
		header.Card{Key: "RGL_WGT", Value: 1e5},
		header.Card{Key: "FLUX", Value: 1.0},
	)
	h.Add(header.KeyHistory, "first", "")
	h.Add(header.KeyHistory, "second", "")
	return h
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			want := sampleParams()
			var buf bytes.Buffer
			require.NoError(t, WriteParams(&buf, want, format))

			got, err := ReadParams(&buf, format)
			require.NoError(t, err)
			if diff := cmp.Diff(want.Cards(), got); diff != "" {
				t.Errorf("cards mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteJSONKeepsTypes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteParams(&buf, header.New(header.Card{Key: "FLUX", Value: 1.0}), FormatJSON))
	assert.Contains(t, buf.String(), `"type": "float"`)
}

func TestNonFiniteFloats(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			h := header.New(
				header.Card{Key: "A", Value: math.Inf(1)},
				header.Card{Key: "B", Value: math.NaN()},
			)
			var buf bytes.Buffer
			require.NoError(t, WriteParams(&buf, h, format))
			cards, err := ReadParams(&buf, format)
			require.NoError(t, err)
			require.Len(t, cards, 2)
			assert.True(t, math.IsInf(cards[0].Value.(float64), 1))
			assert.True(t, math.IsNaN(cards[1].Value.(float64)))
		})
	}
}

func TestReadUntyped(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
		want   []header.Card
	}{
		{
			name:   "json",
			format: FormatJSON,
			input:  `{"params": [{"key": "MAXITER", "value": 50}, {"key": "FLUX", "value": 0.5}, {"key": "AUTO_WGT", "value": true}, {"key": "TARGET", "value": "HD 1234"}]}`,
			want: []header.Card{
				{Key: "MAXITER", Value: 50},
				{Key: "FLUX", Value: 0.5},
				{Key: "AUTO_WGT", Value: true},
				{Key: "TARGET", Value: "HD 1234"},
			},
		},
		{
			name:   "yaml",
			format: FormatYAML,
			input:  "params:\n  - key: MAXITER\n    value: 50\n  - key: FLUX\n    value: 0.5\n  - key: TARGET\n",
			want: []header.Card{
				{Key: "MAXITER", Value: 50},
				{Key: "FLUX", Value: 0.5},
				{Key: "TARGET"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadParams(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("cards mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
		code   errors.Code
	}{
		{"malformed json", FormatJSON, `{"params": [`, errors.ErrCodeInvalidInput},
		{"missing key", FormatJSON, `{"params": [{"value": 1}]}`, errors.ErrCodeInvalidInput},
		{"type mismatch", FormatJSON, `{"params": [{"key": "A", "value": "x", "type": "int"}]}`, errors.ErrCodeInvalidInput},
		{"fractional int", FormatJSON, `{"params": [{"key": "A", "value": 1.5, "type": "int"}]}`, errors.ErrCodeInvalidInput},
		{"unknown type", FormatYAML, "params:\n  - key: A\n    value: 1\n    type: complex\n", errors.ErrCodeInvalidInput},
		{"unknown format", "toml", ``, errors.ErrCodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadParams(strings.NewReader(tt.input), tt.format)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestWriteUnsupportedValue(t *testing.T) {
	h := header.New(header.Card{Key: "Z", Value: complex(1, 2)})
	err := WriteParams(&bytes.Buffer{}, h, FormatJSON)
	assert.True(t, errors.Is(err, errors.ErrCodeTypeNotSupported))
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"p.json", "p.yaml", "p.YML"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, ExportParams(sampleParams(), path))
			got, err := ImportParams(path)
			require.NoError(t, err)
			assert.Equal(t, sampleParams().Cards(), got)
		})
	}
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ImportParams(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	txt := filepath.Join(dir, "p.txt")
	require.NoError(t, os.WriteFile(txt, []byte("{}"), 0o644))
	_, err = ImportParams(txt)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOption))

	err = ExportParams(sampleParams(), filepath.Join(dir, "p.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOption))
}
