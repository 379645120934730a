// Package wcs holds the world coordinate model of a two-axis image.
//
// The model keeps square pixels: both CDELT values are always equal.
// Pixel scales are handled in milliarcseconds at the API and stored in
// degrees, which is what the CDELT keywords carry on disk.
package wcs

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/header"
)

// MasToDeg converts milliarcseconds to degrees.
const MasToDeg = 1.0 / 3600 / 1000

// WCS is the coordinate model of a two-axis image. Index 0 describes
// axis 1 (NAXIS1, the fast axis).
type WCS struct {
	CType [2]string
	CUnit [2]string
	CRPix [2]float64
	CRVal [2]float64
	CDelt [2]float64
}

// New returns a model with square pixels of pixelScale milliarcseconds.
func New(pixelScale float64) WCS {
	d := pixelScale * MasToDeg
	return WCS{CDelt: [2]float64{d, d}}
}

// PixelScale returns the pixel size in milliarcseconds.
func (w WCS) PixelScale() float64 {
	return w.CDelt[0] / MasToDeg
}

// IsSquare reports whether both axes share one scale.
func (w WCS) IsSquare() bool {
	return w.CDelt[0] == w.CDelt[1]
}

// Options lists the coordinate attributes that may be set after
// construction. An empty field leaves the attribute unchanged; any
// other field must have exactly two elements. CDelt is in degrees.
type Options struct {
	CType []string  `mapstructure:"ctype" json:"ctype,omitempty" yaml:"ctype,omitempty"`
	CRPix []float64 `mapstructure:"crpix" json:"crpix,omitempty" yaml:"crpix,omitempty"`
	CRVal []float64 `mapstructure:"crval" json:"crval,omitempty" yaml:"crval,omitempty"`
	CUnit []string  `mapstructure:"cunit" json:"cunit,omitempty" yaml:"cunit,omitempty"`
	CDelt []float64 `mapstructure:"cdelt" json:"cdelt,omitempty" yaml:"cdelt,omitempty"`
}

// Apply sets the attributes present in o. The model is left unchanged
// when o is invalid.
func (w *WCS) Apply(o Options) error {
	for _, f := range []struct {
		name string
		n    int
	}{
		{"ctype", len(o.CType)}, {"crpix", len(o.CRPix)}, {"crval", len(o.CRVal)},
		{"cunit", len(o.CUnit)}, {"cdelt", len(o.CDelt)},
	} {
		if f.n != 0 && f.n != 2 {
			return errors.New(errors.ErrCodeInvalidOption, "%s needs 2 values, got %d", f.name, f.n)
		}
	}
	if len(o.CDelt) == 2 {
		if o.CDelt[0] != o.CDelt[1] {
			return errors.New(errors.ErrCodeInvalidScale, "pixels must be square, got cdelt %v", o.CDelt)
		}
		if o.CDelt[0] == 0 {
			return errors.New(errors.ErrCodeInvalidScale, "cdelt cannot be zero")
		}
	}

	if len(o.CType) == 2 {
		w.CType = [2]string{o.CType[0], o.CType[1]}
	}
	if len(o.CRPix) == 2 {
		w.CRPix = [2]float64{o.CRPix[0], o.CRPix[1]}
	}
	if len(o.CRVal) == 2 {
		w.CRVal = [2]float64{o.CRVal[0], o.CRVal[1]}
	}
	if len(o.CUnit) == 2 {
		w.CUnit = [2]string{o.CUnit[0], o.CUnit[1]}
	}
	if len(o.CDelt) == 2 {
		w.CDelt = [2]float64{o.CDelt[0], o.CDelt[1]}
	}
	return nil
}

// DecodeOptions converts a loosely typed record, as read from flags or a
// config file, into Options. Comma separated strings become lists and
// numeric strings become numbers. Unknown keys are rejected.
func DecodeOptions(raw map[string]any) (Options, error) {
	var o Options
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       splitList,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &o,
	})
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidOption, err, "coordinate options")
	}
	if err := dec.Decode(raw); err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidOption, err, "coordinate options")
	}
	return o, nil
}

func splitList(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	if s == "" {
		return []string{}, nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

// ParseOptions turns "key=v1,v2" assignments into a record for
// DecodeOptions. Later assignments of a key replace earlier ones.
func ParseOptions(assignments []string) (map[string]any, error) {
	raw := make(map[string]any, len(assignments))
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, errors.New(errors.ErrCodeInvalidOption, "expected key=value, got %q", a)
		}
		raw[key] = strings.TrimSpace(value)
	}
	return raw, nil
}

// Cards returns the header cards describing w, in the order astronomy
// tools conventionally write them.
func (w WCS) Cards() []header.Card {
	cards := []header.Card{
		{Key: "WCSAXES", Value: 2, Comment: "Number of coordinate axes"},
		{Key: "CRPIX1", Value: w.CRPix[0], Comment: "Pixel coordinate of reference point"},
		{Key: "CRPIX2", Value: w.CRPix[1], Comment: "Pixel coordinate of reference point"},
		{Key: "CDELT1", Value: w.CDelt[0], Comment: "Coordinate increment at reference point"},
		{Key: "CDELT2", Value: w.CDelt[1], Comment: "Coordinate increment at reference point"},
	}
	for i, u := range w.CUnit {
		if u != "" {
			cards = append(cards, header.Card{Key: fmt.Sprintf("CUNIT%d", i+1), Value: u, Comment: "Units of coordinate increment and value"})
		}
	}
	for i, t := range w.CType {
		if t != "" {
			cards = append(cards, header.Card{Key: fmt.Sprintf("CTYPE%d", i+1), Value: t})
		}
	}
	cards = append(cards,
		header.Card{Key: "CRVAL1", Value: w.CRVal[0], Comment: "Coordinate value at reference point"},
		header.Card{Key: "CRVAL2", Value: w.CRVal[1], Comment: "Coordinate value at reference point"},
	)
	return cards
}

// FromHeader reads the coordinate model from h. CDELT1 and CDELT2 are
// required and must be equal.
func FromHeader(h *header.Header) (WCS, error) {
	var w WCS
	for i := 0; i < 2; i++ {
		n := i + 1
		d, ok := h.GetFloat(fmt.Sprintf("CDELT%d", n))
		if !ok {
			return WCS{}, errors.New(errors.ErrCodeInvalidScale, "CDELT%d missing, pixel scale unknown", n)
		}
		w.CDelt[i] = d
		w.CRPix[i], _ = h.GetFloat(fmt.Sprintf("CRPIX%d", n))
		w.CRVal[i], _ = h.GetFloat(fmt.Sprintf("CRVAL%d", n))
		w.CType[i], _ = h.GetString(fmt.Sprintf("CTYPE%d", n))
		w.CUnit[i], _ = h.GetString(fmt.Sprintf("CUNIT%d", n))
	}
	if !w.IsSquare() {
		return WCS{}, errors.New(errors.ErrCodeInvalidScale,
			"image pixels are not square (CDELT1=%g, CDELT2=%g)", w.CDelt[0], w.CDelt[1])
	}
	if w.CDelt[0] == 0 {
		return WCS{}, errors.New(errors.ErrCodeInvalidScale, "CDELT1 cannot be zero")
	}
	return w, nil
}
