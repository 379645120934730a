package hdulist

import (
	"bytes"
	"fmt"
	"io"

	"github.com/astrogo/fitsio"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/header"
)

// BitpixFloat64 is the BITPIX of the images this package writes.
const BitpixFloat64 = -64

// cards returns every card of h. fitsio exposes no card count, so the
// walk stops at the first index Card rejects.
func cards(h *fitsio.Header) []fitsio.Card {
	var out []fitsio.Card
	for i := 0; ; i++ {
		c, ok := cardAt(h, i)
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

func cardAt(h *fitsio.Header, i int) (c fitsio.Card, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return *h.Card(i), true
}

func dropEnd(h *fitsio.Header) error {
	all := cards(h)
	kept := all[:0:0]
	for _, c := range all {
		if c.Name != "END" {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	nh, err := newFITSHeader(kept, h.Type(), h.Bitpix(), append([]int(nil), h.Axes()...))
	if err != nil {
		return err
	}
	*h = *nh
	return nil
}

// newFITSHeader wraps fitsio.NewHeader, which panics on duplicate or
// unsupported cards.
func newFITSHeader(cs []fitsio.Card, htype fitsio.HDUType, bitpix int, axes []int) (h *fitsio.Header, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeIO, "build header: %v", r)
		}
	}()
	return fitsio.NewHeader(cs, htype, bitpix, axes), nil
}

// HeaderOf converts the header of hdu. COMMENT, HISTORY and blank cards
// carry their text as the value.
func HeaderOf(hdu fitsio.HDU) *header.Header {
	h := &header.Header{}
	for _, c := range cards(hdu.Header()) {
		switch {
		case c.Name == "END":
		case header.IsAppendKey(c.Name):
			h.Add(c.Name, c.Comment, "")
		default:
			h.SetCard(header.Card{Key: c.Name, Value: c.Value, Comment: c.Comment})
		}
	}
	return h
}

// FITSCards converts h for the fitsio encoder. Cards with an undefined
// (nil) value are dropped: the encoder writes them without a value
// indicator and they would read back as blank cards.
func FITSCards(h *header.Header) []fitsio.Card {
	out := make([]fitsio.Card, 0, h.Len())
	for _, c := range h.Cards() {
		if header.IsAppendKey(c.Key) {
			text := ""
			if c.Value != nil {
				text = fmt.Sprint(c.Value)
			}
			out = append(out, fitsio.Card{Name: c.Key, Comment: text})
			continue
		}
		if c.Value == nil {
			continue
		}
		out = append(out, fitsio.Card{Name: c.Key, Value: c.Value, Comment: c.Comment})
	}
	return out
}

// PrimaryStructure returns the mandatory leading cards of a primary
// section holding an image with the given axes. Empty axes describe a
// section without data.
func PrimaryStructure(bitpix int, axes []int) *header.Header {
	h := header.New(
		header.Card{Key: "SIMPLE", Value: true, Comment: "conforms to FITS standard"},
		header.Card{Key: "BITPIX", Value: bitpix, Comment: "array data type"},
		header.Card{Key: "NAXIS", Value: len(axes), Comment: "number of array dimensions"},
	)
	for i, n := range axes {
		h.SetCard(header.Card{Key: fmt.Sprintf("NAXIS%d", i+1), Value: n})
	}
	h.SetCard(header.Card{Key: "EXTEND", Value: true})
	return h
}

// NewPrimary builds a primary section from h, which must start with the
// cards returned by PrimaryStructure. pixels are in FITS order (NAXIS1
// varies fastest) and are ignored for a section without axes.
func NewPrimary(h *header.Header, pixels []float64) (fitsio.Image, error) {
	bitpix, ok := h.GetInt("BITPIX")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "primary header lacks BITPIX")
	}
	naxis, _ := h.GetInt("NAXIS")
	axes := make([]int, naxis)
	for i := range axes {
		axes[i], _ = h.GetInt(fmt.Sprintf("NAXIS%d", i+1))
	}

	fh, err := newFITSHeader(FITSCards(h), fitsio.IMAGE_HDU, bitpix, axes)
	if err != nil {
		return nil, err
	}
	img, err := fitsio.NewPrimaryHDU(fh)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "build primary section")
	}
	if naxis == 0 {
		return img, nil
	}
	if err := writePixels(img, axes, pixels); err != nil {
		return nil, err
	}
	return img, nil
}

// NewImageExtension builds an IMAGE extension of naxis1 x naxis2 pixels
// followed by the cards of h, which must not repeat structural keys.
func NewImageExtension(h *header.Header, naxis1, naxis2 int, pixels []float64) (fitsio.Image, error) {
	axes := []int{naxis1, naxis2}
	img := fitsio.NewImage(BitpixFloat64, axes)
	extra := append([]fitsio.Card{
		{Name: "PCOUNT", Value: 0, Comment: "number of parameters"},
		{Name: "GCOUNT", Value: 1, Comment: "number of groups"},
	}, FITSCards(h)...)
	if err := img.Header().Append(extra...); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build image extension")
	}
	if err := writePixels(img, axes, pixels); err != nil {
		return nil, err
	}
	return img, nil
}

// NewParamTable builds an empty binary table named name whose header
// carries the cards of h.
func NewParamTable(name string, h *header.Header) (*fitsio.Table, error) {
	t, err := fitsio.NewTable(name, nil, fitsio.BINARY_TBL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "build table %s", name)
	}
	if err := t.Header().Append(FITSCards(h)...); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build table %s", name)
	}
	return t, nil
}

func writePixels(img fitsio.Image, axes []int, pixels []float64) error {
	n := 1
	for _, a := range axes {
		n *= a
	}
	if len(pixels) != n {
		return errors.New(errors.ErrCodeInvalidShape, "have %d pixels for axes %v", len(pixels), axes)
	}
	if err := img.Write(pixels); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write pixels")
	}
	return nil
}

// ReadPixels decodes the data of img as float64 in FITS order, applying
// BSCALE and BZERO. Axes beyond the second must have length 1.
func ReadPixels(img fitsio.Image) (pixels []float64, naxis1, naxis2 int, err error) {
	h := img.Header()
	axes := h.Axes()
	if len(axes) < 2 {
		return nil, 0, 0, errors.New(errors.ErrCodeTypeNotSupported, "image has %d axes, need 2", len(axes))
	}
	for _, a := range axes[2:] {
		if a != 1 {
			return nil, 0, 0, errors.New(errors.ErrCodeTypeNotSupported, "image axes %v are not two-dimensional", axes)
		}
	}
	naxis1, naxis2 = axes[0], axes[1]
	n := naxis1 * naxis2

	pixels = make([]float64, n)
	switch h.Bitpix() {
	case 8:
		raw := make([]byte, n)
		err = img.Read(&raw)
		for i, v := range raw {
			pixels[i] = float64(v)
		}
	case 16:
		raw := make([]int16, n)
		err = img.Read(&raw)
		for i, v := range raw {
			pixels[i] = float64(v)
		}
	case 32:
		raw := make([]int32, n)
		err = img.Read(&raw)
		for i, v := range raw {
			pixels[i] = float64(v)
		}
	case 64:
		raw := make([]int64, n)
		err = img.Read(&raw)
		for i, v := range raw {
			pixels[i] = float64(v)
		}
	case -32:
		raw := make([]float32, n)
		err = img.Read(&raw)
		for i, v := range raw {
			pixels[i] = float64(v)
		}
	case -64:
		err = img.Read(&pixels)
	default:
		return nil, 0, 0, errors.New(errors.ErrCodeTypeNotSupported, "unsupported BITPIX %d", h.Bitpix())
	}
	if err != nil {
		return nil, 0, 0, errors.Wrap(errors.ErrCodeIO, err, "read pixels")
	}

	scale, zero := 1.0, 0.0
	if c := h.Get("BSCALE"); c != nil {
		if v, ok := number(c.Value); ok {
			scale = v
		}
	}
	if c := h.Get("BZERO"); c != nil {
		if v, ok := number(c.Value); ok {
			zero = v
		}
	}
	if scale != 1 || zero != 0 {
		for i := range pixels {
			pixels[i] = pixels[i]*scale + zero
		}
	}
	return pixels, naxis1, naxis2, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Encode writes hdus to w as one FITS stream. The first section must be
// an image.
func Encode(w io.Writer, hdus ...fitsio.HDU) error {
	f, err := fitsio.Create(w)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create fits stream")
	}
	defer f.Close()
	for i, hdu := range hdus {
		if err := f.Write(hdu); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write section %d", i)
		}
	}
	return nil
}

// CloneTable returns a deep copy of t made by a round trip through the
// codec. t itself is not modified.
func CloneTable(t *fitsio.Table) (*fitsio.Table, error) {
	placeholder, err := NewPrimary(PrimaryStructure(8, nil), nil)
	if err != nil {
		return nil, err
	}
	cp := *t
	var buf bytes.Buffer
	if err := Encode(&buf, placeholder, &cp); err != nil {
		return nil, err
	}
	l, err := Decode(&buf)
	if err != nil {
		return nil, err
	}
	clone, ok := l.file.HDU(1).(*fitsio.Table)
	if !ok {
		return nil, errors.New(errors.ErrCodeTypeNotSupported, "section %q is not a table", t.Name())
	}
	return clone, nil
}
