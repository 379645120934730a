package imaging

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/matzehuels/imageoi/pkg/canvas"
	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/hdulist"
	"github.com/matzehuels/imageoi/pkg/header"
)

// File is an image reconstruction input or output file.
//
// Data tables are opaque copies of the OIFITS tables of a source file
// and keep their original order. The initial and prior images are owned
// by the File; callers should not modify a canvas after assigning it.
type File struct {
	// DataHeader holds the descriptive cards of the source primary header.
	DataHeader *header.Header
	// DataTables holds copies of the OI_ tables of the source file.
	DataTables []*fitsio.Table
	// InParam holds the input parameters.
	InParam *header.Header
	// OutParam holds the output parameters, or nil when absent.
	OutParam *header.Header

	initImg  *canvas.Canvas
	priorImg *canvas.Canvas
}

// New returns a file holding the default input parameters and no data.
func New() *File {
	return &File{
		DataHeader: &header.Header{},
		InParam:    DefaultParams(),
	}
}

// NewFromData returns a file with default parameters whose descriptive
// header and data tables are copied from the OIFITS file at path.
func NewFromData(path string) (*File, error) {
	l, err := hdulist.Open(path)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	f := New()
	if err := f.copyData(l); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) copyData(l *hdulist.List) error {
	hdus := l.HDUs()
	if len(hdus) == 0 {
		return nil
	}
	f.DataHeader = hdulist.HeaderOf(hdus[0]).Filter(func(c header.Card) bool {
		return !IsReserved(c.Key)
	})

	for _, hdu := range hdus[1:] {
		t, ok := hdu.(*fitsio.Table)
		if !ok || !strings.HasPrefix(hdu.Name(), DataPrefix) {
			continue
		}
		clone, err := hdulist.CloneTable(t)
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "copy table %s", hdu.Name())
		}
		f.DataTables = append(f.DataTables, clone)
	}
	return nil
}

// Open reads an imaging file written by WriteFile or by a reconstruction
// program. The input parameters are required; output parameters and the
// initial and prior images are optional. An image lacking CDELT1 or
// CDELT2 is treated as absent.
func Open(path string) (*File, error) {
	l, err := hdulist.Open(path)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	f := New()
	if err := f.copyData(l); err != nil {
		return nil, err
	}

	in, err := params(l, InputParamName)
	if err != nil {
		return nil, err
	}
	f.InParam = restoreUndefined(in)

	out, err := params(l, OutputParamName)
	switch {
	case err == nil:
		f.OutParam = out
	case !errors.Is(err, errors.ErrCodeNotFound):
		return nil, err
	}

	if f.initImg, err = optionalImage(l, f.InParam, InitImgKey); err != nil {
		return nil, err
	}
	if f.priorImg, err = optionalImage(l, f.InParam, PriorImgKey); err != nil {
		return nil, err
	}

	// The primary header carries the coordinate cards of the initial
	// image; they are regenerated from the canvas on write.
	if f.initImg != nil {
		for _, c := range f.initImg.WCS().Cards() {
			f.DataHeader.Delete(c.Key)
		}
	}
	return f, nil
}

// params reads the parameter section named name without its structural
// cards.
func params(l *hdulist.List, name string) (*header.Header, error) {
	hdu, err := l.Lookup(hdulist.Name(name))
	if err != nil {
		return nil, err
	}
	return hdulist.HeaderOf(hdu).Filter(func(c header.Card) bool {
		return !IsReserved(c.Key)
	}), nil
}

// referencedImage loads the image whose HDUNAME is the value of key in
// params. A missing key or section yields ErrCodeNotFound.
func referencedImage(l *hdulist.List, params *header.Header, key string) (*canvas.Canvas, error) {
	hdu, err := referencedSection(l, params, key)
	if err != nil {
		return nil, err
	}
	return canvas.FromHDU(hdu)
}

func referencedSection(l *hdulist.List, params *header.Header, key string) (fitsio.HDU, error) {
	name, ok := params.GetString(key)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "parameter %s not set", key)
	}
	return l.Lookup(hdulist.Name(name))
}

// optionalImage is referencedImage for Open: a missing key or section,
// or an image without a pixel scale, leaves the image absent.
func optionalImage(l *hdulist.List, params *header.Header, key string) (*canvas.Canvas, error) {
	hdu, err := referencedSection(l, params, key)
	switch {
	case errors.Is(err, errors.ErrCodeNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	h := hdulist.HeaderOf(hdu)
	if hdulist.IsImage(hdu) && !(h.Has("CDELT1") && h.Has("CDELT2")) {
		return nil, nil
	}
	return canvas.FromHDU(hdu)
}

// InitImg returns the initial image, or nil.
func (f *File) InitImg() *canvas.Canvas { return f.initImg }

// SetInitImg stores c as the initial image and records its name in the
// INIT_IMG parameter. Both effects happen together. A nil c removes the
// image and leaves INIT_IMG undefined.
func (f *File) SetInitImg(c *canvas.Canvas) {
	f.initImg = c
	if c == nil {
		f.InParam.Set(InitImgKey, nil)
		return
	}
	f.InParam.SetCard(header.Card{Key: InitImgKey, Value: c.Name(), Comment: f.InParam.Comment(InitImgKey)})
}

// PriorImg returns the prior image, or nil.
func (f *File) PriorImg() *canvas.Canvas { return f.priorImg }

// SetPriorImg stores c as the prior image and records its name in the
// RGL_PRIO parameter. Both effects happen together. A nil c removes the
// image and leaves RGL_PRIO undefined.
func (f *File) SetPriorImg(c *canvas.Canvas) {
	f.priorImg = c
	if c == nil {
		f.InParam.Set(PriorImgKey, nil)
		return
	}
	f.InParam.SetCard(header.Card{Key: PriorImgKey, Value: c.Name(), Comment: f.InParam.Comment(PriorImgKey)})
}

// SetParam sets an input parameter. Reserved keywords are refused and
// values of known parameters are checked against their type; integers
// are accepted for float parameters. A nil value leaves the parameter
// undefined, and undefined parameters are not written.
func (f *File) SetParam(key string, value any) error {
	v, err := checkParam(key, value)
	if err != nil {
		return err
	}
	f.InParam.Set(key, v)
	return nil
}

// Sections assembles the sections of the file in write order: the
// initial image or an empty primary, the prior image, the data tables,
// the input parameters and the output parameters. The descriptive
// header is merged into the primary header; a conflict aborts assembly.
// Standard comments are applied to input parameters lacking one.
func (f *File) Sections() ([]fitsio.HDU, error) {
	applyComments(f.InParam)

	var (
		primary fitsio.Image
		err     error
	)
	if f.initImg != nil {
		primary, err = f.initImg.PrimaryHDUWith(f.DataHeader)
	} else {
		var h *header.Header
		h, err = header.Merge(hdulist.PrimaryStructure(8, nil), f.DataHeader)
		if err == nil {
			primary, err = hdulist.NewPrimary(h, nil)
		}
	}
	if err != nil {
		return nil, err
	}

	hdus := []fitsio.HDU{primary}
	if f.priorImg != nil {
		img, err := f.priorImg.ImageHDU()
		if err != nil {
			return nil, err
		}
		hdus = append(hdus, img)
	}
	for _, t := range f.DataTables {
		cp := *t
		hdus = append(hdus, &cp)
	}

	in, err := hdulist.NewParamTable(InputParamName, persisted(f.InParam))
	if err != nil {
		return nil, err
	}
	hdus = append(hdus, in)
	if f.OutParam != nil {
		out, err := hdulist.NewParamTable(OutputParamName, persisted(f.OutParam))
		if err != nil {
			return nil, err
		}
		hdus = append(hdus, out)
	}
	return hdus, nil
}

// Encode writes the file as a FITS stream to w.
func (f *File) Encode(w io.Writer) error {
	hdus, err := f.Sections()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := hdulist.Encode(&buf, hdus...); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// WriteFile writes the file to path. An existing file is replaced only
// when overwrite is set. Nothing is written when assembly fails.
func (f *File) WriteFile(path string, overwrite bool) error {
	hdus, err := f.Sections()
	if err != nil {
		return err
	}
	_, err = hdulist.WriteFile(path, overwrite, hdus...)
	return err
}

func (f *File) String() string {
	var b strings.Builder
	writeParams(&b, InputParamName, f.InParam)
	if f.OutParam != nil {
		writeParams(&b, OutputParamName, f.OutParam)
	}
	return b.String()
}

func writeParams(b *strings.Builder, name string, h *header.Header) {
	fmt.Fprintf(b, "=== %s ===\n", name)
	for _, key := range h.Keys() {
		if IsReserved(key) {
			continue
		}
		v, _ := h.Get(key)
		fmt.Fprintf(b, "%-8s = %s\n", key, FormatValue(v))
	}
	b.WriteString("---\n")
}
