package hdulist

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/astrogo/fitsio"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/observability"
)

// List is a read-only view of the sections of a FITS file.
type List struct {
	file *fitsio.File
}

// New wraps f. Headers of f are rebuilt without their END card.
func New(f *fitsio.File) (*List, error) {
	for _, hdu := range f.HDUs() {
		if err := dropEnd(hdu.Header()); err != nil {
			return nil, err
		}
	}
	return &List{file: f}, nil
}

// Decode reads a complete FITS stream from r.
func Decode(r io.Reader) (*List, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "decode fits")
	}
	return New(f)
}

// Open reads the FITS file at path. The file handle is released before
// Open returns; all sections are held in memory.
func Open(path string) (l *List, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if l != nil {
			n = l.Len()
		}
		observability.File().OnRead(path, n, time.Since(start), err)
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	l, err = Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return l, nil
}

// Close releases the wrapped file.
func (l *List) Close() error {
	return l.file.Close()
}

// File returns the wrapped file.
func (l *List) File() *fitsio.File {
	return l.file
}

// Len returns the number of sections.
func (l *List) Len() int {
	return len(l.file.HDUs())
}

// HDUs returns the sections in file order.
func (l *List) HDUs() []fitsio.HDU {
	return l.file.HDUs()
}

type indexKind int

const (
	byPosition indexKind = iota
	byName
	byNameVersion
)

// Index selects a section. Build one with Pos, Name or NameVer.
type Index struct {
	kind    indexKind
	pos     int
	name    string
	version int
}

// Pos selects the section at position i, counting the primary as 0.
func Pos(i int) Index {
	return Index{kind: byPosition, pos: i}
}

// Name selects a section by EXTNAME or HDUNAME.
func Name(name string) Index {
	return Index{kind: byName, name: name}
}

// NameVer selects a section by EXTNAME and EXTVER, or HDUNAME and HDUVER.
func NameVer(name string, version int) Index {
	return Index{kind: byNameVersion, name: name, version: version}
}

func (ix Index) String() string {
	switch ix.kind {
	case byPosition:
		return fmt.Sprintf("#%d", ix.pos)
	case byNameVersion:
		return fmt.Sprintf("(%q, %d)", ix.name, ix.version)
	}
	return fmt.Sprintf("%q", ix.name)
}

// Lookup returns the section selected by ix.
func (l *List) Lookup(ix Index) (fitsio.HDU, error) {
	i, err := l.Position(ix)
	if err != nil {
		return nil, err
	}
	return l.file.HDU(i), nil
}

// Position returns the position of the section selected by ix.
func (l *List) Position(ix Index) (int, error) {
	hdus := l.file.HDUs()
	if ix.kind == byPosition {
		if ix.pos < 0 || ix.pos >= len(hdus) {
			return -1, errors.New(errors.ErrCodeIndexOutOfRange,
				"section %d out of range (file has %d)", ix.pos, len(hdus))
		}
		return ix.pos, nil
	}

	for i, hdu := range hdus {
		if l.matchExtName(i, hdu, ix) {
			return i, nil
		}
	}

	found := -1
	for i, hdu := range hdus {
		h := hdu.Header()
		name, ok := stringValue(h, "HDUNAME")
		if !ok || name != ix.name {
			continue
		}
		if ix.kind == byName {
			return i, nil
		}
		if intValue(h, "HDUVER", 1) != ix.version {
			continue
		}
		if found >= 0 {
			return -1, errors.New(errors.ErrCodeNotFound,
				"section %s is ambiguous (positions %d and %d)", ix, found, i)
		}
		found = i
	}
	if found < 0 {
		return -1, errors.New(errors.ErrCodeNotFound, "section %s not found", ix)
	}
	return found, nil
}

func (l *List) matchExtName(i int, hdu fitsio.HDU, ix Index) bool {
	h := hdu.Header()
	name, ok := stringValue(h, "EXTNAME")
	if i == 0 && strings.EqualFold(ix.name, "PRIMARY") {
		name, ok = "PRIMARY", true
	}
	if !ok || !strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(ix.name)) {
		return false
	}
	return ix.kind == byName || intValue(h, "EXTVER", 1) == ix.version
}

// IsImage reports whether hdu holds an image payload.
func IsImage(hdu fitsio.HDU) bool {
	_, ok := hdu.(fitsio.Image)
	return ok && hdu.Type() == fitsio.IMAGE_HDU
}

func stringValue(h *fitsio.Header, key string) (string, bool) {
	c := h.Get(key)
	if c == nil {
		return "", false
	}
	s, ok := c.Value.(string)
	return s, ok
}

func intValue(h *fitsio.Header, key string, def int) int {
	c := h.Get(key)
	if c == nil {
		return def
	}
	switch v := c.Value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}
