package imaging

import (
	"github.com/astrogo/fitsio"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/imageoi/pkg/canvas"
	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/hdulist"
)

// LoadInputImage reads the image named by parameter key of the input
// parameters of the file at path. An empty key means INIT_IMG.
func LoadInputImage(path, key string) (*canvas.Canvas, error) {
	if key == "" {
		key = InitImgKey
	}
	return loadImage(path, InputParamName, key)
}

// LoadOutputImage reads the image named by parameter key of the output
// parameters of the file at path. An empty key means LAST_IMG.
func LoadOutputImage(path, key string) (*canvas.Canvas, error) {
	if key == "" {
		key = LastImgKey
	}
	return loadImage(path, OutputParamName, key)
}

func loadImage(path, section, key string) (*canvas.Canvas, error) {
	l, err := hdulist.Open(path)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	p, err := params(l, section)
	if err != nil {
		return nil, err
	}
	return referencedImage(l, p, key)
}

// LoadPrimaryPixels reads the pixels of the primary image of the file
// at path as a matrix of NAXIS2 rows. Coordinate cards are ignored.
func LoadPrimaryPixels(path string) (*mat.Dense, error) {
	l, err := hdulist.Open(path)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	hdu, err := l.Lookup(hdulist.Pos(0))
	if err != nil {
		return nil, err
	}
	img, ok := hdu.(fitsio.Image)
	if !ok {
		return nil, errors.New(errors.ErrCodeTypeNotSupported, "primary section of %s is not an image", path)
	}
	pixels, naxis1, naxis2, err := hdulist.ReadPixels(img)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateDims(naxis1, naxis2); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTypeNotSupported, err, "primary image of %s", path)
	}
	return mat.NewDense(naxis2, naxis1, pixels), nil
}
