// Package hdulist wraps a decoded FITS file and resolves its sections.
//
// # Lookup
//
// A [List] answers the usual FITS lookups, by position or by EXTNAME
// with an optional EXTVER, and adds a second naming scheme based on the
// HDUNAME and HDUVER keywords used by image reconstruction files:
//
//	l, err := hdulist.Open("input.fits")
//	hdu, err := l.Lookup(hdulist.Name("IMAGE-OI INPUT PARAM"))
//	img, err := l.Lookup(hdulist.NameVer("IMAGE-OI INITIAL IMAGE", 1))
//
// Names are first matched against EXTNAME, case-insensitively, and the
// first matching section wins. The primary section also answers to
// "PRIMARY". When no EXTNAME matches, every section's HDUNAME is compared
// exactly. A name and version pair must identify a single section.
//
// The List never modifies the wrapped *fitsio.File beyond dropping the
// END card that the decoder keeps in each header.
//
// # Codec Bridge
//
// The package also converts between [header.Header] and fitsio cards,
// decodes image pixels of any BITPIX into float64 and builds the image
// sections written by the imaging package.
package hdulist
