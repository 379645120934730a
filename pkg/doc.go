// Package pkg provides the core libraries for imageoi.
//
// # Overview
//
// imageoi prepares the input files of optical interferometric image
// reconstruction programs. The pkg directory is organized into:
//
//  1. [header] - Ordered FITS header cards and metadata merging
//  2. [wcs] - The world coordinate model of an image
//  3. [canvas] - Square-pixel images and the model components drawn on them
//  4. [hdulist] - Named access to the sections of a FITS file, atomic writes
//  5. [imaging] - Reconstruction input and output files
//  6. [model] - Centred model images used as initial or prior images
//  7. [io] - JSON and YAML exchange of parameter sets
//
// Supporting packages are [errors] for coded errors, [observability] for
// event hooks and [buildinfo] for version metadata.
//
// # Architecture
//
// The typical data flow when creating an input file:
//
//	OIFITS data file
//	       ↓
//	hdulist.Open ──→ imaging.NewFromData (copy OI_ tables + descriptive header)
//	                        ↓
//	model.NewCanvas ──→ File.SetInitImg
//	                        ↓
//	                 File.WriteFile (merge headers, encode, atomic write)
//
// [header]: github.com/matzehuels/imageoi/pkg/header
// [wcs]: github.com/matzehuels/imageoi/pkg/wcs
// [canvas]: github.com/matzehuels/imageoi/pkg/canvas
// [hdulist]: github.com/matzehuels/imageoi/pkg/hdulist
// [imaging]: github.com/matzehuels/imageoi/pkg/imaging
// [model]: github.com/matzehuels/imageoi/pkg/model
// [io]: github.com/matzehuels/imageoi/pkg/io
// [errors]: github.com/matzehuels/imageoi/pkg/errors
// [observability]: github.com/matzehuels/imageoi/pkg/observability
// [buildinfo]: github.com/matzehuels/imageoi/pkg/buildinfo
package pkg
