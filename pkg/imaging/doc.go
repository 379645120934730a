// Package imaging reads and writes input files for optical interferometric
// image reconstruction.
//
// # Overview
//
// An imaging file is a FITS file that bundles everything a reconstruction
// program needs:
//
//  1. A primary section holding the initial image, or an empty primary
//     when there is none. Its header also carries the descriptive cards
//     copied from the OIFITS data file.
//  2. An optional image extension holding the prior image.
//  3. The OI_ data tables of the OIFITS file, in their original order.
//  4. A binary table named "IMAGE-OI INPUT PARAM" whose header holds the
//     input parameters.
//  5. An optional "IMAGE-OI OUTPUT PARAM" table written by the
//     reconstruction program.
//
// Images are located through the INIT_IMG and RGL_PRIO parameters, which
// hold the HDUNAME of the referenced section.
//
// # Usage
//
//	f, err := imaging.NewFromData("data.oifits")
//	if err != nil {
//	    return err
//	}
//	img, _ := canvas.New(imaging.InitImgName, 64, 64, 0.25, nil)
//	img.AddUniformDisk(32, 32, 1, 11)
//	f.SetInitImg(img)
//	f.SetParam("MAXITER", 500)
//	err = f.WriteFile("input.fits", false)
//
// Writing assembles every section in memory before the target file is
// touched, so a metadata conflict or refused overwrite leaves no partial
// file behind.
package imaging
