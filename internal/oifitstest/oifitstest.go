// Package oifitstest writes small OIFITS files for tests.
package oifitstest

import (
	"path/filepath"
	"testing"

	"github.com/astrogo/fitsio"

	"github.com/matzehuels/imageoi/pkg/hdulist"
	"github.com/matzehuels/imageoi/pkg/header"
)

// TableNames lists the OI_ tables written by Write, in file order.
var TableNames = []string{"OI_TARGET", "OI_WAVELENGTH", "OI_VIS2"}

// Target is a row of the OI_TARGET table.
type Target struct {
	ID   int16   `fits:"TARGET_ID"`
	Name string  `fits:"TARGET"`
	RA   float64 `fits:"RAEP0"`
	Dec  float64 `fits:"DECEP0"`
}

// Wavelength is a row of the OI_WAVELENGTH table.
type Wavelength struct {
	Wave float32 `fits:"EFF_WAVE"`
	Band float32 `fits:"EFF_BAND"`
}

// Vis2 is a row of the OI_VIS2 table.
type Vis2 struct {
	TargetID int16   `fits:"TARGET_ID"`
	Vis2     float64 `fits:"VIS2DATA"`
	Err      float64 `fits:"VIS2ERR"`
}

// PrimaryCards are the descriptive cards of the primary header.
var PrimaryCards = []header.Card{
	{Key: "ORIGIN", Value: "CHARA", Comment: "Institution"},
	{Key: "TELESCOP", Value: "CHARA Array"},
	{Key: "INSTRUME", Value: "MIRC"},
	{Key: "DATE-OBS", Value: "2024-06-01"},
	{Key: header.KeyHistory, Value: "merged by oifits-merge"},
}

// Write writes an OIFITS file to dir and returns its path. Besides the
// OI_ tables it holds a table named CALIB that is not interferometric
// data.
func Write(tb testing.TB, dir string) string {
	tb.Helper()

	h := hdulist.PrimaryStructure(8, nil)
	for _, c := range PrimaryCards {
		h.SetCard(c)
	}
	primary, err := hdulist.NewPrimary(h, nil)
	if err != nil {
		tb.Fatalf("primary: %v", err)
	}

	targets := newTable(tb, "OI_TARGET", Target{},
		&Target{ID: 1, Name: "alf Ori", RA: 88.79, Dec: 7.41},
		&Target{ID: 2, Name: "HD 1234", RA: 3.5, Dec: -12.25},
	)
	calib := newTable(tb, "CALIB", Wavelength{}, &Wavelength{Wave: 1, Band: 1})
	waves := newTable(tb, "OI_WAVELENGTH", Wavelength{},
		&Wavelength{Wave: 1.5e-6, Band: 5e-8},
		&Wavelength{Wave: 1.6e-6, Band: 5e-8},
	)
	vis2 := newTable(tb, "OI_VIS2", Vis2{},
		&Vis2{TargetID: 1, Vis2: 0.81, Err: 0.02},
		&Vis2{TargetID: 1, Vis2: 0.42, Err: 0.03},
		&Vis2{TargetID: 2, Vis2: 0.97, Err: 0.01},
	)

	path := filepath.Join(dir, "data.oifits")
	if _, err := hdulist.WriteFile(path, false, primary, targets, calib, waves, vis2); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

func newTable(tb testing.TB, name string, schema any, rows ...any) *fitsio.Table {
	tb.Helper()
	t, err := fitsio.NewTableFrom(name, schema, fitsio.BINARY_TBL)
	if err != nil {
		tb.Fatalf("table %s: %v", name, err)
	}
	for _, r := range rows {
		if err := t.Write(r); err != nil {
			tb.Fatalf("table %s: %v", name, err)
		}
	}
	return t
}

// ReadVis2 returns the rows of an OI_VIS2 table.
func ReadVis2(tb testing.TB, t *fitsio.Table) []Vis2 {
	tb.Helper()
	rows, err := t.Read(0, t.NumRows())
	if err != nil {
		tb.Fatalf("read %s: %v", t.Name(), err)
	}
	defer rows.Close()
	var out []Vis2
	for rows.Next() {
		var r Vis2
		if err := rows.Scan(&r); err != nil {
			tb.Fatalf("scan %s: %v", t.Name(), err)
		}
		out = append(out, r)
	}
	return out
}
