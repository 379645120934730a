package imaging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/imageoi/internal/oifitstest"
	"github.com/matzehuels/imageoi/pkg/canvas"
	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/hdulist"
	"github.com/matzehuels/imageoi/pkg/header"
	"github.com/matzehuels/imageoi/pkg/wcs"
)

func newImage(t *testing.T, name string, n int, scale float64) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New(name, n, n, scale, nil)
	require.NoError(t, err)
	require.NoError(t, c.SetWCS(wcs.Options{CType: []string{"RA", "DEC"}}))
	return c
}

func tableNames(f *File) []string {
	var names []string
	for _, t := range f.DataTables {
		names = append(names, t.Name())
	}
	return names
}

func TestNew(t *testing.T) {
	f := New()
	assert.Zero(t, f.DataHeader.Len())
	assert.Empty(t, f.DataTables)
	assert.Nil(t, f.OutParam)
	assert.Nil(t, f.InitImg())
	assert.Nil(t, f.PriorImg())
	assert.False(t, f.InParam.Has(InitImgKey))
	assert.Equal(t, DefaultParams().Cards(), f.InParam.Cards())
}

func TestNewFromData(t *testing.T) {
	path := oifitstest.Write(t, t.TempDir())

	f, err := NewFromData(path)
	require.NoError(t, err)

	assert.Equal(t, oifitstest.TableNames, tableNames(f))
	assert.Equal(t, []string{"SIMPLE", "EXTEND", "ORIGIN", "TELESCOP", "INSTRUME", "DATE-OBS"}, f.DataHeader.Keys())
	assert.Equal(t, []any{"merged by oifits-merge"}, f.DataHeader.Values(header.KeyHistory))
	for _, key := range f.DataHeader.Keys() {
		assert.False(t, IsReserved(key), key)
	}

	// Tables are copies, not views of the source file.
	rows := oifitstest.ReadVis2(t, f.DataTables[2])
	require.Len(t, rows, 3)
	assert.Equal(t, 0.42, rows[1].Vis2)
}

func TestNewFromDataMissing(t *testing.T) {
	_, err := NewFromData(filepath.Join(t.TempDir(), "missing.oifits"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeIO))
}

func TestSetImages(t *testing.T) {
	f := New()
	f.SetInitImg(newImage(t, InitImgName, 8, 0.5))
	f.SetPriorImg(newImage(t, PriorImgName, 8, 0.5))

	v, _ := f.InParam.GetString(InitImgKey)
	assert.Equal(t, InitImgName, v)
	v, _ = f.InParam.GetString(PriorImgKey)
	assert.Equal(t, PriorImgName, v)
	assert.Equal(t, InitImgName, f.InitImg().Name())

	// Replacing the image updates the reference in place.
	f.SetInitImg(newImage(t, "OTHER", 8, 0.5))
	v, _ = f.InParam.GetString(InitImgKey)
	assert.Equal(t, "OTHER", v)
	assert.Len(t, f.InParam.Values(InitImgKey), 1)

	// Nil removes the image and leaves the reference undefined.
	f.SetPriorImg(nil)
	assert.Nil(t, f.PriorImg())
	got, ok := f.InParam.Get(PriorImgKey)
	assert.True(t, ok)
	assert.Nil(t, got)

	hdus, err := f.Sections()
	require.NoError(t, err)
	assert.Len(t, hdus, 2)
}

func TestSectionsOrder(t *testing.T) {
	f, err := NewFromData(oifitstest.Write(t, t.TempDir()))
	require.NoError(t, err)
	f.SetInitImg(newImage(t, InitImgName, 8, 0.5))
	f.SetPriorImg(newImage(t, PriorImgName, 8, 0.5))
	f.OutParam = header.New(header.Card{Key: LastImgKey, Value: InitImgName})

	hdus, err := f.Sections()
	require.NoError(t, err)

	var names []string
	for _, hdu := range hdus {
		h := hdulist.HeaderOf(hdu)
		name, ok := h.GetString("EXTNAME")
		if !ok {
			name, _ = h.GetString("HDUNAME")
		}
		names = append(names, name)
	}
	want := append([]string{InitImgName, PriorImgName}, oifitstest.TableNames...)
	want = append(want, InputParamName, OutputParamName)
	assert.Equal(t, want, names)

	// Default comments are applied on assembly.
	assert.Equal(t, "HDUNAME of prior image", f.InParam.Comment(PriorImgKey))
	assert.Equal(t, "Assumed total flux", f.InParam.Comment("FLUX"))
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFromData(oifitstest.Write(t, dir))
	require.NoError(t, err)

	initimg := newImage(t, InitImgName, 32, 0.25)
	require.NoError(t, initimg.AddGaussian(16, 16, 1, 5))
	prior := newImage(t, PriorImgName, 32, 0.25)
	require.NoError(t, prior.AddUniformDisk(15.5, 16.2, 1, 9))
	f.SetInitImg(initimg)
	f.SetPriorImg(prior)
	require.NoError(t, f.SetParam("MAXITER", 500))
	require.NoError(t, f.SetParam("USE_VIS", "AMP"))
	f.InParam.Add(header.KeyHistory, "prepared for test", "")
	f.OutParam = header.New(
		header.Card{Key: LastImgKey, Value: InitImgName},
		header.Card{Key: "NITER", Value: 42, Comment: "Iterations done"},
		header.Card{Key: "CONVERGE", Value: true},
	)

	path := filepath.Join(dir, "input.fits")
	require.NoError(t, f.WriteFile(path, false))

	got, err := Open(path)
	require.NoError(t, err)

	if diff := cmp.Diff(f.InParam.Cards(), got.InParam.Cards()); diff != "" {
		t.Errorf("input parameters mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(f.OutParam.Cards(), got.OutParam.Cards()); diff != "" {
		t.Errorf("output parameters mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, f.DataHeader.Keys(), got.DataHeader.Keys())
	assert.Equal(t, oifitstest.TableNames, tableNames(got))
	assert.Equal(t, oifitstest.ReadVis2(t, f.DataTables[2]), oifitstest.ReadVis2(t, got.DataTables[2]))

	require.NotNil(t, got.InitImg())
	require.NotNil(t, got.PriorImg())
	assert.Equal(t, initimg.Pixels(), got.InitImg().Pixels())
	assert.Equal(t, initimg.WCS(), got.InitImg().WCS())
	assert.Equal(t, prior.Pixels(), got.PriorImg().Pixels())
	assert.Equal(t, PriorImgName, got.PriorImg().Name())

	// Writing the file read back over itself is stable.
	require.NoError(t, got.WriteFile(path, true))
	again, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, got.InParam.Cards(), again.InParam.Cards())
	assert.Equal(t, got.DataHeader.Cards(), again.DataHeader.Cards())
}

func TestScenarioUniformDisk(t *testing.T) {
	c, err := canvas.New(InitImgName, 64, 64, 0.25, nil)
	require.NoError(t, err)
	require.NoError(t, c.AddUniformDisk(32, 32, 1.0, 11))
	assert.InDelta(t, 1.0, c.Sum(), 1e-2)

	f := New()
	f.SetInitImg(c)
	path := filepath.Join(t.TempDir(), "disk.fits")
	require.NoError(t, f.WriteFile(path, false))

	got, err := Open(path)
	require.NoError(t, err)
	require.NotNil(t, got.InitImg())
	assert.Equal(t, c.Pixels(), got.InitImg().Pixels())
	assert.Nil(t, got.PriorImg())
	assert.Nil(t, got.OutParam)
	assert.Empty(t, got.DataTables)
}

func TestWriteRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.fits")
	require.NoError(t, New().WriteFile(path, false))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	f := New()
	require.NoError(t, f.SetParam("MAXITER", 1))
	err = f.WriteFile(path, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileExists))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, f.WriteFile(path, true))
	got, err := Open(path)
	require.NoError(t, err)
	v, _ := got.InParam.GetInt("MAXITER")
	assert.Equal(t, 1, v)
}

func TestWriteConflictWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.fits")

	f := New()
	f.SetInitImg(newImage(t, InitImgName, 8, 0.5))
	f.DataHeader.Set("EXTEND", false)

	err := f.WriteFile(path, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConflict))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	var conflict *header.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "EXTEND", conflict.Key)
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	// An OIFITS file has no input parameters.
	_, err := Open(oifitstest.Write(t, dir))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	// A reference to a table is not an image.
	f := New()
	require.NoError(t, f.SetParam(InitImgKey, InputParamName))
	path := filepath.Join(dir, "bad.fits")
	require.NoError(t, f.WriteFile(path, false))
	_, err = Open(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeTypeNotSupported))

	// A dangling reference is tolerated.
	f = New()
	require.NoError(t, f.SetParam(PriorImgKey, "NO SUCH IMAGE"))
	path = filepath.Join(dir, "dangling.fits")
	require.NoError(t, f.WriteFile(path, false))
	got, err := Open(path)
	require.NoError(t, err)
	assert.Nil(t, got.PriorImg())
}

func TestOpenImageWithoutPixelScale(t *testing.T) {
	h := hdulist.PrimaryStructure(hdulist.BitpixFloat64, []int{4, 4})
	h.SetCard(header.Card{Key: "HDUNAME", Value: InitImgName})
	h.SetCard(header.Card{Key: "OBJECT", Value: "star"})
	primary, err := hdulist.NewPrimary(h, make([]float64, 16))
	require.NoError(t, err)
	in, err := hdulist.NewParamTable(InputParamName, header.New(header.Card{Key: InitImgKey, Value: InitImgName}))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "noscale.fits")
	_, err = hdulist.WriteFile(path, false, primary, in)
	require.NoError(t, err)

	f, err := Open(path)
	require.NoError(t, err)
	assert.Nil(t, f.InitImg())
	assert.Equal(t, InitImgName, mustString(t, f.InParam, InitImgKey))
	assert.True(t, f.DataHeader.Has("OBJECT"))

	_, err = LoadInputImage(path, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScale))
}

func mustString(t *testing.T, h *header.Header, key string) string {
	t.Helper()
	v, ok := h.GetString(key)
	require.True(t, ok, key)
	return v
}

func TestEncode(t *testing.T) {
	f := New()
	f.SetInitImg(newImage(t, InitImgName, 4, 1))

	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))
	assert.Zero(t, buf.Len()%2880)

	l, err := hdulist.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
}

func TestLoadImages(t *testing.T) {
	f := New()
	f.SetInitImg(newImage(t, InitImgName, 8, 0.5))
	require.NoError(t, f.InitImg().AddDirac(3, 4, 1))
	f.OutParam = header.New(header.Card{Key: LastImgKey, Value: InitImgName})
	path := filepath.Join(t.TempDir(), "output.fits")
	require.NoError(t, f.WriteFile(path, false))

	in, err := LoadInputImage(path, "")
	require.NoError(t, err)
	assert.Equal(t, f.InitImg().Pixels(), in.Pixels())

	out, err := LoadOutputImage(path, "")
	require.NoError(t, err)
	assert.Equal(t, in.Pixels(), out.Pixels())

	_, err = LoadInputImage(path, PriorImgKey)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	m, err := LoadPrimaryPixels(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.At(4, 3))
}

func TestString(t *testing.T) {
	f := New()
	f.OutParam = header.New(header.Card{Key: "NITER", Value: 7})

	got := f.String()
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	assert.Equal(t, "=== IMAGE-OI INPUT PARAM ===", lines[0])
	assert.Equal(t, "TARGET   = undefined", lines[1])
	assert.Equal(t, "USE_VIS2 = T", lines[5])
	assert.Equal(t, "MAXITER  = 200", lines[7])
	assert.Equal(t, "---", lines[13])
	assert.Equal(t, []string{"=== IMAGE-OI OUTPUT PARAM ===", "NITER    = 7", "---"}, lines[14:])
}
