package hdulist

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/astrogo/fitsio"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/observability"
)

// WriteFile encodes hdus and writes them to path, returning the number
// of bytes written. The whole stream is encoded in memory first, so an
// encoding failure never touches the filesystem.
//
// Without overwrite an existing path is refused with ErrCodeFileExists.
// With overwrite the file is replaced by renaming a temporary file, so
// readers never see a partial file.
func WriteFile(path string, overwrite bool, hdus ...fitsio.HDU) (n int, err error) {
	start := time.Now()
	defer func() { observability.File().OnWrite(path, len(hdus), n, time.Since(start), err) }()

	var buf bytes.Buffer
	if err := Encode(&buf, hdus...); err != nil {
		return 0, err
	}
	if overwrite {
		return replaceFile(path, buf.Bytes())
	}
	return createFile(path, buf.Bytes())
}

func createFile(path string, data []byte) (int, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if stderrors.Is(err, fs.ErrExist) {
			return 0, errors.Wrap(errors.ErrCodeFileExists, err, "%s already exists", path)
		}
		return 0, errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	n, err := f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return n, nil
}

func replaceFile(path string, data []byte) (int, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "create temporary file for %s", path)
	}
	name := tmp.Name()

	n, err := tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, 0o644)
	}
	if err == nil {
		err = os.Rename(name, path)
	}
	if err != nil {
		os.Remove(name)
		return 0, errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return n, nil
}
