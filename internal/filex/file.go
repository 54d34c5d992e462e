package filex

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotRegular = errors.New("not a regular file")
	ErrChanged    = errors.New("content changed since checksum")
)

// EnsureDir creates dir (and its parents) if needed and returns its
// absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// StatRegular returns the file info of path, failing with ErrNotRegular for
// directories and other non-regular files.
func StatRegular(path string) (os.FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	return fi, nil
}

// SHA256 streams r and returns the lowercase hex digest and the byte count.
func SHA256(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

type verifyingReader struct {
	r    io.Reader
	h    hash.Hash
	sum  string
	size int64
	n    int64
}

// NewVerifyingReader passes r through and fails with ErrChanged, instead of
// io.EOF, when the content read does not match sum and size.
func NewVerifyingReader(r io.Reader, sum string, size int64) io.Reader {
	return &verifyingReader{r: r, h: sha256.New(), sum: sum, size: size}
}

func (v *verifyingReader) Read(p []byte) (int, error) {
	n, err := v.r.Read(p)
	v.h.Write(p[:n])
	v.n += int64(n)
	if v.n > v.size {
		return n, ErrChanged
	}
	if errors.Is(err, io.EOF) && (v.n != v.size || hex.EncodeToString(v.h.Sum(nil)) != v.sum) {
		return n, ErrChanged
	}
	return n, err
}

// BaseName reduces name to its last element, rejecting names that resolve
// to nothing usable as a file name.
func BaseName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(filepath.FromSlash(name))
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return base, nil
}
