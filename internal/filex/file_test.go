package filex

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_CreatesRelativeToCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir("downloads")
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(tmp, "downloads"))
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, want, gotResolved)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureDir_NestedAndIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	first, err := EnsureDir(dir)
	require.NoError(t, err)

	second, err := EnsureDir(dir)
	require.NoError(t, err)

	require.Equal(t, first, second)
	fi, err := os.Stat(second)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "downloads")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o660))

	_, err := EnsureDir(p)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestStatRegular(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "a.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o600))

	fi, err := StatRegular(p)
	require.NoError(t, err)
	require.Equal(t, int64(5), fi.Size())

	_, err = StatRegular(tmp)
	require.ErrorIs(t, err, ErrNotRegular)

	_, err = StatRegular(filepath.Join(tmp, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSHA256(t *testing.T) {
	sum, n, err := SHA256(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", sum)

	sum, n, err = SHA256(strings.NewReader("abc"))
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}

func TestVerifyingReader(t *testing.T) {
	const abcSum = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	b, err := io.ReadAll(NewVerifyingReader(strings.NewReader("abc"), abcSum, 3))
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))

	_, err = io.ReadAll(NewVerifyingReader(strings.NewReader("abd"), abcSum, 3))
	require.ErrorIs(t, err, ErrChanged)

	_, err = io.ReadAll(NewVerifyingReader(strings.NewReader("ab"), abcSum, 3))
	require.ErrorIs(t, err, ErrChanged)

	_, err = io.ReadAll(NewVerifyingReader(strings.NewReader("abcd"), abcSum, 3))
	require.ErrorIs(t, err, ErrChanged)
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "report.pdf", want: "report.pdf"},
		{in: "dir/report.pdf", want: "report.pdf"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\x\photo.jpg`, want: "photo.jpg"},
		{in: "", wantErr: true},
		{in: "..", wantErr: true},
		{in: "/", wantErr: true},
	}
	for _, tt := range tests {
		got, err := BaseName(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}
