package compression

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestCompressZIP_EntriesAtRoot(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"solution.xml":        "<a/>",
		"Workflows/flow.json": "{}",
	})

	dst := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, CompressZIP(src, dst))

	names, err := ListZipEntries(dst)
	require.NoError(t, err)
	assert.Equal(t, []string{"Workflows/flow.json", "solution.xml"}, names)

	data, err := ReadZipEntry(dst, "Workflows/flow.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	_, err = ReadZipEntry(dst, "missing.txt")
	assert.ErrorIs(t, err, errors.ErrFileNotFound)
}

func TestZipBytes_RoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("flow "), 1000)
	data, err := ZipBytes([]Entry{
		{Name: "/[Content_Types].xml", Data: []byte("<Types/>")},
		{Name: "big.txt", Data: payload},
	})
	require.NoError(t, err)
	assert.Less(t, len(data), len(payload))

	names, err := ListZipBytes(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"[Content_Types].xml", "big.txt"}, names)

	got, err := ReadZipBytesEntry(data, "big.txt")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestExtractZIP(t *testing.T) {
	data, err := ZipBytes([]Entry{{Name: "a/b.txt", Data: []byte("b")}})
	require.NoError(t, err)
	archive := filepath.Join(t.TempDir(), "x.zip")
	require.NoError(t, os.WriteFile(archive, data, 0644))

	dst := t.TempDir()
	require.NoError(t, ExtractZIP(archive, dst))
	got, err := os.ReadFile(filepath.Join(dst, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}

func TestExtractZIP_RejectsTraversal(t *testing.T) {
	data, err := ZipBytes([]Entry{{Name: "../evil.txt", Data: []byte("x")}})
	require.NoError(t, err)
	archive := filepath.Join(t.TempDir(), "x.zip")
	require.NoError(t, os.WriteFile(archive, data, 0644))

	err = ExtractZIP(archive, t.TempDir())
	assert.ErrorIs(t, err, errors.ErrInvalidArchive)
}

func TestTarball_AllFormats(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"solution.xml":        "<ImportExportXml/>",
		"Workflows/flow.json": `{"properties":{}}`,
	})

	for _, format := range TarballFormats {
		t.Run(string(format), func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "source"+format.Extension())
			require.NoError(t, CompressTarball(src, dst, format))

			detected, names, err := ListArchiveEntries(dst)
			require.NoError(t, err)
			assert.Equal(t, format, detected)
			assert.Equal(t, []string{"Workflows/flow.json", "solution.xml"}, names)
		})
	}
}

func TestExtract_DetectsFormat(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"Workflows/flow.json": `{"a":1}`})

	archive := filepath.Join(t.TempDir(), "bundle.tar.bz2")
	require.NoError(t, CompressTarball(src, archive, FormatTarBz2))

	out := t.TempDir()
	format, err := Extract(archive, out)
	require.NoError(t, err)
	assert.Equal(t, FormatTarBz2, format)

	data, err := os.ReadFile(filepath.Join(out, "Workflows", "flow.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestReadArchiveEntry(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"Workflows/flow.json": `{"a":1}`})

	zipPath := filepath.Join(t.TempDir(), "pkg.zip")
	require.NoError(t, CompressZIP(src, zipPath))
	tarPath := filepath.Join(t.TempDir(), "pkg.tar.xz")
	require.NoError(t, CompressTarball(src, tarPath, FormatTarXz))

	for _, path := range []string{zipPath, tarPath} {
		data, err := ReadArchiveEntry(path, "Workflows/flow.json")
		require.NoError(t, err, path)
		assert.Equal(t, `{"a":1}`, string(data))

		_, err = ReadArchiveEntry(path, "missing.json")
		assert.ErrorIs(t, err, errors.ErrFileNotFound)
	}
}

func TestWriteTarball_UnsupportedFormat(t *testing.T) {
	err := WriteTarball(&bytes.Buffer{}, FormatZip, nil)
	assert.ErrorIs(t, err, errors.ErrUnsupportedCompression)
}

func TestParseTarballFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatNone, false},
		{"none", FormatNone, false},
		{"tar.gz", FormatTarGzip, false},
		{".tgz", FormatTarGzip, false},
		{"BZIP2", FormatTarBz2, false},
		{"tar.xz", FormatTarXz, false},
		{"rar", FormatNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarballFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrUnsupportedCompression)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectArchiveFormat_ExtensionFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tar.xz")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	got, err := DetectArchiveFormat(path)
	require.NoError(t, err)
	assert.Equal(t, FormatTarXz, got)

	other := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("hi"), 0644))
	_, err = DetectArchiveFormat(other)
	assert.ErrorIs(t, err, errors.ErrUnsupportedCompression)
}
