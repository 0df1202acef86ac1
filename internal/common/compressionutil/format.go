// Package compression holds the archive primitives used to package solutions:
// zip writing and reading, and tarball source bundles in gzip, bzip2 or xz.
package compression

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
)

// Format names an archive container.
type Format string

const (
	FormatNone    Format = ""
	FormatZip     Format = "zip"
	FormatTarGzip Format = "tar.gz"
	FormatTarBz2  Format = "tar.bz2"
	FormatTarXz   Format = "tar.xz"
)

// TarballFormats lists the formats accepted for source bundles.
var TarballFormats = []Format{FormatTarGzip, FormatTarBz2, FormatTarXz}

// ParseTarballFormat maps a user supplied name to a tarball format. Empty and
// "none" disable the source bundle.
func ParseTarballFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "", "none":
		return FormatNone, nil
	case "tar.gz", "tgz", "gzip", "gz":
		return FormatTarGzip, nil
	case "tar.bz2", "tbz2", "bzip2", "bz2":
		return FormatTarBz2, nil
	case "tar.xz", "txz", "xz":
		return FormatTarXz, nil
	default:
		return FormatNone, fmt.Errorf("%w: %q (supported: tar.gz, tar.bz2, tar.xz)", errors.ErrUnsupportedCompression, name)
	}
}

// Extension returns the file extension of f including the leading dot.
func (f Format) Extension() string {
	if f == FormatNone {
		return ""
	}
	return "." + string(f)
}

var magicNumbers = []struct {
	format Format
	magic  []byte
}{
	{FormatZip, []byte{0x50, 0x4B, 0x03, 0x04}},
	{FormatTarGzip, []byte{0x1F, 0x8B}},
	{FormatTarBz2, []byte{0x42, 0x5A, 0x68}},
	{FormatTarXz, []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},
}

// DetectArchiveFormat determines the archive format from its magic number,
// falling back to the file extension.
func DetectArchiveFormat(filename string) (Format, error) {
	file, err := os.Open(filename)
	if err != nil {
		return FormatNone, fmt.Errorf("%w: %s", errors.ErrFileNotFound, filename)
	}
	defer file.Close()

	header := make([]byte, 6)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatNone, fmt.Errorf("%w: %v", errors.ErrFileReadError, err)
	}
	header = header[:n]

	for _, m := range magicNumbers {
		if bytes.HasPrefix(header, m.magic) {
			return m.format, nil
		}
	}

	name := strings.ToLower(filepath.Base(filename))
	switch {
	case strings.HasSuffix(name, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGzip, nil
	case strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tbz2"):
		return FormatTarBz2, nil
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return FormatTarXz, nil
	}
	return FormatNone, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, filename)
}
