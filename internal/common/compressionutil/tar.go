package compression

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/fsutil"
)

func compressorFor(f Format) (func(io.Writer) (io.WriteCloser, error), error) {
	switch f {
	case FormatTarGzip:
		return newGzipWriter, nil
	case FormatTarBz2:
		return newBzip2Writer, nil
	case FormatTarXz:
		return newXzWriter, nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedCompression, f)
}

func decompressorFor(f Format) (func(io.Reader) (io.ReadCloser, error), error) {
	switch f {
	case FormatTarGzip:
		return newGzipReader, nil
	case FormatTarBz2:
		return newBzip2Reader, nil
	case FormatTarXz:
		return newXzReader, nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedCompression, f)
}

// WriteTarball writes entries as a compressed tar stream to w.
func WriteTarball(w io.Writer, format Format, entries []Entry) error {
	newWriter, err := compressorFor(format)
	if err != nil {
		return err
	}

	cw, err := newWriter(w)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrCompressionFailed, err)
	}

	tw := tar.NewWriter(cw)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.Name,
			Mode:     0644,
			Size:     int64(len(e.Data)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("%w: %s: %v", errors.ErrArchiveWrite, e.Name, err)
		}
		if _, err := tw.Write(e.Data); err != nil {
			return fmt.Errorf("%w: %s: %v", errors.ErrArchiveWrite, e.Name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrArchiveWrite, err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrCompressionFailed, err)
	}
	return nil
}

// CompressTarball packs every file below srcDir into dst using format.
func CompressTarball(srcDir, dst string, format Format) error {
	entries, err := collectEntries(srcDir)
	if err != nil {
		return err
	}

	mu := fsutil.GetPathMutex(dst)
	mu.Lock()
	defer mu.Unlock()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrArchiveWrite, dst, err)
	}
	if err := WriteTarball(out, format, entries); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrArchiveWrite, dst, err)
	}
	return nil
}

// ReadTarball returns the regular files stored in a compressed tar stream.
func ReadTarball(r io.Reader, format Format) ([]Entry, error) {
	newReader, err := decompressorFor(format)
	if err != nil {
		return nil, err
	}

	cr, err := newReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidArchive, err)
	}
	defer cr.Close()

	var entries []Entry
	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrExtractionFailed, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrExtractionFailed, hdr.Name, err)
		}
		entries = append(entries, Entry{Name: hdr.Name, Data: data})
	}
	return entries, nil
}

// ListTarballEntries returns the sorted file names stored in the tarball at path.
func ListTarballEntries(path string, format Format) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
	}
	defer f.Close()

	entries, err := ReadTarball(f, format)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names, nil
}

// ListArchiveEntries lists a zip or tarball, detecting its format.
func ListArchiveEntries(path string) (Format, []string, error) {
	format, err := DetectArchiveFormat(path)
	if err != nil {
		return FormatNone, nil, err
	}
	if format == FormatZip {
		names, err := ListZipEntries(path)
		return format, names, err
	}
	names, err := ListTarballEntries(path, format)
	return format, names, err
}

// ReadArchiveEntry returns the content of one entry of a zip or tarball,
// detecting the format from path.
func ReadArchiveEntry(path, name string) ([]byte, error) {
	format, err := DetectArchiveFormat(path)
	if err != nil {
		return nil, err
	}
	if format == FormatZip {
		return ReadZipEntry(path, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
	}
	defer f.Close()

	entries, err := ReadTarball(f, format)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e.Data, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, name)
}

// ExtractTarball extracts the tarball at src below dst. Entries escaping dst
// are rejected.
func ExtractTarball(src, dst string, format Format) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileNotFound, src)
	}
	defer f.Close()

	entries, err := ReadTarball(f, format)
	if err != nil {
		return err
	}
	for _, e := range entries {
		target, err := safeJoin(dst, e.Name)
		if err != nil {
			return err
		}
		if err := fsutil.WriteFile(target, e.Data, 0644); err != nil {
			return fmt.Errorf("%w: %s: %v", errors.ErrExtractionFailed, e.Name, err)
		}
	}
	return nil
}

// Extract unpacks a zip or tarball below dst, detecting its format.
func Extract(src, dst string) (Format, error) {
	format, err := DetectArchiveFormat(src)
	if err != nil {
		return FormatNone, err
	}
	if format == FormatZip {
		return format, ExtractZIP(src, dst)
	}
	return format, ExtractTarball(src, dst, format)
}
