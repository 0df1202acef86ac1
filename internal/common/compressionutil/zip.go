package compression

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/fsutil"
	"github.com/klauspost/compress/flate"
)

// Entry is one file stored in an archive. Name uses forward slashes and no
// leading separator.
type Entry struct {
	Name string
	Data []byte
}

// newZipWriter returns a zip writer deflating at best compression.
func newZipWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return zw
}

// WriteZip writes entries to w in the given order.
func WriteZip(w io.Writer, entries []Entry) error {
	zw := newZipWriter(w)
	for _, e := range entries {
		name := strings.TrimPrefix(filepath.ToSlash(e.Name), "/")
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("%w: %s: %v", errors.ErrArchiveWrite, name, err)
		}
		if _, err := f.Write(e.Data); err != nil {
			return fmt.Errorf("%w: %s: %v", errors.ErrArchiveWrite, name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrArchiveWrite, err)
	}
	return nil
}

// ZipBytes returns the zip archive of entries.
func ZipBytes(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CompressZIP archives every file below srcDir into dst. Entry names are
// relative to srcDir so its contents sit at the archive root.
func CompressZIP(srcDir, dst string) error {
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
	if err := WriteZip(out, entries); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrArchiveWrite, dst, err)
	}
	return nil
}

func collectEntries(srcDir string) ([]Entry, error) {
	files, err := fsutil.ListFilesRecursive(srcDir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(files))
	for _, rel := range files {
		data, err := fsutil.ReadFile(filepath.Join(srcDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: rel, Data: data})
	}
	return entries, nil
}

// ListZipEntries returns the sorted file names stored in the zip at path.
func ListZipEntries(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrInvalidArchive, path, err)
	}
	defer r.Close()

	return zipNames(&r.Reader), nil
}

// ListZipBytes returns the sorted file names stored in an in-memory zip.
func ListZipBytes(data []byte) ([]string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidArchive, err)
	}
	return zipNames(r), nil
}

func zipNames(r *zip.Reader) []string {
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

// ReadZipEntry returns the content of one entry of the zip at path.
func ReadZipEntry(path, name string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrInvalidArchive, path, err)
	}
	defer r.Close()

	return readEntry(&r.Reader, name)
}

// ReadZipBytesEntry returns the content of one entry of an in-memory zip.
func ReadZipBytesEntry(data []byte, name string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidArchive, err)
	}
	return readEntry(r, name)
}

func readEntry(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrExtractionFailed, name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, name)
}

// ExtractZIP extracts the zip at src below dst. Entries escaping dst are
// rejected.
func ExtractZIP(src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrInvalidArchive, src, err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(dst, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := fsutil.CreateDirIfNotExists(target); err != nil {
				return err
			}
			continue
		}
		if err := extractZipFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrExtractionFailed, f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrExtractionFailed, f.Name, err)
	}
	return fsutil.WriteFile(target, data, 0644)
}

func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: entry %q escapes destination", errors.ErrInvalidArchive, name)
	}
	return target, nil
}
