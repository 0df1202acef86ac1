// Package cryptoutil computes and verifies package checksums
package cryptoutil

import (
	"bufio"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/fsutil"
)

// HashAlgorithm represents supported hash algorithms
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
	SHA512 HashAlgorithm = "sha512"
)

// ParseAlgorithm resolves an algorithm name. The empty string selects none.
func ParseAlgorithm(name string) (HashAlgorithm, error) {
	switch a := HashAlgorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case "", SHA256, SHA512:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unsupported hash algorithm '%s'", errors.ErrInvalidArgument, name)
	}
}

func (a HashAlgorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported hash algorithm '%s'", errors.ErrInvalidArgument, a)
	}
}

// HashReader returns the hex digest of everything read from r
func HashReader(r io.Reader, algorithm HashAlgorithm) (string, error) {
	h, err := algorithm.newHash()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash operation failed: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileChecksum returns the hex digest of the file at path
func FileChecksum(path string, algorithm HashAlgorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", errors.ErrFileReadError, err)
	}
	defer f.Close()

	return HashReader(f, algorithm)
}

// WriteChecksumFile writes <path>.<algorithm> next to path in the
// "<digest>  <name>" layout read by sha256sum -c. It returns the digest and
// the checksum file path.
func WriteChecksumFile(path string, algorithm HashAlgorithm) (string, string, error) {
	sum, err := FileChecksum(path, algorithm)
	if err != nil {
		return "", "", err
	}

	out := path + "." + string(algorithm)
	line := fmt.Sprintf("%s  %s\n", sum, filepath.Base(path))
	if err := fsutil.WriteFile(out, []byte(line), 0644); err != nil {
		return "", "", fmt.Errorf("%w: %v", errors.ErrFileWriteError, err)
	}
	return sum, out, nil
}

// VerifyChecksumFile checks path against the first line of checksumPath. The
// algorithm is taken from the checksum file extension.
func VerifyChecksumFile(path, checksumPath string) (bool, error) {
	algorithm, err := ParseAlgorithm(strings.TrimPrefix(filepath.Ext(checksumPath), "."))
	if err != nil || algorithm == "" {
		return false, fmt.Errorf("%w: cannot tell the algorithm of %s", errors.ErrInvalidArgument, checksumPath)
	}

	f, err := os.Open(checksumPath)
	if err != nil {
		return false, fmt.Errorf("%w: %s", errors.ErrFileNotFound, checksumPath)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, fmt.Errorf("%w: empty checksum file %s", errors.ErrInvalidArgument, checksumPath)
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) == 0 {
		return false, fmt.Errorf("%w: empty checksum file %s", errors.ErrInvalidArgument, checksumPath)
	}

	actual, err := FileChecksum(path, algorithm)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(actual, fields[0]), nil
}
