// Package jsonutil reads and writes JSON documents.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/fsutil"
)

// MarshalIndent encodes v with two-space indentation and without HTML
// escaping, so expressions such as @{...} and <br> survive unchanged.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Compact encodes v on a single line without HTML escaping.
func Compact(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrInvalidArgument, err.Error())
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// ReadJSONFile reads a JSON file and unmarshals its contents into v.
func ReadJSONFile(path string, v any) error {
	if !fsutil.FileExists(path) {
		return fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
	}

	data, err := fsutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %s", errors.ErrUnsupportedFile, path, err.Error())
	}
	return nil
}
