package errors

import (
	"errors"
)

var (
	// General Errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnsupportedFile = errors.New("unsupported file format")

	// Configuration Errors
	ErrConfigInvalid        = errors.New("invalid configuration")
	ErrConfigParseError     = errors.New("error parsing configuration")
	ErrConfigurationMissing = errors.New("required input missing")

	// Example Resolution Errors
	ErrExampleNotFound = errors.New("example solution not found")

	// Definition Errors
	ErrInvalidDefinition = errors.New("invalid workflow definition")
	ErrNoWorkflows       = errors.New("no workflow definitions supplied")
	ErrDiscovery         = errors.New("connector could not be discovered")

	// Compression Errors
	ErrCompressionFailed      = errors.New("compression failed")
	ErrUnsupportedCompression = errors.New("unsupported compression format")
	ErrInvalidArchive         = errors.New("archive file is corrupted or unsupported")
	ErrArchiveWrite           = errors.New("failed to write archive")
	ErrChecksumMismatch       = errors.New("checksum mismatch")

	// Extraction Errors
	ErrExtractionFailed = errors.New("extraction failed")

	// File & Directory Errors
	ErrFileNotFound    = errors.New("file not found")
	ErrFileReadError   = errors.New("error reading file")
	ErrFileWriteError  = errors.New("error writing to file")
	ErrFileDeleteError = errors.New("error deleting file")
	ErrDirNotFound     = errors.New("directory not found")
)
