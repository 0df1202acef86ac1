package solution

import (
	"regexp"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/identity"
)

const (
	fallbackFileName = "flow"
	workflowsDir     = "Workflows"
	shortNameLength  = 8
)

var (
	whitespace    = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
	unsafeNameRun = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// SanitizeName turns a display name into a file name stem: whitespace runs,
// Unicode space separators included, become underscores and anything outside [A-Za-z0-9_-] is dropped.
func SanitizeName(name string) string {
	s := whitespace.ReplaceAllString(name, "_")
	s = unsafeNameRun.ReplaceAllString(s, "")
	if s == "" {
		return fallbackFileName
	}
	return s
}

// WorkflowFileName returns the JSON file name of a workflow.
func WorkflowFileName(name, id string) string {
	return SanitizeName(name) + "-" + identity.Upper(id) + ".json"
}

// EntryName returns the archive entry name of a workflow file.
func EntryName(fileName string) string {
	return workflowsDir + "/" + fileName
}

// PackagePath returns the package-relative path recorded for a workflow file.
func PackagePath(fileName string) string {
	return "/" + EntryName(fileName)
}

// ConnectionReferenceLogicalName derives the logical name of the connection
// reference for a connector.
func ConnectionReferenceLogicalName(prefix, connectorName string) string {
	short := connectorName
	if i := strings.LastIndex(connectorName, "_"); i >= 0 {
		short = connectorName[i+1:]
	}
	if len(short) > shortNameLength {
		short = short[len(short)-shortNameLength:]
	}
	if short == "" {
		short = "conn"
	}
	return strings.ToLower(prefix + "_" + connectorName + "_" + short)
}
