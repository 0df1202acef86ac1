package cmd

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	compression "github.com/deploymenttheory/go-flow-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/examples"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	for _, in := range examples.AllInputs() {
		c.Flags().String(in.Name, "", in.Description)
	}
	return c
}

func TestParseInputs(t *testing.T) {
	c := inputCommand()
	require.NoError(t, c.Flags().Parse([]string{"--list-id", "from-flag", "--list-name", "Protocols"}))

	in, err := parseInputs(c, []string{"list-id=from-pair", "extra=a=b"})
	require.NoError(t, err)

	assert.Equal(t, "from-pair", in["list-id"])
	assert.Equal(t, "Protocols", in["list-name"])
	assert.Equal(t, "a=b", in["extra"])
	assert.NotContains(t, in, "monitored-field-name")
}

func TestParseInputs_Malformed(t *testing.T) {
	_, err := parseInputs(inputCommand(), []string{"novalue"})
	assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument))

	_, err = parseInputs(inputCommand(), []string{"=value"})
	assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("%w: --list-id", errors.ErrConfigurationMissing)))
	assert.Equal(t, 3, ExitCode(fmt.Errorf("%w: nope", errors.ErrExampleNotFound)))
	assert.Equal(t, 1, ExitCode(stderrors.New("boom")))
}

func TestBuildCmd_RegistersExampleInputs(t *testing.T) {
	for _, name := range []string{
		"sharepoint-site-url", "list-name", "monitored-field-name",
		"list-url", "list-id", "notification-mapping-list-url",
		"notification-mapping-list-id", "status-field-name",
	} {
		assert.NotNil(t, buildCmd.Flags().Lookup(name), name)
	}
}

func writeTestZip(t *testing.T) string {
	t.Helper()
	data, err := compression.ZipBytes([]compression.Entry{{Name: "solution.xml", Data: []byte("<ImportExportXml/>")}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "Demo.zip")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestInspectArchive_VerifiesChecksumFile(t *testing.T) {
	path := writeTestZip(t)
	_, _, err := cryptoutil.WriteChecksumFile(path, cryptoutil.SHA256)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, inspectArchive(&out, path))
	assert.Contains(t, out.String(), "  solution.xml")
	assert.Contains(t, out.String(), "Demo.zip.sha256: OK")

	require.NoError(t, os.WriteFile(path+".sha256", []byte(strings.Repeat("0", 64)+"  Demo.zip\n"), 0644))
	out.Reset()
	err = inspectArchive(&out, path)
	assert.True(t, stderrors.Is(err, errors.ErrChecksumMismatch))
	assert.Contains(t, out.String(), "MISMATCH")
}

func TestInspectArchive_WithoutChecksumFile(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, inspectArchive(&out, writeTestZip(t)))
	assert.NotContains(t, out.String(), "checksum")
}
