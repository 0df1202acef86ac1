package build

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	compression "github.com/deploymenttheory/go-flow-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(outputDir string) *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Publisher.UniqueName = "contoso"
	cfg.Publisher.LocalizedName = "Contoso"
	cfg.Publisher.Prefix = "cts"
	cfg.Publisher.OptionValuePrefix = 10000
	cfg.Connections.SharePoint = "shared_sharepointonline"
	cfg.Connections.Outlook = "shared_office365"
	cfg.Connections.ActualConnectionID = config.DefaultActualConnectionID
	cfg.User.AdminEmail = "admin@example.com"
	cfg.Environment.Mode = "dev"
	cfg.SharePoint.SiteURL = "https://contoso.sharepoint.com/sites/dev"
	cfg.Packaging.OutputDir = outputDir
	cfg.Packaging.Checksum = "sha256"
	return cfg
}

func TestSolutionInfo_Defaults(t *testing.T) {
	info := SolutionInfo(Request{Example: "sharepoint-approval-flow"}, "cts")

	assert.Equal(t, "cts_sharepoint-approval-flow_Solution", info.UniqueName)
	assert.Equal(t, "Sharepoint-approval-flow Example Solution", info.LocalizedName)
	assert.Equal(t, DefaultVersion, info.Version)
	assert.Equal(t, "Solution generated by Flow Composer for the sharepoint-approval-flow example.", info.Description)
	assert.False(t, info.Managed)
}

func TestSolutionInfo_Named(t *testing.T) {
	info := SolutionInfo(Request{
		Example:         "pip-notification-flow",
		SolutionName:    "StatusAlerts",
		SolutionVersion: "2.1.0.0",
		Managed:         true,
	}, "cts")

	assert.Equal(t, "StatusAlerts", info.UniqueName)
	assert.Equal(t, "StatusAlerts Solution", info.LocalizedName)
	assert.Equal(t, "2.1.0.0", info.Version)
	assert.True(t, info.Managed)
}

func TestExample_WritesPackage(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	res, err := Example(context.Background(), cfg, Request{
		Example:       "sharepoint-approval-flow",
		SourceArchive: "tar.xz",
		IDs:           identity.NewSequence(),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "cts_sharepoint-approval-flow_Solution.zip"), res.Archive)
	require.Len(t, res.Workflows, 1)

	names, err := compression.ListZipEntries(res.Archive)
	require.NoError(t, err)
	assert.Contains(t, names, "solution.xml")
	assert.Contains(t, names, "Workflows/Document_Approval_Workflow-00000000-0000-0000-0000-000000000001.json")

	_, err = os.Stat(filepath.Join(dir, "cts_sharepoint-approval-flow_Solution-source.tar.xz"))
	assert.NoError(t, err)

	assert.Len(t, res.Checksum, 64)
	ok, err := cryptoutil.VerifyChecksumFile(res.Archive, res.Archive+".sha256")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExample_ChecksumDisabled(t *testing.T) {
	dir := t.TempDir()
	res, err := Example(context.Background(), testConfig(dir), Request{
		Example:  "sharepoint-approval-flow",
		Checksum: "none",
	}, nil)
	require.NoError(t, err)

	assert.Empty(t, res.Checksum)
	_, err = os.Stat(res.Archive + ".sha256")
	assert.True(t, os.IsNotExist(err))
}

func TestExample_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Example(context.Background(), testConfig(dir), Request{Example: "nope"}, nil)
	assert.True(t, stderrors.Is(err, errors.ErrExampleNotFound))

	_, err = Example(context.Background(), testConfig(dir), Request{Example: "protocol-flow-test"}, nil)
	assert.True(t, stderrors.Is(err, errors.ErrConfigurationMissing))

	_, err = Example(context.Background(), testConfig(dir), Request{
		Example:       "sharepoint-approval-flow",
		SourceArchive: "rar",
	}, nil)
	assert.True(t, stderrors.Is(err, errors.ErrUnsupportedCompression))

	_, err = Example(context.Background(), testConfig(dir), Request{
		Example:  "sharepoint-approval-flow",
		Checksum: "md5",
	}, nil)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument))

	cfg := testConfig(dir)
	cfg.Publisher.Prefix = ""
	_, err = Example(context.Background(), cfg, Request{Example: "sharepoint-approval-flow"}, nil)
	assert.True(t, stderrors.Is(err, errors.ErrConfigInvalid))
}

func TestFlow_MissingManifest(t *testing.T) {
	_, err := Flow(context.Background(), filepath.Join(t.TempDir(), "missing.json"), t.TempDir(), "", nil)
	assert.Error(t, err)
}
