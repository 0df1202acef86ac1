package solution_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	compression "github.com/deploymenttheory/go-flow-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/xmlutil"
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"github.com/deploymenttheory/go-flow-composer/internal/generator"
	"github.com/deploymenttheory/go-flow-composer/internal/identity"
	"github.com/deploymenttheory/go-flow-composer/internal/solution"
	"github.com/deploymenttheory/go-flow-composer/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	sol = solution.SolutionInfo{UniqueName: "ApprovalSolution", LocalizedName: "Approval Solution", Version: "1.0.0.0"}
	pub = solution.PublisherInfo{UniqueName: "flowcomposer", LocalizedName: "Flow Composer", Prefix: "fc", OptionValuePrefix: 10000}
)

func sampleWorkflow() solution.Workflow {
	g := generator.New("Approval Flow", "", generator.WithIDGenerator(identity.NewSequence())).
		AddTrigger("manual", &flow.Trigger{Type: flow.TriggerRequest, Kind: "Button"}).
		AddAction("Send_email", &flow.Action{
			Type: flow.ActionAPIConnection,
			Inputs: map[string]any{
				"host": &flow.Host{Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression("shared_office365")}},
				"path": "/v2/Mail",
			},
		})
	return g.Workflow()
}

func newValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	return v
}

func TestBuildBytes_EndToEnd(t *testing.T) {
	wf := sampleWorkflow()
	b := solution.NewBuilder(solution.Options{Validator: newValidator(t)})

	data, err := b.BuildBytes(context.Background(), sol, pub, []solution.Workflow{wf})
	require.NoError(t, err)

	names, err := compression.ListZipBytes(data)
	require.NoError(t, err)
	require.Len(t, names, 4)
	assert.Contains(t, names, "solution.xml")
	assert.Contains(t, names, "customizations.xml")
	assert.Contains(t, names, "[Content_Types].xml")

	var workflowFiles []string
	for _, n := range names {
		if strings.HasPrefix(n, "Workflows/") {
			workflowFiles = append(workflowFiles, n)
		}
	}
	require.Len(t, workflowFiles, 1)
	assert.Contains(t, workflowFiles[0], identity.Upper(wf.ID))

	customizations, err := compression.ReadZipBytesEntry(data, "customizations.xml")
	require.NoError(t, err)
	n, err := xmlutil.CountElements(customizations, "connectionreference")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = xmlutil.CountElements(customizations, "Workflow")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	raw, err := compression.ReadZipBytesEntry(data, workflowFiles[0])
	require.NoError(t, err)
	var doc flow.ClientData
	require.NoError(t, json.Unmarshal(raw, &doc))
	ref, ok := doc.Properties.ConnectionReferences["shared_office365"]
	require.True(t, ok)
	assert.Equal(t, "Invoker", ref.Source)
}

func TestBuild_WritesArchiveAndCleansUp(t *testing.T) {
	out := t.TempDir()
	b := solution.NewBuilder(solution.Options{OutputDir: out, SourceArchive: compression.FormatTarGzip})

	path, err := b.Build(context.Background(), sol, pub, []solution.Workflow{sampleWorkflow()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "ApprovalSolution.zip"), path)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var files []string
	for _, e := range entries {
		files = append(files, e.Name())
	}
	assert.ElementsMatch(t, []string{"ApprovalSolution.zip", "ApprovalSolution-source.tar.gz"}, files)

	names, err := compression.ListZipEntries(path)
	require.NoError(t, err)
	assert.Len(t, names, 4)

	format, sourceNames, err := compression.ListArchiveEntries(filepath.Join(out, "ApprovalSolution-source.tar.gz"))
	require.NoError(t, err)
	assert.Equal(t, compression.FormatTarGzip, format)
	assert.Equal(t, names, sourceNames)
}

func TestBuild_CleansUpOnFailure(t *testing.T) {
	out := t.TempDir()
	b := solution.NewBuilder(solution.Options{OutputDir: out, SourceArchive: compression.Format("tar.rar")})

	_, err := b.Build(context.Background(), sol, pub, []solution.Workflow{sampleWorkflow()})
	require.ErrorIs(t, err, errors.ErrUnsupportedCompression)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := solution.NewBuilder(solution.Options{OutputDir: t.TempDir()})
	_, err := b.Build(ctx, sol, pub, []solution.Workflow{sampleWorkflow()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_RejectsInvalidDefinition(t *testing.T) {
	g := generator.New("No Trigger", "").AddAction("Compose", &flow.Action{Type: flow.ActionCompose, Inputs: "x"})
	b := solution.NewBuilder(solution.Options{OutputDir: t.TempDir(), Validator: newValidator(t)})

	_, err := b.Build(context.Background(), sol, pub, []solution.Workflow{g.Workflow()})
	assert.ErrorIs(t, err, errors.ErrInvalidDefinition)
}

func TestBuild_InputErrors(t *testing.T) {
	b := solution.NewBuilder(solution.Options{OutputDir: t.TempDir()})
	ctx := context.Background()

	_, err := b.BuildBytes(ctx, sol, pub, nil)
	assert.ErrorIs(t, err, errors.ErrNoWorkflows)

	_, err = b.BuildBytes(ctx, solution.SolutionInfo{Version: "1.0.0.0"}, pub, []solution.Workflow{sampleWorkflow()})
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	wf := sampleWorkflow()
	_, err = b.BuildBytes(ctx, sol, pub, []solution.Workflow{wf, wf})
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestBuild_RejectsPathLikeUniqueName(t *testing.T) {
	parent := t.TempDir()
	out := filepath.Join(parent, "out")
	require.NoError(t, os.Mkdir(out, 0o755))
	b := solution.NewBuilder(solution.Options{OutputDir: out, SourceArchive: compression.FormatTarGzip})

	for _, name := range []string{"../escape", `..\escape`, "nested/name", ".."} {
		t.Run(name, func(t *testing.T) {
			info := sol
			info.UniqueName = name
			_, err := b.Build(context.Background(), info, pub, []solution.Workflow{sampleWorkflow()})
			assert.ErrorIs(t, err, errors.ErrInvalidArgument)
		})
	}

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out", entries[0].Name())
	entries, err = os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildBytes_LogsCollisions(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := solution.NewBuilder(solution.Options{Logger: zap.New(core)})

	g := generator.New("Teams", "").
		AddTrigger("manual", &flow.Trigger{Type: flow.TriggerRequest, Kind: "Button"}).
		AddAction("A", &flow.Action{Type: flow.ActionAPIConnection, Inputs: map[string]any{
			"host": &flow.Host{Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression("shared_Teams")}},
		}}).
		AddAction("B", &flow.Action{Type: flow.ActionAPIConnection, Inputs: map[string]any{
			"host": &flow.Host{Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression("shared_teams")}},
		}})

	_, err := b.BuildBytes(context.Background(), sol, pub, []solution.Workflow{g.Workflow()})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterField(zap.String("logical_name", "fc_shared_teams_teams")).Len())
}
