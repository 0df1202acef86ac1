package solution

import (
	"context"
	"fmt"
	"path/filepath"

	compression "github.com/deploymenttheory/go-flow-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/fsutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/jsonutil"
	"github.com/deploymenttheory/go-flow-composer/internal/validation"
	"go.uber.org/zap"
)

const (
	solutionFile       = "solution.xml"
	customizationsFile = "customizations.xml"
	contentTypesFile   = "[Content_Types].xml"

	stagingPrefix = ".staging-"
)

// Options configures a Builder.
type Options struct {
	// OutputDir receives the archive. It is created when missing.
	OutputDir string

	// SourceArchive, when set, also packs the unpacked solution tree as
	// <uniqueName>-source.<ext> next to the archive.
	SourceArchive compression.Format

	// Validator checks every workflow document before it is written. Nil
	// skips validation.
	Validator *validation.Validator

	Logger *zap.Logger
}

// Builder writes solution packages.
type Builder struct {
	opts   Options
	logger *zap.Logger
}

// NewBuilder returns a Builder using opts.
func NewBuilder(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	return &Builder{opts: opts, logger: logger}
}

// Entries returns the archive entries of a package in archive order:
// solution.xml, customizations.xml, [Content_Types].xml then one file per
// workflow.
func (b *Builder) Entries(ctx context.Context, sol SolutionInfo, pub PublisherInfo, workflows []Workflow) ([]compression.Entry, error) {
	if err := sol.Validate(); err != nil {
		return nil, err
	}
	if err := pub.Validate(); err != nil {
		return nil, err
	}
	if err := validateWorkflows(workflows); err != nil {
		return nil, err
	}

	files := make([]compression.Entry, 0, len(workflows))
	for _, wf := range workflows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if b.opts.Validator != nil {
			if err := b.opts.Validator.ValidateClientData(wf.ClientData); err != nil {
				return nil, fmt.Errorf("workflow %q: %w", wf.Name, err)
			}
		}

		data, err := jsonutil.MarshalIndent(wf.ClientData)
		if err != nil {
			return nil, fmt.Errorf("workflow %q: %w", wf.Name, err)
		}
		name := EntryName(WorkflowFileName(wf.Name, wf.ID))
		files = append(files, compression.Entry{Name: name, Data: data})

		b.logger.Debug("serialized workflow",
			zap.String("workflow", wf.Name),
			zap.String("path", PackagePath(WorkflowFileName(wf.Name, wf.ID))))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, collisions := ConnectionReferences(pub.Prefix, workflows)
	for _, c := range collisions {
		b.logger.Warn("connection reference logical name collision, keeping first connector",
			zap.String("logical_name", c.LogicalName),
			zap.String("kept", c.Kept),
			zap.String("dropped", c.Dropped))
	}

	entries := []compression.Entry{
		{Name: solutionFile, Data: SolutionXML(sol, pub, workflows)},
		{Name: customizationsFile, Data: CustomizationsXML(sol, pub, workflows)},
		{Name: contentTypesFile, Data: ContentTypesXML()},
	}
	return append(entries, files...), nil
}

// BuildBytes returns the package archive without touching the file system.
func (b *Builder) BuildBytes(ctx context.Context, sol SolutionInfo, pub PublisherInfo, workflows []Workflow) ([]byte, error) {
	entries, err := b.Entries(ctx, sol, pub, workflows)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return compression.ZipBytes(entries)
}

// Build writes <OutputDir>/<uniqueName>.zip and returns its path. Loose files
// are staged in a private directory under OutputDir which is removed on every
// exit path.
func (b *Builder) Build(ctx context.Context, sol SolutionInfo, pub PublisherInfo, workflows []Workflow) (archivePath string, err error) {
	b.logger.Info("starting solution export",
		zap.String("solution", sol.UniqueName),
		zap.String("version", sol.Version),
		zap.Int("workflows", len(workflows)))

	entries, err := b.Entries(ctx, sol, pub, workflows)
	if err != nil {
		return "", err
	}

	staging, err := fsutil.CreateTempDirIn(b.opts.OutputDir, stagingPrefix)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", errors.ErrFileWriteError, b.opts.OutputDir, err)
	}
	defer func() {
		if cerr := fsutil.DeleteDirRecursive(staging); cerr != nil {
			b.logger.Warn("failed to clean up staging directory", zap.String("path", staging), zap.Error(cerr))
		}
	}()

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := fsutil.WriteFile(filepath.Join(staging, filepath.FromSlash(e.Name)), e.Data, 0644); err != nil {
			return "", fmt.Errorf("%w: %s: %v", errors.ErrFileWriteError, e.Name, err)
		}
	}

	if b.opts.SourceArchive != compression.FormatNone {
		sourcePath := filepath.Join(b.opts.OutputDir, sol.UniqueName+"-source"+b.opts.SourceArchive.Extension())
		if err := compression.CompressTarball(staging, sourcePath, b.opts.SourceArchive); err != nil {
			return "", err
		}
		b.logger.Info("wrote source bundle", zap.String("path", sourcePath))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	archivePath = filepath.Join(b.opts.OutputDir, sol.UniqueName+".zip")
	if err := compression.CompressZIP(staging, archivePath); err != nil {
		return "", err
	}

	b.logger.Info("solution export completed",
		zap.String("solution", sol.UniqueName),
		zap.String("archive", archivePath))
	return archivePath, nil
}
