// Package build runs the end-to-end packaging jobs shared by the CLI
// commands and composition files: resolving an example into a solution
// package and exporting a flow manifest as a single-flow package.
package build

import (
	"context"
	"fmt"
	"strings"

	compression "github.com/deploymenttheory/go-flow-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/examples"
	"github.com/deploymenttheory/go-flow-composer/internal/flowpackage"
	"github.com/deploymenttheory/go-flow-composer/internal/generator"
	"github.com/deploymenttheory/go-flow-composer/internal/identity"
	"github.com/deploymenttheory/go-flow-composer/internal/solution"
	"github.com/deploymenttheory/go-flow-composer/internal/validation"
	"go.uber.org/zap"
)

// DefaultVersion is the solution version used when none is given.
const DefaultVersion = "1.0.0.0"

// Request selects an example and the solution it is packaged into. Empty
// fields fall back to the configuration or to derived defaults.
type Request struct {
	Example         string
	SolutionName    string
	SolutionVersion string
	Managed         bool
	OutputDir       string
	SourceArchive   string
	Checksum        string
	Inputs          examples.Inputs

	// IDs overrides the workflow id source, mainly for tests.
	IDs identity.Generator
}

// Result describes a finished solution build.
type Result struct {
	Archive   string
	Checksum  string // hex digest, empty when disabled
	Solution  solution.SolutionInfo
	Publisher solution.PublisherInfo
	Workflows []solution.Workflow
}

// Publisher converts the configured publisher.
func Publisher(cfg *config.AppConfig) solution.PublisherInfo {
	return solution.PublisherInfo{
		UniqueName:        cfg.Publisher.UniqueName,
		LocalizedName:     cfg.Publisher.LocalizedName,
		Prefix:            cfg.Publisher.Prefix,
		OptionValuePrefix: cfg.Publisher.OptionValuePrefix,
	}
}

// SolutionInfo derives the solution metadata of req. Without a solution name
// the unique name is <prefix>_<example>_Solution.
func SolutionInfo(req Request, prefix string) solution.SolutionInfo {
	info := solution.SolutionInfo{
		UniqueName:    req.SolutionName,
		LocalizedName: req.SolutionName + " Solution",
		Version:       req.SolutionVersion,
		Description:   fmt.Sprintf("Solution generated by Flow Composer for the %s example.", req.Example),
		Managed:       req.Managed,
	}
	if info.UniqueName == "" {
		info.UniqueName = fmt.Sprintf("%s_%s_Solution", prefix, req.Example)
		info.LocalizedName = capitalize(req.Example) + " Example Solution"
	}
	if info.Version == "" {
		info.Version = DefaultVersion
	}
	return info
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Example assembles the requested example and writes its solution package.
func Example(ctx context.Context, cfg *config.AppConfig, req Request, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []generator.Option{generator.WithLogger(logger)}
	if req.IDs != nil {
		opts = append(opts, generator.WithIDGenerator(req.IDs))
	}
	g, err := examples.Assemble(req.Example, cfg, req.Inputs, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("assembled workflow",
		zap.String("example", req.Example),
		zap.String("workflow", g.DisplayName()),
		zap.String("id", g.WorkflowID()),
		zap.Strings("connectors", g.ConnectorRegistry().Names()))

	format, err := compression.ParseTarballFormat(firstNonEmpty(req.SourceArchive, cfg.Packaging.SourceArchive))
	if err != nil {
		return nil, err
	}
	algorithm, err := checksumAlgorithm(req.Checksum, cfg.Packaging.Checksum)
	if err != nil {
		return nil, err
	}
	validator, err := validation.New()
	if err != nil {
		return nil, err
	}

	builder := solution.NewBuilder(solution.Options{
		OutputDir:     firstNonEmpty(req.OutputDir, cfg.Packaging.OutputDir),
		SourceArchive: format,
		Validator:     validator,
		Logger:        logger,
	})

	res := &Result{
		Solution:  SolutionInfo(req, cfg.Publisher.Prefix),
		Publisher: Publisher(cfg),
		Workflows: []solution.Workflow{g.Workflow()},
	}
	res.Archive, err = builder.Build(ctx, res.Solution, res.Publisher, res.Workflows)
	if err != nil {
		return nil, err
	}
	if res.Checksum, err = writeChecksum(res.Archive, algorithm, logger); err != nil {
		return nil, err
	}
	return res, nil
}

// checksumAlgorithm resolves the request value, then the config value. "none"
// disables the checksum file.
func checksumAlgorithm(values ...string) (cryptoutil.HashAlgorithm, error) {
	name := firstNonEmpty(values...)
	if strings.EqualFold(name, "none") {
		return "", nil
	}
	return cryptoutil.ParseAlgorithm(name)
}

func writeChecksum(archive string, algorithm cryptoutil.HashAlgorithm, logger *zap.Logger) (string, error) {
	if algorithm == "" {
		return "", nil
	}
	sum, path, err := cryptoutil.WriteChecksumFile(archive, algorithm)
	if err != nil {
		return "", err
	}
	logger.Debug("wrote checksum", zap.String("path", path), zap.String(string(algorithm), sum))
	return sum, nil
}

// Flow loads a flow manifest and exports it as a single-flow package,
// returning the archive path. A checksum file is written next to it unless
// checksum is "none"; an empty checksum writes none.
func Flow(ctx context.Context, manifestPath, outputDir, checksum string, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	algorithm, err := checksumAlgorithm(checksum)
	if err != nil {
		return "", err
	}
	m, err := flowpackage.LoadManifest(manifestPath)
	if err != nil {
		return "", err
	}
	path, err := flowpackage.Export(ctx, m, flowpackage.Options{OutputDir: outputDir, Logger: logger})
	if err != nil {
		return "", err
	}
	if _, err := writeChecksum(path, algorithm, logger); err != nil {
		return "", err
	}
	return path, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
