package composition

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/build"
	compression "github.com/deploymenttheory/go-flow-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/fsutil"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/examples"
	"github.com/deploymenttheory/go-flow-composer/internal/logger"
)

// StepHandler executes one composition step and returns the variables it
// produced.
type StepHandler func(ctx context.Context, cfg *config.AppConfig, step Step) (map[string]interface{}, error)

type stepSpec struct {
	required []string
}

var stepSpecs = map[string]stepSpec{
	"build":        {required: []string{"example"}},
	"package_flow": {required: []string{"manifest"}},
	"extract":      {required: []string{"source", "destination"}},
	"bundle":       {required: []string{"source", "destination"}},
	"delete":       {required: []string{"path"}},
}

func createStepHandlerRegistry() map[string]StepHandler {
	return map[string]StepHandler{
		"build":        handleBuildStep,
		"package_flow": handlePackageFlowStep,
		"extract":      handleExtractStep,
		"bundle":       handleBundleStep,
		"delete":       handleDeleteStep,
	}
}

// evaluateCondition renders condition and reports whether it reads as true
func evaluateCondition(condition string, variables map[string]interface{}) (bool, error) {
	result, err := processTemplate(condition, variables)
	if err != nil {
		return false, err
	}

	result = strings.TrimSpace(strings.ToLower(result))
	return result == "true" || result == "yes" || result == "1", nil
}

func stringParam(step Step, name string) (string, error) {
	raw, ok := step.Parameters[name]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter '%s' must be a string", errors.ErrInvalidArgument, name)
	}
	return s, nil
}

func requiredParam(step Step, name string) (string, error) {
	s, err := stringParam(step, name)
	if err != nil {
		return "", err
	}
	if s == "" {
		logger.LogError(fmt.Sprintf("%s step requires a %s parameter", step.Type, name), nil, nil)
		return "", fmt.Errorf("%w: missing parameter '%s'", errors.ErrInvalidArgument, name)
	}
	return s, nil
}

func boolParam(step Step, name string) (bool, error) {
	switch v := step.Parameters[name].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: parameter '%s' must be a boolean", errors.ErrInvalidArgument, name)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: parameter '%s' must be a boolean", errors.ErrInvalidArgument, name)
	}
}

func inputsParam(step Step) (examples.Inputs, error) {
	raw, ok := step.Parameters["inputs"]
	if !ok || raw == nil {
		return examples.Inputs{}, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: parameter 'inputs' must be a map", errors.ErrInvalidArgument)
	}
	in := make(examples.Inputs, len(m))
	for k, v := range m {
		in[k] = fmt.Sprint(v)
	}
	return in, nil
}

// resultKey names the variable holding a step's output path.
func resultKey(step Step, suffix string) string {
	return strings.ReplaceAll(step.Name, "-", "_") + "_" + suffix
}

// ---- packaging steps ----

func handleBuildStep(ctx context.Context, cfg *config.AppConfig, step Step) (map[string]interface{}, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: build step requires a configuration", errors.ErrConfigurationMissing)
	}

	req := build.Request{}
	var err error
	if req.Example, err = requiredParam(step, "example"); err != nil {
		return nil, err
	}
	if req.SolutionName, err = stringParam(step, "solution_name"); err != nil {
		return nil, err
	}
	if req.SolutionVersion, err = stringParam(step, "solution_version"); err != nil {
		return nil, err
	}
	if req.OutputDir, err = stringParam(step, "output"); err != nil {
		return nil, err
	}
	if req.SourceArchive, err = stringParam(step, "source_archive"); err != nil {
		return nil, err
	}
	if req.Checksum, err = stringParam(step, "checksum"); err != nil {
		return nil, err
	}
	if req.Managed, err = boolParam(step, "managed"); err != nil {
		return nil, err
	}
	if req.Inputs, err = inputsParam(step); err != nil {
		return nil, err
	}

	res, err := build.Example(ctx, cfg, req, logger.Named("build"))
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		resultKey(step, "archive"): res.Archive,
		"last_archive":             res.Archive,
	}, nil
}

func handlePackageFlowStep(ctx context.Context, cfg *config.AppConfig, step Step) (map[string]interface{}, error) {
	manifest, err := requiredParam(step, "manifest")
	if err != nil {
		return nil, err
	}
	output, err := stringParam(step, "output")
	if err != nil {
		return nil, err
	}
	checksum, err := stringParam(step, "checksum")
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		if output == "" {
			output = cfg.Packaging.OutputDir
		}
		if checksum == "" {
			checksum = cfg.Packaging.Checksum
		}
	}

	path, err := build.Flow(ctx, manifest, output, checksum, logger.Named("package-flow"))
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		resultKey(step, "archive"): path,
		"last_archive":             path,
	}, nil
}

// ---- archive steps ----

func handleExtractStep(_ context.Context, _ *config.AppConfig, step Step) (map[string]interface{}, error) {
	src, err := requiredParam(step, "source")
	if err != nil {
		return nil, err
	}
	dst, err := requiredParam(step, "destination")
	if err != nil {
		return nil, err
	}

	if err := fsutil.CreateDirIfNotExists(dst); err != nil {
		return nil, err
	}

	format, err := compression.Extract(src, dst)
	if err != nil {
		logger.LogError("failed to extract archive", err, map[string]interface{}{"source": src})
		return nil, err
	}

	logger.LogInfo("Extracted archive", map[string]interface{}{
		"source":      src,
		"destination": dst,
		"format":      string(format),
	})
	return map[string]interface{}{resultKey(step, "dir"): dst}, nil
}

func handleBundleStep(_ context.Context, _ *config.AppConfig, step Step) (map[string]interface{}, error) {
	src, err := requiredParam(step, "source")
	if err != nil {
		return nil, err
	}
	dst, err := requiredParam(step, "destination")
	if err != nil {
		return nil, err
	}
	formatName, err := stringParam(step, "format")
	if err != nil {
		return nil, err
	}

	if !fsutil.DirExists(src) {
		return nil, fmt.Errorf("%w: %s", errors.ErrDirNotFound, src)
	}

	var format compression.Format
	if formatName == "zip" || (formatName == "" && strings.EqualFold(filepath.Ext(dst), ".zip")) {
		format = compression.FormatZip
	} else {
		if formatName == "" {
			formatName = "tar.gz"
		}
		if format, err = compression.ParseTarballFormat(formatName); err != nil {
			return nil, err
		}
		if format == compression.FormatNone {
			return nil, fmt.Errorf("%w: bundle step needs an archive format", errors.ErrUnsupportedCompression)
		}
	}

	if err := fsutil.CreateDirIfNotExists(filepath.Dir(dst)); err != nil {
		return nil, err
	}

	if format == compression.FormatZip {
		err = compression.CompressZIP(src, dst)
	} else {
		err = compression.CompressTarball(src, dst, format)
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{resultKey(step, "archive"): dst}, nil
}

func handleDeleteStep(_ context.Context, _ *config.AppConfig, step Step) (map[string]interface{}, error) {
	path, err := requiredParam(step, "path")
	if err != nil {
		return nil, err
	}

	switch {
	case fsutil.DirExists(path):
		err = fsutil.DeleteDirRecursive(path)
	case fsutil.FileExists(path):
		err = fsutil.DeleteFile(path)
	default:
		logger.LogWarn("Nothing to delete", map[string]interface{}{"path": path})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}
