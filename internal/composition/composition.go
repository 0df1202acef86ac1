// Package composition runs composition files: YAML or JSON documents listing
// packaging steps (build an example, export a flow manifest, unpack or bundle
// archives) executed in order with shared template variables.
package composition

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/logger"
	"github.com/spf13/viper"
)

// LoadComposition loads a composition file and adds the system variables.
// Step parameters are rendered when the step runs, so they can refer to the
// results of earlier steps.
func LoadComposition(filePath string, cfg *config.AppConfig) (*Composition, error) {
	v := viper.New()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: composition file %s", errors.ErrFileNotFound, filePath)
	}

	v.SetConfigFile(filePath)

	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != "" {
		v.SetConfigType(ext[1:])
	} else {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading composition: %v", errors.ErrConfigParseError, err)
	}

	comp := &Composition{}
	if err := v.Unmarshal(comp); err != nil {
		return nil, fmt.Errorf("%w: parsing composition: %v", errors.ErrConfigParseError, err)
	}

	if comp.Variables == nil {
		comp.Variables = make(map[string]interface{})
	}

	addSystemVariables(comp, cfg)

	return comp, nil
}

// addSystemVariables adds config and environment values to the variables.
// Values set in the file win.
func addSystemVariables(comp *Composition, cfg *config.AppConfig) {
	set := func(k string, v interface{}) {
		if _, ok := comp.Variables[k]; !ok {
			comp.Variables[k] = v
		}
	}

	if cfg != nil {
		set("output_dir", cfg.Packaging.OutputDir)
		set("publisher_prefix", cfg.Publisher.Prefix)
		set("environment", cfg.Environment.Mode)
	}

	if cwd, err := os.Getwd(); err == nil {
		set("current_dir", cwd)
	}

	set("timestamp", fmt.Sprintf("%d", time.Now().Unix()))
}

// renderParameters renders the template strings in step parameters, including
// those nested in maps and lists.
func renderParameters(step Step, variables map[string]interface{}) (Step, error) {
	processed, err := processValue(step.Parameters, variables)
	if err != nil {
		return step, err
	}
	step.Parameters, _ = processed.(map[string]interface{})
	return step, nil
}

func processValue(value interface{}, variables map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return processTemplate(v, variables)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			p, err := processValue(item, variables)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", key, err)
			}
			out[key] = p
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			p, err := processValue(item, variables)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	default:
		return value, nil
	}
}

// processTemplate renders a single template string
func processTemplate(templateString string, variables map[string]interface{}) (string, error) {
	if !strings.Contains(templateString, "{{") && !strings.Contains(templateString, "}}") {
		return templateString, nil
	}

	tmpl, err := template.New("inline").Option("missingkey=error").Parse(templateString)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, variables); err != nil {
		return "", err
	}

	return buffer.String(), nil
}

// ValidateComposition validates the composition structure and step parameters
func ValidateComposition(comp *Composition) []error {
	var errs []error

	if comp.Name == "" {
		errs = append(errs, fmt.Errorf("%w: composition name is required", errors.ErrInvalidArgument))
	}

	if len(comp.Steps) == 0 {
		errs = append(errs, fmt.Errorf("%w: composition must contain at least one step", errors.ErrInvalidArgument))
	}

	seen := make(map[string]bool, len(comp.Steps))
	for i, step := range comp.Steps {
		if step.Name == "" {
			errs = append(errs, fmt.Errorf("%w: step %d: name is required", errors.ErrInvalidArgument, i+1))
		} else if seen[step.Name] {
			errs = append(errs, fmt.Errorf("%w: step %d: duplicate name %q", errors.ErrInvalidArgument, i+1, step.Name))
		}
		seen[step.Name] = true

		if step.Type == "" {
			errs = append(errs, fmt.Errorf("%w: step %d (%s): type is required", errors.ErrInvalidArgument, i+1, step.Name))
			continue
		}

		stepDef, ok := stepSpecs[step.Type]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: step %d (%s): invalid type '%s'", errors.ErrInvalidArgument, i+1, step.Name, step.Type))
			continue
		}

		for _, param := range stepDef.required {
			if _, ok := step.Parameters[param]; !ok {
				errs = append(errs, fmt.Errorf("%w: step %d (%s): missing required parameter '%s'",
					errors.ErrInvalidArgument, i+1, step.Name, param))
			}
		}
	}

	return errs
}

// Runner executes compositions against a configuration.
type Runner struct {
	cfg      *config.AppConfig
	handlers map[string]StepHandler
}

// NewRunner returns a Runner using cfg for every build step.
func NewRunner(cfg *config.AppConfig) *Runner {
	return &Runner{cfg: cfg, handlers: createStepHandlerRegistry()}
}

// Execute runs the composition steps in order. Step results are merged into
// the variables and are visible to later step conditions.
func (r *Runner) Execute(ctx context.Context, comp *Composition) error {
	logger.LogInfo("Starting composition", map[string]interface{}{
		"composition": comp.Name,
		"steps":       len(comp.Steps),
	})

	for i, step := range comp.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.LogInfo(fmt.Sprintf("Executing step %d/%d: %s", i+1, len(comp.Steps), step.Name),
			map[string]interface{}{
				"type":        step.Type,
				"description": step.Description,
			})

		if step.Condition != "" {
			shouldRun, err := evaluateCondition(step.Condition, comp.Variables)
			if err != nil {
				return fmt.Errorf("error evaluating condition for step '%s': %w", step.Name, err)
			}

			if !shouldRun {
				logger.LogInfo(fmt.Sprintf("Skipping step %d/%d: %s (condition not met)", i+1, len(comp.Steps), step.Name), nil)
				continue
			}
		}

		handler, found := r.handlers[step.Type]
		if !found {
			return fmt.Errorf("%w: no handler found for step type '%s'", errors.ErrInvalidArgument, step.Type)
		}

		step, err := renderParameters(step, comp.Variables)
		if err != nil {
			return fmt.Errorf("error processing templates in step '%s': %w", step.Name, err)
		}

		result, err := handler(ctx, r.cfg, step)
		if err != nil {
			return fmt.Errorf("error executing step '%s': %w", step.Name, err)
		}

		for k, v := range result {
			comp.Variables[k] = v
		}

		logger.LogInfo(fmt.Sprintf("Completed step %d/%d: %s", i+1, len(comp.Steps), step.Name), nil)
	}

	logger.LogInfo("Composition completed successfully", map[string]interface{}{
		"composition": comp.Name,
	})

	return nil
}
