// Package solution serializes assembled workflows into a solution package: a
// zip holding solution.xml, customizations.xml, [Content_Types].xml and one
// JSON document per workflow under Workflows/.
package solution

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/connector"
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"github.com/deploymenttheory/go-flow-composer/internal/identity"
)

// SolutionInfo describes the solution being exported.
type SolutionInfo struct {
	UniqueName    string
	LocalizedName string
	Version       string
	Description   string
	Managed       bool
}

// PublisherInfo describes the publisher owning the solution.
type PublisherInfo struct {
	UniqueName        string
	LocalizedName     string
	Prefix            string
	OptionValuePrefix int
}

// Workflow is one assembled workflow ready for packaging.
type Workflow struct {
	ID          string
	Name        string
	Description string
	ClientData  *flow.ClientData
	Connectors  *connector.Registry
}

// Validate checks the fields every package needs.
func (s SolutionInfo) Validate() error {
	if strings.TrimSpace(s.UniqueName) == "" {
		return fmt.Errorf("%w: solution unique name is required", errors.ErrInvalidArgument)
	}
	if strings.ContainsAny(s.UniqueName, `/\`) || s.UniqueName == "." || s.UniqueName == ".." {
		return fmt.Errorf("%w: solution unique name %q must not contain path separators", errors.ErrInvalidArgument, s.UniqueName)
	}
	if strings.TrimSpace(s.Version) == "" {
		return fmt.Errorf("%w: solution version is required", errors.ErrInvalidArgument)
	}
	return nil
}

// Validate checks the fields every package needs.
func (p PublisherInfo) Validate() error {
	if strings.TrimSpace(p.UniqueName) == "" {
		return fmt.Errorf("%w: publisher unique name is required", errors.ErrInvalidArgument)
	}
	if strings.TrimSpace(p.Prefix) == "" {
		return fmt.Errorf("%w: publisher prefix is required", errors.ErrInvalidArgument)
	}
	return nil
}

func validateWorkflows(workflows []Workflow) error {
	if len(workflows) == 0 {
		return errors.ErrNoWorkflows
	}
	seen := make(map[string]struct{}, len(workflows))
	for _, wf := range workflows {
		if strings.TrimSpace(wf.ID) == "" {
			return fmt.Errorf("%w: workflow %q has no id", errors.ErrInvalidArgument, wf.Name)
		}
		if wf.ClientData == nil {
			return fmt.Errorf("%w: workflow %q has no definition", errors.ErrInvalidDefinition, wf.Name)
		}
		key := identity.Upper(wf.ID)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate workflow id %s", errors.ErrInvalidArgument, wf.ID)
		}
		seen[key] = struct{}{}
	}
	return nil
}
