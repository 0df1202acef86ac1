package templates

import (
	"fmt"

	"github.com/deploymenttheory/go-flow-composer/internal/flow"
)

// EnvironmentOptions names the variable holding the run mode and its values.
type EnvironmentOptions struct {
	Variable  string
	ProdValue string
	DevValue  string
}

func (o EnvironmentOptions) withDefaults() EnvironmentOptions {
	if o.Variable == "" {
		o.Variable = "prodOrDev"
	}
	if o.ProdValue == "" {
		o.ProdValue = "prod"
	}
	if o.DevValue == "" {
		o.DevValue = "dev"
	}
	return o
}

// EnvironmentVariable initializes the run mode variable.
func EnvironmentVariable(opts EnvironmentOptions, prod bool) *flow.Action {
	opts = opts.withDefaults()
	value := opts.DevValue
	if prod {
		value = opts.ProdValue
	}
	return InitializeVariable(opts.Variable, "string", value)
}

// EnvironmentCondition runs prodAction in production and devAction otherwise.
func EnvironmentCondition(opts EnvironmentOptions, prodAction, devAction *flow.Action) *flow.Action {
	opts = opts.withDefaults()
	expr := map[string]any{
		"and": []any{
			map[string]any{"equals": []any{fmt.Sprintf("@variables('%s')", opts.Variable), opts.ProdValue}},
		},
	}
	return Condition(expr,
		flow.ActionMap{"productionAction": prodAction},
		flow.ActionMap{"developmentAction": devAction})
}

// LinkToItemVariable initializes a variable holding the triggering item's
// link, optionally pinned to a list view.
func LinkToItemVariable(name, viewID string) *flow.Action {
	if name == "" {
		name = "linkToItem"
	}
	value := "@triggerBody()?['{Link}']"
	if viewID != "" {
		value = fmt.Sprintf("@concat(triggerBody()?['{Link}'], '&viewid=%s')", viewID)
	}
	return InitializeVariable(name, "string", value)
}
