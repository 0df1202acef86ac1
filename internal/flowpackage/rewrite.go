package flowpackage

import (
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
)

// AuthenticationExpression is injected as inputs.authentication of every
// trigger and action.
const AuthenticationExpression = "@parameters('$authentication')"

// Rewrite prepares def for import: legacy ApiConnection triggers and actions
// become OpenApiConnection at every depth, authentication is injected and the
// parameter block is reset.
func Rewrite(def *flow.Definition) {
	def.Parameters = map[string]*flow.Parameter{
		"$connections":    {Type: "Object", DefaultValue: map[string]any{}},
		"$authentication": {Type: "SecureObject", DefaultValue: map[string]any{}},
	}

	for _, name := range def.Triggers.Names() {
		t := def.Triggers[name]
		if t == nil {
			continue
		}
		if t.Type == flow.TriggerAPIConnection {
			t.Type = flow.TriggerOpenAPIConnection
		}
		if t.Inputs == nil {
			t.Inputs = make(map[string]any)
		}
		t.Inputs["authentication"] = AuthenticationExpression
	}

	flow.WalkMap(def.Actions, rewriteAction)
}

// rewriteAction gives every action an inputs object carrying the
// authentication expression. Scalar and list inputs (a Compose of a string,
// for example) have no member to hold it and are left as they are.
func rewriteAction(_ string, a *flow.Action) {
	if a.Type == flow.ActionAPIConnection {
		a.Type = flow.ActionOpenAPIConnection
	}

	switch inputs := a.Inputs.(type) {
	case nil:
		a.Inputs = map[string]any{"authentication": AuthenticationExpression}
	case map[string]any:
		if inputs == nil {
			inputs = make(map[string]any)
			a.Inputs = inputs
		}
		inputs["authentication"] = AuthenticationExpression
	}
}
