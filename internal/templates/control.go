package templates

import (
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
)

// Condition branches on expression. A nil whenFalse omits the else branch.
func Condition(expression any, whenTrue, whenFalse flow.ActionMap) *flow.Action {
	if whenTrue == nil {
		whenTrue = flow.ActionMap{}
	}
	a := &flow.Action{Type: flow.ActionIf, Expression: expression, Actions: whenTrue}
	if whenFalse != nil {
		a.Else = &flow.Branch{Actions: whenFalse}
	}
	return a
}

// Switch matches expression against cases keyed by case value. A nil
// defaultActions omits the default branch.
func Switch(expression string, cases map[string]flow.ActionMap, defaultActions flow.ActionMap) *flow.Action {
	a := &flow.Action{
		Type:       flow.ActionSwitch,
		Expression: expression,
		Cases:      make(map[string]*flow.SwitchCase, len(cases)),
	}
	for value, actions := range cases {
		a.Cases[value] = &flow.SwitchCase{Case: value, Actions: actions}
	}
	if defaultActions != nil {
		a.Default = &flow.Branch{Actions: defaultActions}
	}
	return a
}

// Foreach runs actions for every item of collection.
func Foreach(collection string, actions flow.ActionMap) *flow.Action {
	return &flow.Action{Type: flow.ActionForeach, Foreach: collection, Actions: actions}
}

// Until repeats actions until expression holds or the limit is reached.
func Until(expression string, limit *flow.LoopLimit, actions flow.ActionMap) *flow.Action {
	return &flow.Action{Type: flow.ActionUntil, Expression: expression, Limit: limit, Actions: actions}
}

// Scope groups actions.
func Scope(actions flow.ActionMap) *flow.Action {
	return &flow.Action{Type: flow.ActionScope, Actions: actions}
}
