package flow

import (
	"sort"
)

// nestedFields declares, for every composite action kind, which of its fields
// hold nested action maps. Anything that recurses into a definition goes
// through this table.
var nestedFields = map[ActionType]func(a *Action) []ActionMap{
	ActionIf: func(a *Action) []ActionMap {
		maps := []ActionMap{a.Actions}
		if a.Else != nil {
			maps = append(maps, a.Else.Actions)
		}
		return maps
	},
	ActionSwitch: func(a *Action) []ActionMap {
		var maps []ActionMap
		for _, name := range sortedKeys(a.Cases) {
			if c := a.Cases[name]; c != nil {
				maps = append(maps, c.Actions)
			}
		}
		if a.Default != nil {
			maps = append(maps, a.Default.Actions)
		}
		return maps
	},
	ActionForeach: bodyOnly,
	ActionUntil:   bodyOnly,
	ActionScope:   bodyOnly,
}

func bodyOnly(a *Action) []ActionMap {
	return []ActionMap{a.Actions}
}

// IsComposite reports whether an action kind nests further actions.
func IsComposite(t ActionType) bool {
	_, ok := nestedFields[t]
	return ok
}

// NestedActions returns the nested action maps of a composite action, in a
// stable order. Leaf actions return nil.
func NestedActions(a *Action) []ActionMap {
	if a == nil {
		return nil
	}
	fields, ok := nestedFields[a.Type]
	if !ok {
		return nil
	}

	var maps []ActionMap
	for _, m := range fields(a) {
		if len(m) > 0 {
			maps = append(maps, m)
		}
	}
	return maps
}

// Names returns the action names in lexical order.
func (m ActionMap) Names() []string {
	return sortedKeys(m)
}

// Names returns the trigger names in lexical order.
func (m TriggerMap) Names() []string {
	return sortedKeys(m)
}

// Walk visits root and every action nested beneath it, depth first, in lexical
// name order within each map. Each distinct node is visited exactly once, even if
// the same action value is reachable from more than one branch.
func Walk(name string, root *Action, fn func(name string, a *Action)) {
	walk(name, root, fn, make(map[*Action]struct{}))
}

// WalkMap applies Walk to every action of m.
func WalkMap(m ActionMap, fn func(name string, a *Action)) {
	seen := make(map[*Action]struct{})
	for _, name := range m.Names() {
		walk(name, m[name], fn, seen)
	}
}

func walk(name string, a *Action, fn func(string, *Action), seen map[*Action]struct{}) {
	if a == nil {
		return
	}
	if _, ok := seen[a]; ok {
		return
	}
	seen[a] = struct{}{}

	fn(name, a)

	for _, nested := range NestedActions(a) {
		for _, child := range nested.Names() {
			walk(child, nested[child], fn, seen)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
