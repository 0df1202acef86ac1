// Package examples holds the named example workflows the CLI can package.
// Each example turns the user configuration and a set of string inputs into
// the triggers and actions of one workflow.
package examples

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/generator"
)

// Inputs are the dynamic values supplied on the command line, keyed by input
// name (for example "list-id").
type Inputs map[string]string

// Get returns the input value, or fallback when it is unset or empty.
func (in Inputs) Get(name, fallback string) string {
	if v := strings.TrimSpace(in[name]); v != "" {
		return v
	}
	return fallback
}

// Input describes one dynamic input an example understands.
type Input struct {
	Name        string
	Description string
	Required    bool
}

// Flow is a configured example ready to be assembled.
type Flow struct {
	DisplayName string
	Description string

	// AddSteps adds the triggers and actions of the workflow to g.
	AddSteps func(g *generator.Generator)
}

// Example is a named, configurable workflow.
type Example struct {
	Name        string
	Description string
	Inputs      []Input

	configure func(cfg *config.AppConfig, in Inputs) (*Flow, error)
}

// Configure resolves the example against cfg and in. Missing required inputs
// return ErrConfigurationMissing.
func (e *Example) Configure(cfg *config.AppConfig, in Inputs) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is nil", errors.ErrInvalidArgument)
	}

	var missing []string
	for _, input := range e.Inputs {
		if input.Required && in.Get(input.Name, "") == "" {
			missing = append(missing, "--"+input.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: example %q requires %s",
			errors.ErrConfigurationMissing, e.Name, strings.Join(missing, ", "))
	}

	return e.configure(cfg, in)
}

var (
	mu       sync.RWMutex
	registry = map[string]*Example{}
)

// Register adds e to the registry. Registering a name twice panics.
func Register(e *Example) {
	mu.Lock()
	defer mu.Unlock()

	if _, dup := registry[e.Name]; dup {
		panic("examples: duplicate example " + e.Name)
	}
	registry[e.Name] = e
}

// Lookup returns the example registered under name.
func Lookup(name string) (*Example, error) {
	mu.RLock()
	defer mu.RUnlock()

	if e, ok := registry[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q (available: %s)",
		errors.ErrExampleNotFound, name, strings.Join(namesLocked(), ", "))
}

// Names returns the registered example names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered example sorted by name.
func All() []*Example {
	names := Names()

	mu.RLock()
	defer mu.RUnlock()

	out := make([]*Example, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name])
	}
	return out
}

// AllInputs returns every input used by any example, sorted by name. An
// input shared by several examples is listed once.
func AllInputs() []Input {
	seen := map[string]Input{}
	for _, e := range All() {
		for _, in := range e.Inputs {
			if _, ok := seen[in.Name]; !ok {
				seen[in.Name] = in
			}
		}
	}

	out := make([]Input, 0, len(seen))
	for _, in := range seen {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Assemble configures the named example and returns a generator holding the
// finished workflow.
func Assemble(name string, cfg *config.AppConfig, in Inputs, opts ...generator.Option) (*generator.Generator, error) {
	e, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	f, err := e.Configure(cfg, in)
	if err != nil {
		return nil, err
	}

	opts = append([]generator.Option{generator.WithConnectionID(cfg.Connections.ActualConnectionID)}, opts...)
	g := generator.New(f.DisplayName, f.Description, opts...)
	f.AddSteps(g)
	return g, nil
}
