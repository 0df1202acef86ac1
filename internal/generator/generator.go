// Package generator assembles a workflow definition from triggers and actions
// and keeps the connector map of everything added to it up to date.
package generator

import (
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/connector"
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"github.com/deploymenttheory/go-flow-composer/internal/identity"
	"github.com/deploymenttheory/go-flow-composer/internal/solution"
	"go.uber.org/zap"
)

const (
	clientDataSchemaVersion = "1.0.0.0"

	// ReferenceSource is the source recorded on every connection reference.
	ReferenceSource = "Invoker"

	paramConnections    = "$connections"
	paramAuthentication = "$authentication"
)

// Generator accumulates one workflow. Triggers and actions are keyed by name;
// adding a node under an existing name replaces it.
type Generator struct {
	id           string
	displayName  string
	description  string
	connectionID string

	triggers flow.TriggerMap
	actions  flow.ActionMap

	discoverer *connector.Discoverer
	logger     *zap.Logger
}

// Option customises a Generator.
type Option func(*Generator)

// WithIDGenerator sets the source of the workflow id.
func WithIDGenerator(ids identity.Generator) Option {
	return func(g *Generator) {
		if ids != nil {
			g.id = ids.NewID()
		}
	}
}

// WithConnectionID sets the actual connection id bound to every connector.
func WithConnectionID(id string) Option {
	return func(g *Generator) {
		if id != "" {
			g.connectionID = id
		}
	}
}

// WithLogger sets the logger used for discovery messages.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New starts an empty workflow with a fresh id.
func New(displayName, description string, opts ...Option) *Generator {
	g := &Generator{
		displayName:  displayName,
		description:  description,
		connectionID: config.DefaultActualConnectionID,
		triggers:     make(flow.TriggerMap),
		actions:      make(flow.ActionMap),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.id == "" {
		g.id = identity.Random().NewID()
	}
	g.discoverer = connector.NewDiscoverer(connector.NewRegistry(), g.logger.Named("discovery"))
	return g
}

// AddTrigger stores t under name and records the connectors it references.
func (g *Generator) AddTrigger(name string, t *flow.Trigger) *Generator {
	g.triggers[name] = t
	g.discoverer.DiscoverTrigger(name, t)
	return g
}

// AddAction stores a under name and records the connectors referenced by it
// and every action nested within it.
func (g *Generator) AddAction(name string, a *flow.Action) *Generator {
	g.actions[name] = a
	g.discoverer.DiscoverAction(name, a)
	return g
}

// WorkflowID returns the id assigned when the workflow was created.
func (g *Generator) WorkflowID() string { return g.id }

// DisplayName returns the workflow display name.
func (g *Generator) DisplayName() string { return g.displayName }

// Description returns the workflow description.
func (g *Generator) Description() string { return g.description }

// ConnectionID returns the actual connection id bound to every connector.
func (g *Generator) ConnectionID() string { return g.connectionID }

// Connectors returns a copy of the discovered connector map.
func (g *Generator) Connectors() map[string]string {
	return g.discoverer.Registry().Map()
}

// ConnectorRegistry returns the discovered connectors in discovery order.
func (g *Generator) ConnectorRegistry() *connector.Registry {
	return g.discoverer.Registry()
}

// Definition returns the workflow definition document. The $connections
// parameter carries one entry per discovered connector.
func (g *Generator) Definition() *flow.Definition {
	conns := make(map[string]any, g.discoverer.Registry().Len())
	for _, name := range g.discoverer.Registry().Names() {
		conns[name] = map[string]any{"connectionId": g.connectionID}
	}

	return &flow.Definition{
		Schema:         flow.SchemaURI,
		ContentVersion: flow.ContentVersion,
		Parameters: map[string]*flow.Parameter{
			paramConnections:    {Type: "Object", DefaultValue: conns},
			paramAuthentication: {Type: "SecureObject", DefaultValue: map[string]any{}},
		},
		Triggers: g.triggers,
		Actions:  g.actions,
	}
}

// ClientData wraps Definition with one connection reference per connector.
func (g *Generator) ClientData() *flow.ClientData {
	reg := g.discoverer.Registry()
	refs := make(map[string]flow.ConnectionReference, reg.Len())
	for _, name := range reg.Names() {
		apiID, _ := reg.Get(name)
		refs[name] = flow.ConnectionReference{
			ConnectionName: g.connectionID,
			ID:             apiID,
			Source:         ReferenceSource,
		}
	}

	return &flow.ClientData{
		SchemaVersion: clientDataSchemaVersion,
		Properties: flow.ClientDataProperties{
			ConnectionReferences: refs,
			Definition:           g.Definition(),
		},
	}
}

// Workflow returns the workflow in the form consumed by the solution builder.
func (g *Generator) Workflow() solution.Workflow {
	return solution.Workflow{
		ID:          g.id,
		Name:        g.displayName,
		Description: g.description,
		ClientData:  g.ClientData(),
		Connectors:  g.ConnectorRegistry(),
	}
}
