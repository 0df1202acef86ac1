// Package connector discovers the external connectors a workflow definition
// references by walking the host descriptors of its triggers and actions.
package connector

import (
	"regexp"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"go.uber.org/zap"
)

const (
	// APIPrefix prefixes the resource identifier synthesized for a logical name.
	APIPrefix = "/providers/Microsoft.PowerApps/apis/"

	// SharePointName is the logical name of the SharePoint Online connector.
	SharePointName = "shared_sharepointonline"

	sharePointMarker = "sharepointonline"
)

var connectionNamePattern = regexp.MustCompile(`parameters\('\$connections'\)\['([^']+)'\]\['connectionId'\]`)

// ResourceID returns the API resource identifier of a logical connector name.
func ResourceID(logicalName string) string {
	return APIPrefix + logicalName
}

// LogicalNameFromExpression extracts the logical connector name from a
// $connections parameter expression.
func LogicalNameFromExpression(expr string) (string, bool) {
	m := connectionNamePattern.FindStringSubmatch(expr)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// Discoverer records every connector reached from the nodes it is given into a
// Registry.
type Discoverer struct {
	registry *Registry
	logger   *zap.Logger
	visits   int
}

// NewDiscoverer returns a Discoverer writing into registry. A nil logger
// disables discovery warnings.
func NewDiscoverer(registry *Registry, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{registry: registry, logger: logger}
}

// Registry returns the registry being filled.
func (d *Discoverer) Registry() *Registry {
	return d.registry
}

// Visits returns the number of action nodes inspected so far.
func (d *Discoverer) Visits() int {
	return d.visits
}

// DiscoverTrigger inspects a connector-bound trigger.
func (d *Discoverer) DiscoverTrigger(name string, t *flow.Trigger) {
	if t == nil || !flow.IsConnectorTrigger(t.Type) {
		return
	}
	if host, ok := flow.HostFromInputs(t.Inputs); ok {
		d.DiscoverHost(name, host)
	}
}

// DiscoverAction inspects a and every action nested beneath it.
func (d *Discoverer) DiscoverAction(name string, a *flow.Action) {
	flow.Walk(name, a, d.visit)
}

// DiscoverDefinition inspects every trigger and action of def.
func (d *Discoverer) DiscoverDefinition(def *flow.Definition) {
	if def == nil {
		return
	}
	for _, name := range def.Triggers.Names() {
		d.DiscoverTrigger(name, def.Triggers[name])
	}
	flow.WalkMap(def.Actions, d.visit)
}

func (d *Discoverer) visit(name string, a *flow.Action) {
	d.visits++
	if !flow.IsConnectorAction(a.Type) {
		return
	}
	if host, ok := flow.HostFromInputs(a.Inputs); ok {
		d.DiscoverHost(name, host)
	}
}

// DiscoverHost applies the discovery rules to one host descriptor. node names
// the trigger or action owning the host and is only used for logging.
func (d *Discoverer) DiscoverHost(node string, host *flow.Host) {
	if host == nil {
		return
	}

	switch {
	case host.ConnectionName != "" && host.APIID != "":
		d.add(host.ConnectionName, host.APIID)

	case host.Connection != nil:
		if host.Connection.Name == "" {
			break
		}
		name, ok := LogicalNameFromExpression(host.Connection.Name)
		if !ok {
			d.logger.Warn("could not parse logical connection name, connector map may be incomplete",
				zap.String("node", node),
				zap.String("expression", host.Connection.Name),
				zap.Error(errors.ErrDiscovery))
			break
		}
		d.add(name, ResourceID(name))

	case host.API != nil && host.API.ID != "":
		d.add(lastSegment(host.API.ID), host.API.ID)
	}

	if host.API != nil && strings.Contains(host.API.ID, sharePointMarker) {
		d.add(SharePointName, ResourceID(SharePointName))
	}
}

func (d *Discoverer) add(name, id string) {
	if d.registry.Add(name, id) {
		d.logger.Debug("discovered connector", zap.String("connector", name), zap.String("api_id", id))
	}
}

func lastSegment(id string) string {
	id = strings.TrimRight(id, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
