// Package flowpackage exports a single flow manifest as an importable flow
// package: a root manifest of API, connection and flow resources plus the
// rewritten definition under Microsoft.Flow/flows/<id>/.
package flowpackage

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/jsonutil"
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
)

// Manifest is an exported flow manifest.
type Manifest struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`

	Extra flow.Extra `json:"-"`
}

// Properties holds the flow document carried by a Manifest.
type Properties struct {
	APIID                string                         `json:"apiId,omitempty"`
	DisplayName          string                         `json:"displayName"`
	Description          string                         `json:"description,omitempty"`
	Definition           *flow.Definition               `json:"definition"`
	ConnectionReferences map[string]ConnectionReference `json:"connectionReferences,omitempty"`

	// Members such as state, templateName or flowFailureAlertSubscribed
	Extra flow.Extra `json:"-"`
}

type (
	plainManifest   Manifest
	plainProperties Properties
)

func (m *Manifest) UnmarshalJSON(data []byte) error {
	return flow.DecodeObject(data, (*plainManifest)(m), &m.Extra)
}

func (m Manifest) MarshalJSON() ([]byte, error) {
	return flow.EncodeObject(plainManifest(m), m.Extra)
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	return flow.DecodeObject(data, (*plainProperties)(p), &p.Extra)
}

func (p Properties) MarshalJSON() ([]byte, error) {
	return flow.EncodeObject(plainProperties(p), p.Extra)
}

// ConnectionReference binds a connector of the packaged flow to the
// connection resource created for it.
type ConnectionReference struct {
	Connection ResourceRef `json:"connection"`
	API        ResourceRef `json:"api"`
}

// ResourceRef points at a resource by id.
type ResourceRef struct {
	ID string `json:"id"`
}

// LoadManifest reads a flow manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	m := &Manifest{}
	if err := jsonutil.ReadJSONFile(path, m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks the fields required for export.
func (m *Manifest) Validate() error {
	if m.Properties.Definition == nil {
		return fmt.Errorf("%w: manifest has no properties.definition", errors.ErrInvalidDefinition)
	}
	if strings.TrimSpace(m.Properties.DisplayName) == "" {
		return fmt.Errorf("%w: manifest has no properties.displayName", errors.ErrInvalidArgument)
	}
	return nil
}

// PackageID returns the flow id used to name the package: the last segment of
// the manifest id.
func (m *Manifest) PackageID() string {
	id := strings.TrimRight(m.ID, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
