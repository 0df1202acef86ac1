package flowpackage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	compression "github.com/deploymenttheory/go-flow-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/fsutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/jsonutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/xmlutil"
	"github.com/deploymenttheory/go-flow-composer/internal/connector"
	"github.com/deploymenttheory/go-flow-composer/internal/identity"
	"go.uber.org/zap"
)

const (
	manifestSchema = "1.0"
	iconURI        = "https://connectoricons-prod.azureedge.net/releases/v1.0.1611/1.0.1611.3105/default/icon.png"

	typeAPI        = "Microsoft.PowerApps/apis"
	typeConnection = "Microsoft.PowerApps/apis/connections"
	typeFlow       = "Microsoft.Flow/flows"

	flowRoot = "Microsoft.Flow"
)

// Options configures Export.
type Options struct {
	OutputDir string
	IDs       identity.Generator
	Clock     func() time.Time
	Logger    *zap.Logger
}

func (o *Options) setDefaults() {
	if o.OutputDir == "" {
		o.OutputDir = "output"
	}
	if o.IDs == nil {
		o.IDs = identity.Random()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// RootManifest is the package manifest listing every resource to import.
type RootManifest struct {
	Schema    string               `json:"schema"`
	Details   PackageDetails       `json:"details"`
	Resources map[string]*Resource `json:"resources"`
}

// PackageDetails describes the package.
type PackageDetails struct {
	DisplayName        string `json:"displayName"`
	Description        string `json:"description"`
	CreatedTime        string `json:"createdTime"`
	PackageTelemetryID string `json:"packageTelemetryId"`
	Creator            string `json:"creator"`
	SourceEnvironment  string `json:"sourceEnvironment"`
}

// Resource is one API, connection or flow resource of the package.
type Resource struct {
	ID                    string          `json:"id,omitempty"`
	Name                  string          `json:"name,omitempty"`
	Type                  string          `json:"type"`
	SuggestedCreationType string          `json:"suggestedCreationType"`
	CreationType          string          `json:"creationType,omitempty"`
	Details               ResourceDetails `json:"details"`
	ConfigurableBy        string          `json:"configurableBy"`
	Hierarchy             string          `json:"hierarchy"`
	DependsOn             []string        `json:"dependsOn"`
}

// ResourceDetails holds the display data of a resource.
type ResourceDetails struct {
	DisplayName string `json:"displayName"`
	IconURI     string `json:"iconUri,omitempty"`
}

// Package is an assembled flow package.
type Package struct {
	ID             string
	Manifest       *RootManifest
	APIs           map[string]string
	Connections    map[string]string
	Flow           *Manifest
	ConnectorNames []string
}

// Assemble rewrites m in place and derives the package resources. Every call
// draws fresh resource ids.
func Assemble(m *Manifest, opts Options) (*Package, error) {
	opts.setDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}

	def := m.Properties.Definition
	Rewrite(def)

	disc := connector.NewDiscoverer(connector.NewRegistry(), opts.Logger.Named("discovery"))
	disc.DiscoverDefinition(def)
	reg := disc.Registry()

	pkgID := m.PackageID()
	if pkgID == "" {
		pkgID = opts.IDs.NewID()
	}

	root := &RootManifest{
		Schema: manifestSchema,
		Details: PackageDetails{
			DisplayName:        m.Properties.DisplayName,
			Description:        m.Properties.Description,
			CreatedTime:        opts.Clock().UTC().Format("2006-01-02T15:04:05.000Z"),
			PackageTelemetryID: opts.IDs.NewID(),
			Creator:            "N/A",
		},
		Resources: make(map[string]*Resource),
	}

	pkg := &Package{
		ID:             pkgID,
		Manifest:       root,
		APIs:           make(map[string]string, reg.Len()),
		Connections:    make(map[string]string, reg.Len()),
		Flow:           m,
		ConnectorNames: reg.Names(),
	}

	var apiIDs, connIDs []string
	for _, name := range reg.Names() {
		apiResourceID, _ := reg.Get(name)
		apiGUID, connGUID := opts.IDs.NewID(), opts.IDs.NewID()
		pkg.APIs[name] = apiGUID
		pkg.Connections[name] = connGUID
		apiIDs = append(apiIDs, apiGUID)
		connIDs = append(connIDs, connGUID)

		details := ResourceDetails{DisplayName: connector.DisplayName(name), IconURI: iconURI}
		root.Resources[apiGUID] = &Resource{
			ID:                    apiResourceID,
			Name:                  name,
			Type:                  typeAPI,
			SuggestedCreationType: "Existing",
			Details:               details,
			ConfigurableBy:        "System",
			Hierarchy:             "Child",
			DependsOn:             []string{},
		}
		root.Resources[connGUID] = &Resource{
			Type:                  typeConnection,
			SuggestedCreationType: "Existing",
			CreationType:          "Existing",
			Details:               details,
			ConfigurableBy:        "User",
			Hierarchy:             "Child",
			DependsOn:             []string{apiGUID},
		}
	}

	root.Resources[pkgID] = &Resource{
		Type:                  typeFlow,
		SuggestedCreationType: "New",
		CreationType:          "Existing, New, Update",
		Details:               ResourceDetails{DisplayName: m.Properties.DisplayName},
		ConfigurableBy:        "User",
		Hierarchy:             "Root",
		DependsOn:             append(append([]string{}, apiIDs...), connIDs...),
	}

	m.Properties.ConnectionReferences = make(map[string]ConnectionReference, reg.Len())
	for _, name := range reg.Names() {
		apiResourceID, _ := reg.Get(name)
		m.Properties.ConnectionReferences[name] = ConnectionReference{
			Connection: ResourceRef{ID: pkg.Connections[name]},
			API:        ResourceRef{ID: apiResourceID},
		}
	}

	return pkg, nil
}

// ContentTypesXML returns the content type declaration of a flow package.
func ContentTypesXML() []byte {
	return xmlutil.NewWriter("  ").
		Declaration().
		Open("Types", xmlutil.A("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")).
		Empty("Default", xmlutil.A("Extension", "json"), xmlutil.A("ContentType", "application/json")).
		Empty("Default", xmlutil.A("Extension", "xml"), xmlutil.A("ContentType", "application/xml")).
		Close("Types").
		Bytes()
}

// Entries returns the archive entries of pkg.
func (p *Package) Entries() ([]compression.Entry, error) {
	manifest, err := jsonutil.MarshalIndent(p.Manifest)
	if err != nil {
		return nil, err
	}
	apis, err := jsonutil.MarshalIndent(p.APIs)
	if err != nil {
		return nil, err
	}
	conns, err := jsonutil.MarshalIndent(p.Connections)
	if err != nil {
		return nil, err
	}
	definition, err := jsonutil.MarshalIndent(p.Flow)
	if err != nil {
		return nil, err
	}

	flowDir := flowRoot + "/flows/" + p.ID
	return []compression.Entry{
		{Name: "manifest.json", Data: manifest},
		{Name: "[Content_Types].xml", Data: ContentTypesXML()},
		{Name: flowRoot + "/manifest.json", Data: manifest},
		{Name: flowDir + "/definition.json", Data: definition},
		{Name: flowDir + "/apisMap.json", Data: apis},
		{Name: flowDir + "/connectionsMap.json", Data: conns},
	}, nil
}

// Export assembles m and writes <OutputDir>/<flow id>.zip, returning its path.
func Export(ctx context.Context, m *Manifest, opts Options) (string, error) {
	opts.setDefaults()

	pkg, err := Assemble(m, opts)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	entries, err := pkg.Entries()
	if err != nil {
		return "", err
	}
	data, err := compression.ZipBytes(entries)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(opts.OutputDir, pkg.ID+".zip")
	if err := fsutil.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", errors.ErrArchiveWrite, path, err)
	}

	opts.Logger.Info("exported flow package",
		zap.String("flow", m.Properties.DisplayName),
		zap.String("archive", path),
		zap.Strings("connectors", pkg.ConnectorNames))
	return path, nil
}
