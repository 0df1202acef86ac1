package solution

import (
	"strconv"

	"github.com/deploymenttheory/go-flow-composer/internal/common/xmlutil"
	"github.com/deploymenttheory/go-flow-composer/internal/connector"
	"github.com/deploymenttheory/go-flow-composer/internal/identity"
)

const (
	indent       = "  "
	languageCode = "1033"
	xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

	contentTypesNamespace = "http://schemas.openxmlformats.org/package/2006/content-types"

	// Root component type of a workflow.
	componentTypeWorkflow = "29"
)

// addressFields follow AddressTypeCode in every publisher address, in schema
// order. All but ShippingMethodCode are written as xsi:nil.
var addressFields = []string{
	"City", "County", "Country", "Fax", "FreightTermsCode", "ImportSequenceNumber",
	"Latitude", "Line1", "Line2", "Line3", "Longitude", "Name", "PostalCode",
	"PostOfficeBox", "PrimaryContactName",
	"ShippingMethodCode",
	"StateOrProvince", "Telephone1", "Telephone2", "Telephone3",
	"TimeZoneRuleVersionNumber", "UPSZone", "UTCOffset", "UTCConversionTimeZoneCode",
}

// workflowFlags are the fixed workflow metadata values, in schema order.
// IntroducedVersion is inserted after IsTransacted.
var workflowFlags = []struct{ name, value string }{
	{"Type", "1"},
	{"Subprocess", "0"},
	{"Category", "5"},
	{"Mode", "0"},
	{"Scope", "4"},
	{"OnDemand", "0"},
	{"TriggerOnCreate", "0"},
	{"TriggerOnDelete", "0"},
	{"AsyncAutodelete", "0"},
	{"SyncWorkflowLogOnFailure", "0"},
	{"StateCode", "1"},
	{"StatusCode", "2"},
	{"RunAs", "1"},
	{"IsTransacted", "1"},
}

var workflowTrailingFlags = []struct{ name, value string }{
	{"IsCustomizable", "1"},
	{"BusinessProcessType", "0"},
	{"IsCustomProcessingStepAllowedForOtherPublishers", "1"},
	{"ModernFlowType", "0"},
	{"PrimaryEntity", "none"},
}

// customizationsBefore and customizationsAfter are the empty sections around
// the Workflows element.
var (
	customizationsBefore = []string{"Entities", "Roles"}
	customizationsAfter  = []string{
		"FieldSecurityProfiles", "Templates", "EntityMaps", "EntityRelationships",
		"OrganizationSettings", "optionsets", "CustomControls", "EntityDataProviders",
	}
)

// ContentTypesXML returns the content type declaration. It is identical for
// every package.
func ContentTypesXML() []byte {
	return xmlutil.NewWriter(indent).
		Declaration().
		Open("Types", xmlutil.A("xmlns", contentTypesNamespace)).
		Empty("Default", xmlutil.A("Extension", "xml"), xmlutil.A("ContentType", "application/xml")).
		Empty("Default", xmlutil.A("Extension", "json"), xmlutil.A("ContentType", "application/json")).
		Close("Types").
		Bytes()
}

// SolutionXML returns the solution descriptor declaring the solution, its
// publisher and one root component per workflow.
func SolutionXML(sol SolutionInfo, pub PublisherInfo, workflows []Workflow) []byte {
	w := xmlutil.NewWriter(indent).Declaration()
	w.Open("ImportExportXml",
		xmlutil.A("version", "9.2.0.0"),
		xmlutil.A("SolutionPackageVersion", "9.2"),
		xmlutil.A("languagecode", languageCode),
		xmlutil.A("generatedBy", "FlowCreator"),
		xmlutil.A("xmlns:xsi", xsiNamespace))
	w.Open("SolutionManifest")

	w.Elem("UniqueName", sol.UniqueName)
	w.Open("LocalizedNames").
		Empty("LocalizedName", xmlutil.A("description", sol.LocalizedName), xmlutil.A("languagecode", languageCode)).
		Close("LocalizedNames")
	if sol.Description != "" {
		w.Open("Descriptions").
			Empty("Description", xmlutil.A("description", sol.Description), xmlutil.A("languagecode", languageCode)).
			Close("Descriptions")
	} else {
		w.Empty("Descriptions")
	}
	w.Elem("Version", sol.Version)
	w.Elem("Managed", boolFlag(sol.Managed))

	writePublisher(w, pub)

	w.Open("RootComponents")
	for _, wf := range workflows {
		w.Empty("RootComponent",
			xmlutil.A("type", componentTypeWorkflow),
			xmlutil.A("id", identity.Braced(wf.ID)),
			xmlutil.A("behavior", "0"))
	}
	w.Close("RootComponents")
	w.Empty("MissingDependencies")

	w.Close("SolutionManifest")
	w.Close("ImportExportXml")
	return w.Bytes()
}

func writePublisher(w *xmlutil.Writer, pub PublisherInfo) {
	w.Open("Publisher")
	w.Elem("UniqueName", pub.UniqueName)
	w.Open("LocalizedNames").
		Empty("LocalizedName", xmlutil.A("description", pub.LocalizedName), xmlutil.A("languagecode", languageCode)).
		Close("LocalizedNames")
	w.Empty("Descriptions")
	w.Nil("EMailAddress")
	w.Nil("SupportingWebsiteUrl")
	w.Elem("CustomizationPrefix", pub.Prefix)
	w.Elem("CustomizationOptionValuePrefix", strconv.Itoa(pub.OptionValuePrefix))

	w.Open("Addresses")
	for n := 1; n <= 2; n++ {
		w.Open("Address")
		w.Elem("AddressNumber", strconv.Itoa(n))
		w.Elem("AddressTypeCode", "1")
		for _, field := range addressFields {
			if field == "ShippingMethodCode" {
				w.Elem(field, "1")
				continue
			}
			w.Nil(field)
		}
		w.Close("Address")
	}
	w.Close("Addresses")
	w.Close("Publisher")
}

// ConnectionReference is one connection reference declared in
// customizations.xml.
type ConnectionReference struct {
	LogicalName   string
	ConnectorName string
	ConnectorID   string
	DisplayName   string
}

// Collision records a connector whose logical name was already taken by a
// different connector.
type Collision struct {
	LogicalName string
	Kept        string
	Dropped     string
}

// ConnectionReferences returns one reference per distinct logical name across
// all workflows, in discovery order. Connectors mapping onto a logical name
// already taken by another connector are reported as collisions.
func ConnectionReferences(prefix string, workflows []Workflow) ([]ConnectionReference, []Collision) {
	var (
		refs       []ConnectionReference
		collisions []Collision
		byLogical  = make(map[string]string)
	)

	for _, wf := range workflows {
		if wf.Connectors == nil {
			continue
		}
		for _, name := range wf.Connectors.Names() {
			logical := ConnectionReferenceLogicalName(prefix, name)
			if kept, ok := byLogical[logical]; ok {
				if kept != name {
					collisions = append(collisions, Collision{LogicalName: logical, Kept: kept, Dropped: name})
				}
				continue
			}
			id, _ := wf.Connectors.Get(name)
			byLogical[logical] = name
			refs = append(refs, ConnectionReference{
				LogicalName:   logical,
				ConnectorName: name,
				ConnectorID:   id,
				DisplayName:   connector.DisplayName(name),
			})
		}
	}
	return refs, collisions
}

// CustomizationsXML returns the customization descriptor registering every
// workflow and every distinct connection reference.
func CustomizationsXML(sol SolutionInfo, pub PublisherInfo, workflows []Workflow) []byte {
	refs, _ := ConnectionReferences(pub.Prefix, workflows)

	w := xmlutil.NewWriter(indent).Declaration()
	w.Open("ImportExportXml", xmlutil.A("xmlns:xsi", xsiNamespace))
	for _, name := range customizationsBefore {
		w.Empty(name)
	}

	if len(workflows) > 0 {
		w.Open("Workflows")
		for _, wf := range workflows {
			writeWorkflow(w, sol, wf)
		}
		w.Close("Workflows")
	}

	for _, name := range customizationsAfter {
		w.Empty(name)
	}

	if len(refs) > 0 {
		w.Open("connectionreferences")
		for _, ref := range refs {
			w.Open("connectionreference", xmlutil.A("connectionreferencelogicalname", ref.LogicalName))
			w.Elem("connectionreferencedisplayname", ref.DisplayName+" "+sol.LocalizedName)
			w.Elem("connectorid", ref.ConnectorID)
			w.Elem("iscustomizable", "1")
			w.Elem("promptingbehavior", "0")
			w.Elem("statecode", "0")
			w.Elem("statuscode", "1")
			w.Close("connectionreference")
		}
		w.Close("connectionreferences")
	}

	w.Open("Languages").Elem("Language", languageCode).Close("Languages")
	w.Close("ImportExportXml")
	return w.Bytes()
}

func writeWorkflow(w *xmlutil.Writer, sol SolutionInfo, wf Workflow) {
	w.Open("Workflow", xmlutil.A("WorkflowId", identity.Braced(wf.ID)), xmlutil.A("Name", wf.Name))
	w.Elem("JsonFileName", PackagePath(WorkflowFileName(wf.Name, wf.ID)))
	for _, f := range workflowFlags {
		w.Elem(f.name, f.value)
	}
	w.Elem("IntroducedVersion", sol.Version)
	for _, f := range workflowTrailingFlags {
		w.Elem(f.name, f.value)
	}
	w.Open("LocalizedNames").
		Empty("LocalizedName", xmlutil.A("languagecode", languageCode), xmlutil.A("description", wf.Name)).
		Close("LocalizedNames")
	w.Close("Workflow")
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
