package generator

import (
	"encoding/json"
	"testing"

	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"github.com/deploymenttheory/go-flow-composer/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendMail(connector string) *flow.Action {
	return &flow.Action{
		Type: flow.ActionAPIConnection,
		Inputs: map[string]any{
			"host": &flow.Host{Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression(connector)}},
			"path": "/v2/Mail",
		},
	}
}

func TestNew_UsesInjectedIdentity(t *testing.T) {
	g := New("Approval", "Approves things", WithIDGenerator(identity.NewSequence()))
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", g.WorkflowID())
	assert.Equal(t, "Approval", g.DisplayName())
	assert.Equal(t, "Approves things", g.Description())
}

func TestNew_RandomIdentity(t *testing.T) {
	a, b := New("a", ""), New("b", "")
	assert.True(t, identity.Valid(a.WorkflowID()))
	assert.NotEqual(t, a.WorkflowID(), b.WorkflowID())
}

func TestDefinition_ConnectionsParameterCoversEveryConnector(t *testing.T) {
	g := New("Flow", "", WithConnectionID("conn-123")).
		AddTrigger("manual", &flow.Trigger{Type: flow.TriggerRequest, Kind: "Button"}).
		AddAction("Notify", &flow.Action{
			Type:    flow.ActionScope,
			Actions: flow.ActionMap{"Send": sendMail("shared_office365")},
		}).
		AddAction("Mail", sendMail("shared_sendmail"))

	def := g.Definition()
	assert.Equal(t, flow.SchemaURI, def.Schema)
	assert.Equal(t, flow.ContentVersion, def.ContentVersion)

	conns := def.Parameters["$connections"]
	require.NotNil(t, conns)
	assert.Equal(t, "Object", conns.Type)
	assert.Equal(t, map[string]any{
		"shared_office365": map[string]any{"connectionId": "conn-123"},
		"shared_sendmail":  map[string]any{"connectionId": "conn-123"},
	}, conns.DefaultValue)

	auth := def.Parameters["$authentication"]
	require.NotNil(t, auth)
	assert.Equal(t, "SecureObject", auth.Type)
	assert.Equal(t, map[string]any{}, auth.DefaultValue)
}

func TestClientData_ReferencesEveryConnector(t *testing.T) {
	g := New("Flow", "").
		AddTrigger("When_item_created", &flow.Trigger{
			Type: flow.TriggerAPIConnection,
			Inputs: map[string]any{
				"host": &flow.Host{
					Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression("shared_sharepointonline")},
					API:        &flow.HostAPI{ID: "/providers/Microsoft.PowerApps/apis/shared_sharepointonline"},
				},
			},
		}).
		AddAction("Send", sendMail("shared_office365"))

	cd := g.ClientData()
	assert.Equal(t, "1.0.0.0", cd.SchemaVersion)
	require.Len(t, cd.Properties.ConnectionReferences, 2)

	for name, id := range g.Connectors() {
		ref, ok := cd.Properties.ConnectionReferences[name]
		require.True(t, ok, name)
		assert.Equal(t, id, ref.ID)
		assert.Equal(t, "Invoker", ref.Source)
		assert.Equal(t, "80cc3634317c459aa3a4a5c587617484", ref.ConnectionName)
	}
}

func TestAddAction_LastWriteWins(t *testing.T) {
	g := New("Flow", "").
		AddAction("Step", &flow.Action{Type: flow.ActionCompose, Inputs: "first"}).
		AddAction("Step", &flow.Action{Type: flow.ActionCompose, Inputs: "second"})

	def := g.Definition()
	require.Len(t, def.Actions, 1)
	assert.Equal(t, "second", def.Actions["Step"].Inputs)
}

func TestClientData_JSONShape(t *testing.T) {
	g := New("Flow", "").AddAction("Send", sendMail("shared_office365"))

	raw, err := json.Marshal(g.ClientData())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	props := doc["properties"].(map[string]any)
	def := props["definition"].(map[string]any)
	assert.Equal(t, flow.SchemaURI, def["$schema"])
	assert.Contains(t, def, "triggers")
	assert.Contains(t, def["actions"], "Send")

	refs := props["connectionReferences"].(map[string]any)
	ref := refs["shared_office365"].(map[string]any)
	assert.Equal(t, "/providers/Microsoft.PowerApps/apis/shared_office365", ref["id"])
	assert.Equal(t, "Invoker", ref["source"])
}

func TestWorkflow_CarriesConnectors(t *testing.T) {
	g := New("Flow", "desc").AddAction("Send", sendMail("shared_office365"))
	wf := g.Workflow()

	assert.Equal(t, g.WorkflowID(), wf.ID)
	assert.Equal(t, "Flow", wf.Name)
	assert.Equal(t, []string{"shared_office365"}, wf.Connectors.Names())
	assert.NotNil(t, wf.ClientData)
}

func flatHostAction(name, apiID string) *flow.Action {
	return &flow.Action{
		Type:   flow.ActionOpenAPIConnection,
		Inputs: map[string]any{"host": &flow.Host{ConnectionName: name, APIID: apiID}},
	}
}

func TestAddAction_DiscoversFourLevelsDeep(t *testing.T) {
	leaf := sendMail("shared_office365")

	g := New("Deep", "").AddAction("Check", &flow.Action{
		Type:       flow.ActionIf,
		Expression: "@true",
		Actions: flow.ActionMap{
			"Route": {
				Type:       flow.ActionSwitch,
				Expression: "@triggerBody()?['Stage']",
				Cases: map[string]*flow.SwitchCase{
					"Review": {
						Case: "Review",
						Actions: flow.ActionMap{
							"Each": {
								Type:    flow.ActionForeach,
								Foreach: "@triggerBody()?['Reviewers']",
								Actions: flow.ActionMap{
									"Group": {
										Type:    flow.ActionScope,
										Actions: flow.ActionMap{"Notify": leaf},
									},
								},
							},
						},
					},
				},
			},
		},
	})

	assert.Equal(t, map[string]string{
		"shared_office365": "/providers/Microsoft.PowerApps/apis/shared_office365",
	}, g.Connectors())
}

func TestAddAction_FirstDiscoveredIDWins(t *testing.T) {
	g := New("Ids", "").
		AddTrigger("When", &flow.Trigger{
			Type:   flow.TriggerOpenAPIConnection,
			Inputs: map[string]any{"host": &flow.Host{ConnectionName: "shared_custom", APIID: "/providers/Custom/apis/from-trigger"}},
		}).
		AddAction("Wrap", &flow.Action{
			Type:    flow.ActionScope,
			Actions: flow.ActionMap{"Call": flatHostAction("shared_custom", "/providers/Custom/apis/from-action")},
		})

	assert.Equal(t, "/providers/Custom/apis/from-trigger", g.Connectors()["shared_custom"])
	assert.Len(t, g.Connectors(), 1)
}
