package connector

import (
	"testing"

	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func connectorAction(name string) *flow.Action {
	return &flow.Action{
		Type: flow.ActionAPIConnection,
		Inputs: map[string]any{
			"host": &flow.Host{
				Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression(name)},
			},
			"method": "get",
		},
	}
}

func TestLogicalNameFromExpression(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		want   string
		wantOK bool
	}{
		{"expression with at sign", "@parameters('$connections')['shared_office365']['connectionId']", "shared_office365", true},
		{"expression without at sign", "parameters('$connections')['shared_sendmail']['connectionId']", "shared_sendmail", true},
		{"missing connectionId", "@parameters('$connections')['shared_office365']", "", false},
		{"plain name", "shared_office365", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LogicalNameFromExpression(tt.expr)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_FirstWriterWins(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Add("b", "/id/b"))
	assert.True(t, r.Add("a", "/id/a"))
	assert.False(t, r.Add("b", "/other"))

	id, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, "/id/b", id)
	assert.Equal(t, []string{"b", "a"}, r.Names())
	assert.Equal(t, 2, r.Len())

	m := r.Map()
	m["c"] = "/id/c"
	assert.Equal(t, 2, r.Len(), "Map must return a copy")
}

func TestDiscoverHost_Rules(t *testing.T) {
	tests := []struct {
		name string
		host *flow.Host
		want map[string]string
	}{
		{
			name: "connection expression",
			host: &flow.Host{Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression("shared_office365")}},
			want: map[string]string{"shared_office365": "/providers/Microsoft.PowerApps/apis/shared_office365"},
		},
		{
			name: "api id only",
			host: &flow.Host{API: &flow.HostAPI{ID: "/providers/Microsoft.PowerApps/apis/shared_sendmail"}},
			want: map[string]string{"shared_sendmail": "/providers/Microsoft.PowerApps/apis/shared_sendmail"},
		},
		{
			name: "sharepoint api adds sharepoint connector",
			host: &flow.Host{
				Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression("shared_sharepointonline_1")},
				API:        &flow.HostAPI{ID: "/providers/Microsoft.PowerApps/apis/shared_sharepointonline"},
			},
			want: map[string]string{
				"shared_sharepointonline_1": "/providers/Microsoft.PowerApps/apis/shared_sharepointonline_1",
				"shared_sharepointonline":   "/providers/Microsoft.PowerApps/apis/shared_sharepointonline",
			},
		},
		{
			name: "flat manifest form",
			host: &flow.Host{ConnectionName: "shared_teams", APIID: "/providers/Microsoft.PowerApps/apis/shared_teams"},
			want: map[string]string{"shared_teams": "/providers/Microsoft.PowerApps/apis/shared_teams"},
		},
		{
			name: "unparseable connection name",
			host: &flow.Host{Connection: &flow.HostConnection{Name: "not-an-expression"}},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDiscoverer(NewRegistry(), nil)
			d.DiscoverHost("node", tt.host)
			assert.Equal(t, tt.want, d.Registry().Map())
		})
	}
}

func TestDiscoverHost_WarnsOnUnparseableName(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewDiscoverer(NewRegistry(), zap.New(core))

	d.DiscoverHost("Send_mail", &flow.Host{Connection: &flow.HostConnection{Name: "bogus"}})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Send_mail", entry.ContextMap()["node"])
	assert.Equal(t, "bogus", entry.ContextMap()["expression"])
	assert.Equal(t, 0, d.Registry().Len())
}

func TestDiscoverDefinition_FindsConnectorsAtEveryDepth(t *testing.T) {
	// If -> Foreach -> Scope -> Switch case -> leaf
	deepest := connectorAction("shared_level4")
	sw := &flow.Action{
		Type: flow.ActionSwitch,
		Cases: map[string]*flow.SwitchCase{
			"one": {Case: "1", Actions: flow.ActionMap{"Deep": deepest}},
		},
		Default: &flow.Branch{Actions: flow.ActionMap{"Fallback": connectorAction("shared_default")}},
	}
	scope := &flow.Action{Type: flow.ActionScope, Actions: flow.ActionMap{"Switch": sw, "InScope": connectorAction("shared_level3")}}
	loop := &flow.Action{Type: flow.ActionForeach, Foreach: "@triggerBody()", Actions: flow.ActionMap{"Scope": scope}}
	cond := &flow.Action{
		Type:    flow.ActionIf,
		Actions: flow.ActionMap{"Loop": loop},
		Else:    &flow.Branch{Actions: flow.ActionMap{"ElseSend": connectorAction("shared_else")}},
	}

	def := &flow.Definition{
		Triggers: flow.TriggerMap{
			"When_item_created": {
				Type: flow.TriggerAPIConnection,
				Inputs: map[string]any{
					"host": &flow.Host{Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression("shared_trigger")}},
				},
			},
		},
		Actions: flow.ActionMap{
			"Condition": cond,
			"Compose":   {Type: flow.ActionCompose, Inputs: "hello"},
		},
	}

	d := NewDiscoverer(NewRegistry(), nil)
	d.DiscoverDefinition(def)

	assert.ElementsMatch(t,
		[]string{"shared_trigger", "shared_level4", "shared_default", "shared_level3", "shared_else"},
		d.Registry().Names())
	// Compose, Condition, Loop, ElseSend, Scope, InScope, Switch, Deep, Fallback
	assert.Equal(t, 9, d.Visits())
}

func TestDiscoverAction_Idempotent(t *testing.T) {
	shared := connectorAction("shared_office365")
	root := &flow.Action{
		Type:    flow.ActionIf,
		Actions: flow.ActionMap{"A": shared},
		Else:    &flow.Branch{Actions: flow.ActionMap{"B": shared}},
	}

	d := NewDiscoverer(NewRegistry(), nil)
	d.DiscoverAction("root", root)
	first := d.Registry().Map()
	assert.Equal(t, 2, d.Visits(), "shared node visited once")

	d.DiscoverAction("root", root)
	assert.Equal(t, first, d.Registry().Map())
	assert.Equal(t, 1, d.Registry().Len())
}

func TestDiscoverAction_DecodedJSONInputs(t *testing.T) {
	a := &flow.Action{
		Type: flow.ActionOpenAPIConnection,
		Inputs: map[string]any{
			"host": map[string]any{
				"connectionName": "shared_office365",
				"apiId":          "/providers/Microsoft.PowerApps/apis/shared_office365",
				"operationId":    "SendEmailV2",
			},
		},
	}

	d := NewDiscoverer(NewRegistry(), nil)
	d.DiscoverAction("Send", a)

	id, ok := d.Registry().Get("shared_office365")
	require.True(t, ok)
	assert.Equal(t, "/providers/Microsoft.PowerApps/apis/shared_office365", id)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "SharePoint", DisplayName("shared_sharepointonline"))
	assert.Equal(t, "Office 365 Outlook", DisplayName("shared_office365"))
	assert.Equal(t, "Mail", DisplayName("shared_sendmail"))
	assert.Equal(t, "shared_teams", DisplayName("shared_teams"))
}
