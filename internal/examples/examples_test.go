package examples

import (
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/generator"
	"github.com/deploymenttheory/go-flow-composer/internal/identity"
	"github.com/deploymenttheory/go-flow-composer/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Connections.SharePoint = "shared_sharepointonline"
	cfg.Connections.Outlook = "shared_office365"
	cfg.Connections.ActualConnectionID = "conn-123"
	cfg.User.AdminEmail = "admin@example.com"
	cfg.User.TeamMembers = map[string]string{"approver": "approver@example.com"}
	cfg.User.DistributionLists = map[string]string{"workflow_notifications": "team@example.com"}
	cfg.Environment.Mode = "dev"
	cfg.SharePoint.SiteURL = "https://contoso.sharepoint.com/sites/dev"
	cfg.SharePoint.ListMap = map[string]string{
		"approvallist": "list-approvals",
		"flowtestdata": "list-status",
		"flowtest":     "list-mapping",
	}
	return cfg
}

var protocolInputs = Inputs{
	"sharepoint-site-url":  "https://contoso.sharepoint.com/sites/qa",
	"list-name":            "Protocols",
	"monitored-field-name": "Stage",
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"pip-notification-flow",
		"protocol-flow-test",
		"sharepoint-approval-advanced",
		"sharepoint-approval-flow",
	}, Names())
}

func TestLookup_UnknownListsAvailable(t *testing.T) {
	_, err := Lookup("does-not-exist")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrExampleNotFound))
	assert.Contains(t, err.Error(), "sharepoint-approval-flow")
	assert.Contains(t, err.Error(), "pip-notification-flow")
}

func TestConfigure_MissingRequiredInputs(t *testing.T) {
	e, err := Lookup("protocol-flow-test")
	require.NoError(t, err)

	_, err = e.Configure(testConfig(), Inputs{"list-name": "Protocols"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrConfigurationMissing))
	assert.Contains(t, err.Error(), "--sharepoint-site-url")
	assert.Contains(t, err.Error(), "--monitored-field-name")
	assert.NotContains(t, err.Error(), "--list-name")
}

func TestConfigure_NilConfig(t *testing.T) {
	e, err := Lookup("sharepoint-approval-flow")
	require.NoError(t, err)

	_, err = e.Configure(nil, nil)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument))
}

func TestAssemble_AllExamplesProduceValidDefinitions(t *testing.T) {
	v, err := validation.New()
	require.NoError(t, err)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			g, err := Assemble(name, testConfig(), protocolInputs, generator.WithIDGenerator(identity.NewSequence()))
			require.NoError(t, err)

			assert.Equal(t, "00000000-0000-0000-0000-000000000001", g.WorkflowID())
			assert.Equal(t, "conn-123", g.ConnectionID())
			assert.NoError(t, v.ValidateClientData(g.ClientData()))
			assert.Contains(t, g.Connectors(), "shared_sharepointonline")
		})
	}
}

func TestAssemble_ConnectorsPerExample(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"sharepoint-approval-flow", []string{"shared_sharepointonline", "shared_office365"}},
		{"sharepoint-approval-advanced", []string{"shared_sharepointonline", "shared_office365"}},
		{"pip-notification-flow", []string{"shared_sharepointonline"}},
		{"protocol-flow-test", []string{"shared_sharepointonline", "shared_office365"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Assemble(tt.name, testConfig(), protocolInputs)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, g.ConnectorRegistry().Names())
		})
	}
}

func TestApproval_UsesConfigDefaultsAndInputs(t *testing.T) {
	g, err := Assemble("sharepoint-approval-flow", testConfig(), Inputs{"approval-list-id": "override"})
	require.NoError(t, err)

	raw, err := json.Marshal(g.Definition())
	require.NoError(t, err)
	doc := string(raw)

	assert.Contains(t, doc, "approver@example.com")
	assert.Contains(t, doc, "encodeURIComponent('override')")
	assert.Contains(t, doc, "encodeURIComponent('list-approvals')")
	assert.Contains(t, doc, "https://contoso.sharepoint.com/sites/dev")
	// dev mode routes notifications to the admin
	assert.Contains(t, doc, "admin@example.com")
	assert.NotContains(t, doc, "team@example.com")
}

func TestAdvancedApproval_EscalationHours(t *testing.T) {
	_, err := Assemble("sharepoint-approval-advanced", testConfig(), Inputs{"escalation-hours": "soon"})
	assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument))

	g, err := Assemble("sharepoint-approval-advanced", testConfig(), Inputs{"escalation-hours": "48"})
	require.NoError(t, err)
	raw, err := json.Marshal(g.Definition())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "addHours(utcNow(), 48)")
}

func TestStatusNotification_DefaultEmailIsEscaped(t *testing.T) {
	cfg := testConfig()
	cfg.User.AdminEmail = "o'brien@example.com"

	g, err := Assemble("pip-notification-flow", cfg, Inputs{"status-field-name": "Phase"})
	require.NoError(t, err)

	def := g.Definition()
	parse, ok := def.Actions["parseEmailConfig"]
	require.True(t, ok)
	inputs, _ := parse.Inputs.(string)
	assert.Contains(t, inputs, "o''brien@example.com")
	assert.Contains(t, inputs, "shared_sendmail")

	cond := def.Actions["checkIfStatusChanged"]
	expr, _ := cond.Expression.(string)
	assert.True(t, strings.Contains(expr, "['Phase@odata.oldValue']"))

	loop := def.Actions["processAllEmailConfigs"]
	assert.Len(t, loop.Actions, 3)
}

func TestSettings_LookupIgnoresCase(t *testing.T) {
	cfg := testConfig()
	cfg.SharePoint.ListMap = map[string]string{"ApprovalList": "mixed"}
	s := newSettings(cfg)

	assert.Equal(t, "mixed", s.list(listApprovals))
	assert.Equal(t, "admin@example.com", s.member(memberEscalation))
}

func TestAllInputs_Deduplicated(t *testing.T) {
	seen := map[string]bool{}
	for _, in := range AllInputs() {
		assert.False(t, seen[in.Name], "duplicate input %s", in.Name)
		seen[in.Name] = true
	}
	assert.True(t, seen["document-library-url"])
	assert.True(t, seen["monitored-field-name"])
}
