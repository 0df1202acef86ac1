package examples

import (
	"fmt"

	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"github.com/deploymenttheory/go-flow-composer/internal/generator"
	tpl "github.com/deploymenttheory/go-flow-composer/internal/templates"
)

func init() {
	Register(&Example{
		Name:        "protocol-flow-test",
		Description: "Notifies the team when a monitored field of a SharePoint list item changes",
		Inputs: []Input{
			{Name: "sharepoint-site-url", Description: "SharePoint site of the monitored list", Required: true},
			{Name: "list-name", Description: "Monitored list name or id", Required: true},
			{Name: "monitored-field-name", Description: "Field whose changes are reported", Required: true},
		},
		configure: configureProtocol,
	})
}

func configureProtocol(cfg *config.AppConfig, in Inputs) (*Flow, error) {
	s := newSettings(cfg)
	siteURL := in.Get("sharepoint-site-url", "")
	listName := in.Get("list-name", "")
	field := in.Get("monitored-field-name", "")

	team := s.distributionList(listNotifications)
	prod := cfg.Environment.Mode == "prod"

	current := fmt.Sprintf("triggerBody()?['%s']", field)
	previous := fmt.Sprintf("triggerOutputs()?['body/%s@odata.oldValue']", field)

	subject := fmt.Sprintf("%s changed on @{triggerBody()?['Title']}", field)
	body := fmt.Sprintf(`<p><strong>%s</strong> changed from @{%s} to @{%s}.</p>
<p><a href="@{variables('linkToItem')}">Open item</a></p>`, field, previous, current)

	return &Flow{
		DisplayName: "Protocol Field Monitor",
		Description: fmt.Sprintf("Reports changes to %s in list %s", field, listName),
		AddSteps: func(g *generator.Generator) {
			g.AddTrigger("whenItemModified",
				tpl.SharePointItemTrigger(siteURL, listName, tpl.ItemModified, s.sharePoint, s.sharePointAPI))

			g.AddAction("initializeEnvironment", tpl.EnvironmentVariable(tpl.EnvironmentOptions{}, prod))
			g.AddAction("initializeLink", tpl.After(tpl.LinkToItemVariable("", ""), "initializeEnvironment"))

			notify := tpl.EnvironmentCondition(tpl.EnvironmentOptions{},
				tpl.SendEmail(subject, body, team, s.outlook, s.outlookAPI),
				tpl.SendEmail("[DEV] "+subject, body, cfg.User.AdminEmail, s.outlook, s.outlookAPI))

			routeByValue := tpl.Switch("@{"+current+"}",
				map[string]flow.ActionMap{
					"Closed": {"recordClosure": tpl.Compose(map[string]any{
						"item":     "@{triggerBody()?['ID']}",
						"closedAt": "@{utcNow()}",
					})},
				},
				flow.ActionMap{"notifyTeam": notify},
			)

			g.AddAction("checkFieldChanged", tpl.After(tpl.Condition(
				fmt.Sprintf("@not(equals(%s, %s))", current, previous),
				flow.ActionMap{"routeByValue": routeByValue},
				flow.ActionMap{"stopUnchanged": tpl.Terminate(flow.StatusSucceeded, "", "")},
			), "initializeLink"))
		},
	}, nil
}
