package examples

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/jsonutil"
	"github.com/deploymenttheory/go-flow-composer/internal/config"
	"github.com/deploymenttheory/go-flow-composer/internal/connector"
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
	"github.com/deploymenttheory/go-flow-composer/internal/generator"
	tpl "github.com/deploymenttheory/go-flow-composer/internal/templates"
)

// Placeholders replaced in mapped email templates.
const (
	placeholderStudentID = "[[STUDENTID]]"
	placeholderStatus    = "[[STATUS]]"
)

// Mail parameters of the sendmail connector operation used by mapped emails.
const (
	mailProvider   = "shared_sendmail"
	mailOperation  = "SendEmailV3"
	mailParamTo    = "request/to"
	mailParamSubj  = "request/subject"
	mailParamBody  = "request/text"
	mailParamCc    = "request/cc"
	mailParamBcc   = "request/bcc"
	activitySuffix = "_ActivityLog"
)

// defaultEmailConfig is the mapped email used when the mapping list has no
// entry for a status.
func defaultEmailConfig(to string) (string, error) {
	body := "<p>The status for student ID " + placeholderStudentID + " has changed to " +
		placeholderStatus + ".</p><p>Please review and take appropriate action.</p>"
	return jsonutil.Compact(map[string]any{
		"type": string(flow.ActionOpenAPIConnection),
		"inputs": map[string]any{
			"parameters": map[string]any{
				mailParamTo:   to,
				mailParamSubj: "Status Change Notification: " + placeholderStudentID,
				mailParamBody: body,
				mailParamCc:   "",
				mailParamBcc:  "",
			},
			"host": map[string]any{
				"apiId":       connector.ResourceID(mailProvider),
				"connection":  mailProvider,
				"operationId": mailOperation,
			},
		},
	})
}

func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// processEmailConfig rewrites the current loop item into a runnable send
// action: placeholders are filled, the recipient defaults and the action
// metadata is reset.
func processEmailConfig(defaultTo string) string {
	item := "items('processAllEmailConfigs')"
	params := item + "?['inputs']?['parameters']"
	return fmt.Sprintf(`@{setProperty(
  setProperty(
    setProperty(
      setProperty(
        setProperty(
          setProperty(
            %[1]s,
            'inputs',
            setProperty(
              %[1]s?['inputs'],
              'parameters',
              setProperty(
                setProperty(
                  setProperty(
                    %[2]s,
                    '%[3]s',
                    replace(replace(%[2]s?['%[3]s'], '%[6]s', outputs('formatItemDetails')?['studentId']), '%[7]s', outputs('formatItemDetails')?['currentStatus'])
                  ),
                  '%[4]s',
                  replace(%[2]s?['%[4]s'], '%[6]s', outputs('formatItemDetails')?['studentId'])
                ),
                '%[5]s',
                coalesce(%[2]s?['%[5]s'], '%[8]s')
              )
            )
          ),
          'type',
          'OpenApiConnection'
        ),
        'runAfter',
        json('{}')
      ),
      'metadata',
      json('{}')
    ),
    'name',
    concat('sendEmail_', outputs('formatItemDetails')?['currentStatus'], '_', outputs('initializeCounter'))
  ),
  'operationOptions',
  'DisableAsyncPattern'
)}`, item, params, mailParamBody, mailParamSubj, mailParamTo, placeholderStudentID, placeholderStatus, defaultTo)
}

func init() {
	Register(&Example{
		Name:        "pip-notification-flow",
		Description: "Sends the emails mapped to a status value when a list item's status changes",
		Inputs: []Input{
			{Name: "list-url", Description: "SharePoint site of the monitored list"},
			{Name: "list-id", Description: "Monitored list id"},
			{Name: "notification-mapping-list-url", Description: "SharePoint site of the notification mapping list"},
			{Name: "notification-mapping-list-id", Description: "Notification mapping list id"},
			{Name: "status-field-name", Description: "Name of the status field to monitor"},
		},
		configure: configureStatusNotification,
	})
}

func configureStatusNotification(cfg *config.AppConfig, in Inputs) (*Flow, error) {
	s := newSettings(cfg)
	listURL := in.Get("list-url", s.siteURL())
	listID := in.Get("list-id", s.list(listStatusItems))
	mappingURL := in.Get("notification-mapping-list-url", s.siteURL())
	mappingID := in.Get("notification-mapping-list-id", s.list(listNotificationMap))
	statusField := in.Get("status-field-name", "Status")
	defaultTo := cfg.User.AdminEmail

	defaultEmail, err := defaultEmailConfig(defaultTo)
	if err != nil {
		return nil, err
	}
	// both values are embedded in single-quoted expression string literals
	defaultEmail = quoteLiteral(defaultEmail)
	quotedTo := quoteLiteral(defaultTo)

	current := fmt.Sprintf("triggerBody()?['properties']?['%s']", statusField)
	previous := fmt.Sprintf("triggerOutputs()?['body/properties']?['%s@odata.oldValue']", statusField)

	return &Flow{
		DisplayName: "Simplified Status Notification Flow",
		Description: "Automatically sends multiple notifications when status changes, using email configurations from a mapping list",
		AddSteps: func(g *generator.Generator) {
			g.AddTrigger("whenStatusChanged",
				tpl.SharePointItemTrigger(listURL, listID, tpl.ItemModified, s.sharePoint, s.sharePointAPI))

			g.AddAction("checkIfStatusChanged", tpl.Condition(
				fmt.Sprintf("@not(equals(%s, %s))", current, previous),
				flow.ActionMap{"getCurrentStatus": tpl.Compose("@{" + current + "}")},
				flow.ActionMap{},
			))

			g.AddAction("formatItemDetails", tpl.After(tpl.Compose(fmt.Sprintf(`{
  "itemId": @{triggerBody()?['ID']},
  "studentId": @{triggerBody()?['properties']?['Title']},
  "currentStatus": @{outputs('getCurrentStatus')},
  "previousStatus": @{%s ?? 'None'},
  "modifiedDate": @{formatDateTime(utcNow(), 'yyyy-MM-dd HH:mm')}
}`, previous)), "checkIfStatusChanged"))

			g.AddAction("getNotificationMappings", tpl.After(tpl.SharePointGetItems(mappingURL, mappingID, tpl.ItemQuery{
				Select: "EmailConfiguration,StatusValue",
				Filter: "StatusValue eq '@{outputs('getCurrentStatus')}'",
			}, s.sharePoint, s.sharePointAPI), "formatItemDetails"))

			g.AddAction("parseEmailConfig", tpl.After(tpl.Compose(fmt.Sprintf(`{
  "hasConfig": @{greater(length(body('getNotificationMappings')?['value']), 0)},
  "emailConfigs": @{if(greater(length(body('getNotificationMappings')?['value']), 0),
    if(startsWith(trim(first(body('getNotificationMappings')?['value'])?['EmailConfiguration']), '['),
      json(first(body('getNotificationMappings')?['value'])?['EmailConfiguration']),
      array(json(first(body('getNotificationMappings')?['value'])?['EmailConfiguration']))
    ),
    array(json('%s'))
  )}
}`, defaultEmail)), "getNotificationMappings"))

			g.AddAction("initializeCounter", tpl.After(tpl.Compose("0"), "parseEmailConfig"))

			sendDynamic := tpl.After(tpl.Compose(
				"Placeholder replaced at runtime by the email action built from the mapping list."),
				"processCurrentEmailConfig")
			dynamicMetadata := map[string]any{
				"dynamicActionProvider": "@outputs('processCurrentEmailConfig')",
				"inputsLocation":        []string{"type", "inputs", "name", "operationOptions", "metadata", "runAfter"},
			}
			sendDynamic.Metadata = map[string]any{
				"operationMetadataId":   "DYNAMIC_ACTION_PLACEHOLDER",
				"dynamicActionMetadata": dynamicMetadata,
			}
			increment := tpl.After(tpl.Compose("@{add(int(outputs('initializeCounter')), 1)}"), "sendDynamicEmail")

			g.AddAction("processAllEmailConfigs", tpl.After(tpl.Foreach(
				"@{outputs('parseEmailConfig')?['emailConfigs']}",
				flow.ActionMap{
					"processCurrentEmailConfig": tpl.Compose(processEmailConfig(quotedTo)),
					"sendDynamicEmail":          sendDynamic,
					"incrementCounter":          increment,
				},
			), "initializeCounter"))

			activity := "Status changed from @{outputs('formatItemDetails')?['previousStatus']} to " +
				"@{outputs('formatItemDetails')?['currentStatus']}. Sent " +
				"@{length(outputs('parseEmailConfig')?['emailConfigs'])} notification(s)."
			g.AddAction("logNotificationActivity", tpl.After(tpl.SharePointCreateItem(listURL, listID+activitySuffix, map[string]any{
				"Title":        "Status Notification Sent",
				"ItemId":       "@{outputs('formatItemDetails')?['itemId']}",
				"StudentId":    "@{outputs('formatItemDetails')?['studentId']}",
				"ActivityType": "StatusChange",
				"Description":  activity,
				"ActivityDate": "@{utcNow()}",
			}, s.sharePoint, s.sharePointAPI), "processAllEmailConfigs"))
		},
	}, nil
}
