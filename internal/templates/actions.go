package templates

import (
	"github.com/deploymenttheory/go-flow-composer/internal/flow"
)

// SendEmail sends an HTML mail through the Office 365 Outlook connector.
func SendEmail(subject, body, to, logicalName, apiID string) *flow.Action {
	return &flow.Action{
		Type: flow.ActionAPIConnection,
		Inputs: map[string]any{
			"host":   connectorHost(logicalName, apiID),
			"method": "post",
			"path":   "/v2/Mail",
			"body": map[string]any{
				"To":      to,
				"Subject": subject,
				"Body":    body,
			},
			"authentication": apimTokenAuth(),
		},
	}
}

// SharedMailboxEmail describes a mail sent from a shared mailbox.
type SharedMailboxEmail struct {
	Mailbox    string
	To         string
	Subject    string
	Body       string
	Importance string
	Cc         string
	Bcc        string
}

// SendEmailFromSharedMailbox sends mail from a shared mailbox using the
// operation-id host form.
func SendEmailFromSharedMailbox(mail SharedMailboxEmail, logicalName, apiID string) *flow.Action {
	if mail.Importance == "" {
		mail.Importance = "Normal"
	}
	params := map[string]any{
		"emailMessage/MailboxAddress": mail.Mailbox,
		"emailMessage/To":             mail.To,
		"emailMessage/Subject":        mail.Subject,
		"emailMessage/Body":           mail.Body,
		"emailMessage/Importance":     mail.Importance,
	}
	if mail.Cc != "" {
		params["emailMessage/Cc"] = mail.Cc
	}
	if mail.Bcc != "" {
		params["emailMessage/Bcc"] = mail.Bcc
	}

	return &flow.Action{
		Type: flow.ActionOpenAPIConnection,
		Inputs: map[string]any{
			"host": &flow.Host{
				ConnectionName: logicalName,
				APIID:          apiID,
				OperationID:    "SharedMailboxSendEmailV2",
			},
			"parameters":     params,
			"authentication": "@parameters('$authentication')",
		},
	}
}

// SharePointCreateItem creates a list item from fields.
func SharePointCreateItem(siteAddress, listID string, fields map[string]any, logicalName, apiID string) *flow.Action {
	return &flow.Action{
		Type: flow.ActionAPIConnection,
		Inputs: map[string]any{
			"host":           connectorHost(logicalName, apiID),
			"method":         "post",
			"path":           datasetPath(siteAddress, listID, "items"),
			"body":           fields,
			"authentication": apimTokenAuth(),
		},
	}
}

// ItemQuery holds the OData options of a SharePoint get items call.
type ItemQuery struct {
	Select  string
	Filter  string
	Top     int
	OrderBy string
}

func (q ItemQuery) values() map[string]any {
	out := map[string]any{}
	if q.Select != "" {
		out["$select"] = q.Select
	}
	if q.Filter != "" {
		out["$filter"] = q.Filter
	}
	if q.Top > 0 {
		out["$top"] = q.Top
	}
	if q.OrderBy != "" {
		out["$orderby"] = q.OrderBy
	}
	return out
}

// SharePointGetItems queries a SharePoint list.
func SharePointGetItems(siteAddress, listID string, query ItemQuery, logicalName, apiID string) *flow.Action {
	inputs := map[string]any{
		"host":           connectorHost(logicalName, apiID),
		"method":         "get",
		"path":           datasetPath(siteAddress, listID, "items"),
		"authentication": apimTokenAuth(),
	}
	if q := query.values(); len(q) > 0 {
		inputs["queries"] = q
	}
	return &flow.Action{Type: flow.ActionAPIConnection, Inputs: inputs}
}

// HTTP calls uri with method. Empty headers, body and auth are omitted.
func HTTP(method, uri string, headers map[string]string, body any, auth any) *flow.Action {
	inputs := map[string]any{"method": method, "uri": uri}
	if len(headers) > 0 {
		inputs["headers"] = headers
	}
	if body != nil {
		inputs["body"] = body
	}
	if auth != nil {
		inputs["authentication"] = auth
	}
	return &flow.Action{Type: flow.ActionHTTP, Inputs: inputs}
}

// Compose outputs value unchanged.
func Compose(value any) *flow.Action {
	return &flow.Action{Type: flow.ActionCompose, Inputs: value}
}

// ParseJSON parses content against schema.
func ParseJSON(content string, schema map[string]any) *flow.Action {
	return &flow.Action{
		Type:   flow.ActionParseJSON,
		Inputs: map[string]any{"content": content, "schema": schema},
	}
}

// InitializeVariable declares a variable.
func InitializeVariable(name, varType string, value any) *flow.Action {
	return &flow.Action{
		Type: flow.ActionInitializeVariable,
		Inputs: map[string]any{
			"variables": []map[string]any{{"name": name, "type": varType, "value": value}},
		},
	}
}

// SetVariable assigns value to a variable.
func SetVariable(name string, value any) *flow.Action {
	return &flow.Action{
		Type:   flow.ActionSetVariable,
		Inputs: map[string]any{"name": name, "value": value},
	}
}

// AppendToArrayVariable appends value to an array variable.
func AppendToArrayVariable(name string, value any) *flow.Action {
	return &flow.Action{
		Type:   flow.ActionAppendToArrayVariable,
		Inputs: map[string]any{"name": name, "value": value},
	}
}

// IncrementVariable adds by to an integer variable.
func IncrementVariable(name string, by int) *flow.Action {
	return &flow.Action{
		Type:   flow.ActionIncrementVariable,
		Inputs: map[string]any{"name": name, "value": by},
	}
}

// Terminate ends the run with status.
func Terminate(status flow.Status, code, message string) *flow.Action {
	inputs := map[string]any{"runStatus": string(status)}
	if code != "" || message != "" {
		inputs["runError"] = map[string]any{"code": code, "message": message}
	}
	return &flow.Action{Type: flow.ActionTerminate, Inputs: inputs}
}

// After sets a to run once every predecessor succeeded and returns it.
func After(a *flow.Action, predecessors ...string) *flow.Action {
	if a.RunAfter == nil {
		a.RunAfter = flow.RunAfter{}
	}
	for _, p := range predecessors {
		a.RunAfter[p] = []flow.Status{flow.StatusSucceeded}
	}
	return a
}
