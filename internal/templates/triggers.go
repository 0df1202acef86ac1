// Package templates builds the triggers and actions used by the example
// workflows. Every function returns a fresh node; nothing here has side effects.
package templates

import (
	"fmt"

	"github.com/deploymenttheory/go-flow-composer/internal/flow"
)

// SharePointEvent selects the item event a SharePoint trigger polls for.
type SharePointEvent string

const (
	ItemCreated           SharePointEvent = "onItemCreated"
	ItemModified          SharePointEvent = "onItemModified"
	ItemCreatedOrModified SharePointEvent = "onItemCreatedOrModified"
)

// apimTokenAuth is the connector authentication block used by legacy
// ApiConnection nodes.
func apimTokenAuth() map[string]any {
	return map[string]any{
		"type":  "Raw",
		"value": "@triggers().outputs?['headers']?['X-MS-APIM-Tokens']",
	}
}

func connectorHost(logicalName, apiID string) *flow.Host {
	return &flow.Host{
		Connection: &flow.HostConnection{Name: flow.ConnectionNameExpression(logicalName)},
		API:        &flow.HostAPI{ID: apiID},
	}
}

func datasetPath(siteAddress, listID, suffix string) string {
	return fmt.Sprintf("/datasets/@{encodeURIComponent(encodeURIComponent('%s'))}/tables/@{encodeURIComponent(encodeURIComponent('%s'))}/%s",
		siteAddress, listID, suffix)
}

// SharePointItemTrigger polls a SharePoint list once a minute and splits on
// the returned items.
func SharePointItemTrigger(siteAddress, listID string, event SharePointEvent, logicalName, apiID string) *flow.Trigger {
	suffix := "onupdateditems"
	if event == ItemCreated {
		suffix = "onnewitems"
	}

	return &flow.Trigger{
		Type: flow.TriggerAPIConnection,
		Inputs: map[string]any{
			"host":           connectorHost(logicalName, apiID),
			"method":         "get",
			"path":           datasetPath(siteAddress, listID, suffix),
			"authentication": apimTokenAuth(),
		},
		SplitOn:    "@triggerBody()?['value']",
		Recurrence: &flow.Recurrence{Frequency: "Minute", Interval: 1},
	}
}

// OutlookEmailTrigger fires on new mail in folder.
func OutlookEmailTrigger(logicalName, apiID, folder string) *flow.Trigger {
	if folder == "" {
		folder = "Inbox"
	}
	return &flow.Trigger{
		Type: flow.TriggerAPIConnection,
		Inputs: map[string]any{
			"host":           connectorHost(logicalName, apiID),
			"method":         "get",
			"path":           fmt.Sprintf("/MailFolders/@{encodeURIComponent(encodeURIComponent('%s'))}/onnewemail", folder),
			"authentication": apimTokenAuth(),
		},
		Recurrence: &flow.Recurrence{Frequency: "Minute", Interval: 3},
	}
}

// ManualTrigger is a button trigger. A nil schema accepts an empty object.
func ManualTrigger(schema map[string]any) *flow.Trigger {
	if schema == nil {
		schema = map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []string{},
		}
	}
	return &flow.Trigger{
		Type:   flow.TriggerRequest,
		Kind:   "Button",
		Inputs: map[string]any{"schema": schema},
	}
}

// RecurrenceOptions configures a scheduled trigger.
type RecurrenceOptions struct {
	Frequency string
	Interval  int
	StartTime string
	TimeZone  string
	WeekDays  []string
	MonthDays []int
	Hours     []int
	Minutes   []int
}

// RecurrenceTrigger fires on a schedule. Week days only apply to weekly
// schedules and month days only to monthly ones.
func RecurrenceTrigger(opts RecurrenceOptions) *flow.Trigger {
	if opts.Interval < 1 {
		opts.Interval = 1
	}
	r := &flow.Recurrence{
		Frequency: opts.Frequency,
		Interval:  opts.Interval,
		StartTime: opts.StartTime,
		TimeZone:  opts.TimeZone,
	}

	schedule := map[string]any{}
	if opts.Frequency == "Week" && len(opts.WeekDays) > 0 {
		schedule["weekDays"] = opts.WeekDays
	}
	if opts.Frequency == "Month" && len(opts.MonthDays) > 0 {
		schedule["monthDays"] = opts.MonthDays
	}
	if len(opts.Hours) > 0 {
		schedule["hours"] = opts.Hours
	}
	if len(opts.Minutes) > 0 {
		schedule["minutes"] = opts.Minutes
	}
	if len(schedule) > 0 {
		r.Schedule = schedule
	}

	return &flow.Trigger{Type: flow.TriggerRecurrence, Recurrence: r}
}

// DailyTrigger fires once a day at hour:minute in timeZone.
func DailyTrigger(hour, minute int, timeZone string) *flow.Trigger {
	return RecurrenceTrigger(RecurrenceOptions{
		Frequency: "Day",
		Interval:  1,
		TimeZone:  timeZone,
		Hours:     []int{hour},
		Minutes:   []int{minute},
	})
}

// WeeklyTrigger fires on the given week days at hour:minute in timeZone.
func WeeklyTrigger(days []string, hour, minute int, timeZone string) *flow.Trigger {
	return RecurrenceTrigger(RecurrenceOptions{
		Frequency: "Week",
		Interval:  1,
		TimeZone:  timeZone,
		WeekDays:  days,
		Hours:     []int{hour},
		Minutes:   []int{minute},
	})
}
