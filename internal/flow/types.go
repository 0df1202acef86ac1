// Package flow is the in-memory model of a workflow definition: triggers,
// actions and the nesting rules of the composite control-flow actions.
package flow

// SchemaURI is the $schema header of every workflow definition document.
const SchemaURI = "https://schema.management.azure.com/providers/Microsoft.Logic/schemas/2016-06-01/workflowdefinition.json#"

// ContentVersion is the contentVersion of every generated definition.
const ContentVersion = "1.0.0.0"

// TriggerType identifies the kind of a trigger.
type TriggerType string

const (
	TriggerRecurrence           TriggerType = "Recurrence"
	TriggerRequest              TriggerType = "Request"
	TriggerAPIConnection        TriggerType = "ApiConnection"
	TriggerAPIConnectionWebhook TriggerType = "ApiConnectionWebhook"
	TriggerOpenAPIConnection    TriggerType = "OpenApiConnection"
	TriggerHTTP                 TriggerType = "Http"
)

// ActionType identifies the kind of an action.
type ActionType string

const (
	// Leaf actions
	ActionAPIConnection          ActionType = "ApiConnection"
	ActionAPIConnectionWebhook   ActionType = "ApiConnectionWebhook"
	ActionOpenAPIConnection      ActionType = "OpenApiConnection"
	ActionHTTP                   ActionType = "Http"
	ActionCompose                ActionType = "Compose"
	ActionParseJSON              ActionType = "ParseJson"
	ActionInitializeVariable     ActionType = "InitializeVariable"
	ActionSetVariable            ActionType = "SetVariable"
	ActionAppendToArrayVariable  ActionType = "AppendToArrayVariable"
	ActionAppendToStringVariable ActionType = "AppendToStringVariable"
	ActionIncrementVariable      ActionType = "IncrementVariable"
	ActionDecrementVariable      ActionType = "DecrementVariable"
	ActionTerminate              ActionType = "Terminate"

	// Composite actions
	ActionIf      ActionType = "If"
	ActionSwitch  ActionType = "Switch"
	ActionForeach ActionType = "Foreach"
	ActionUntil   ActionType = "Until"
	ActionScope   ActionType = "Scope"
)

// Status is a run outcome referenced by runAfter.
type Status string

const (
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusSkipped   Status = "Skipped"
	StatusTimedOut  Status = "TimedOut"
)

// RunAfter maps a predecessor action name to the outcomes it must end in.
type RunAfter map[string][]Status

// Recurrence is a polling or schedule definition.
type Recurrence struct {
	Frequency string         `json:"frequency"`
	Interval  int            `json:"interval"`
	StartTime string         `json:"startTime,omitempty"`
	TimeZone  string         `json:"timeZone,omitempty"`
	Schedule  map[string]any `json:"schedule,omitempty"`
}

// TriggerCondition gates a trigger firing.
type TriggerCondition struct {
	Expression string `json:"expression"`
	DependsOn  string `json:"dependsOn,omitempty"`
}

// Trigger is the entry condition of a workflow run.
type Trigger struct {
	Type             TriggerType        `json:"type"`
	Kind             string             `json:"kind,omitempty"`
	Inputs           map[string]any     `json:"inputs,omitempty"`
	Recurrence       *Recurrence        `json:"recurrence,omitempty"`
	SplitOn          string             `json:"splitOn,omitempty"`
	Conditions       []TriggerCondition `json:"conditions,omitempty"`
	Metadata         map[string]any     `json:"metadata,omitempty"`
	Description      string             `json:"description,omitempty"`
	OperationOptions string             `json:"operationOptions,omitempty"`

	// Members not modeled above, such as runtimeConfiguration
	Extra Extra `json:"-"`
}

// ActionMap is a named set of actions. It is the unit of nesting.
type ActionMap map[string]*Action

// TriggerMap is the named set of triggers of a definition.
type TriggerMap map[string]*Trigger

// Branch holds the actions of an else branch or a switch default.
type Branch struct {
	Actions ActionMap `json:"actions"`
}

// SwitchCase holds the value matched by a switch case and its actions.
type SwitchCase struct {
	Case    any       `json:"case"`
	Actions ActionMap `json:"actions"`
}

// LoopLimit bounds an Until loop.
type LoopLimit struct {
	Count   int    `json:"count,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

// Action is one step of a workflow. Composite kinds carry nested action maps in
// the fields declared by NestedActions; leaf kinds leave them empty.
type Action struct {
	Type     ActionType `json:"type"`
	Kind     string     `json:"kind,omitempty"`
	Inputs   any        `json:"inputs,omitempty"`
	RunAfter RunAfter   `json:"runAfter,omitempty"`

	// If, Switch and Until
	Expression any `json:"expression,omitempty"`

	// If (true branch), Foreach, Until and Scope bodies
	Actions ActionMap `json:"actions,omitempty"`

	// If
	Else *Branch `json:"else,omitempty"`

	// Switch
	Cases   map[string]*SwitchCase `json:"cases,omitempty"`
	Default *Branch                `json:"default,omitempty"`

	// Foreach
	Foreach string `json:"foreach,omitempty"`

	// Until
	Limit *LoopLimit `json:"limit,omitempty"`

	Metadata             map[string]any `json:"metadata,omitempty"`
	Description          string         `json:"description,omitempty"`
	OperationOptions     string         `json:"operationOptions,omitempty"`
	RuntimeConfiguration map[string]any `json:"runtimeConfiguration,omitempty"`

	// Members not modeled above, such as trackedProperties
	Extra Extra `json:"-"`
}

// Parameter is a workflow definition parameter.
type Parameter struct {
	Type         string `json:"type"`
	DefaultValue any    `json:"defaultValue"`
}

// Definition is the finished workflow definition document.
type Definition struct {
	Schema         string                `json:"$schema"`
	ContentVersion string                `json:"contentVersion"`
	Parameters     map[string]*Parameter `json:"parameters,omitempty"`
	Triggers       TriggerMap            `json:"triggers"`
	Actions        ActionMap             `json:"actions"`
	Outputs        map[string]any        `json:"outputs,omitempty"`
	Description    string                `json:"description,omitempty"`

	// Members not modeled above, such as staticResults
	Extra Extra `json:"-"`
}

// ConnectionReference binds a connector used by the definition to a connection.
type ConnectionReference struct {
	ConnectionName string `json:"connectionName"`
	ID             string `json:"id"`
	Source         string `json:"source,omitempty"`
}

// ClientDataProperties wraps a definition with its connection references.
type ClientDataProperties struct {
	ConnectionReferences map[string]ConnectionReference `json:"connectionReferences"`
	Definition           *Definition                    `json:"definition"`
}

// ClientData is the document stored for each workflow in a solution package.
type ClientData struct {
	SchemaVersion string               `json:"schemaVersion"`
	Properties    ClientDataProperties `json:"properties"`
}
