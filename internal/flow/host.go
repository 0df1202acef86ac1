package flow

import (
	"encoding/json"
)

// Host is the descriptor of the external connection called by an
// ApiConnection-style trigger or action. It lives under inputs.host.
type Host struct {
	Connection  *HostConnection `json:"connection,omitempty"`
	API         *HostAPI        `json:"api,omitempty"`
	OperationID string          `json:"operationId,omitempty"`

	// Flat form found in exported flow manifests
	ConnectionName string `json:"connectionName,omitempty"`
	APIID          string `json:"apiId,omitempty"`
}

// HostConnection names the connection, usually through a $connections expression.
type HostConnection struct {
	Name          string `json:"name,omitempty"`
	ReferenceName string `json:"referenceName,omitempty"`
}

// HostAPI identifies the connector API resource.
type HostAPI struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	RuntimeURL string `json:"runtimeUrl,omitempty"`
}

// ConnectionNameExpression returns the runtime expression resolving the
// connection id of a logical connector name.
func ConnectionNameExpression(logicalName string) string {
	return "@parameters('$connections')['" + logicalName + "']['connectionId']"
}

// HostFromInputs extracts the host descriptor from trigger or action inputs.
// Inputs built in code carry a *Host; inputs decoded from JSON carry a plain map.
func HostFromInputs(inputs any) (*Host, bool) {
	m, ok := inputs.(map[string]any)
	if !ok {
		return nil, false
	}

	switch h := m["host"].(type) {
	case *Host:
		return h, h != nil
	case Host:
		return &h, true
	case map[string]any:
		raw, err := json.Marshal(h)
		if err != nil {
			return nil, false
		}
		host := &Host{}
		if err := json.Unmarshal(raw, host); err != nil {
			return nil, false
		}
		return host, true
	default:
		return nil, false
	}
}

// IsConnectorTrigger reports whether a trigger type calls an external connector.
func IsConnectorTrigger(t TriggerType) bool {
	switch t {
	case TriggerAPIConnection, TriggerAPIConnectionWebhook, TriggerOpenAPIConnection:
		return true
	}
	return false
}

// IsConnectorAction reports whether an action type calls an external connector.
func IsConnectorAction(t ActionType) bool {
	switch t {
	case ActionAPIConnection, ActionAPIConnectionWebhook, ActionOpenAPIConnection:
		return true
	}
	return false
}
