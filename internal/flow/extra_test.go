package flow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinition_RoundTripsUnmodeledMembers(t *testing.T) {
	in := `{
		"$schema": "s",
		"contentVersion": "1.0.0.0",
		"staticResults": {"mock0": {"status": "Succeeded"}},
		"triggers": {"t": {"type": "Request", "runtimeConfiguration": {"concurrency": {"runs": 1}}}},
		"actions": {
			"check": {
				"type": "If",
				"expression": "@true",
				"else": {"actions": {"deep": {"type": "Compose", "inputs": "x", "trackedProperties": {"k": "v"}}}}
			}
		}
	}`

	var def Definition
	require.NoError(t, json.Unmarshal([]byte(in), &def))

	assert.Contains(t, def.Extra, "staticResults")
	assert.Contains(t, def.Triggers["t"].Extra, "runtimeConfiguration")
	deep := def.Actions["check"].Else.Actions["deep"]
	assert.Contains(t, deep.Extra, "trackedProperties")
	assert.Nil(t, def.Actions["check"].Extra)

	raw, err := json.Marshal(def)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(raw))
}

func TestDecodeObject_ModeledMembersAreNotExtra(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"Type": "Compose", "inputs": 1, "custom": true}`), &a))

	assert.Equal(t, ActionCompose, a.Type)
	assert.Equal(t, Extra{"custom": json.RawMessage("true")}, a.Extra)
}

func TestEncodeObject_ModeledMembersWin(t *testing.T) {
	a := Action{Type: ActionCompose, Extra: Extra{"type": json.RawMessage(`"Other"`), "note": json.RawMessage(`"kept"`)}}

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "Compose", "note": "kept"}`, string(raw))
}

func TestDecodeObject_Null(t *testing.T) {
	var def *Definition
	require.NoError(t, json.Unmarshal([]byte(`null`), &def))
	assert.Nil(t, def)
}
