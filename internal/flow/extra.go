package flow

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-flow-composer/internal/common/jsonutil"
)

// Extra holds the members of a JSON object that the Go type does not model.
// Documents read from disk keep them and write them back unchanged.
type Extra map[string]json.RawMessage

var knownFields sync.Map // reflect.Type -> map[string]bool

// fieldNames returns the lowercased JSON member names of struct type t.
func fieldNames(t reflect.Type) map[string]bool {
	if cached, ok := knownFields.Load(t); ok {
		return cached.(map[string]bool)
	}
	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[strings.ToLower(name)] = true
	}
	knownFields.Store(t, names)
	return names
}

// DecodeObject unmarshals data into v, a pointer to a struct type without
// custom JSON methods, and stores the members v does not model in extra.
// encoding/json matches member names without regard to case, so the
// comparison here does the same.
func DecodeObject(data []byte, v any, extra *Extra) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	known := fieldNames(reflect.TypeOf(v).Elem())

	*extra = nil
	for name, raw := range members {
		if known[strings.ToLower(name)] {
			continue
		}
		if *extra == nil {
			*extra = make(Extra)
		}
		(*extra)[name] = raw
	}
	return nil
}

// EncodeObject marshals v and merges extra into the resulting object.
// Modeled members win over extra members of the same name.
func EncodeObject(v any, extra Extra) ([]byte, error) {
	s, err := jsonutil.Compact(v)
	if err != nil || len(extra) == 0 {
		return []byte(s), err
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &members); err != nil {
		return nil, err
	}
	for name, raw := range extra {
		if _, ok := members[name]; !ok {
			members[name] = raw
		}
	}
	s, err = jsonutil.Compact(members)
	return []byte(s), err
}

type (
	plainTrigger    Trigger
	plainAction     Action
	plainDefinition Definition
)

func (t *Trigger) UnmarshalJSON(data []byte) error {
	return DecodeObject(data, (*plainTrigger)(t), &t.Extra)
}

func (t Trigger) MarshalJSON() ([]byte, error) {
	return EncodeObject(plainTrigger(t), t.Extra)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	return DecodeObject(data, (*plainAction)(a), &a.Extra)
}

func (a Action) MarshalJSON() ([]byte, error) {
	return EncodeObject(plainAction(a), a.Extra)
}

func (d *Definition) UnmarshalJSON(data []byte) error {
	return DecodeObject(data, (*plainDefinition)(d), &d.Extra)
}

func (d Definition) MarshalJSON() ([]byte, error) {
	return EncodeObject(plainDefinition(d), d.Extra)
}
