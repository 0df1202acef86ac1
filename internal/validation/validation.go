// Package validation checks generated workflow documents against embedded JSON
// schemas before they are packaged.
package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaBaseURL    = "https://flow-composer.local/schemas/"
	definitionSchema = schemaBaseURL + "definition.json"
	clientDataSchema = schemaBaseURL + "clientdata.json"
	definitionFile   = "schemas/definition.json"
	clientDataFile   = "schemas/clientdata.json"
)

// Validator holds the compiled workflow schemas. It is safe for concurrent use.
type Validator struct {
	definition *jsonschema.Schema
	clientData *jsonschema.Schema
}

// New compiles the embedded schemas.
func New() (*Validator, error) {
	c := jsonschema.NewCompiler()

	for url, file := range map[string]string{
		definitionSchema: definitionFile,
		clientDataSchema: clientDataFile,
	} {
		raw, err := schemaFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", file, err)
		}
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("unmarshal schema %s: %w", file, err)
		}
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", url, err)
		}
	}

	def, err := c.Compile(definitionSchema)
	if err != nil {
		return nil, fmt.Errorf("compile definition schema: %w", err)
	}
	cd, err := c.Compile(clientDataSchema)
	if err != nil {
		return nil, fmt.Errorf("compile client data schema: %w", err)
	}

	return &Validator{definition: def, clientData: cd}, nil
}

// ValidateDefinition checks a workflow definition document. doc may be raw
// JSON bytes or any value that marshals to JSON.
func (v *Validator) ValidateDefinition(doc any) error {
	return validate(v.definition, doc)
}

// ValidateClientData checks the client data document written for a workflow.
func (v *Validator) ValidateClientData(doc any) error {
	return validate(v.clientData, doc)
}

func validate(sch *jsonschema.Schema, doc any) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", errors.ErrInvalidDefinition)
	}

	inst, err := toJSONValue(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidDefinition, err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidDefinition, strings.Join(Violations(err), "; "))
	}
	return nil
}

// Violations flattens a schema validation error into one message per failing
// instance location.
func Violations(err error) []string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	return collectViolations(verr)
}

func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var out []string
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}

// toJSONValue round-trips v through encoding/json so numbers become json.Number.
func toJSONValue(v any) (any, error) {
	if raw, ok := v.([]byte); ok {
		return jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}
