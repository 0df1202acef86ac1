package composition

// Composition is a batch of packaging steps read from a YAML or JSON file.
type Composition struct {
	// Name of the composition (required)
	Name string `mapstructure:"name"`

	Description string `mapstructure:"description,omitempty"`
	Version     string `mapstructure:"version,omitempty"`
	Author      string `mapstructure:"author,omitempty"`

	// Ordered list of steps to execute
	Steps []Step `mapstructure:"steps"`

	// Variables referenced from step parameters as {{.name}}
	Variables map[string]interface{} `mapstructure:"variables,omitempty"`
}

// Step is one operation of a composition.
type Step struct {
	// Unique name for the step (required)
	Name string `mapstructure:"name"`

	// Type selects the step handler (required)
	Type string `mapstructure:"type"`

	Description string `mapstructure:"description,omitempty"`

	// Condition is a template; the step is skipped unless it renders to
	// true, yes or 1.
	Condition string `mapstructure:"condition,omitempty"`

	// Parameters captures every other key of the step
	Parameters map[string]interface{} `mapstructure:",remain"`
}
