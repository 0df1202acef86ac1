package connector

// Registry maps logical connector names to resource identifiers. The first
// identifier recorded for a name wins; names keep their discovery order.
type Registry struct {
	names []string
	ids   map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]string)}
}

// Add records id for name unless name is already known. It reports whether the
// entry was new.
func (r *Registry) Add(name, id string) bool {
	if _, ok := r.ids[name]; ok {
		return false
	}
	r.ids[name] = id
	r.names = append(r.names, name)
	return true
}

// Get returns the resource identifier recorded for name.
func (r *Registry) Get(name string) (string, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Names returns the logical names in discovery order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of distinct connectors.
func (r *Registry) Len() int {
	return len(r.names)
}

// Map returns a copy of the name to identifier mapping.
func (r *Registry) Map() map[string]string {
	out := make(map[string]string, len(r.ids))
	for k, v := range r.ids {
		out[k] = v
	}
	return out
}

var displayNames = map[string]string{
	SharePointName:     "SharePoint",
	"shared_office365": "Office 365 Outlook",
	"shared_sendmail":  "Mail",
}

// DisplayName returns the human name of a connector, or its logical name when
// none is known.
func DisplayName(logicalName string) string {
	if name, ok := displayNames[logicalName]; ok {
		return name
	}
	return logicalName
}
