package shard

import "fmt"

// Component names the part of the archive a reserved field belonged to.
type Component string

const (
	ComponentManifest   Component = "manifest"
	ComponentNote       Component = "note"
	ComponentEmbedding  Component = "embedding"
	ComponentCollection Component = "collection"
	ComponentLink       Component = "link"
	ComponentTag        Component = "tag"
)

// reservedField records a field name a component must never reuse, because
// a prior migration removed it and silently reintroducing the same name
// would let replayed old data corrupt new records.
type reservedField struct {
	component Component
	field     string
	removedIn string
	reason    string
}

// ReservedFieldRegistry tracks field names retired from each component.
// The v1.0.0 baseline registers nothing; entries are added as fields are
// deprecated in later versions.
type ReservedFieldRegistry struct {
	fields []reservedField
}

// NewReservedFieldRegistry returns an empty registry.
func NewReservedFieldRegistry() *ReservedFieldRegistry {
	return &ReservedFieldRegistry{}
}

// Register marks field as retired from component as of removedInVersion.
func (r *ReservedFieldRegistry) Register(component Component, field, removedInVersion, reason string) {
	r.fields = append(r.fields, reservedField{
		component: component,
		field:     field,
		removedIn: removedInVersion,
		reason:    reason,
	})
}

// IsReserved reports whether field was previously removed from component.
func (r *ReservedFieldRegistry) IsReserved(component Component, field string) bool {
	_, ok := r.find(component, field)
	return ok
}

func (r *ReservedFieldRegistry) find(component Component, field string) (reservedField, bool) {
	for _, f := range r.fields {
		if f.component == component && f.field == field {
			return f, true
		}
	}
	return reservedField{}, false
}

// NamesForComponent returns every reserved field name for component.
func (r *ReservedFieldRegistry) NamesForComponent(component Component) []string {
	var names []string
	for _, f := range r.fields {
		if f.component == component {
			names = append(names, f.field)
		}
	}
	return names
}

// ReservedFieldError reports that a record used a field name forbidden for
// its component.
type ReservedFieldError struct {
	Component Component
	Field     string
	RemovedIn string
	Reason    string
}

func (e *ReservedFieldError) Error() string {
	return fmt.Sprintf("reserved field %q used in %s: removed in v%s: %s", e.Field, e.Component, e.RemovedIn, e.Reason)
}

// ValidateRecord checks every key of record (a decoded JSON object) against
// the reserved list for component, returning a *ReservedFieldError for the
// first match. A nil map, or any non-object record, always passes.
func (r *ReservedFieldRegistry) ValidateRecord(component Component, record map[string]any) error {
	for key := range record {
		if f, ok := r.find(component, key); ok {
			return &ReservedFieldError{Component: component, Field: f.field, RemovedIn: f.removedIn, Reason: f.reason}
		}
	}
	return nil
}
