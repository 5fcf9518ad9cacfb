package domain

import "sort"

// FieldNew marks an aggregate that has never been persisted.
const FieldNew = "new"

// ChangeTracker records which fields of an aggregate were modified since it
// was loaded. Repositories skip writes for clean aggregates.
type ChangeTracker struct {
	dirty map[string]struct{}
}

// NewChangeTracker creates a clean ChangeTracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{dirty: make(map[string]struct{})}
}

// MarkDirty marks fields as modified.
func (ct *ChangeTracker) MarkDirty(fields ...string) {
	for _, f := range fields {
		ct.dirty[f] = struct{}{}
	}
}

// Dirty checks if a field has been modified.
func (ct *ChangeTracker) Dirty(field string) bool {
	_, ok := ct.dirty[field]
	return ok
}

// Clear forgets all modifications, typically after a successful save.
func (ct *ChangeTracker) Clear() {
	ct.dirty = make(map[string]struct{})
}

// HasChanges returns true if any field has been modified.
func (ct *ChangeTracker) HasChanges() bool {
	return len(ct.dirty) > 0
}

// DirtyFields returns the modified field names in sorted order.
func (ct *ChangeTracker) DirtyFields() []string {
	fields := make([]string, 0, len(ct.dirty))
	for f := range ct.dirty {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
