// Package record defines the flat key-value record and the declarative rules
// that filter and reshape it.
//
// Filtering keeps records whose value at one field equals a target. Formatting
// runs every field through a fixed sequence of stages:
//
//	dropEmpty -> keep -> trim -> split -> toBool -> toNumber -> toString
//
// The first stage that decides a field's fate ends processing for it; fields
// that reach the end keep their trimmed (and possibly split) value.
package record

// Record is one row of input keyed by column name.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
