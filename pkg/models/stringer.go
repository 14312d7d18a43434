package models

// String methods for custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// DeadCodeKind
func (d DeadCodeKind) String() string { return string(d) }
