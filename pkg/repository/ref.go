package repository

// Ref addresses a node either by repository path or by identifier.
//
// The zero Ref is invalid; use PathRef or IDRef.
type Ref struct {
	byID  bool
	value string
}

// PathRef addresses a node by its absolute repository path ("/a/b/c").
func PathRef(path string) Ref {
	return Ref{value: path}
}

// IDRef addresses a node by its stable identifier.
func IDRef(id string) Ref {
	return Ref{byID: true, value: id}
}

// IsID reports whether the reference is identifier-based.
func (r Ref) IsID() bool { return r.byID }

// Value returns the raw path or identifier.
func (r Ref) Value() string { return r.value }

// IsZero reports whether the reference was never set.
func (r Ref) IsZero() bool { return r.value == "" }

func (r Ref) String() string {
	if r.byID {
		return "id:" + r.value
	}
	return r.value
}
