package dashactyl

import "strconv"

// Ref identifies an entity either by its numeric panel id or by an opaque
// string key (uuid, identifier, or a fragment of one). The two cases are
// tagged explicitly: the panel's lookup endpoints only accept numeric ids,
// so an opaque key can be resolved from cache but never fetched.
type Ref struct {
	id      int
	key     string
	numeric bool
}

// ByID references an entity by its numeric panel id.
func ByID(id int) Ref {
	return Ref{id: id, numeric: true}
}

// ByKey references an entity by uuid, identifier or a fragment of either.
func ByKey(key string) Ref {
	return Ref{key: key}
}

// Numeric reports whether the reference carries a numeric id.
func (r Ref) Numeric() bool {
	return r.numeric
}

// ID returns the numeric id; it is zero for opaque references.
func (r Ref) ID() int {
	return r.id
}

// Key returns the opaque key; it is empty for numeric references.
func (r Ref) Key() string {
	return r.key
}

func (r Ref) String() string {
	if r.numeric {
		return strconv.Itoa(r.id)
	}
	return r.key
}
