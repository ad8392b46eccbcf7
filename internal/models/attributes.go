package models

// Standard attribute keys. They back the scalar entry fields and are never
// treated as custom attributes.
const (
	TitleKey    = "Title"
	UserNameKey = "UserName"
	PasswordKey = "Password"
	URLKey      = "URL"
	NotesKey    = "Notes"
)

var defaultAttributes = []string{TitleKey, UserNameKey, PasswordKey, URLKey, NotesKey}

// IsDefaultAttribute reports whether key is one of the standard keys.
func IsDefaultAttribute(key string) bool {
	for _, k := range defaultAttributes {
		if k == key {
			return true
		}
	}
	return false
}

// Attributes is an ordered key/value map with a per-key protected flag.
// Keys are unique; setting an existing key keeps its position.
type Attributes struct {
	keys      []string
	values    map[string]string
	protected map[string]bool
}

func NewAttributes() *Attributes {
	return &Attributes{
		values:    make(map[string]string),
		protected: make(map[string]bool),
	}
}

// Keys returns all keys in insertion order.
func (a *Attributes) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// CustomKeys returns the non-standard keys in insertion order.
func (a *Attributes) CustomKeys() []string {
	out := make([]string, 0, len(a.keys))
	for _, k := range a.keys {
		if !IsDefaultAttribute(k) {
			out = append(out, k)
		}
	}
	return out
}

func (a *Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

func (a *Attributes) Value(key string) string {
	return a.values[key]
}

func (a *Attributes) IsProtected(key string) bool {
	return a.protected[key]
}

func (a *Attributes) Len() int {
	return len(a.keys)
}

// Set inserts or replaces key.
func (a *Attributes) Set(key, value string, protected bool) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
	if protected {
		a.protected[key] = true
	} else {
		delete(a.protected, key)
	}
}

// Remove deletes key and reports whether it was present.
func (a *Attributes) Remove(key string) bool {
	if _, ok := a.values[key]; !ok {
		return false
	}
	delete(a.values, key)
	delete(a.protected, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
	return true
}

// Rename moves the value and flag of from to a new key in the same position.
// It returns false if from is missing or to already exists.
func (a *Attributes) Rename(from, to string) bool {
	if from == to {
		return a.Has(from)
	}
	if !a.Has(from) || a.Has(to) {
		return false
	}
	for i, k := range a.keys {
		if k == from {
			a.keys[i] = to
			break
		}
	}
	a.values[to] = a.values[from]
	delete(a.values, from)
	if a.protected[from] {
		a.protected[to] = true
		delete(a.protected, from)
	}
	return true
}

// CopyCustomKeysFrom replaces every custom key of a with the custom keys of
// other. Standard keys are left alone.
func (a *Attributes) CopyCustomKeysFrom(other *Attributes) {
	for _, k := range a.CustomKeys() {
		a.Remove(k)
	}
	for _, k := range other.CustomKeys() {
		a.Set(k, other.Value(k), other.IsProtected(k))
	}
}

func (a *Attributes) Clear() {
	a.keys = nil
	a.values = make(map[string]string)
	a.protected = make(map[string]bool)
}

func (a *Attributes) Clone() *Attributes {
	c := NewAttributes()
	for _, k := range a.keys {
		c.Set(k, a.values[k], a.protected[k])
	}
	return c
}

// Equal compares keys, order, values and protection flags.
func (a *Attributes) Equal(other *Attributes) bool {
	if len(a.keys) != len(other.keys) {
		return false
	}
	for i, k := range a.keys {
		if other.keys[i] != k || other.values[k] != a.values[k] || other.protected[k] != a.protected[k] {
			return false
		}
	}
	return true
}
