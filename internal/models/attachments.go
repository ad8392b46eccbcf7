package models

import (
	"bytes"
	"sort"
)

// Attachments maps file names to their contents. Set overwrites an existing
// name.
type Attachments struct {
	data map[string][]byte
}

func NewAttachments() *Attachments {
	return &Attachments{data: make(map[string][]byte)}
}

// Keys returns attachment names sorted alphabetically.
func (a *Attachments) Keys() []string {
	keys := make([]string, 0, len(a.data))
	for k := range a.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *Attachments) Has(name string) bool {
	_, ok := a.data[name]
	return ok
}

func (a *Attachments) Value(name string) ([]byte, bool) {
	v, ok := a.data[name]
	return v, ok
}

func (a *Attachments) Set(name string, data []byte) {
	a.data[name] = bytes.Clone(data)
}

func (a *Attachments) Remove(name string) bool {
	if _, ok := a.data[name]; !ok {
		return false
	}
	delete(a.data, name)
	return true
}

func (a *Attachments) Len() int {
	return len(a.data)
}

func (a *Attachments) Clear() {
	a.data = make(map[string][]byte)
}

func (a *Attachments) Clone() *Attachments {
	c := NewAttachments()
	for k, v := range a.data {
		c.data[k] = bytes.Clone(v)
	}
	return c
}

func (a *Attachments) Equal(other *Attachments) bool {
	if len(a.data) != len(other.data) {
		return false
	}
	for k, v := range a.data {
		ov, ok := other.data[k]
		if !ok || !bytes.Equal(v, ov) {
			return false
		}
	}
	return true
}
