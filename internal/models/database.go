package models

import (
	"sort"

	"github.com/google/uuid"
)

// Metadata holds database-wide data. Only the custom icon store is modelled.
type Metadata struct {
	customIcons map[uuid.UUID][]byte
}

func NewMetadata() *Metadata {
	return &Metadata{customIcons: make(map[uuid.UUID][]byte)}
}

func (m *Metadata) AddCustomIcon(id uuid.UUID, data []byte) {
	m.customIcons[id] = data
}

func (m *Metadata) ContainsCustomIcon(id uuid.UUID) bool {
	_, ok := m.customIcons[id]
	return ok
}

func (m *Metadata) CustomIcon(id uuid.UUID) ([]byte, bool) {
	d, ok := m.customIcons[id]
	return d, ok
}

func (m *Metadata) RemoveCustomIcon(id uuid.UUID) {
	delete(m.customIcons, id)
}

// CustomIconIDs returns the stored icon ids in a stable order.
func (m *Metadata) CustomIconIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m.customIcons))
	for id := range m.customIcons {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Database owns the entries of a vault and its metadata.
type Database struct {
	entries  map[uuid.UUID]*Entry
	metadata *Metadata
}

func NewDatabase() *Database {
	return &Database{
		entries:  make(map[uuid.UUID]*Entry),
		metadata: NewMetadata(),
	}
}

func (d *Database) Metadata() *Metadata {
	return d.metadata
}

// AddEntry adds or replaces e by UUID.
func (d *Database) AddEntry(e *Entry) {
	d.entries[e.UUID()] = e
}

func (d *Database) Entry(id uuid.UUID) (*Entry, bool) {
	e, ok := d.entries[id]
	return e, ok
}

func (d *Database) RemoveEntry(id uuid.UUID) bool {
	if _, ok := d.entries[id]; !ok {
		return false
	}
	delete(d.entries, id)
	return true
}

// Entries returns all entries ordered by title, then UUID.
func (d *Database) Entries() []*Entry {
	out := make([]*Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title() != out[j].Title() {
			return out[i].Title() < out[j].Title()
		}
		return out[i].UUID().String() < out[j].UUID().String()
	})
	return out
}
