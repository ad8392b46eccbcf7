package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeInfo carries the timestamps tracked for an entry.
type TimeInfo struct {
	Created      time.Time
	LastModified time.Time
	Expires      bool
	ExpiryTime   time.Time
}

// Entry is a single credential record. Scalar fields live in the standard
// attribute keys; everything else is stored alongside.
type Entry struct {
	uuid        uuid.UUID
	timeInfo    TimeInfo
	icon        Icon
	attributes  *Attributes
	attachments *Attachments
	history     []*Entry

	updating   bool
	tmpHistory *Entry
	onModified []func(*Entry)
	nowFn      func() time.Time
}

// NewEntry returns an empty entry with a fresh UUID and all standard keys set.
func NewEntry() *Entry {
	e := &Entry{
		uuid:        uuid.New(),
		attributes:  NewAttributes(),
		attachments: NewAttachments(),
		nowFn:       time.Now,
	}
	for _, k := range defaultAttributes {
		e.attributes.Set(k, "", k == PasswordKey)
	}
	now := e.now()
	e.timeInfo.Created = now
	e.timeInfo.LastModified = now
	return e
}

func (e *Entry) now() time.Time {
	if e.nowFn == nil {
		return time.Now().UTC()
	}
	return e.nowFn().UTC()
}

func (e *Entry) UUID() uuid.UUID { return e.uuid }
func (e *Entry) Title() string { return e.attributes.Value(TitleKey) }
func (e *Entry) Username() string { return e.attributes.Value(UserNameKey) }
func (e *Entry) Password() string { return e.attributes.Value(PasswordKey) }
func (e *Entry) URL() string { return e.attributes.Value(URLKey) }
func (e *Entry) Notes() string { return e.attributes.Value(NotesKey) }
func (e *Entry) TimeInfo() TimeInfo { return e.timeInfo }
func (e *Entry) Icon() Icon { return e.icon }
func (e *Entry) Attributes() *Attributes { return e.attributes }
func (e *Entry) Attachments() *Attachments { return e.attachments }

func (e *Entry) SetTitle(v string) { e.attributes.Set(TitleKey, v, e.attributes.IsProtected(TitleKey)) }
func (e *Entry) SetUsername(v string) { e.attributes.Set(UserNameKey, v, e.attributes.IsProtected(UserNameKey)) }
func (e *Entry) SetPassword(v string) { e.attributes.Set(PasswordKey, v, true) }
func (e *Entry) SetURL(v string) { e.attributes.Set(URLKey, v, e.attributes.IsProtected(URLKey)) }
func (e *Entry) SetNotes(v string) { e.attributes.Set(NotesKey, v, e.attributes.IsProtected(NotesKey)) }

func (e *Entry) SetExpires(v bool) { e.timeInfo.Expires = v }

func (e *Entry) SetExpiryTime(t time.Time) { e.timeInfo.ExpiryTime = t.UTC() }

// SetIconNumber selects a built-in icon and clears any custom icon.
func (e *Entry) SetIconNumber(n int) {
	e.icon = Icon{Number: n}
}

// SetIconUUID selects a custom icon.
func (e *Entry) SetIconUUID(id uuid.UUID) {
	e.icon.UUID = id
}

// SetAttachments replaces the attachment map with a copy of a.
func (e *Entry) SetAttachments(a *Attachments) {
	e.attachments = a.Clone()
}

// OnModified registers fn to run after an update bracket that changed the
// entry.
func (e *Entry) OnModified(fn func(*Entry)) {
	e.onModified = append(e.onModified, fn)
}

// HistoryItems returns the prior versions, oldest first.
func (e *Entry) HistoryItems() []*Entry {
	out := make([]*Entry, len(e.history))
	copy(out, e.history)
	return out
}

// AddHistoryItem appends a snapshot. Snapshots never carry history of their own.
func (e *Entry) AddHistoryItem(item *Entry) {
	item.history = nil
	e.history = append(e.history, item)
}

// RemoveHistoryItems drops the given snapshots, matched by identity. It never
// records a new snapshot.
func (e *Entry) RemoveHistoryItems(items []*Entry) {
	if len(items) == 0 {
		return
	}
	drop := make(map[*Entry]struct{}, len(items))
	for _, it := range items {
		drop[it] = struct{}{}
	}
	kept := e.history[:0]
	for _, h := range e.history {
		if _, ok := drop[h]; !ok {
			kept = append(kept, h)
		}
	}
	for i := len(kept); i < len(e.history); i++ {
		e.history[i] = nil
	}
	e.history = kept
}

// BeginUpdate opens the update-tracking bracket. Brackets do not nest.
func (e *Entry) BeginUpdate() {
	if e.updating {
		panic("models: BeginUpdate called twice")
	}
	e.updating = true
	e.tmpHistory = e.Clone(false)
}

// EndUpdate closes the bracket. If the entry changed since BeginUpdate, the
// pre-update snapshot is appended to history, LastModified is bumped and the
// OnModified callbacks run once. It reports whether a snapshot was recorded.
func (e *Entry) EndUpdate() bool {
	if !e.updating {
		panic("models: EndUpdate without BeginUpdate")
	}
	e.updating = false
	snapshot := e.tmpHistory
	e.tmpHistory = nil

	if e.sameContent(snapshot) {
		return false
	}

	e.AddHistoryItem(snapshot)
	e.timeInfo.LastModified = e.now()
	for _, fn := range e.onModified {
		fn(e)
	}
	return true
}

// Updating reports whether an update bracket is open.
func (e *Entry) Updating() bool {
	return e.updating
}

func (e *Entry) sameContent(o *Entry) bool {
	return e.icon == o.icon &&
		e.timeInfo.Expires == o.timeInfo.Expires &&
		e.timeInfo.ExpiryTime.Equal(o.timeInfo.ExpiryTime) &&
		e.attributes.Equal(o.attributes) &&
		e.attachments.Equal(o.attachments)
}

// Clone returns a deep copy with the same UUID. History snapshots are shared,
// not copied, since they are immutable.
func (e *Entry) Clone(withHistory bool) *Entry {
	c := &Entry{
		uuid:        e.uuid,
		timeInfo:    e.timeInfo,
		icon:        e.icon,
		attributes:  e.attributes.Clone(),
		attachments: e.attachments.Clone(),
		nowFn:       e.nowFn,
	}
	if withHistory {
		c.history = e.HistoryItems()
	}
	return c
}
