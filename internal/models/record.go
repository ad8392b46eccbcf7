package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AttributeRecord is one serialized attribute.
type AttributeRecord struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Protected bool   `json:"protected,omitempty"`
}

// Record is the serializable form of an Entry, history included.
type Record struct {
	UUID         string            `json:"uuid"`
	Attributes   []AttributeRecord `json:"attributes"`
	Attachments  map[string][]byte `json:"attachments,omitempty"`
	IconNumber   int               `json:"icon_number"`
	IconUUID     string            `json:"icon_uuid,omitempty"`
	Created      time.Time         `json:"created"`
	LastModified time.Time         `json:"last_modified"`
	Expires      bool              `json:"expires"`
	ExpiryTime   time.Time         `json:"expiry_time"`
	History      []Record          `json:"history,omitempty"`
}

// Overview is the short, separately encrypted summary used for listings.
type Overview struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	URL      string `json:"url"`
}

func (e *Entry) Overview() Overview {
	return Overview{Title: e.Title(), Username: e.Username(), URL: e.URL()}
}

// ToRecord serializes e including its history.
func (e *Entry) ToRecord() Record {
	r := e.toRecord()
	for _, h := range e.history {
		r.History = append(r.History, h.toRecord())
	}
	return r
}

func (e *Entry) toRecord() Record {
	r := Record{
		UUID:         e.uuid.String(),
		IconNumber:   e.icon.Number,
		Created:      e.timeInfo.Created,
		LastModified: e.timeInfo.LastModified,
		Expires:      e.timeInfo.Expires,
		ExpiryTime:   e.timeInfo.ExpiryTime,
	}
	if e.icon.IsCustom() {
		r.IconUUID = e.icon.UUID.String()
	}
	for _, k := range e.attributes.Keys() {
		r.Attributes = append(r.Attributes, AttributeRecord{
			Key:       k,
			Value:     e.attributes.Value(k),
			Protected: e.attributes.IsProtected(k),
		})
	}
	if e.attachments.Len() > 0 {
		r.Attachments = make(map[string][]byte, e.attachments.Len())
		for _, k := range e.attachments.Keys() {
			v, _ := e.attachments.Value(k)
			r.Attachments[k] = v
		}
	}
	return r
}

// FromRecord rebuilds an Entry from its serialized form.
func FromRecord(r Record) (*Entry, error) {
	e, err := fromRecord(r)
	if err != nil {
		return nil, err
	}
	for i, h := range r.History {
		he, err := fromRecord(h)
		if err != nil {
			return nil, fmt.Errorf("history item %d: %w", i, err)
		}
		e.history = append(e.history, he)
	}
	return e, nil
}

func fromRecord(r Record) (*Entry, error) {
	id, err := uuid.Parse(r.UUID)
	if err != nil {
		return nil, fmt.Errorf("invalid entry uuid %q: %w", r.UUID, err)
	}
	e := &Entry{
		uuid:        id,
		attributes:  NewAttributes(),
		attachments: NewAttachments(),
		icon:        Icon{Number: r.IconNumber},
		nowFn:       time.Now,
	}
	e.timeInfo = TimeInfo{
		Created:      r.Created,
		LastModified: r.LastModified,
		Expires:      r.Expires,
		ExpiryTime:   r.ExpiryTime,
	}
	if r.IconUUID != "" {
		iconID, err := uuid.Parse(r.IconUUID)
		if err != nil {
			return nil, fmt.Errorf("invalid icon uuid %q: %w", r.IconUUID, err)
		}
		e.icon.UUID = iconID
	}
	for _, a := range r.Attributes {
		e.attributes.Set(a.Key, a.Value, a.Protected)
	}
	for k, v := range r.Attachments {
		e.attachments.Set(k, v)
	}
	return e, nil
}
