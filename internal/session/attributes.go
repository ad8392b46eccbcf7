package session

import (
	"fmt"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
)

// AttributeKeys lists the working custom attribute keys in order.
func (s *Session) AttributeKeys() []string {
	return s.attributes.Keys()
}

// Attribute returns the value stored in the working map. The edit buffer of
// the active attribute is not included until it is flushed.
func (s *Session) Attribute(key string) (value string, protected bool, ok bool) {
	if !s.attributes.Has(key) {
		return "", false, false
	}
	return s.attributes.Value(key), s.attributes.IsProtected(key), true
}

// ActiveAttribute returns the attribute under edit and its buffer.
func (s *Session) ActiveAttribute() (key, buffer string, ok bool) {
	if s.activeKey == "" {
		return "", "", false
	}
	return s.activeKey, s.activeBuf, true
}

// SetAttribute writes a custom attribute into the working map. Standard
// keys are reserved for the scalar fields.
func (s *Session) SetAttribute(key, value string, protected bool) error {
	if err := s.checkMutable("set attribute"); err != nil {
		return err
	}
	if key == "" || models.IsDefaultAttribute(key) {
		return fmt.Errorf("set attribute: invalid key %q", key)
	}
	s.attributes.Set(key, value, protected)
	if key == s.activeKey {
		s.activeBuf = value
	}
	return nil
}

// SetAttributeProtected changes only the protected flag of key. The value in
// the working map and the active edit buffer are left as they are.
func (s *Session) SetAttributeProtected(key string, protected bool) error {
	if err := s.checkMutable("protect attribute"); err != nil {
		return err
	}
	if !s.attributes.Has(key) {
		return fmt.Errorf("protect attribute %q: %w", key, common.ErrAttributeNotFound)
	}
	s.attributes.Set(key, s.attributes.Value(key), protected)
	return nil
}

func (s *Session) RemoveAttribute(key string) error {
	if err := s.checkMutable("remove attribute"); err != nil {
		return err
	}
	if !s.attributes.Remove(key) {
		return fmt.Errorf("remove attribute %q: %w", key, common.ErrAttributeNotFound)
	}
	if key == s.activeKey {
		s.activeKey = ""
		s.activeBuf = ""
	}
	return nil
}

// RenameAttribute changes a key in place, keeping value and protection.
func (s *Session) RenameAttribute(from, to string) error {
	if err := s.checkMutable("rename attribute"); err != nil {
		return err
	}
	if to == "" || models.IsDefaultAttribute(to) {
		return fmt.Errorf("rename attribute: invalid key %q", to)
	}
	if !s.attributes.Has(from) {
		return fmt.Errorf("rename attribute %q: %w", from, common.ErrAttributeNotFound)
	}
	if !s.attributes.Rename(from, to) {
		return fmt.Errorf("rename attribute: key %q already exists", to)
	}
	if from == s.activeKey {
		s.activeKey = to
	}
	return nil
}

// InsertNewAttribute adds an empty attribute under the first free name of
// "New attribute", "New attribute 1", "New attribute 2", ... and makes it
// the active one.
func (s *Session) InsertNewAttribute() (string, error) {
	if err := s.checkMutable("insert attribute"); err != nil {
		return "", err
	}

	name := common.NewAttributeName
	for i := 1; s.attributes.Has(name); i++ {
		name = fmt.Sprintf("%s %d", common.NewAttributeName, i)
	}

	s.attributes.Set(name, "", false)
	if err := s.SwitchActiveAttribute(name); err != nil {
		return "", err
	}
	return name, nil
}

// SwitchActiveAttribute moves edit focus to newKey, first writing the edit
// buffer of the previously active attribute into the working map. An empty
// newKey clears focus. In ModeHistoryView focus moves but nothing is written.
func (s *Session) SwitchActiveAttribute(newKey string) error {
	if err := s.checkOpen("switch attribute"); err != nil {
		return err
	}
	if newKey != "" && !s.attributes.Has(newKey) {
		return fmt.Errorf("switch attribute %q: %w", newKey, common.ErrAttributeNotFound)
	}
	if newKey == s.activeKey {
		return nil
	}

	if s.mode != ModeHistoryView {
		s.flushActiveAttribute()
	}

	s.activeKey = newKey
	s.activeBuf = ""
	if newKey != "" {
		s.activeBuf = s.attributes.Value(newKey)
	}
	return nil
}

// EditActiveAttribute replaces the edit buffer of the active attribute.
// The working map is not touched until focus moves or the session commits.
func (s *Session) EditActiveAttribute(text string) error {
	if err := s.checkMutable("edit attribute"); err != nil {
		return err
	}
	if s.activeKey == "" {
		return fmt.Errorf("edit attribute: no active attribute: %w", common.ErrAttributeNotFound)
	}
	s.activeBuf = text
	return nil
}

func (s *Session) flushActiveAttribute() {
	if s.activeKey == "" || !s.attributes.Has(s.activeKey) {
		return
	}
	s.attributes.Set(s.activeKey, s.activeBuf, s.attributes.IsProtected(s.activeKey))
}
