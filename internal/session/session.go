package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/dmitrijs2005/entrykeeper/internal/filex"
	"github.com/dmitrijs2005/entrykeeper/internal/logging"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
)

// Field names a scalar entry field buffered by the session.
type Field int

const (
	FieldTitle Field = iota
	FieldUsername
	FieldURL
	FieldPassword
	FieldPasswordConfirmation
	FieldNotes
	FieldExpires
	FieldExpiryTime
	FieldIcon
)

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldUsername:
		return "username"
	case FieldURL:
		return "url"
	case FieldPassword:
		return "password"
	case FieldPasswordConfirmation:
		return "password confirmation"
	case FieldNotes:
		return "notes"
	case FieldExpires:
		return "expires"
	case FieldExpiryTime:
		return "expiry time"
	case FieldIcon:
		return "icon"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Fields is the buffered scalar state of the working copy.
type Fields struct {
	Title                string
	Username             string
	URL                  string
	Password             string
	PasswordConfirmation string
	Notes                string
	Expires              bool
	ExpiryTime           time.Time
	Icon                 models.Icon
}

// Session is one editing session against one entry.
type Session struct {
	state State
	mode  Mode

	entry *models.Entry
	db    *models.Database

	fields      Fields
	attributes  *models.Attributes
	attachments *models.Attachments

	history        []*models.Entry
	deletedHistory []*models.Entry

	activeKey string
	activeBuf string

	observers []Observer
	files     filex.FileAccess
	log       logging.Logger
}

// Option configures a Session.
type Option func(*Session)

func WithObserver(o Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

func WithFileAccess(fa filex.FileAccess) Option {
	return func(s *Session) { s.files = fa }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New returns an unopened session.
func New(opts ...Option) *Session {
	s := &Session{
		attributes:  models.NewAttributes(),
		attachments: models.NewAttachments(),
		log:         logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open is shorthand for New followed by (*Session).Open.
func Open(entry *models.Entry, mode Mode, db *models.Database, opts ...Option) (*Session, error) {
	s := New(opts...)
	if err := s.Open(entry, mode, db); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe adds an observer. It may be called in any state.
func (s *Session) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Open loads entry into the working copy. entry may be nil only for
// ModeCreate, in which case a fresh entry is created. db is consulted on
// Discard for custom icon cleanup and may be nil.
func (s *Session) Open(entry *models.Entry, mode Mode, db *models.Database) error {
	if s.state != StateUnopened {
		return fmt.Errorf("open: %w (state %s)", common.ErrSessionState, s.state)
	}
	if mode < ModeCreate || mode > ModeHistoryView {
		return fmt.Errorf("open: unknown mode %d", int(mode))
	}
	if entry == nil {
		if mode != ModeCreate {
			return common.ErrNilEntry
		}
		entry = models.NewEntry()
	}

	s.entry = entry
	s.db = db
	s.mode = mode

	ti := entry.TimeInfo()
	s.fields = Fields{
		Title:                entry.Title(),
		Username:             entry.Username(),
		URL:                  entry.URL(),
		Password:             entry.Password(),
		PasswordConfirmation: entry.Password(),
		Notes:                entry.Notes(),
		Expires:              ti.Expires,
		ExpiryTime:           ti.ExpiryTime,
		Icon:                 entry.Icon(),
	}

	s.attributes = models.NewAttributes()
	s.attributes.CopyCustomKeysFrom(entry.Attributes())
	s.attachments = entry.Attachments().Clone()

	if mode != ModeHistoryView {
		s.history = entry.HistoryItems()
	}
	s.deletedHistory = nil

	if keys := s.attributes.Keys(); len(keys) > 0 {
		s.activeKey = keys[0]
		s.activeBuf = s.attributes.Value(keys[0])
	}

	s.state = StateEditing
	s.log = s.log.With("entry", entry.UUID().String(), "mode", mode.String())
	s.log.Debug(context.Background(), "edit session opened")
	return nil
}

func (s *Session) State() State { return s.state }

func (s *Session) Mode() Mode { return s.mode }

// Permissions derives control state from the mode.
func (s *Session) Permissions() Permissions {
	return PermissionsFor(s.mode)
}

// Entry returns the entry being edited, or nil once the session is closed.
func (s *Session) Entry() *models.Entry {
	return s.entry
}

// Fields returns a copy of the buffered scalar fields.
func (s *Session) Fields() Fields {
	return s.fields
}

// checkMutable guards every mutating operation.
func (s *Session) checkMutable(op string) error {
	switch s.state {
	case StateUnopened:
		return fmt.Errorf("%s: %w (state %s)", op, common.ErrSessionState, s.state)
	case StateClosed:
		return fmt.Errorf("%s: %w", op, common.ErrSessionClosed)
	}
	if s.mode == ModeHistoryView {
		s.log.Warn(context.Background(), "mutation refused in history view", "op", op)
		return fmt.Errorf("%s: %w", op, common.ErrReadOnlySession)
	}
	return nil
}

func (s *Session) checkOpen(op string) error {
	switch s.state {
	case StateUnopened:
		return fmt.Errorf("%s: %w (state %s)", op, common.ErrSessionState, s.state)
	case StateClosed:
		return fmt.Errorf("%s: %w", op, common.ErrSessionClosed)
	}
	return nil
}

// SetField buffers a scalar edit. The value type must match the field:
// string for text fields, bool for FieldExpires, time.Time for
// FieldExpiryTime and models.Icon for FieldIcon.
func (s *Session) SetField(f Field, value any) error {
	if err := s.checkMutable("set " + f.String()); err != nil {
		return err
	}

	switch f {
	case FieldTitle, FieldUsername, FieldURL, FieldPassword, FieldPasswordConfirmation, FieldNotes:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("set %s: want string, got %T", f, value)
		}
		switch f {
		case FieldTitle:
			s.fields.Title = v
		case FieldUsername:
			s.fields.Username = v
		case FieldURL:
			s.fields.URL = v
		case FieldPassword:
			s.fields.Password = v
		case FieldPasswordConfirmation:
			s.fields.PasswordConfirmation = v
		case FieldNotes:
			s.fields.Notes = v
		}
	case FieldExpires:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("set %s: want bool, got %T", f, value)
		}
		s.fields.Expires = v
	case FieldExpiryTime:
		v, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("set %s: want time.Time, got %T", f, value)
		}
		s.fields.ExpiryTime = v.UTC()
	case FieldIcon:
		v, ok := value.(models.Icon)
		if !ok {
			return fmt.Errorf("set %s: want models.Icon, got %T", f, value)
		}
		s.fields.Icon = v
	default:
		return fmt.Errorf("set field: unknown field %d", int(f))
	}
	return nil
}

// SetTitle buffers the title.
func (s *Session) SetTitle(v string) error { return s.SetField(FieldTitle, v) }

// SetUsername buffers the user name.
func (s *Session) SetUsername(v string) error { return s.SetField(FieldUsername, v) }

// SetURL buffers the URL.
func (s *Session) SetURL(v string) error { return s.SetField(FieldURL, v) }

// SetNotes buffers the notes.
func (s *Session) SetNotes(v string) error { return s.SetField(FieldNotes, v) }

// SetIcon buffers the icon. It is resolved against the database on Commit.
func (s *Session) SetIcon(v models.Icon) error { return s.SetField(FieldIcon, v) }

// SetPassword sets the password buffer only; the confirmation must match
// before Commit succeeds.
func (s *Session) SetPassword(v string) error {
	return s.SetField(FieldPassword, v)
}

// SetPasswordConfirmation sets the confirmation buffer checked by Validate.
func (s *Session) SetPasswordConfirmation(v string) error {
	return s.SetField(FieldPasswordConfirmation, v)
}

// SetExpiry sets the expiry flag and time together.
func (s *Session) SetExpiry(expires bool, at time.Time) error {
	if err := s.SetField(FieldExpires, expires); err != nil {
		return err
	}
	return s.SetField(FieldExpiryTime, at)
}

// PasswordCheck classifies the password buffers for live feedback.
func (s *Session) PasswordCheck() PasswordMatch {
	return ClassifyPassword(s.fields.Password, s.fields.PasswordConfirmation)
}

// Validate returns every failed rule. The only rule is that the password and
// its confirmation are equal.
func (s *Session) Validate() []error {
	var errs []error
	if s.fields.Password != s.fields.PasswordConfirmation {
		errs = append(errs, &ValidationError{Field: FieldPassword.String(), Err: common.ErrPasswordMismatch})
	}
	return errs
}

// Commit writes the working copy onto the entry and closes the session.
// On validation failure it returns the joined validation errors and the
// session stays open. In ModeHistoryView it behaves like Discard.
func (s *Session) Commit() error {
	if err := s.checkOpen("commit"); err != nil {
		return err
	}
	ctx := context.Background()

	if s.mode == ModeHistoryView {
		s.release()
		s.finish(false)
		return nil
	}

	if errs := s.Validate(); len(errs) > 0 {
		s.log.Info(ctx, "commit rejected by validation", "errors", len(errs))
		return errors.Join(errs...)
	}

	s.flushActiveAttribute()

	// Pruning happens outside the update bracket so it is not itself
	// recorded as a history snapshot.
	s.entry.RemoveHistoryItems(s.deletedHistory)

	if s.mode == ModeEdit {
		s.entry.BeginUpdate()
	}

	e := s.entry
	e.SetTitle(s.fields.Title)
	e.SetUsername(s.fields.Username)
	e.SetURL(s.fields.URL)
	e.SetPassword(s.fields.Password)
	e.SetExpires(s.fields.Expires)
	e.SetExpiryTime(s.fields.ExpiryTime)
	e.SetNotes(s.fields.Notes)

	e.Attributes().CopyCustomKeysFrom(s.attributes)
	e.SetAttachments(s.attachments)

	icon := s.fields.Icon
	switch {
	case icon.Number < 0:
		e.SetIconNumber(models.DefaultIconNumber)
	case !icon.IsCustom():
		e.SetIconNumber(icon.Number)
	default:
		e.SetIconUUID(icon.UUID)
	}

	snapshot := false
	if s.mode == ModeEdit {
		snapshot = e.EndUpdate()
	}

	s.log.Info(ctx, "entry committed",
		"pruned_history", len(s.deletedHistory),
		"snapshot", snapshot,
	)

	s.release()
	s.finish(true)
	return nil
}

// Discard drops the working copy. The only change it may make to the entry
// is resetting a custom icon that no longer exists in the database.
func (s *Session) Discard() error {
	if err := s.checkOpen("discard"); err != nil {
		return err
	}

	if s.mode != ModeHistoryView && s.db != nil {
		icon := s.entry.Icon()
		if icon.IsCustom() && !s.db.Metadata().ContainsCustomIcon(icon.UUID) {
			s.entry.SetIconNumber(models.DefaultIconNumber)
			s.log.Info(context.Background(), "dangling custom icon reset", "icon", icon.UUID.String())
		}
	}

	s.log.Debug(context.Background(), "edit session discarded")
	s.release()
	s.finish(false)
	return nil
}

func (s *Session) release() {
	s.entry = nil
	s.db = nil
	s.fields = Fields{}
	s.attributes.Clear()
	s.attachments.Clear()
	s.history = nil
	s.deletedHistory = nil
	s.activeKey = ""
	s.activeBuf = ""
}

func (s *Session) finish(committed bool) {
	s.state = StateClosed
	for _, o := range s.observers {
		o.EditFinished(committed)
	}
}
