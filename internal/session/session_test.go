package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/dmitrijs2005/entrykeeper/internal/logging"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	finished  []bool
	activated []*models.Entry
}

func (r *recorder) EditFinished(committed bool) { r.finished = append(r.finished, committed) }
func (r *recorder) HistoryEntryActivated(e *models.Entry) {
	r.activated = append(r.activated, e)
}

// entryWithHistory builds an entry whose title went through n edits.
func entryWithHistory(t *testing.T, n int) *models.Entry {
	t.Helper()
	e := models.NewEntry()
	e.SetTitle("v0")
	e.SetPassword("pw")
	e.Attributes().Set("PIN", "1234", true)
	e.Attributes().Set("Note", "x", false)
	e.Attachments().Set("a.txt", []byte("A"))
	for i := 1; i <= n; i++ {
		e.BeginUpdate()
		e.SetTitle("v" + string(rune('0'+i)))
		require.True(t, e.EndUpdate())
	}
	require.Len(t, e.HistoryItems(), n)
	return e
}

func serialized(t *testing.T, e *models.Entry) []byte {
	t.Helper()
	b, err := json.Marshal(e.ToRecord())
	require.NoError(t, err)
	return b
}

func TestOpen_Preconditions(t *testing.T) {
	_, err := Open(nil, ModeEdit, nil)
	require.ErrorIs(t, err, common.ErrNilEntry)

	_, err = Open(nil, ModeHistoryView, nil)
	require.ErrorIs(t, err, common.ErrNilEntry)

	_, err = Open(models.NewEntry(), Mode(42), nil)
	require.Error(t, err)

	s, err := Open(nil, ModeCreate, nil)
	require.NoError(t, err)
	require.NotNil(t, s.Entry())
	assert.Equal(t, StateEditing, s.State())

	err = s.Open(models.NewEntry(), ModeEdit, nil)
	require.ErrorIs(t, err, common.ErrSessionState)
}

func TestOpen_PopulatesWorkingCopy(t *testing.T) {
	e := entryWithHistory(t, 2)
	s, err := Open(e, ModeEdit, models.NewDatabase())
	require.NoError(t, err)

	f := s.Fields()
	assert.Equal(t, "v2", f.Title)
	assert.Equal(t, "pw", f.Password)
	assert.Equal(t, "pw", f.PasswordConfirmation)
	assert.Equal(t, []string{"PIN", "Note"}, s.AttributeKeys())
	assert.Equal(t, []string{"a.txt"}, s.AttachmentNames())
	assert.Len(t, s.HistoryItems(), 2)

	key, buf, ok := s.ActiveAttribute()
	require.True(t, ok)
	assert.Equal(t, "PIN", key)
	assert.Equal(t, "1234", buf)
}

func TestUnopened_RejectsOperations(t *testing.T) {
	s := New()
	require.ErrorIs(t, s.SetTitle("x"), common.ErrSessionState)
	require.ErrorIs(t, s.Commit(), common.ErrSessionState)
	require.ErrorIs(t, s.Discard(), common.ErrSessionState)
}

func TestHistoryView_MutationsLeaveStateUnchanged(t *testing.T) {
	snapshot := entryWithHistory(t, 1).HistoryItems()[0]
	s, err := Open(snapshot, ModeHistoryView, models.NewDatabase())
	require.NoError(t, err)

	beforeFields := s.Fields()
	beforeAttrs := s.AttributeKeys()
	beforeAtt, _ := s.Attachment("a.txt")

	mutations := []func() error{
		func() error { return s.SetTitle("changed") },
		func() error { return s.SetField(FieldExpires, true) },
		func() error { return s.SetPassword("other") },
		func() error { return s.SetIcon(models.Icon{Number: 7}) },
		func() error { return s.SetAttribute("PIN", "0000", true) },
		func() error { return s.RemoveAttribute("PIN") },
		func() error { return s.RenameAttribute("PIN", "Code") },
		func() error { return s.SetAttributeProtected("PIN", false) },
		func() error { _, err := s.InsertNewAttribute(); return err },
		func() error { return s.EditActiveAttribute("zzz") },
		func() error { return s.AddAttachment("b.txt", []byte("B")) },
		func() error { return s.RemoveAttachment("a.txt") },
		func() error { return s.DeleteAllHistoryEntries() },
		func() error { return s.ActivateHistoryEntry(snapshot) },
	}
	for i, m := range mutations {
		require.ErrorIs(t, m(), common.ErrReadOnlySession, "mutation %d", i)
	}

	assert.Empty(t, cmp.Diff(beforeFields, s.Fields()))
	assert.Equal(t, beforeAttrs, s.AttributeKeys())
	v, _, _ := s.Attribute("PIN")
	assert.Equal(t, "1234", v)
	got, ok := s.Attachment("a.txt")
	require.True(t, ok)
	assert.Equal(t, beforeAtt, got)
	assert.Equal(t, []string{"a.txt"}, s.AttachmentNames())
	assert.Empty(t, s.HistoryItems())
	assert.Equal(t, Permissions{CanExportAttachments: true}, s.Permissions())
}

func TestHistoryView_CommitNeverMutates(t *testing.T) {
	e := entryWithHistory(t, 1)
	snapshot := e.HistoryItems()[0]
	before := serialized(t, snapshot)

	rec := &recorder{}
	s, err := Open(snapshot, ModeHistoryView, models.NewDatabase(), WithObserver(rec))
	require.NoError(t, err)

	require.NoError(t, s.Commit())
	assert.Equal(t, []bool{false}, rec.finished)
	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, before, serialized(t, snapshot))
}

func TestHistoryView_SwitchAttributeOnlyMovesFocus(t *testing.T) {
	s, err := Open(entryWithHistory(t, 0), ModeHistoryView, nil)
	require.NoError(t, err)

	require.NoError(t, s.SwitchActiveAttribute("Note"))
	key, buf, ok := s.ActiveAttribute()
	require.True(t, ok)
	assert.Equal(t, "Note", key)
	assert.Equal(t, "x", buf)
}

func TestInsertNewAttribute_UniqueSuffixes(t *testing.T) {
	s, err := Open(nil, ModeCreate, nil)
	require.NoError(t, err)

	const n = 5
	want := []string{"New attribute", "New attribute 1", "New attribute 2", "New attribute 3", "New attribute 4"}
	var got []string
	for i := 0; i < n; i++ {
		k, err := s.InsertNewAttribute()
		require.NoError(t, err)
		got = append(got, k)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, want, s.AttributeKeys())

	key, _, _ := s.ActiveAttribute()
	assert.Equal(t, "New attribute 4", key)
}

func TestInsertNewAttribute_FillsGap(t *testing.T) {
	s, err := Open(nil, ModeCreate, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetAttribute("New attribute", "", false))
	require.NoError(t, s.SetAttribute("New attribute 2", "", false))

	k, err := s.InsertNewAttribute()
	require.NoError(t, err)
	assert.Equal(t, "New attribute 1", k)
}

func TestSwitchActiveAttribute_FlushesOnlyOnFocusChange(t *testing.T) {
	e := entryWithHistory(t, 0)
	s, err := Open(e, ModeEdit, nil)
	require.NoError(t, err)

	require.NoError(t, s.EditActiveAttribute("9999"))
	v, _, _ := s.Attribute("PIN")
	assert.Equal(t, "1234", v, "buffer must not reach the map before focus moves")

	require.NoError(t, s.SwitchActiveAttribute("Note"))
	v, protected, _ := s.Attribute("PIN")
	assert.Equal(t, "9999", v)
	assert.True(t, protected, "flush keeps the protected flag")

	require.ErrorIs(t, s.SwitchActiveAttribute("missing"), common.ErrAttributeNotFound)

	require.NoError(t, s.EditActiveAttribute("note text"))
	require.NoError(t, s.Commit())
	assert.Equal(t, "note text", e.Attributes().Value("Note"), "commit flushes the active buffer")
	assert.Equal(t, "9999", e.Attributes().Value("PIN"))
}

func TestSetAttributeProtected_KeepsActiveBuffer(t *testing.T) {
	e := entryWithHistory(t, 0)
	s, err := Open(e, ModeEdit, nil)
	require.NoError(t, err)

	require.NoError(t, s.SwitchActiveAttribute("Note"))
	require.NoError(t, s.EditActiveAttribute("unsaved"))
	require.NoError(t, s.SetAttributeProtected("Note", true))

	key, buf, _ := s.ActiveAttribute()
	assert.Equal(t, "Note", key)
	assert.Equal(t, "unsaved", buf)
	_, protected, _ := s.Attribute("Note")
	assert.True(t, protected)

	require.ErrorIs(t, s.SetAttributeProtected("missing", true), common.ErrAttributeNotFound)

	require.NoError(t, s.Commit())
	assert.Equal(t, "unsaved", e.Attributes().Value("Note"))
	assert.True(t, e.Attributes().IsProtected("Note"))
	assert.Equal(t, []string{"PIN", "Note"}, e.Attributes().CustomKeys(), "order is kept")
}

func TestAttributes_SetRemoveRename(t *testing.T) {
	s, err := Open(entryWithHistory(t, 0), ModeEdit, nil)
	require.NoError(t, err)

	require.Error(t, s.SetAttribute(models.TitleKey, "x", false))
	require.Error(t, s.SetAttribute("", "x", false))

	require.NoError(t, s.SetAttribute("PIN", "4321", true))
	_, buf, _ := s.ActiveAttribute()
	assert.Equal(t, "4321", buf, "setting the active key updates its buffer")

	require.NoError(t, s.RenameAttribute("PIN", "Code"))
	key, _, _ := s.ActiveAttribute()
	assert.Equal(t, "Code", key)
	require.Error(t, s.RenameAttribute("Code", "Note"))
	require.ErrorIs(t, s.RenameAttribute("nope", "x"), common.ErrAttributeNotFound)

	require.NoError(t, s.RemoveAttribute("Code"))
	_, _, ok := s.ActiveAttribute()
	assert.False(t, ok)
	require.ErrorIs(t, s.RemoveAttribute("Code"), common.ErrAttributeNotFound)
	require.ErrorIs(t, s.EditActiveAttribute("x"), common.ErrAttributeNotFound)
}

func TestCommit_PasswordMismatchThenRetry(t *testing.T) {
	e := entryWithHistory(t, 1)
	before := serialized(t, e)
	rec := &recorder{}

	s, err := Open(e, ModeEdit, models.NewDatabase(), WithObserver(rec))
	require.NoError(t, err)
	require.NoError(t, s.SetTitle("changed"))
	require.NoError(t, s.SetPassword("new-password"))
	require.NoError(t, s.SetPasswordConfirmation("new-pass"))
	assert.Equal(t, PartialMatch, s.PasswordCheck())

	err = s.Commit()
	require.ErrorIs(t, err, common.ErrPasswordMismatch)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "password", ve.Field)

	assert.Equal(t, before, serialized(t, e), "failed commit must not touch the entry")
	assert.Equal(t, StateEditing, s.State())
	assert.Empty(t, rec.finished)

	require.NoError(t, s.SetPasswordConfirmation("new-password"))
	assert.Equal(t, Match, s.PasswordCheck())
	require.NoError(t, s.Commit())

	assert.Equal(t, "changed", e.Title())
	assert.Equal(t, "new-password", e.Password())
	assert.Len(t, e.HistoryItems(), 2)
	assert.Equal(t, []bool{true}, rec.finished)
}

func TestClassifyPassword(t *testing.T) {
	tests := []struct {
		pw, confirm string
		want        PasswordMatch
	}{
		{"secret", "secret", Match},
		{"", "", Match},
		{"secret", "sec", PartialMatch},
		{"secret", "", PartialMatch},
		{"secret", "sex", Mismatch},
		{"sec", "secret", Mismatch},
	}
	for _, tt := range tests {
		t.Run(tt.pw+"/"+tt.confirm, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPassword(tt.pw, tt.confirm))
		})
	}
}

func TestCommit_DeleteAllHistoryLeavesNoSnapshot(t *testing.T) {
	e := entryWithHistory(t, 3)
	s, err := Open(e, ModeEdit, models.NewDatabase())
	require.NoError(t, err)

	require.NoError(t, s.DeleteAllHistoryEntries())
	assert.Len(t, s.PendingHistoryDeletions(), 3)
	assert.Empty(t, s.HistoryItems())
	assert.Len(t, e.HistoryItems(), 3, "deletions are applied on commit only")

	require.NoError(t, s.Commit())
	assert.Empty(t, e.HistoryItems())
}

func TestCommit_DeleteOneHistoryWithEdit(t *testing.T) {
	e := entryWithHistory(t, 3)
	hist := e.HistoryItems()

	s, err := Open(e, ModeEdit, models.NewDatabase())
	require.NoError(t, err)
	require.NoError(t, s.DeleteHistoryEntry(hist[1]))
	require.ErrorIs(t, s.DeleteHistoryEntry(hist[1]), common.ErrHistoryNotFound)
	require.NoError(t, s.SetTitle("edited"))
	require.NoError(t, s.Commit())

	after := e.HistoryItems()
	require.Len(t, after, 3, "one pruned, one pre-edit snapshot added")
	assert.Same(t, hist[0], after[0])
	assert.Same(t, hist[2], after[1])
	assert.Equal(t, "v3", after[2].Title())
	assert.Empty(t, after[2].HistoryItems(), "snapshot does not carry history")
}

func TestCommit_DeleteHistoryWithoutEditShrinksExactly(t *testing.T) {
	e := entryWithHistory(t, 3)
	hist := e.HistoryItems()

	s, err := Open(e, ModeEdit, models.NewDatabase())
	require.NoError(t, err)
	require.NoError(t, s.DeleteHistoryEntry(hist[0]))
	require.NoError(t, s.Commit())

	assert.Len(t, e.HistoryItems(), 2)
}

func TestCreateScenario(t *testing.T) {
	rec := &recorder{}
	s, err := Open(nil, ModeCreate, models.NewDatabase(), WithObserver(rec))
	require.NoError(t, err)
	e := s.Entry()

	require.NoError(t, s.SetField(FieldTitle, "Bank"))
	require.NoError(t, s.SetAttribute("PIN", "1234", true))
	require.NoError(t, s.Commit())

	assert.Equal(t, "Bank", e.Title())
	assert.Equal(t, []string{"PIN"}, e.Attributes().CustomKeys())
	assert.Equal(t, "1234", e.Attributes().Value("PIN"))
	assert.True(t, e.Attributes().IsProtected("PIN"))
	assert.Empty(t, e.HistoryItems(), "create does not bracket")
	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, []bool{true}, rec.finished)
	assert.Nil(t, s.Entry())

	require.ErrorIs(t, s.Commit(), common.ErrSessionClosed)
	require.ErrorIs(t, s.Discard(), common.ErrSessionClosed)
	require.ErrorIs(t, s.SetTitle("again"), common.ErrSessionClosed)
	assert.Equal(t, []bool{true}, rec.finished)
}

func TestCommit_WritesAllFields(t *testing.T) {
	e := entryWithHistory(t, 0)
	iconID := uuid.New()
	expiry := time.Date(2031, 5, 6, 7, 8, 9, 0, time.UTC)

	s, err := Open(e, ModeEdit, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetUsername("alice"))
	require.NoError(t, s.SetURL("https://bank.example"))
	require.NoError(t, s.SetNotes("multi\nline"))
	require.NoError(t, s.SetExpiry(true, expiry))
	require.NoError(t, s.SetIcon(models.Icon{Number: 3, UUID: iconID}))
	require.NoError(t, s.AddAttachment("a.txt", []byte("overwritten")))
	require.NoError(t, s.AddAttachment("b.bin", []byte{0, 1}))
	require.NoError(t, s.Commit())

	assert.Equal(t, "alice", e.Username())
	assert.Equal(t, "https://bank.example", e.URL())
	assert.Equal(t, "multi\nline", e.Notes())
	assert.True(t, e.TimeInfo().Expires)
	assert.True(t, expiry.Equal(e.TimeInfo().ExpiryTime))
	assert.Equal(t, iconID, e.Icon().UUID)
	v, _ := e.Attachments().Value("a.txt")
	assert.Equal(t, []byte("overwritten"), v)
	assert.Equal(t, []string{"a.txt", "b.bin"}, e.Attachments().Keys())
	assert.Len(t, e.HistoryItems(), 1)
}

func TestCommit_IconResolution(t *testing.T) {
	custom := uuid.New()
	tests := []struct {
		name string
		icon models.Icon
		want models.Icon
	}{
		{"negative resets to default", models.Icon{Number: -1, UUID: custom}, models.Icon{Number: models.DefaultIconNumber}},
		{"builtin number", models.Icon{Number: 12}, models.Icon{Number: 12}},
		{"custom uuid", models.Icon{Number: 0, UUID: custom}, models.Icon{Number: 0, UUID: custom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := models.NewEntry()
			s, err := Open(e, ModeEdit, nil)
			require.NoError(t, err)
			require.NoError(t, s.SetIcon(tt.icon))
			require.NoError(t, s.Commit())
			assert.Equal(t, tt.want, e.Icon())
		})
	}
}

func TestDiscard_RoundTripLeavesEntryIdentical(t *testing.T) {
	e := entryWithHistory(t, 2)
	before := serialized(t, e)
	rec := &recorder{}

	s, err := Open(e, ModeEdit, models.NewDatabase(), WithObserver(rec))
	require.NoError(t, err)
	require.NoError(t, s.SetTitle("ignored"))
	require.NoError(t, s.DeleteAllHistoryEntries())
	require.NoError(t, s.Discard())

	assert.Equal(t, before, serialized(t, e))
	assert.Equal(t, []bool{false}, rec.finished)
	assert.Equal(t, StateClosed, s.State())
}

func TestDiscard_ResetsDanglingCustomIcon(t *testing.T) {
	db := models.NewDatabase()
	kept := uuid.New()
	db.Metadata().AddCustomIcon(kept, []byte("png"))

	e := models.NewEntry()
	e.SetIconUUID(kept)
	s, err := Open(e, ModeEdit, db)
	require.NoError(t, err)
	require.NoError(t, s.Discard())
	assert.Equal(t, kept, e.Icon().UUID, "valid icon untouched")

	dangling := models.NewEntry()
	dangling.SetIconNumber(4)
	dangling.SetIconUUID(uuid.New())
	s, err = Open(dangling, ModeCreate, db)
	require.NoError(t, err)
	require.NoError(t, s.Discard())
	assert.Equal(t, models.Icon{Number: models.DefaultIconNumber}, dangling.Icon())
}

func TestDiscard_HistoryViewNeverTouchesIcon(t *testing.T) {
	e := models.NewEntry()
	id := uuid.New()
	e.SetIconUUID(id)

	s, err := Open(e, ModeHistoryView, models.NewDatabase())
	require.NoError(t, err)
	require.NoError(t, s.Discard())
	assert.Equal(t, id, e.Icon().UUID)
}

func TestActivateHistoryEntry_FiresObserver(t *testing.T) {
	e := entryWithHistory(t, 2)
	rec := &recorder{}
	var viaFuncs *models.Entry

	s, err := Open(e, ModeEdit, nil, WithObserver(rec))
	require.NoError(t, err)
	s.Subscribe(ObserverFuncs{OnHistoryEntryActivated: func(h *models.Entry) { viaFuncs = h }})

	h := s.HistoryItems()[1]
	require.NoError(t, s.ActivateHistoryEntry(h))
	assert.Equal(t, []*models.Entry{h}, rec.activated)
	assert.Same(t, h, viaFuncs)

	require.ErrorIs(t, s.ActivateHistoryEntry(models.NewEntry()), common.ErrHistoryNotFound)
	assert.Len(t, s.HistoryItems(), 2)
}

func TestSetField_TypeMismatch(t *testing.T) {
	s, err := Open(nil, ModeCreate, nil)
	require.NoError(t, err)

	require.Error(t, s.SetField(FieldTitle, 5))
	require.Error(t, s.SetField(FieldExpires, "yes"))
	require.Error(t, s.SetField(FieldExpiryTime, "2020"))
	require.Error(t, s.SetField(FieldIcon, 3))
	require.Error(t, s.SetField(Field(99), "x"))
}

func TestPermissionsFor(t *testing.T) {
	for _, m := range []Mode{ModeCreate, ModeEdit} {
		p := PermissionsFor(m)
		assert.True(t, p.CanEditFields && p.CanEditAttributes && p.CanDeleteHistory, m.String())
	}
	assert.Equal(t, Permissions{CanExportAttachments: true}, PermissionsFor(ModeHistoryView))
}

func TestSession_LogsRefusedMutation(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	s, err := Open(models.NewEntry(), ModeHistoryView, nil, WithLogger(l))
	require.NoError(t, err)
	_ = s.SetTitle("x")

	assert.Contains(t, buf.String(), "mutation refused in history view")
	assert.Contains(t, buf.String(), "mode=history")
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "edit", ModeEdit.String())
	assert.Equal(t, "Mode(9)", Mode(9).String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "partial", PartialMatch.String())
	assert.Equal(t, "expiry time", FieldExpiryTime.String())
}
