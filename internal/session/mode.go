package session

import "fmt"

// Mode selects what a session may do. It is fixed at Open.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeHistoryView
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	case ModeHistoryView:
		return "history"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// State is the lifecycle position of a session.
type State int

const (
	StateUnopened State = iota
	StateEditing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateEditing:
		return "editing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Permissions tells a presentation layer which controls to enable.
type Permissions struct {
	CanEditFields        bool
	CanEditAttributes    bool
	CanEditAttachments   bool
	CanExportAttachments bool
	CanEditIcon          bool
	CanViewHistory       bool
	CanDeleteHistory     bool
}

// PermissionsFor is a pure function of the mode.
func PermissionsFor(mode Mode) Permissions {
	if mode == ModeHistoryView {
		return Permissions{CanExportAttachments: true}
	}
	return Permissions{
		CanEditFields:        true,
		CanEditAttributes:    true,
		CanEditAttachments:   true,
		CanExportAttachments: true,
		CanEditIcon:          true,
		CanViewHistory:       true,
		CanDeleteHistory:     true,
	}
}
