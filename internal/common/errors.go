// Package common defines shared constants and sentinel errors used across
// entrykeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrInvalidPassword = errors.New("invalid master password")
	ErrVaultLocked     = errors.New("vault is locked")
	ErrEntryLocked     = errors.New("entry is already being edited")

	// Edit session errors.
	ErrNilEntry         = errors.New("entry is required unless creating")
	ErrSessionState     = errors.New("operation not allowed in current session state")
	ErrSessionClosed    = errors.New("session is closed")
	ErrReadOnlySession  = errors.New("session is read-only")
	ErrPasswordMismatch = errors.New("different passwords supplied")

	// Item-specific errors.
	ErrAttributeNotFound  = errors.New("attribute not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrHistoryNotFound    = errors.New("history item not found")

	// File collaborator errors.
	ErrFileAccess = errors.New("file access error")
	ErrFileExists = errors.New("file already exists")
)
