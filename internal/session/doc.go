// Package session implements the entry editing session: a transient, toolkit
// independent working copy of one entry that is either committed onto the
// entry or discarded.
//
// # Lifecycle
//
//	Unopened --Open(mode)--> Editing(mode) --Commit|Discard--> Closed
//
// Closed is terminal; a new Session is constructed per edit. The mode is
// fixed for the lifetime of the session:
//
//   - ModeCreate: a fresh entry; no update bracket on commit
//   - ModeEdit: an existing entry; commit runs inside the entry's
//     update bracket so exactly one history snapshot of the pre-edit state
//     is recorded
//   - ModeHistoryView: a read-only look at a history snapshot; every
//     mutation is refused and commit behaves like discard
//
// # Attribute editing
//
// At most one custom attribute is being edited at a time. Its free-text value
// lives in an edit buffer and is written into the working attribute map only
// when focus moves (SwitchActiveAttribute, InsertNewAttribute) or on Commit.
//
// # History pruning
//
// History deletions are recorded during the session and applied to the entry
// on Commit before the update bracket opens, so pruning never produces a
// snapshot of its own.
//
// A Session is not safe for concurrent use, and only one session may be open
// against an entry at a time; callers enforce that.
package session
