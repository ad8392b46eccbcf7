// Package models defines the in-memory vault model: entries with their
// attributes, attachments, icon and history, and the database that owns them.
//
// An Entry records prior versions of itself through an update bracket:
//
//	e.BeginUpdate()
//	e.SetTitle("Bank")
//	e.EndUpdate() // appends a snapshot of the pre-update state if anything changed
//
// Records are the serializable form of an Entry used by the repositories.
package models
