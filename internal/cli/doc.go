// Package cli is the interactive front end of entrykeeper.
//
// The top-level REPL unlocks the vault and lists, creates, edits, deletes
// and inspects entries. Editing happens in a nested REPL bound to one edit
// session: every command maps onto a session operation, and "commit" or
// "discard" ends it.
package cli
