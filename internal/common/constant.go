package common

// NewAttributeName is the base name given to attributes created through the
// editor before the user renames them.
const NewAttributeName = "New attribute"

// MasterKeySize is the length in bytes of the derived vault key.
const MasterKeySize = 32
