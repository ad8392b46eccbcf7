package models

// EncryptedEntry is the storage row of an entry. Overview holds the sealed
// Overview used for listings; Details holds the sealed Record.
type EncryptedEntry struct {
	ID            string
	Overview      []byte
	NonceOverview []byte
	Details       []byte
	NonceDetails  []byte
	Deleted       bool
}

// EncryptedIcon is the storage row of a custom icon.
type EncryptedIcon struct {
	ID    string
	Data  []byte
	Nonce []byte
}
