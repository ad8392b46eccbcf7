package models

import "github.com/google/uuid"

// DefaultIconNumber is the built-in icon assigned when no valid icon is set.
const DefaultIconNumber = 0

// Icon selects either a built-in icon by number or a custom icon stored in
// the database metadata by UUID. A non-nil UUID takes precedence.
type Icon struct {
	Number int
	UUID   uuid.UUID
}

func (i Icon) IsCustom() bool {
	return i.UUID != uuid.Nil
}
