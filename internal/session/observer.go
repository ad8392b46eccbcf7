package session

import "github.com/dmitrijs2005/entrykeeper/internal/models"

// Observer receives session completion signals.
type Observer interface {
	// EditFinished fires exactly once, after Commit or Discard has drained
	// every pending change.
	EditFinished(committed bool)
	// HistoryEntryActivated fires when the caller asks to view a snapshot.
	HistoryEntryActivated(snapshot *models.Entry)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnEditFinished          func(committed bool)
	OnHistoryEntryActivated func(snapshot *models.Entry)
}

func (o ObserverFuncs) EditFinished(committed bool) {
	if o.OnEditFinished != nil {
		o.OnEditFinished(committed)
	}
}

func (o ObserverFuncs) HistoryEntryActivated(snapshot *models.Entry) {
	if o.OnHistoryEntryActivated != nil {
		o.OnHistoryEntryActivated(snapshot)
	}
}
