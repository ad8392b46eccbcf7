package session

import (
	"fmt"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
)

// HistoryItems returns the snapshots not marked for deletion, oldest first.
// It is empty in ModeHistoryView.
func (s *Session) HistoryItems() []*models.Entry {
	out := make([]*models.Entry, len(s.history))
	copy(out, s.history)
	return out
}

// PendingHistoryDeletions returns the snapshots that Commit will remove.
func (s *Session) PendingHistoryDeletions() []*models.Entry {
	out := make([]*models.Entry, len(s.deletedHistory))
	copy(out, s.deletedHistory)
	return out
}

func (s *Session) historyIndex(snapshot *models.Entry) int {
	for i, h := range s.history {
		if h == snapshot {
			return i
		}
	}
	return -1
}

// DeleteHistoryEntry marks one snapshot for removal on Commit.
func (s *Session) DeleteHistoryEntry(snapshot *models.Entry) error {
	if err := s.checkMutable("delete history entry"); err != nil {
		return err
	}
	i := s.historyIndex(snapshot)
	if i < 0 {
		return fmt.Errorf("delete history entry: %w", common.ErrHistoryNotFound)
	}
	s.deletedHistory = append(s.deletedHistory, snapshot)
	s.history = append(s.history[:i], s.history[i+1:]...)
	return nil
}

// DeleteAllHistoryEntries marks every remaining snapshot for removal.
func (s *Session) DeleteAllHistoryEntries() error {
	if err := s.checkMutable("delete all history entries"); err != nil {
		return err
	}
	s.deletedHistory = append(s.deletedHistory, s.history...)
	s.history = nil
	return nil
}

// ActivateHistoryEntry asks observers to show snapshot. It changes nothing.
func (s *Session) ActivateHistoryEntry(snapshot *models.Entry) error {
	if err := s.checkMutable("activate history entry"); err != nil {
		return err
	}
	if s.historyIndex(snapshot) < 0 {
		return fmt.Errorf("activate history entry: %w", common.ErrHistoryNotFound)
	}
	for _, o := range s.observers {
		o.HistoryEntryActivated(snapshot)
	}
	return nil
}
