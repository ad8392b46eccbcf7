// Package services holds the vault application service: unlocking with the
// master password, loading the decrypted database, and starting edit
// sessions whose results are written back to storage.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/dmitrijs2005/entrykeeper/internal/cryptox"
	"github.com/dmitrijs2005/entrykeeper/internal/dbx"
	"github.com/dmitrijs2005/entrykeeper/internal/filex"
	"github.com/dmitrijs2005/entrykeeper/internal/logging"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/metadata"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/entrykeeper/internal/session"
	"github.com/google/uuid"
)

// ListItem is one row of the entry listing, decrypted from the overview.
type ListItem struct {
	ID uuid.UUID
	models.Overview
}

// VaultService owns the master key and the in-memory database while
// unlocked. Sessions it starts persist their entry when they commit.
type VaultService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	files filex.FileAccess
	log   logging.Logger

	mu         sync.Mutex
	key        []byte
	vault      *models.Database
	editing    map[uuid.UUID]struct{}
	persistErr error
}

func NewVaultService(db *sql.DB, repos repomanager.RepositoryManager, files filex.FileAccess, log logging.Logger) *VaultService {
	return &VaultService{
		db:      db,
		repos:   repos,
		files:   files,
		log:     log,
		editing: make(map[uuid.UUID]struct{}),
	}
}

// Unlock derives the master key from password. On an empty store it
// initializes the salt and verifier; otherwise it checks the verifier and
// returns common.ErrInvalidPassword on mismatch.
func (s *VaultService) Unlock(ctx context.Context, password []byte) error {
	meta := s.repos.Metadata(s.db)

	salt, err := meta.Get(ctx, metadata.KeySalt)
	if err != nil {
		return fmt.Errorf("read salt: %w", err)
	}

	if salt == nil {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		key := cryptox.DeriveMasterKey(password, salt)
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			m := s.repos.Metadata(tx)
			if err := m.Set(ctx, metadata.KeySalt, salt); err != nil {
				return err
			}
			return m.Set(ctx, metadata.KeyVerifier, cryptox.MakeVerifier(key))
		})
		if err != nil {
			return fmt.Errorf("initialize vault: %w", err)
		}
		s.log.Info(ctx, "vault initialized")
		s.setKey(key)
		return nil
	}

	verifier, err := meta.Get(ctx, metadata.KeyVerifier)
	if err != nil {
		return fmt.Errorf("read verifier: %w", err)
	}
	key := cryptox.DeriveMasterKey(password, salt)
	if !cryptox.CheckVerifier(key, verifier) {
		common.WipeByteArray(key)
		s.log.Warn(ctx, "unlock rejected")
		return common.ErrInvalidPassword
	}
	s.setKey(key)
	return nil
}

func (s *VaultService) setKey(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	s.vault = nil
}

// Lock wipes the master key and drops the decrypted database.
func (s *VaultService) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = nil
	s.vault = nil
	s.editing = make(map[uuid.UUID]struct{})
}

func (s *VaultService) masterKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return nil, common.ErrVaultLocked
	}
	return s.key, nil
}

// Load decrypts every stored entry and custom icon into a fresh database
// and keeps it as the working vault.
func (s *VaultService) Load(ctx context.Context) (*models.Database, error) {
	key, err := s.masterKey()
	if err != nil {
		return nil, err
	}

	vault := models.NewDatabase()

	rows, err := s.repos.Entries(s.db).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	for _, row := range rows {
		var rec models.Record
		if err := cryptox.DecryptEntry(row.Details, row.NonceDetails, key, &rec); err != nil {
			return nil, fmt.Errorf("decrypt entry %s: %w", row.ID, err)
		}
		e, err := models.FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", row.ID, err)
		}
		vault.AddEntry(e)
	}

	icons, err := s.repos.Icons(s.db).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load icons: %w", err)
	}
	for _, icon := range icons {
		id, err := uuid.Parse(icon.ID)
		if err != nil {
			return nil, fmt.Errorf("icon id %q: %w", icon.ID, err)
		}
		data, err := cryptox.Open(icon.Data, icon.Nonce, key)
		if err != nil {
			return nil, fmt.Errorf("decrypt icon %s: %w", icon.ID, err)
		}
		vault.Metadata().AddCustomIcon(id, data)
	}

	s.mu.Lock()
	s.vault = vault
	s.mu.Unlock()

	s.log.Info(ctx, "vault loaded", "entries", len(rows), "icons", len(icons))
	return vault, nil
}

// database returns the loaded vault, loading it on first use.
func (s *VaultService) database(ctx context.Context) (*models.Database, error) {
	s.mu.Lock()
	vault := s.vault
	s.mu.Unlock()
	if vault != nil {
		return vault, nil
	}
	return s.Load(ctx)
}

// List decrypts only the overviews, sorted by title.
func (s *VaultService) List(ctx context.Context) ([]ListItem, error) {
	key, err := s.masterKey()
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Entries(s.db).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			s.log.Warn(ctx, "skipping entry with bad id", "id", row.ID)
			continue
		}
		var ov models.Overview
		if err := cryptox.DecryptEntry(row.Overview, row.NonceOverview, key, &ov); err != nil {
			s.log.Error(ctx, "overview decryption failed", "id", row.ID, "error", err)
			continue
		}
		items = append(items, ListItem{ID: id, Overview: ov})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	return items, nil
}

// Entry returns the decrypted entry with id.
func (s *VaultService) Entry(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	vault, err := s.database(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := vault.Entry(id)
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", id, common.ErrorNotFound)
	}
	return e, nil
}

func (s *VaultService) sessionOptions(extra []session.Option) []session.Option {
	opts := []session.Option{session.WithLogger(s.log)}
	if s.files != nil {
		opts = append(opts, session.WithFileAccess(s.files))
	}
	return append(opts, extra...)
}

// StartCreate opens a create session on a new entry. The entry joins the
// vault and is stored only if the session commits.
func (s *VaultService) StartCreate(ctx context.Context, opts ...session.Option) (*session.Session, error) {
	vault, err := s.database(ctx)
	if err != nil {
		return nil, err
	}

	e := models.NewEntry()
	ctx = context.WithoutCancel(ctx)
	obs := session.ObserverFuncs{OnEditFinished: func(committed bool) {
		if !committed {
			return
		}
		vault.AddEntry(e)
		s.persist(ctx, e)
	}}
	return session.Open(e, session.ModeCreate, vault, append(s.sessionOptions(opts), session.WithObserver(obs))...)
}

// StartEdit opens an edit session on entry id. Only one edit session per
// entry may be open; a second one gets common.ErrEntryLocked.
func (s *VaultService) StartEdit(ctx context.Context, id uuid.UUID, opts ...session.Option) (*session.Session, error) {
	e, err := s.Entry(ctx, id)
	if err != nil {
		return nil, err
	}
	vault, err := s.database(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, busy := s.editing[id]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("entry %s: %w", id, common.ErrEntryLocked)
	}
	s.editing[id] = struct{}{}
	s.mu.Unlock()

	iconBefore := e.Icon()
	ctx = context.WithoutCancel(ctx)
	obs := session.ObserverFuncs{OnEditFinished: func(committed bool) {
		s.release(id)
		// A discard may still have reset a dangling custom icon.
		if committed || e.Icon() != iconBefore {
			s.persist(ctx, e)
		}
	}}

	sess, err := session.Open(e, session.ModeEdit, vault, append(s.sessionOptions(opts), session.WithObserver(obs))...)
	if err != nil {
		s.release(id)
		return nil, err
	}
	return sess, nil
}

// StartHistoryView opens a read-only session on the index-th snapshot of
// entry id, oldest first.
func (s *VaultService) StartHistoryView(ctx context.Context, id uuid.UUID, index int, opts ...session.Option) (*session.Session, error) {
	e, err := s.Entry(ctx, id)
	if err != nil {
		return nil, err
	}
	history := e.HistoryItems()
	if index < 0 || index >= len(history) {
		return nil, fmt.Errorf("entry %s history %d: %w", id, index, common.ErrHistoryNotFound)
	}
	vault, err := s.database(ctx)
	if err != nil {
		return nil, err
	}
	return session.Open(history[index], session.ModeHistoryView, vault, s.sessionOptions(opts)...)
}

func (s *VaultService) release(id uuid.UUID) {
	s.mu.Lock()
	delete(s.editing, id)
	s.mu.Unlock()
}

// Save encrypts e and upserts it in one transaction.
func (s *VaultService) Save(ctx context.Context, e *models.Entry) error {
	key, err := s.masterKey()
	if err != nil {
		return err
	}

	ov, ovNonce, err := cryptox.EncryptEntry(e.Overview(), key)
	if err != nil {
		return fmt.Errorf("encryption error: %w", err)
	}
	details, detailsNonce, err := cryptox.EncryptEntry(e.ToRecord(), key)
	if err != nil {
		return fmt.Errorf("encryption error: %w", err)
	}

	row := &models.EncryptedEntry{
		ID:            e.UUID().String(),
		Overview:      ov,
		NonceOverview: ovNonce,
		Details:       details,
		NonceDetails:  detailsNonce,
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Entries(tx).CreateOrUpdate(ctx, row)
	})
}

func (s *VaultService) persist(ctx context.Context, e *models.Entry) {
	err := s.Save(ctx, e)
	if err != nil {
		s.log.Error(ctx, "entry not saved", "entry", e.UUID().String(), "error", err)
	} else {
		s.log.Debug(ctx, "entry saved", "entry", e.UUID().String())
	}
	s.mu.Lock()
	s.persistErr = err
	s.mu.Unlock()
}

// PersistError returns and clears the result of the last write triggered
// by a finished session.
func (s *VaultService) PersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.persistErr
	s.persistErr = nil
	return err
}

// Delete removes entry id from storage and from the loaded vault.
func (s *VaultService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.masterKey(); err != nil {
		return err
	}
	s.mu.Lock()
	_, busy := s.editing[id]
	s.mu.Unlock()
	if busy {
		return fmt.Errorf("entry %s: %w", id, common.ErrEntryLocked)
	}

	if err := s.repos.Entries(s.db).DeleteByID(ctx, id.String()); err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}

	s.mu.Lock()
	if s.vault != nil {
		s.vault.RemoveEntry(id)
	}
	s.mu.Unlock()
	return nil
}

// AddCustomIcon stores an encrypted icon image and returns its id.
func (s *VaultService) AddCustomIcon(ctx context.Context, data []byte) (uuid.UUID, error) {
	key, err := s.masterKey()
	if err != nil {
		return uuid.Nil, err
	}
	vault, err := s.database(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	ct, nonce, err := cryptox.Seal(data, key)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encryption error: %w", err)
	}
	icon := &models.EncryptedIcon{ID: id.String(), Data: ct, Nonce: nonce}
	if err := s.repos.Icons(s.db).Add(ctx, icon); err != nil {
		return uuid.Nil, err
	}
	vault.Metadata().AddCustomIcon(id, data)
	return id, nil
}

// ImportCustomIcon reads an icon image through the configured file access
// (local disk or S3) and stores it like AddCustomIcon.
func (s *VaultService) ImportCustomIcon(ctx context.Context, path string) (uuid.UUID, error) {
	if s.files == nil {
		return uuid.Nil, fmt.Errorf("import icon: %w: no file access configured", common.ErrFileAccess)
	}
	data, err := s.files.ReadFile(ctx, path)
	if err != nil {
		return uuid.Nil, fmt.Errorf("import icon: %w", err)
	}
	return s.AddCustomIcon(ctx, data)
}

// RemoveCustomIcon deletes an icon. Entries still pointing at it are left
// alone; their next edit session resets them on discard.
func (s *VaultService) RemoveCustomIcon(ctx context.Context, id uuid.UUID) error {
	if _, err := s.masterKey(); err != nil {
		return err
	}
	vault, err := s.database(ctx)
	if err != nil {
		return err
	}
	if err := s.repos.Icons(s.db).Delete(ctx, id.String()); err != nil {
		return err
	}
	vault.Metadata().RemoveCustomIcon(id)
	return nil
}
