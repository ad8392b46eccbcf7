package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/dmitrijs2005/entrykeeper/internal/filex"
	"github.com/dmitrijs2005/entrykeeper/internal/logging"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/entrykeeper/internal/repositories/repotest"
	"github.com/dmitrijs2005/entrykeeper/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *VaultService {
	t.Helper()
	db := repotest.NewSQLite(t)
	svc := NewVaultService(db, &repomanager.SQLiteRepositoryManager{}, nil, logging.Discard())
	require.NoError(t, svc.Unlock(context.Background(), []byte("master")))
	return svc
}

func createEntry(t *testing.T, svc *VaultService, title string) uuid.UUID {
	t.Helper()
	s, err := svc.StartCreate(context.Background())
	require.NoError(t, err)
	id := s.Entry().UUID()
	require.NoError(t, s.SetTitle(title))
	require.NoError(t, s.SetPassword("pw"))
	require.NoError(t, s.SetPasswordConfirmation("pw"))
	require.NoError(t, s.Commit())
	require.NoError(t, svc.PersistError())
	return id
}

func TestUnlock_FirstRunThenVerify(t *testing.T) {
	db := repotest.NewSQLite(t)
	ctx := context.Background()
	svc := NewVaultService(db, &repomanager.SQLiteRepositoryManager{}, nil, logging.Discard())

	_, err := svc.List(ctx)
	require.ErrorIs(t, err, common.ErrVaultLocked)

	require.NoError(t, svc.Unlock(ctx, []byte("master")))
	svc.Lock()

	require.ErrorIs(t, svc.Unlock(ctx, []byte("wrong")), common.ErrInvalidPassword)
	_, err = svc.Load(ctx)
	require.ErrorIs(t, err, common.ErrVaultLocked)

	require.NoError(t, svc.Unlock(ctx, []byte("master")))
	_, err = svc.Load(ctx)
	require.NoError(t, err)
}

func TestCreateCommitPersistsAndReloads(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	s, err := svc.StartCreate(ctx)
	require.NoError(t, err)
	id := s.Entry().UUID()
	require.NoError(t, s.SetTitle("Bank"))
	require.NoError(t, s.SetAttribute("PIN", "1234", true))
	require.NoError(t, s.AddAttachment("card.png", []byte{1, 2, 3}))
	require.NoError(t, s.Commit())
	require.NoError(t, svc.PersistError())

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, "Bank", items[0].Title)

	reloaded, err := svc.Load(ctx)
	require.NoError(t, err)
	e, ok := reloaded.Entry(id)
	require.True(t, ok)
	assert.Equal(t, "Bank", e.Title())
	assert.Equal(t, "1234", e.Attributes().Value("PIN"))
	assert.True(t, e.Attributes().IsProtected("PIN"))
	data, _ := e.Attachments().Value("card.png")
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestCreateDiscardStoresNothing(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	s, err := svc.StartCreate(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetTitle("draft"))
	require.NoError(t, s.Discard())

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEditCommitKeepsHistoryAcrossReload(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	id := createEntry(t, svc, "v1")

	for _, title := range []string{"v2", "v3"} {
		s, err := svc.StartEdit(ctx, id)
		require.NoError(t, err)
		require.NoError(t, s.SetTitle(title))
		require.NoError(t, s.Commit())
		require.NoError(t, svc.PersistError())
	}

	vault, err := svc.Load(ctx)
	require.NoError(t, err)
	e, _ := vault.Entry(id)
	require.Len(t, e.HistoryItems(), 2)
	assert.Equal(t, "v1", e.HistoryItems()[0].Title())
	assert.Equal(t, "v3", e.Title())

	hv, err := svc.StartHistoryView(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, "v2", hv.Fields().Title)
	assert.Equal(t, session.ModeHistoryView, hv.Mode())
	require.ErrorIs(t, hv.SetTitle("x"), common.ErrReadOnlySession)
	require.NoError(t, hv.Commit())

	_, err = svc.StartHistoryView(ctx, id, 2)
	require.ErrorIs(t, err, common.ErrHistoryNotFound)
}

func TestStartEdit_OneSessionPerEntry(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	id := createEntry(t, svc, "solo")

	s1, err := svc.StartEdit(ctx, id)
	require.NoError(t, err)

	_, err = svc.StartEdit(ctx, id)
	require.ErrorIs(t, err, common.ErrEntryLocked)
	require.ErrorIs(t, svc.Delete(ctx, id), common.ErrEntryLocked)

	require.NoError(t, s1.Discard())

	s2, err := svc.StartEdit(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s2.Discard())

	_, err = svc.StartEdit(ctx, uuid.New())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDiscardPersistsDanglingIconReset(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	iconID, err := svc.AddCustomIcon(ctx, []byte("png"))
	require.NoError(t, err)

	s, err := svc.StartCreate(ctx)
	require.NoError(t, err)
	id := s.Entry().UUID()
	require.NoError(t, s.SetTitle("iconic"))
	require.NoError(t, s.SetIcon(models.Icon{UUID: iconID}))
	require.NoError(t, s.Commit())

	vault, err := svc.Load(ctx)
	require.NoError(t, err)
	require.True(t, vault.Metadata().ContainsCustomIcon(iconID))
	e, _ := vault.Entry(id)
	require.Equal(t, iconID, e.Icon().UUID)

	require.NoError(t, svc.RemoveCustomIcon(ctx, iconID))

	s, err = svc.StartEdit(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.Discard())
	require.NoError(t, svc.PersistError())

	vault, err = svc.Load(ctx)
	require.NoError(t, err)
	e, _ = vault.Entry(id)
	assert.Equal(t, models.Icon{Number: models.DefaultIconNumber}, e.Icon())
	assert.Empty(t, e.HistoryItems(), "icon cleanup is not an edit")
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	id := createEntry(t, svc, "gone")

	require.NoError(t, svc.Delete(ctx, id))
	_, err := svc.Entry(ctx, id)
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.ErrorIs(t, svc.Delete(ctx, id), common.ErrorNotFound)
}

func TestList_SortedByTitle(t *testing.T) {
	svc := newService(t)
	createEntry(t, svc, "zeta")
	createEntry(t, svc, "alpha")

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "alpha", items[0].Title)
	assert.Equal(t, "zeta", items[1].Title)
}

func TestImportCustomIcon(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewSQLite(t)
	svc := NewVaultService(db, &repomanager.SQLiteRepositoryManager{}, filex.NewLocalFileAccess(), logging.Discard())
	require.NoError(t, svc.Unlock(ctx, []byte("master")))

	path := filepath.Join(t.TempDir(), "icon.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	id, err := svc.ImportCustomIcon(ctx, path)
	require.NoError(t, err)
	vault, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.True(t, vault.Metadata().ContainsCustomIcon(id))

	_, err = svc.ImportCustomIcon(ctx, filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, common.ErrFileAccess)

	_, err = newService(t).ImportCustomIcon(ctx, path)
	require.ErrorIs(t, err, common.ErrFileAccess, "no file access configured")
}
