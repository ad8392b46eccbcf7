package cli

import (
	"bufio"
	"context"
	"io"
	"log"

	"github.com/dmitrijs2005/entrykeeper/internal/config"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
	"github.com/dmitrijs2005/entrykeeper/internal/services"
	"github.com/dmitrijs2005/entrykeeper/internal/session"
	"github.com/google/uuid"
)

// vaultService is the part of services.VaultService the CLI drives.
type vaultService interface {
	Unlock(ctx context.Context, password []byte) error
	Lock()
	List(ctx context.Context) ([]services.ListItem, error)
	Entry(ctx context.Context, id uuid.UUID) (*models.Entry, error)
	StartCreate(ctx context.Context, opts ...session.Option) (*session.Session, error)
	StartEdit(ctx context.Context, id uuid.UUID, opts ...session.Option) (*session.Session, error)
	StartHistoryView(ctx context.Context, id uuid.UUID, index int, opts ...session.Option) (*session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ImportCustomIcon(ctx context.Context, path string) (uuid.UUID, error)
	RemoveCustomIcon(ctx context.Context, id uuid.UUID) error
	PersistError() error
}

type App struct {
	config   *config.Config
	vault    vaultService
	scanner  *bufio.Scanner
	out      io.Writer
	unlocked bool
	// listed maps the numbers shown by "list" to entry ids.
	listed []uuid.UUID
}

func NewApp(c *config.Config, vault vaultService, in io.Reader, out io.Writer) *App {
	return &App{config: c, vault: vault, scanner: bufio.NewScanner(in), out: out}
}

func (a *App) isUnlocked() bool {
	return a.unlocked
}

func (a *App) status() string {
	if a.unlocked {
		return "unlocked"
	}
	return "locked"
}

// Run unlocks the vault and serves commands until exit, EOF or ctx is
// done. The vault is locked on return; an open edit session has already
// been discarded by then.
func (a *App) Run(ctx context.Context) {
	log.Println("Welcome to entrykeeper (type 'help' for commands)")
	if err := a.Unlock(ctx); err != nil {
		log.Printf("unlock failed: %v", err)
	}
	runREPL(ctx, a, a.status, a.scanner)
	_ = a.Lock(ctx)
}
