package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/google/uuid"
)

// getPassword is swapped in tests.
var getPassword = GetPassword

var errUsage = errors.New("wrong arguments")

func (a *App) Unlock(ctx context.Context) error {
	password, err := getPassword(ctx, "Master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.vault.Unlock(ctx, password); err != nil {
		return err
	}
	a.unlocked = true
	fmt.Fprintln(a.out, "Vault unlocked")
	return nil
}

func (a *App) Lock(ctx context.Context) error {
	a.vault.Lock()
	a.unlocked = false
	a.listed = nil
	return nil
}

func (a *App) List(ctx context.Context) error {
	items, err := a.vault.List(ctx)
	if err != nil {
		return err
	}
	a.listed = a.listed[:0]

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tUSERNAME\tURL\tID")
	for i, it := range items {
		a.listed = append(a.listed, it.ID)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, it.Title, it.Username, it.URL, it.ID)
	}
	return tw.Flush()
}

// resolveID accepts a number from the last listing or a full UUID.
func (a *App) resolveID(args []string) (uuid.UUID, error) {
	if len(args) == 0 {
		return uuid.Nil, fmt.Errorf("%w: entry number or id required", errUsage)
	}
	if n, err := strconv.Atoi(args[0]); err == nil {
		if n < 1 || n > len(a.listed) {
			return uuid.Nil, fmt.Errorf("no entry #%d in the last listing", n)
		}
		return a.listed[n-1], nil
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not an entry id", errUsage, args[0])
	}
	return id, nil
}

func (a *App) Add(ctx context.Context) error {
	sess, err := a.vault.StartCreate(ctx, a.sessionObserver())
	if err != nil {
		return err
	}
	return a.editLoop(ctx, sess)
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.resolveID(args)
	if err != nil {
		return err
	}
	sess, err := a.vault.StartEdit(ctx, id, a.sessionObserver())
	if err != nil {
		return err
	}
	return a.editLoop(ctx, sess)
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.resolveID(args)
	if err != nil {
		return err
	}
	e, err := a.vault.Entry(ctx, id)
	if err != nil {
		return err
	}
	printEntry(a.out, e)
	return nil
}

// History lists snapshots of an entry, or with an index opens that
// snapshot read-only.
func (a *App) History(ctx context.Context, args []string) error {
	id, err := a.resolveID(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		e, err := a.vault.Entry(ctx, id)
		if err != nil {
			return err
		}
		printHistory(a.out, e.HistoryItems())
		return nil
	}

	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: history index must be a number", errUsage)
	}
	sess, err := a.vault.StartHistoryView(ctx, id, idx-1, a.sessionObserver())
	if err != nil {
		return err
	}
	return a.editLoop(ctx, sess)
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.resolveID(args)
	if err != nil {
		return err
	}
	if !confirm(ctx, a.scanner, fmt.Sprintf("Delete entry %s?", id), a.out) {
		return nil
	}
	if err := a.vault.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

func (a *App) AddIcon(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: addicon <path>", errUsage)
	}
	id, err := a.vault.ImportCustomIcon(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Icon %s added\n", id)
	return nil
}

func (a *App) RemoveIcon(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: rmicon <id>", errUsage)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q is not an icon id", errUsage, args[0])
	}
	return a.vault.RemoveCustomIcon(ctx, id)
}
