package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
	"github.com/dmitrijs2005/entrykeeper/internal/filex"
	"github.com/dmitrijs2005/entrykeeper/internal/models"
	"github.com/dmitrijs2005/entrykeeper/internal/session"
	"github.com/google/uuid"
)

const editHelp = `Edit commands:
  show
  set title|username|url|notes [value]
  password
  expires <RFC3339|never>
  icon <number|uuid>
  attr new | attr select <key> | attr edit <text> | attr set <key> <value>
  attr protect <key> | attr rm <key> | attr rename <from> <to>
  attach import <path> | attach export <name> [dest] | attach rm <name>
  history | history rm <n> | history clear | history view <n>
  commit | discard`

// sessionObserver prints snapshots activated from the history list.
func (a *App) sessionObserver() session.Option {
	return session.WithObserver(session.ObserverFuncs{
		OnHistoryEntryActivated: func(snapshot *models.Entry) {
			printEntry(a.out, snapshot)
		},
	})
}

// editLoop drives sess until it is committed or discarded. EOF and a done
// ctx discard it.
func (a *App) editLoop(ctx context.Context, sess *session.Session) error {
	printSession(a.out, sess)
	for sess.State() == session.StateEditing {
		printlnFn(fmt.Sprintf("ek edit (%s)> ", sess.Mode()))
		line, err := scanLine(ctx, a.scanner)
		if err != nil {
			if derr := sess.Discard(); derr != nil {
				return derr
			}
			if errors.Is(err, errInputClosed) {
				return nil
			}
			return err
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		if err := a.editCommand(ctx, sess, parts[0], parts[1:]); err != nil && ctx.Err() == nil {
			printlnFn("Error:", err)
		}
	}
	return nil
}

func (a *App) editCommand(ctx context.Context, sess *session.Session, cmd string, args []string) error {
	switch cmd {
	case "help":
		printlnFn(editHelp)
	case "show":
		printSession(a.out, sess)
	case "set":
		return a.setField(ctx, sess, args)
	case "password":
		return a.setPassword(ctx, sess)
	case "expires":
		return setExpiry(sess, args)
	case "icon":
		return setIcon(sess, args)
	case "attr":
		return a.attrCommand(sess, args)
	case "attach":
		return a.attachCommand(ctx, sess, args)
	case "history":
		return a.historyCommand(sess, args)
	case "commit":
		return a.commit(sess)
	case "discard":
		if err := sess.Discard(); err != nil {
			return err
		}
		printlnFn("Changes discarded")
		return a.vault.PersistError()
	default:
		printlnFn("Unknown command:", cmd, "(type 'help')")
	}
	return nil
}

func (a *App) commit(sess *session.Session) error {
	if err := sess.Commit(); err != nil {
		var verr *session.ValidationError
		if errors.As(err, &verr) {
			printlnFn("Cannot save:", err)
			return nil
		}
		return err
	}
	if err := a.vault.PersistError(); err != nil {
		return fmt.Errorf("entry kept in memory but not saved: %w", err)
	}
	if sess.Mode() != session.ModeHistoryView {
		printlnFn("Saved")
	}
	return nil
}

func (a *App) setField(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: set <field> [value]", errUsage)
	}
	value := strings.Join(args[1:], " ")

	var err error
	if len(args) == 1 {
		if args[0] == "notes" {
			value, err = GetMultiline(ctx, a.scanner, "Notes", a.out)
		} else {
			value, err = GetSimpleText(ctx, a.scanner, "New "+args[0], a.out)
		}
		if err != nil {
			return err
		}
	}

	switch args[0] {
	case "title":
		return sess.SetTitle(value)
	case "username":
		return sess.SetUsername(value)
	case "url":
		return sess.SetURL(value)
	case "notes":
		return sess.SetNotes(value)
	default:
		return fmt.Errorf("%w: unknown field %q", errUsage, args[0])
	}
}

func (a *App) setPassword(ctx context.Context, sess *session.Session) error {
	if !sess.Permissions().CanEditFields {
		// Let the session report the refusal.
		return sess.SetPassword("")
	}
	pw, err := getPassword(ctx, "New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	confirmation, err := getPassword(ctx, "Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	if err := sess.SetPassword(string(pw)); err != nil {
		return err
	}
	if err := sess.SetPasswordConfirmation(string(confirmation)); err != nil {
		return err
	}
	printlnFn("Password check:", sess.PasswordCheck())
	return nil
}

func setExpiry(sess *session.Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expires <RFC3339|never>", errUsage)
	}
	if args[0] == "never" {
		return sess.SetExpiry(false, sess.Fields().ExpiryTime)
	}
	at, err := time.Parse(time.RFC3339, args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return sess.SetExpiry(true, at)
}

func setIcon(sess *session.Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: icon <number|uuid>", errUsage)
	}
	if n, err := strconv.Atoi(args[0]); err == nil {
		return sess.SetIcon(models.Icon{Number: n})
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q is neither an icon number nor an id", errUsage, args[0])
	}
	return sess.SetIcon(models.Icon{Number: sess.Fields().Icon.Number, UUID: id})
}

func (a *App) attrCommand(sess *session.Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: attr <new|select|edit|set|protect|rm|rename>", errUsage)
	}
	sub, rest := args[0], args[1:]
	switch {
	case sub == "new":
		key, err := sess.InsertNewAttribute()
		if err != nil {
			return err
		}
		printlnFn("Added attribute", key)
	case sub == "select" && len(rest) == 1:
		return sess.SwitchActiveAttribute(rest[0])
	case sub == "edit":
		return sess.EditActiveAttribute(strings.Join(rest, " "))
	case sub == "set" && len(rest) >= 1:
		_, protected, _ := sess.Attribute(rest[0])
		return sess.SetAttribute(rest[0], strings.Join(rest[1:], " "), protected)
	case sub == "protect" && len(rest) == 1:
		_, protected, ok := sess.Attribute(rest[0])
		if !ok {
			return fmt.Errorf("attribute %q: %w", rest[0], common.ErrAttributeNotFound)
		}
		return sess.SetAttributeProtected(rest[0], !protected)
	case sub == "rm" && len(rest) == 1:
		return sess.RemoveAttribute(rest[0])
	case sub == "rename" && len(rest) == 2:
		return sess.RenameAttribute(rest[0], rest[1])
	default:
		return fmt.Errorf("%w: attr %s", errUsage, strings.Join(args, " "))
	}
	return nil
}

func (a *App) attachCommand(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: attach <import|export|rm> <name>", errUsage)
	}
	switch args[0] {
	case "import":
		name, err := sess.ImportAttachment(ctx, args[1])
		if err != nil {
			return err
		}
		printlnFn("Attached", name)
		return nil
	case "export":
		return a.exportAttachment(ctx, sess, args[1], args[2:])
	case "rm":
		return sess.RemoveAttachment(args[1])
	default:
		return fmt.Errorf("%w: attach %s", errUsage, args[0])
	}
}

func (a *App) exportAttachment(ctx context.Context, sess *session.Session, name string, rest []string) error {
	var dest string
	if len(rest) > 0 {
		dest = rest[0]
	} else {
		dir, err := filex.EnsureDir(a.config.ExportDir)
		if err != nil {
			return err
		}
		dest = filepath.Join(dir, name)
	}

	err := sess.ExportAttachment(ctx, name, dest, false)
	if errors.Is(err, common.ErrFileExists) {
		if !confirm(ctx, a.scanner, fmt.Sprintf("%s exists, overwrite?", dest), a.out) {
			return nil
		}
		err = sess.ExportAttachment(ctx, name, dest, true)
	}
	if err != nil {
		return err
	}
	printlnFn("Exported to", dest)
	return nil
}

func (a *App) historyCommand(sess *session.Session, args []string) error {
	items := sess.HistoryItems()
	if len(args) == 0 {
		printHistory(a.out, items)
		return nil
	}

	pick := func() (*models.Entry, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: history %s <n>", errUsage, args[0])
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > len(items) {
			return nil, fmt.Errorf("history item %q: %w", args[1], common.ErrHistoryNotFound)
		}
		return items[n-1], nil
	}

	switch args[0] {
	case "rm":
		h, err := pick()
		if err != nil {
			return err
		}
		return sess.DeleteHistoryEntry(h)
	case "clear":
		return sess.DeleteAllHistoryEntries()
	case "view":
		h, err := pick()
		if err != nil {
			return err
		}
		return sess.ActivateHistoryEntry(h)
	default:
		return fmt.Errorf("%w: history %s", errUsage, args[0])
	}
}
