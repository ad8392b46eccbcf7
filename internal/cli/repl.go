package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the top-level REPL dispatches to.
type execIface interface {
	isUnlocked() bool
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	AddIcon(ctx context.Context, args []string) error
	RemoveIcon(ctx context.Context, args []string) error
}

// runREPL reads commands from scanner until EOF, exit or ctx is done.
// Handler errors are printed and the loop goes on.
//
//	Locked:
//	  help, unlock, exit | quit
//
//	Unlocked:
//	  help, (l)ist, add, edit <n|id>, show <n|id>, history <n|id> <i>,
//	  delete <n|id>, addicon <path>, rmicon <id>, lock, exit | quit
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ek (%s)> ", statusFn()))
		line, err := scanLine(ctx, scanner)
		if err != nil {
			if ctx.Err() != nil {
				printlnFn("Interrupted")
			}
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		err = nil
		switch {
		case cmd == "help":
			if a.isUnlocked() {
				printlnFn("Available commands: (l)ist, add, edit, show, history, delete, addicon, rmicon, lock, exit")
			} else {
				printlnFn("Available commands: unlock, exit")
			}
		case cmd == "unlock":
			err = a.Unlock(ctx)
		case !a.isUnlocked():
			printlnFn("Vault is locked, type 'unlock' first")
		case cmd == "l" || cmd == "list":
			err = a.List(ctx)
		case cmd == "add":
			err = a.Add(ctx)
		case cmd == "edit":
			err = a.Edit(ctx, args)
		case cmd == "show":
			err = a.Show(ctx, args)
		case cmd == "history":
			err = a.History(ctx, args)
		case cmd == "delete":
			err = a.Delete(ctx, args)
		case cmd == "addicon":
			err = a.AddIcon(ctx, args)
		case cmd == "rmicon":
			err = a.RemoveIcon(ctx, args)
		case cmd == "lock":
			err = a.Lock(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
		if err != nil && ctx.Err() == nil {
			printlnFn("Error:", err)
		}
	}
}
