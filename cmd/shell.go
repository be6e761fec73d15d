package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/optisebas/paladins-match-analyzer/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session on the match database",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cPrompt.Sprint("paladins") + cMuted.Sprint("> "),
		HistoryFile:     ".paladins_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	cGreeting.Println("paladins shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()
	repl(rl, os.Stdout, os.Stderr, db)
	return nil
}

// lineReader is the part of *readline.Instance the session loop uses.
type lineReader interface {
	Readline() (string, error)
}

// repl runs commands until EOF or exit. Ctrl-C drops the current line.
// Command errors are printed to errw and the session continues.
func repl(rl lineReader, w, errw io.Writer, db *storage.DB) {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return
		case "help":
			shellHelp(w)
		case "list":
			err = printMatchList(w, db)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(errw, "usage: show <match-id-prefix> [--player <id>]")
				continue
			}
			var playerID string
			for i := 1; i+1 < len(args); i++ {
				if args[i] == "--player" {
					playerID = args[i+1]
				}
			}
			err = showMatch(w, db, args[0], playerID)
		case "history":
			if len(args) != 1 {
				cError.Fprintln(errw, "usage: history <player-id>")
				continue
			}
			err = printHistory(w, db, args[0])
		default:
			cWarn.Fprintf(errw, "unknown command %q, type 'help'\n", name)
		}
		if err != nil {
			cError.Fprintf(errw, "error: %v\n", err)
		}
	}
}

func shellHelp(w io.Writer) {
	fmt.Fprintln(w)
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored matches"},
		{"show <match-id-prefix>", "show a match's player rows"},
		{"show <match-id-prefix> --player <id>", "same, highlighting one player"},
		{"history <player-id>", "per-match history of one player"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Fprint(w, "  ")
		cCmd.Fprintf(w, "%-38s", r.cmd)
		fmt.Fprintln(w, r.desc)
	}
	fmt.Fprintln(w)
}
