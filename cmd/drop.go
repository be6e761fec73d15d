package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the match database",
	Long: `Delete the SQLite match database together with its WAL side files.
Every match is fetched again on the next analyze run. Asks for --force.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "confirm deletion")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if !dropForce {
		cWarn.Fprintf(os.Stderr, "would delete %s (and %s-wal, %s-shm); re-run with --force\n", dbPath, dbPath, dbPath)
		return nil
	}
	removed, err := removeDatabase(dbPath)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Fprintf(os.Stdout, "No database at %s, nothing to drop.\n", dbPath)
		return nil
	}
	for _, p := range removed {
		fmt.Fprintf(os.Stdout, "Deleted: %s\n", p)
	}
	return nil
}

// removeDatabase deletes path and its "-wal" and "-shm" files, returning
// the ones that existed. Missing files are not an error.
func removeDatabase(path string) ([]string, error) {
	if path == "" || path == ":memory:" {
		return nil, fmt.Errorf("no database file to drop (path %q)", path)
	}
	var removed []string
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = append(removed, p)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return removed, fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return removed, nil
}
