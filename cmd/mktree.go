package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/KostasZigo/gitobj/internal/objects"
	"github.com/spf13/cobra"
)

var mktreeCmd = &cobra.Command{
	Use:   "mktree",
	Short: "Build a tree object from ls-tree formatted text",
	Long: `Read lines of the form "<mode> SP <type> SP <oid> TAB <name>" from standard input,
build a tree object with Git's entry ordering, store it and print its oid.
The output of "gogit cat-file -p <tree>" is valid input.

Referenced objects must already be stored unless --missing is given.
Gitlink (160000) entries are never checked.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runMktree,
}

var missingFlag bool

func init() {
	rootCmd.AddCommand(mktreeCmd)

	mktreeCmd.Flags().BoolVar(&missingFlag, "missing", false, "Allow entries that reference objects not in the store")
}

func runMktree(cmd *cobra.Command, _ []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	entries := make(map[string]objects.TreeEntry)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" {
			continue
		}

		name, entry, err := parseTreeLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if _, exists := entries[name]; exists {
			return fmt.Errorf("line %d: duplicate entry %q", lineNumber, name)
		}
		if !missingFlag && !entry.IsGitlink() && !repo.Store.Exists(entry.Oid) {
			return fmt.Errorf("line %d: %w: %s", lineNumber, objects.ErrObjectNotFound, entry.Oid)
		}
		entries[name] = entry
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	tree, err := objects.NewTree(entries)
	if err != nil {
		return err
	}
	if err := repo.Store.Store(tree); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), tree.Oid())
	return nil
}

// parseTreeLine parses "<mode> <type> <oid>\t<name>".
func parseTreeLine(line string) (string, objects.TreeEntry, error) {
	meta, name, found := strings.Cut(line, "\t")
	if !found {
		return "", objects.TreeEntry{}, fmt.Errorf("%w: missing tab before name", objects.ErrMalformedTreeEntry)
	}

	fields := strings.Fields(meta)
	if len(fields) != 3 {
		return "", objects.TreeEntry{}, fmt.Errorf("%w: expected \"<mode> <type> <oid>\", got %q", objects.ErrMalformedTreeEntry, meta)
	}

	// ls-tree shows directories as 040000; the object format has no leading zero.
	mode, err := objects.ParseFileMode(strings.TrimPrefix(fields[0], "0"))
	if err != nil {
		return "", objects.TreeEntry{}, err
	}
	if fields[1] != string(mode.ObjectType()) {
		return "", objects.TreeEntry{}, fmt.Errorf("%w: mode %s does not hold a %s", objects.ErrMalformedTreeEntry, mode, fields[1])
	}
	oid, err := objects.ParseOid(fields[2])
	if err != nil {
		return "", objects.TreeEntry{}, err
	}

	entry, err := objects.NewTreeEntry(mode, oid)
	return name, entry, err
}
