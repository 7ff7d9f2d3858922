package cmd

import (
	"fmt"
	"slices"

	"github.com/KostasZigo/gitobj/internal/objects"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var fsckCmd = &cobra.Command{
	Use:   "fsck [<object>...]",
	Short: "Verify the integrity of stored objects",
	Long: `Re-read every loose object, check that its content still hashes to its name,
that it parses, and that every object it references is present.

Given one or more objects, also walk everything reachable from them and
report stored objects that are unreachable.`,
	SilenceUsage: true,
	RunE:         runFsck,
}

func init() {
	rootCmd.AddCommand(fsckCmd)
}

func runFsck(cmd *cobra.Command, args []string) error {
	roots := make([]objects.Oid, 0, len(args))
	for _, arg := range args {
		oid, err := parseOidArg(arg)
		if err != nil {
			return err
		}
		roots = append(roots, oid)
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}

	checked, err := repo.Store.Verify(cmd.Context())
	problems := multierr.Errors(err)
	for _, problem := range problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", problem)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "checked %d objects\n", checked)

	if len(roots) > 0 && len(problems) == 0 {
		if err := reportUnreachable(cmd, repo.Store, roots); err != nil {
			return err
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("fsck found %d problem(s)", len(problems))
	}
	return nil
}

func reportUnreachable(cmd *cobra.Command, store *objects.ObjectStore, roots []objects.Oid) error {
	reachable := make(map[objects.Oid]struct{})
	err := objects.Walk(store, roots, func(obj objects.Object) error {
		reachable[obj.Oid()] = struct{}{}
		return nil
	})
	if err != nil {
		return err
	}

	stored, err := store.List()
	if err != nil {
		return err
	}
	slices.SortFunc(stored, func(a, b objects.Oid) int {
		return slices.Compare(a[:], b[:])
	})

	for _, oid := range stored {
		if _, ok := reachable[oid]; !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "unreachable %s\n", oid)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "reachable %d objects\n", len(reachable))
	return nil
}
