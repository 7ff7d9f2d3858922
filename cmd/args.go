package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitobj/internal/objects"
	"github.com/KostasZigo/gitobj/internal/repository"
	"github.com/spf13/cobra"
)

// maximumArgs validates command receives at most n positional arguments.
// Returns error with usage help if argument limit exceeded.
func maximumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command accepts at most %d arg(s), received %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}

// exactArgs validates command receives exactly n positional arguments.
// enables usage printing in case of error
func exactArgs(n int, argName string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command requires exactly %d argument (%s), received %d", cmd.Name(), n, argName, len(args))
		}
		return nil
	}
}

// openRepository opens the repository enclosing the working directory.
func openRepository() (*repository.Repository, error) {
	return repository.Open(".")
}

// parseOidArg parses a full 40 character object id given on the command line.
func parseOidArg(arg string) (objects.Oid, error) {
	oid, err := objects.ParseOid(arg)
	if err != nil {
		return objects.ZeroOid, fmt.Errorf("not a valid object name %q: %w", arg, err)
	}
	return oid, nil
}
