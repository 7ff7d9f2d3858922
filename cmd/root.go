package cmd

import (
	"os"

	"github.com/KostasZigo/gitobj/internal/config"
	"github.com/KostasZigo/gitobj/internal/logging"
	"github.com/KostasZigo/gitobj/internal/repository"
	"github.com/spf13/cobra"
)

// rootCmd defines the base command for the gogit CLI.
// All subcommands (init, hash-object, cat-file, etc.) register under this root.
// Uses cobra for command parsing, flag handling, and help generation.
var rootCmd = &cobra.Command{
	Use:   "gogit",
	Short: "Git object plumbing in Go",
	Long: `GoGit is a simplified Git Implementation developed in GO that reads and writes
Git's object model: blobs, trees and commits, byte for byte as Git does.
Plumbing commands hash, store, inspect, sign and verify objects in a .gogit repository.`,
	PersistentPreRunE: setupLogging,
}

var verboseFlag bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

// setupLogging installs the slog handler. The level comes from the
// repository config when run inside one; --verbose forces debug.
func setupLogging(cmd *cobra.Command, _ []string) error {
	level := "info"
	if root, err := repository.FindRepoRoot("."); err == nil {
		if cfg, err := config.Load(root); err == nil {
			level = cfg.Log.Level
		}
	}
	if verboseFlag {
		level = "debug"
	}

	logging.Setup(cmd.ErrOrStderr(), level)
	return nil
}

// Execute runs the root command and handles exit codes.
// Called from main.go to start CLI execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
