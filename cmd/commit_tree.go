package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/KostasZigo/gitobj/internal/objects"
	"github.com/KostasZigo/gitobj/internal/repository"
	"github.com/KostasZigo/gitobj/internal/signing"
	"github.com/spf13/cobra"
)

var commitTreeCmd = &cobra.Command{
	Use:   "commit-tree <tree> [-p <parent>]... [-m <message>] [-S]",
	Short: "Create a commit object from a stored tree",
	Long: `Create a new commit pointing at <tree>, store it and print its oid.
Parents are recorded in the order given; repeat -p for merges.
Without -m the message is read from standard input.

The author and committer identity come from [user] in .gogit/config.toml,
overridden by GOGIT_AUTHOR_NAME and GOGIT_AUTHOR_EMAIL.
With -S the commit is signed with the SSH key in [signing] key, or --key.`,
	SilenceUsage: true,
	Args:         exactArgs(1, "tree"),
	RunE:         runCommitTree,
}

var (
	parentFlags    []string
	messageFlag    string
	signFlag       bool
	signingKeyFlag string
)

func init() {
	rootCmd.AddCommand(commitTreeCmd)

	commitTreeCmd.Flags().StringArrayVarP(&parentFlags, "parent", "p", nil, "Parent commit id (repeatable, order is kept)")
	commitTreeCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Commit message")
	commitTreeCmd.Flags().BoolVarP(&signFlag, "gpg-sign", "S", false, "Sign the commit with an SSH key")
	commitTreeCmd.Flags().StringVar(&signingKeyFlag, "key", "", "SSH private key used with -S (defaults to signing.key)")
}

func runCommitTree(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	fields, err := commitFieldsFromArgs(cmd, repo, args[0])
	if err != nil {
		return err
	}

	commit, err := objects.NewCommit(fields)
	if err != nil {
		return err
	}

	if signFlag {
		commit, err = signCommit(repo, commit)
		if err != nil {
			return err
		}
	}

	if err := repo.Store.Store(commit); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), commit.Oid())
	return nil
}

func commitFieldsFromArgs(cmd *cobra.Command, repo *repository.Repository, treeArg string) (objects.CommitFields, error) {
	var fields objects.CommitFields

	treeOid, err := parseOidArg(treeArg)
	if err != nil {
		return fields, err
	}
	if _, err := repo.Store.ReadTree(treeOid); err != nil {
		return fields, err
	}

	parents := make([]objects.Oid, 0, len(parentFlags))
	for _, arg := range parentFlags {
		parent, err := parseOidArg(arg)
		if err != nil {
			return fields, err
		}
		if _, err := repo.Store.ReadCommit(parent); err != nil {
			return fields, err
		}
		parents = append(parents, parent)
	}

	message, err := commitMessage(cmd)
	if err != nil {
		return fields, err
	}

	if _, err := repo.Config.Identity(); err != nil {
		return fields, err
	}
	author := objects.NewAuthor(repo.Config.User.Name, repo.Config.User.Email, time.Now())

	fields = objects.CommitFields{
		Tree:      treeOid,
		Parents:   parents,
		Author:    author,
		Committer: author,
		Message:   message,
	}
	return fields, nil
}

// commitMessage returns -m with a trailing newline, or stdin verbatim.
func commitMessage(cmd *cobra.Command) ([]byte, error) {
	if cmd.Flags().Changed("message") {
		if strings.HasSuffix(messageFlag, "\n") {
			return []byte(messageFlag), nil
		}
		return []byte(messageFlag + "\n"), nil
	}

	message, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read commit message: %w", err)
	}
	return message, nil
}

// signCommit signs the unsigned body and returns the signed commit.
func signCommit(repo *repository.Repository, commit *objects.Commit) (*objects.Commit, error) {
	keyPath := signingKeyFlag
	if keyPath == "" {
		keyPath = repo.Config.Signing.Key
	}

	signer, err := signing.LoadSigner(keyPath)
	if err != nil {
		return nil, err
	}
	signature, err := signing.Sign(signer, commit.SigningPayload())
	if err != nil {
		return nil, err
	}

	fields := commit.Fields()
	fields.GPGSignature = signature
	slog.Debug("Signed commit", "key", keyPath, "unsigned", commit.Oid().String())
	return objects.NewCommit(fields)
}
