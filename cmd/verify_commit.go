package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/KostasZigo/gitobj/internal/signing"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

// ErrUnsignedCommit is returned when verify-commit is given an unsigned commit.
var ErrUnsignedCommit = errors.New("no signature found")

var verifyCommitCmd = &cobra.Command{
	Use:   "verify-commit <commit>",
	Short: "Check the SSH signature of a commit",
	Long: `Verify the SSH signature stored in a commit's gpgsig header against the
commit body without that header.

With --allowed-keys the signing key must appear in the given file
(authorized_keys format, one public key per line).`,
	SilenceUsage: true,
	Args:         exactArgs(1, "commit"),
	RunE:         runVerifyCommit,
}

var allowedKeysFlag string

func init() {
	rootCmd.AddCommand(verifyCommitCmd)

	verifyCommitCmd.Flags().StringVar(&allowedKeysFlag, "allowed-keys", "", "File of public keys trusted to sign commits")
}

func runVerifyCommit(cmd *cobra.Command, args []string) error {
	oid, err := parseOidArg(args[0])
	if err != nil {
		return err
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}

	commit, err := repo.Store.ReadCommit(oid)
	if err != nil {
		return err
	}
	if !commit.IsSigned() {
		return fmt.Errorf("%w: commit %s", ErrUnsignedCommit, oid)
	}

	var allowed []ssh.PublicKey
	if allowedKeysFlag != "" {
		data, err := os.ReadFile(allowedKeysFlag)
		if err != nil {
			return fmt.Errorf("failed to read allowed keys: %w", err)
		}
		if allowed, err = signing.ParseAllowedKeys(data); err != nil {
			return err
		}
	}

	key, err := signing.Verify(commit.GPGSignature(), commit.SigningPayload(), allowed)
	if err != nil {
		return fmt.Errorf("commit %s: %w", oid, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Good %q signature with %s key %s\n",
		signing.Namespace, key.Type(), ssh.FingerprintSHA256(key))
	return nil
}
