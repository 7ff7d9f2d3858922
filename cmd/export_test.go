package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/KostasZigo/gitobj/internal/config"
	"github.com/KostasZigo/gitobj/internal/objects"
	"github.com/KostasZigo/gitobj/internal/repository"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// createTestRootCmd creates fresh root command with the given subcommand.
// Flag values left over from earlier tests are reset to their defaults.
func createTestRootCmd(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if slice, ok := f.Value.(pflag.SliceValue); ok {
			slice.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})

	testRootCmd := &cobra.Command{Use: "gogit"}
	testRootCmd.AddCommand(cmd)
	return testRootCmd
}

// captureStdout returns command stdout output as string.
func captureStdout(cmd *cobra.Command) *bytes.Buffer {
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	return &stdout
}

// captureStderr returns command stderr output as string.
func captureStderr(cmd *cobra.Command) *bytes.Buffer {
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	return &stderr
}

// runTestCommand executes cmd with args and stdin, returning trimmed stdout.
func runTestCommand(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	testRootCmd := createTestRootCmd(cmd)
	stdout := captureStdout(testRootCmd)
	captureStderr(testRootCmd)
	testRootCmd.SetIn(strings.NewReader(stdin))
	testRootCmd.SetArgs(append([]string{cmd.Name()}, args...))

	err := testRootCmd.Execute()
	return strings.TrimSpace(stdout.String()), err
}

// changeToRepoDir changes working directory to repo path and registers cleanup.
func changeToRepoDir(t *testing.T, repoPath string) {
	t.Helper()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	if err := os.Chdir(repoPath); err != nil {
		t.Fatalf("Failed to change to directory %s: %v", repoPath, err)
	}

	t.Cleanup(func() {
		os.Chdir(oldDir)
	})
}

// setupRepoWithIdentity initializes a repository with a configured user,
// changes into it and returns its path.
func setupRepoWithIdentity(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	if err := repository.InitRepository(repoPath); err != nil {
		t.Fatalf("Failed to initialize repository: %v", err)
	}

	cfg := config.Default()
	cfg.User = config.UserConfig{Name: "A", Email: "a@x.com"}
	if err := config.Save(repoPath, cfg); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	t.Setenv(config.AuthorNameEnv, "")
	t.Setenv(config.AuthorEmailEnv, "")

	changeToRepoDir(t, repoPath)
	return repoPath
}

// storeObjects writes objects into the repository at repoPath.
func storeObjects(t *testing.T, repoPath string, objs ...objects.Object) {
	t.Helper()

	store := objects.NewObjectStore(repoPath)
	for _, obj := range objs {
		if err := store.Store(obj); err != nil {
			t.Fatalf("Failed to store %s %s: %v", obj.Type(), obj.Oid(), err)
		}
	}
}

// storeHelloTree stores the "hello world\n" blob and a tree holding it as hello.txt.
func storeHelloTree(t *testing.T, repoPath string) (*objects.Blob, *objects.Tree) {
	t.Helper()

	blob := objects.NewBlob([]byte("hello world\n"))
	tree, err := objects.NewTree(map[string]objects.TreeEntry{
		"hello.txt": {Mode: objects.ModeRegularFile, Oid: blob.Oid()},
	})
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}
	storeObjects(t, repoPath, blob, tree)
	return blob, tree
}
