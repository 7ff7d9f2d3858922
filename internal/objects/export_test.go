package objects

import (
	"testing"

	"github.com/KostasZigo/gitobj/testutils"
)

// Object ids Git itself computes for well-known content.
const (
	helloWorldBlobHex = "3b18e512dba79e4c8300dd08aeb37f8e728b8dad" // "hello world\n"
	emptyBlobHex      = "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"
	emptyTreeHex      = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
	helloTreeHex      = "68aba62e560c0ebc3396e8ae9335232cd93a3f60" // 100644 hello.txt -> hello world blob
	helloCommitHex    = "d4e4720263d7e688ff9a0de6fae38a12b989adc5" // root commit of helloTreeHex
)

// randomOid returns an oid built from random bytes.
func randomOid(t *testing.T) Oid {
	t.Helper()

	oid, err := ParseOid(testutils.RandomHash())
	if err != nil {
		t.Fatalf("Failed to parse random hash: %v", err)
	}
	return oid
}

// createTree creates tree from entries and fails test on error.
func createTree(t *testing.T, entries map[string]TreeEntry) *Tree {
	t.Helper()

	tree, err := NewTree(entries)
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}

	return tree
}

// createAndStoreTree creates tree from entries, stores it, and returns tree.
func createAndStoreTree(t *testing.T, store *ObjectStore, entries map[string]TreeEntry) *Tree {
	t.Helper()

	tree := createTree(t, entries)
	if err := store.Store(tree); err != nil {
		t.Fatalf("Failed to store tree: %v", err)
	}

	return tree
}

// testAuthor returns the fixed identity used by codec tests.
func testAuthor() Author {
	return Author{
		NameAndEmail: "A <a@x.com>",
		Timestamp:    1700000000,
		Timezone:     "+0000",
	}
}

// createCommit creates commit from fields and fails test on error.
func createCommit(t *testing.T, fields CommitFields) *Commit {
	t.Helper()

	commit, err := NewCommit(fields)
	if err != nil {
		t.Fatalf("Failed to create commit: %v", err)
	}

	return commit
}

// createAndStoreCommit creates commit on top of parents, stores it, and returns commit.
func createAndStoreCommit(t *testing.T, store *ObjectStore, tree Oid, parents ...Oid) *Commit {
	t.Helper()

	commit := createCommit(t, CommitFields{
		Tree:      tree,
		Parents:   parents,
		Author:    testAuthor(),
		Committer: testAuthor(),
		Message:   []byte(testutils.RandomString(20) + "\n"),
	})
	if err := store.Store(commit); err != nil {
		t.Fatalf("Failed to store commit: %v", err)
	}

	return commit
}

// assertOid verifies an object id against its expected hex form.
func assertOid(t *testing.T, actual Oid, expectedHex string) {
	t.Helper()

	if actual.String() != expectedHex {
		t.Fatalf("Expected oid [%s], got [%s]", expectedHex, actual)
	}
}
