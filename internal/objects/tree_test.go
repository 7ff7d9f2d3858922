package objects

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TREE ENTRY TESTS

func TestNewTreeEntry(t *testing.T) {
	oid := randomOid(t)
	entry, err := NewTreeEntry(ModeRegularFile, oid)
	if err != nil {
		t.Fatal("Expected New Tree Entry to be created")
	}

	if entry.Mode != ModeRegularFile {
		t.Errorf("Expected mode %s, got %s", ModeRegularFile, entry.Mode)
	}
	if entry.Oid != oid {
		t.Errorf("Expected oid %s, got %s", oid, entry.Oid)
	}
}

func TestNewTreeEntry_InvalidMode(t *testing.T) {
	if _, err := NewTreeEntry("040000", randomOid(t)); !errors.Is(err, ErrUnknownFileMode) {
		t.Fatalf("Expected ErrUnknownFileMode, got %v", err)
	}
}

func TestTreeEntry_Kinds(t *testing.T) {
	dirEntry := TreeEntry{Mode: ModeDirectory}
	fileEntry := TreeEntry{Mode: ModeRegularFile}
	execEntry := TreeEntry{Mode: ModeExecutable}
	linkEntry := TreeEntry{Mode: ModeGitlink}

	if !dirEntry.IsDirectory() || fileEntry.IsDirectory() {
		t.Fatal("IsDirectory misreports")
	}
	if !execEntry.IsExecutable() || fileEntry.IsExecutable() {
		t.Fatal("IsExecutable misreports")
	}
	if !linkEntry.IsGitlink() || dirEntry.IsGitlink() {
		t.Fatal("IsGitlink misreports")
	}
}

func TestParseFileMode(t *testing.T) {
	canonical := map[string]FileMode{
		"160000": ModeGitlink,
		"120000": ModeSymlink,
		"40000":  ModeDirectory,
		"100644": ModeRegularFile,
		"100755": ModeExecutable,
	}
	for text, expected := range canonical {
		mode, err := ParseFileMode(text)
		if err != nil {
			t.Fatalf("ParseFileMode(%q) failed: %v", text, err)
		}
		if mode != expected {
			t.Errorf("ParseFileMode(%q) = %s, want %s", text, mode, expected)
		}
	}

	for _, text := range []string{"", "040000", "100664", "644", "tree"} {
		if _, err := ParseFileMode(text); !errors.Is(err, ErrUnknownFileMode) {
			t.Errorf("ParseFileMode(%q): expected ErrUnknownFileMode, got %v", text, err)
		}
	}
}

// TREE TESTS

func TestNewTree_EmptyTree(t *testing.T) {
	tree := createTree(t, nil)

	assertOid(t, tree.Oid(), emptyTreeHex)
	if tree.Len() != 0 || tree.Size() != 0 {
		t.Fatalf("Expected empty tree, got %d entries and %d bytes", tree.Len(), tree.Size())
	}
}

func TestNewTree_MatchesGit(t *testing.T) {
	blob := NewBlob([]byte("hello world\n"))
	tree := createTree(t, map[string]TreeEntry{
		"hello.txt": {Mode: ModeRegularFile, Oid: blob.Oid()},
	})

	assertOid(t, tree.Oid(), helloTreeHex)
}

// TestBuildTreeBody_SortsEntries covers a.txt/b.txt inserted out of order.
func TestBuildTreeBody_SortsEntries(t *testing.T) {
	oidA := randomOid(t)
	oidB := randomOid(t)
	entries := map[string]TreeEntry{
		"b.txt": {Mode: ModeRegularFile, Oid: oidB},
		"a.txt": {Mode: ModeRegularFile, Oid: oidA},
	}

	body := BuildTreeBody(entries)

	var expected []byte
	expected = append(expected, "100644 a.txt\x00"...)
	expected = append(expected, oidA[:]...)
	expected = append(expected, "100644 b.txt\x00"...)
	expected = append(expected, oidB[:]...)
	if !bytes.Equal(body, expected) {
		t.Fatalf("Expected body %q, got %q", expected, body)
	}

	parsed, err := ParseTreeEntries(body)
	if err != nil {
		t.Fatalf("ParseTreeEntries failed: %v", err)
	}
	if diff := cmp.Diff(entries, parsed); diff != "" {
		t.Fatalf("Entries mismatch (-want +got):\n%s", diff)
	}
}

// TestBuildTreeBody_OrderIndependent builds the same mapping many times;
// map iteration order differs between runs but the bytes must not.
func TestBuildTreeBody_OrderIndependent(t *testing.T) {
	entries := make(map[string]TreeEntry)
	for _, name := range []string{"z", "m", "a", "README.md", "main.go", "src", "Makefile", "_x", "0"} {
		entries[name] = TreeEntry{Mode: ModeRegularFile, Oid: randomOid(t)}
	}

	first := BuildTreeBody(entries)
	for i := 0; i < 50; i++ {
		rebuilt := make(map[string]TreeEntry, len(entries))
		for name, entry := range entries {
			rebuilt[name] = entry
		}
		if !bytes.Equal(BuildTreeBody(rebuilt), first) {
			t.Fatal("Tree body depends on map iteration order")
		}
	}
}

// TestNewTree_DirectorySortsWithTrailingSlash checks Git's rule that "foo"
// as a directory sorts as "foo/", after "foo.txt".
func TestNewTree_DirectorySortsWithTrailingSlash(t *testing.T) {
	tree := createTree(t, map[string]TreeEntry{
		"foo":     {Mode: ModeDirectory, Oid: randomOid(t)},
		"foo.txt": {Mode: ModeRegularFile, Oid: randomOid(t)},
		"foo-bar": {Mode: ModeRegularFile, Oid: randomOid(t)},
	})

	expected := []string{"foo-bar", "foo.txt", "foo"}
	if diff := cmp.Diff(expected, tree.SortedNames()); diff != "" {
		t.Fatalf("Order mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_RoundTrip(t *testing.T) {
	entries := map[string]TreeEntry{
		"README.md": {Mode: ModeRegularFile, Oid: randomOid(t)},
		"run.sh":    {Mode: ModeExecutable, Oid: randomOid(t)},
		"link":      {Mode: ModeSymlink, Oid: randomOid(t)},
		"src":       {Mode: ModeDirectory, Oid: randomOid(t)},
		"vendor":    {Mode: ModeGitlink, Oid: randomOid(t)},
		"naïve ü":   {Mode: ModeRegularFile, Oid: randomOid(t)},
	}
	tree := createTree(t, entries)

	parsed, err := ParseTree(tree.Body())
	if err != nil {
		t.Fatalf("ParseTree failed: %v", err)
	}

	if parsed.Oid() != tree.Oid() {
		t.Fatalf("Expected oid %s, got %s", tree.Oid(), parsed.Oid())
	}
	if diff := cmp.Diff(entries, parsed.Entries()); diff != "" {
		t.Fatalf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_DependenciesSkipGitlinks(t *testing.T) {
	fileOid := randomOid(t)
	dirOid := randomOid(t)
	tree := createTree(t, map[string]TreeEntry{
		"file":      {Mode: ModeRegularFile, Oid: fileOid},
		"dir":       {Mode: ModeDirectory, Oid: dirOid},
		"submodule": {Mode: ModeGitlink, Oid: randomOid(t)},
	})

	expected := []Oid{dirOid, fileOid}
	if diff := cmp.Diff(expected, tree.Dependencies()); diff != "" {
		t.Fatalf("Dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_FindEntry(t *testing.T) {
	srcOid := randomOid(t)
	tree := createTree(t, map[string]TreeEntry{
		"src": {Mode: ModeDirectory, Oid: srcOid},
	})

	entry, found := tree.FindEntry("src")
	if !found {
		t.Fatal("Should find 'src' directory")
	}
	if !entry.IsDirectory() || entry.Oid != srcOid {
		t.Errorf("Unexpected entry %+v", entry)
	}

	if _, found := tree.FindEntry("missing"); found {
		t.Error("Should not find missing entry")
	}
}

func TestTree_EntriesIsCopy(t *testing.T) {
	tree := createTree(t, map[string]TreeEntry{
		"a": {Mode: ModeRegularFile, Oid: randomOid(t)},
	})

	entries := tree.Entries()
	delete(entries, "a")
	entries["b"] = TreeEntry{Mode: ModeRegularFile}

	if _, found := tree.FindEntry("a"); !found || tree.Len() != 1 {
		t.Fatal("Mutating Entries() result changed the tree")
	}
}

func TestNewTree_InvalidNames(t *testing.T) {
	for _, name := range []string{"", "a/b", "nul\x00name"} {
		_, err := NewTree(map[string]TreeEntry{name: {Mode: ModeRegularFile}})
		if !errors.Is(err, ErrMalformedTreeEntry) {
			t.Errorf("name %q: expected ErrMalformedTreeEntry, got %v", name, err)
		}
	}
}

func TestParseTreeEntries_Malformed(t *testing.T) {
	hash := bytes.Repeat([]byte{0x11}, 20)
	record := func(parts ...string) []byte {
		var b []byte
		for _, p := range parts {
			b = append(b, p...)
		}
		return b
	}

	testCases := []struct {
		name string
		body []byte
	}{
		{"missing space", record("100644")},
		{"missing NUL", record("100644 file.txt")},
		{"truncated hash", append(record("100644 file.txt\x00"), hash[:10]...)},
		{"empty name", append(record("100644 \x00"), hash...)},
		{"duplicate name", append(append(append(record("100644 a\x00"), hash...), "100644 a\x00"...), hash...)},
		{"trailing garbage", append(append(record("100644 a\x00"), hash...), "1006"...)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseTreeEntries(tc.body); !errors.Is(err, ErrMalformedTreeEntry) {
				t.Fatalf("Expected ErrMalformedTreeEntry, got %v", err)
			}
		})
	}
}

func TestParseTreeEntries_UnknownMode(t *testing.T) {
	body := append([]byte("100664 file.txt\x00"), bytes.Repeat([]byte{0x22}, 20)...)

	_, err := ParseTreeEntries(body)
	if !errors.Is(err, ErrUnknownFileMode) {
		t.Fatalf("Expected ErrUnknownFileMode, got %v", err)
	}
	if !errors.Is(err, ErrMalformedTreeEntry) {
		t.Fatalf("Expected error to also match ErrMalformedTreeEntry, got %v", err)
	}
}

func TestParseTreeEntries_BinaryHashMayContainSpecialBytes(t *testing.T) {
	// Raw hash bytes may include ' ' and NUL; they must not be taken as separators.
	var oid Oid
	copy(oid[:], []byte{' ', 0x00, ' ', 0x00})

	body := BuildTreeBody(map[string]TreeEntry{
		"a": {Mode: ModeRegularFile, Oid: oid},
		"b": {Mode: ModeSymlink, Oid: oid},
	})

	entries, err := ParseTreeEntries(body)
	if err != nil {
		t.Fatalf("ParseTreeEntries failed: %v", err)
	}
	if len(entries) != 2 || entries["a"].Oid != oid || entries["b"].Mode != ModeSymlink {
		t.Fatalf("Unexpected entries %+v", entries)
	}
}

func TestParseTree_KeepsInputBytes(t *testing.T) {
	oidA := randomOid(t)
	oidB := randomOid(t)

	// Out of order on purpose: the oid must match these bytes, not a re-sorted copy.
	var body []byte
	body = append(body, "100644 b\x00"...)
	body = append(body, oidB[:]...)
	body = append(body, "100644 a\x00"...)
	body = append(body, oidA[:]...)

	tree, err := ParseTree(body)
	if err != nil {
		t.Fatalf("ParseTree failed: %v", err)
	}
	if tree.Oid() != ComputeOid(TreeObjectType, body) {
		t.Fatal("Parsed tree oid should hash the input bytes")
	}
	if bytes.Equal(BuildTreeBody(tree.Entries()), body) {
		t.Fatal("Rebuilt body should be sorted and differ from the input")
	}
}
