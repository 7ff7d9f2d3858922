package objects

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/KostasZigo/gitobj/internal/constants"
)

// TreeEntry is the value half of a tree record; the name is the map key.
type TreeEntry struct {
	Mode FileMode
	Oid  Oid
}

func NewTreeEntry(mode FileMode, oid Oid) (TreeEntry, error) {
	if !mode.IsValid() {
		return TreeEntry{}, fmt.Errorf("%w: %q", ErrUnknownFileMode, string(mode))
	}
	return TreeEntry{Mode: mode, Oid: oid}, nil
}

func (e TreeEntry) IsDirectory() bool {
	return e.Mode == ModeDirectory
}

func (e TreeEntry) IsExecutable() bool {
	return e.Mode == ModeExecutable
}

func (e TreeEntry) IsGitlink() bool {
	return e.Mode == ModeGitlink
}

// Tree represents a Git tree object (directory)
type Tree struct {
	entries map[string]TreeEntry
	names   []string // sorted in emission order
	body    []byte
	oid     Oid
}

// NewTree creates a tree object from entries keyed by file name.
// Names must be non-empty and contain neither '/' nor NUL.
func NewTree(entries map[string]TreeEntry) (*Tree, error) {
	for name, entry := range entries {
		if err := validateEntryName(name); err != nil {
			return nil, err
		}
		if !entry.Mode.IsValid() {
			return nil, fmt.Errorf("%w %q: %w: %q", ErrMalformedTreeEntry, name, ErrUnknownFileMode, string(entry.Mode))
		}
	}

	copied := maps.Clone(entries)
	if copied == nil {
		copied = make(map[string]TreeEntry)
	}
	body := BuildTreeBody(copied)

	return &Tree{
		entries: copied,
		names:   sortedEntryNames(copied),
		body:    body,
		oid:     ComputeOid(TreeObjectType, body),
	}, nil
}

// ParseTree decodes a tree body. The input bytes are kept as the body, so
// the Oid matches the stored object even if it was written out of order.
func ParseTree(body []byte) (*Tree, error) {
	entries, err := ParseTreeEntries(body)
	if err != nil {
		return nil, err
	}

	body = cloneBytes(body)
	if body == nil {
		body = []byte{}
	}

	return &Tree{
		entries: entries,
		names:   sortedEntryNames(entries),
		body:    body,
		oid:     ComputeOid(TreeObjectType, body),
	}, nil
}

func validateEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrMalformedTreeEntry)
	}
	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%w: name %q contains '/' or NUL", ErrMalformedTreeEntry, name)
	}
	return nil
}

// ParseTreeEntries decodes a sequence of "<mode> <name>\0<20-byte oid>" records.
func ParseTreeEntries(body []byte) (map[string]TreeEntry, error) {
	entries := make(map[string]TreeEntry)

	for offset := 0; offset < len(body); {
		rest := body[offset:]

		space := bytes.IndexByte(rest, constants.SpaceByte)
		if space < 0 {
			return nil, fmt.Errorf("%w at offset %d: missing space after mode", ErrMalformedTreeEntry, offset)
		}
		mode, err := ParseFileMode(string(rest[:space]))
		if err != nil {
			return nil, fmt.Errorf("%w at offset %d: %w", ErrMalformedTreeEntry, offset, err)
		}

		rest = rest[space+1:]
		nul := bytes.IndexByte(rest, constants.NullByte)
		if nul < 0 {
			return nil, fmt.Errorf("%w at offset %d: missing NUL after name", ErrMalformedTreeEntry, offset)
		}
		name := string(rest[:nul])
		if name == "" {
			return nil, fmt.Errorf("%w at offset %d: empty name", ErrMalformedTreeEntry, offset)
		}

		rest = rest[nul+1:]
		if len(rest) < constants.HashByteLength {
			return nil, fmt.Errorf("%w at offset %d: truncated object id for %q", ErrMalformedTreeEntry, offset, name)
		}
		var oid Oid
		copy(oid[:], rest[:constants.HashByteLength])

		if _, dup := entries[name]; dup {
			return nil, fmt.Errorf("%w at offset %d: duplicate name %q", ErrMalformedTreeEntry, offset, name)
		}
		entries[name] = TreeEntry{Mode: mode, Oid: oid}

		offset += space + 1 + nul + 1 + constants.HashByteLength
	}

	return entries, nil
}

// BuildTreeBody creates the raw tree content in Git format
// <mode> <name>\0<20-byte binary SHA> , ex:
// 100644 README.md\0[binary SHA for README blob]
// 100644 main.go\0[binary SHA for main.go blob]
// 40000 src\0[binary SHA for src/ tree]
// Records are always sorted first; map iteration order never leaks into the bytes.
func BuildTreeBody(entries map[string]TreeEntry) []byte {
	var buf bytes.Buffer

	for _, name := range sortedEntryNames(entries) {
		entry := entries[name]
		buf.WriteString(string(entry.Mode))
		buf.WriteByte(constants.SpaceByte)
		buf.WriteString(name)
		buf.WriteByte(constants.NullByte)
		buf.Write(entry.Oid[:])
	}

	return buf.Bytes()
}

func sortedEntryNames(entries map[string]TreeEntry) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return compareEntryNames(a, entries[a].Mode, b, entries[b].Mode)
	})
	return names
}

// compareEntryNames implements Git's tree entry sorting rules:
// - Entries are compared bytewise by name
// - Directory names are treated as if they have a trailing "/" for comparison
// - This ensures correct ordering when directories and files have similar names
func compareEntryNames(nameA string, modeA FileMode, nameB string, modeB FileMode) int {
	return strings.Compare(sortableName(nameA, modeA), sortableName(nameB, modeB))
}

// sortableName returns the name used for sorting.
func sortableName(name string, mode FileMode) string {
	if mode == ModeDirectory {
		return name + "/"
	}
	return name
}

func (t *Tree) Type() ObjectType {
	return TreeObjectType
}

// Oid returns the SHA-1 of the tree
func (t *Tree) Oid() Oid {
	return t.oid
}

func (t *Tree) Body() []byte {
	return cloneBytes(t.body)
}

// Size returns the size of the tree content
func (t *Tree) Size() int {
	return len(t.body)
}

func (t *Tree) Data() []byte {
	return envelope(TreeObjectType, t.body)
}

// Entries returns a copy of the name to entry mapping.
func (t *Tree) Entries() map[string]TreeEntry {
	return maps.Clone(t.entries)
}

// SortedNames returns entry names in the order they are serialized.
func (t *Tree) SortedNames() []string {
	return slices.Clone(t.names)
}

func (t *Tree) Len() int {
	return len(t.entries)
}

// FindEntry finds an entry by name
func (t *Tree) FindEntry(name string) (TreeEntry, bool) {
	entry, ok := t.entries[name]
	return entry, ok
}

// Dependencies returns the ids of all entries in serialization order,
// except gitlinks, which point into another repository.
func (t *Tree) Dependencies() []Oid {
	deps := make([]Oid, 0, len(t.names))
	for _, name := range t.names {
		entry := t.entries[name]
		if entry.IsGitlink() {
			continue
		}
		deps = append(deps, entry.Oid)
	}
	return deps
}

func (t *Tree) sealed() {}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree{oid: %s, entries: %d}", t.oid, len(t.entries))
}
