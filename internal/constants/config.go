package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	InitCmdName         = "init"
	HashObjectCmdName   = "hash-object"
	CatFileCmdName      = "cat-file"
	MktreeCmdName       = "mktree"
	CommitTreeCmdName   = "commit-tree"
	VerifyCommitCmdName = "verify-commit"
	FsckCmdName         = "fsck"
)

// Repository directory and file names define the gogit metadata structure.
const (
	// Gogit is the repository metadata directory.
	Gogit = ".gogit"

	// Objects stores content-addressable objects (blobs, trees, commits).
	Objects = "objects"

	// Refs contains branch and tag references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Tags stores tag pointers under refs/.
	Tags = "tags"

	// Head points to current branch or detached commit.
	Head = "HEAD"

	// ConfigFile holds repository settings in TOML.
	ConfigFile = "config.toml"
)

// Default repository values.
const (
	// DefaultBranch is the initial branch name for new repositories.
	DefaultBranch = "main"

	// DefaultRefPrefix is prepended to branch names in HEAD file.
	DefaultRefPrefix = "ref: refs/heads/"
)

// File system permissions for created files and directories.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644

	// ObjectPerms marks loose objects read-only (r--r--r--).
	ObjectPerms os.FileMode = 0444
)

// Cryptographic hash properties.
const (
	// HashByteLength is byte length of SHA-1 hash (20 bytes).
	HashByteLength = 20

	// HashStringLength is hex string length of SHA-1 hash (40 characters).
	HashStringLength = 40

	// HashDirPrefixLength is subdirectory prefix length under objects/ (2 characters).
	HashDirPrefixLength = 2
)

// Header keys of commit objects. Each is followed by a single space.
const (
	CommitTreeKey      = "tree"
	CommitParentKey    = "parent"
	CommitAuthorKey    = "author"
	CommitCommitterKey = "committer"
	CommitGPGSigKey    = "gpgsig"
)

// Object format constants.
const (
	// NullByte separates header from content in Git objects.
	NullByte = '\x00'

	// SpaceByte separates mode and name in tree entries and keys from values in commit headers.
	SpaceByte = ' '

	// NewlineByte terminates commit header lines.
	NewlineByte = '\n'
)

// Time conversion constants for timezone formatting.
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)
