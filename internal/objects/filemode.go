package objects

import "fmt"

// FileMode is the canonical ASCII mode string of a tree entry.
type FileMode string

const (
	ModeRegularFile FileMode = "100644" // Regular non-executable file
	ModeExecutable  FileMode = "100755" // Executable file
	ModeSymlink     FileMode = "120000" // Symbolic link
	ModeDirectory   FileMode = "40000"  // Directory (tree); Git writes it without a leading zero
	ModeGitlink     FileMode = "160000" // Commit in another repository (submodule)
)

func (m FileMode) IsValid() bool {
	switch m {
	case ModeRegularFile, ModeExecutable, ModeSymlink, ModeDirectory, ModeGitlink:
		return true
	default:
		return false
	}
}

// ParseFileMode accepts only the five canonical encodings.
func ParseFileMode(s string) (FileMode, error) {
	mode := FileMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFileMode, s)
	}
	return mode, nil
}

// ObjectType returns the kind of object an entry with this mode points at.
func (m FileMode) ObjectType() ObjectType {
	switch m {
	case ModeDirectory:
		return TreeObjectType
	case ModeGitlink:
		return CommitObjectType
	default:
		return BlobObjectType
	}
}

func (m FileMode) String() string {
	return string(m)
}
