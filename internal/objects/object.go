package objects

import (
	"fmt"
	"strconv"
)

type ObjectType string

const (
	BlobObjectType   ObjectType = "blob"
	TreeObjectType   ObjectType = "tree"
	CommitObjectType ObjectType = "commit"
)

func (ot ObjectType) IsValid() bool {
	switch ot {
	case BlobObjectType, TreeObjectType, CommitObjectType:
		return true
	default:
		return false
	}
}

// ParseObjectType validates a type name read from an object header or a flag.
func ParseObjectType(s string) (ObjectType, error) {
	ot := ObjectType(s)
	if !ot.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectType, s)
	}
	return ot, nil
}

// Object represents any GoGit object that can be stored.
// The set of implementations is closed: *Blob, *Tree and *Commit.
// Use a type switch to reach variant-specific fields.
type Object interface {
	// Type returns the object kind used in the object header.
	Type() ObjectType

	// Oid returns the SHA-1 identity derived from Body.
	Oid() Oid

	// Body returns a copy of the serialized payload without header.
	Body() []byte

	// Data returns the complete object data including header
	// Format: "<type> <size>\0<content>"
	Data() []byte

	// Dependencies lists the objects this one references.
	Dependencies() []Oid

	sealed()
}

// ParseObject decodes body as an object of the given type.
func ParseObject(objectType ObjectType, body []byte) (Object, error) {
	switch objectType {
	case BlobObjectType:
		return NewBlob(body), nil
	case TreeObjectType:
		return ParseTree(body)
	case CommitObjectType:
		return ParseCommit(body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidObjectType, objectType)
	}
}

func envelopeHeader(objectType ObjectType, size int) []byte {
	header := make([]byte, 0, len(objectType)+12)
	header = append(header, objectType...)
	header = append(header, ' ')
	header = strconv.AppendInt(header, int64(size), 10)
	return append(header, 0)
}

func envelope(objectType ObjectType, body []byte) []byte {
	header := envelopeHeader(objectType, len(body))
	data := make([]byte, 0, len(header)+len(body))
	data = append(data, header...)
	return append(data, body...)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
