package objects

import (
	"fmt"
	"os"
)

type Blob struct {
	content []byte
	oid     Oid
}

func NewBlob(content []byte) *Blob {
	content = cloneBytes(content)
	if content == nil {
		content = []byte{}
	}
	return &Blob{
		content: content,
		oid:     ComputeOid(BlobObjectType, content),
	}
}

func NewBlobFromFile(filepath string) (*Blob, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return NewBlob(content), nil
}

func (b *Blob) Type() ObjectType {
	return BlobObjectType
}

func (b *Blob) Oid() Oid {
	return b.oid
}

func (b *Blob) Body() []byte {
	return cloneBytes(b.content)
}

func (b *Blob) Size() int {
	return len(b.content)
}

func (b *Blob) Data() []byte {
	return envelope(BlobObjectType, b.content)
}

// Dependencies is always empty: blob content is opaque.
func (b *Blob) Dependencies() []Oid {
	return nil
}

func (b *Blob) sealed() {}

func (b *Blob) String() string {
	return fmt.Sprintf("Blob{oid: %s, size: %d bytes}", b.oid, b.Size())
}
