package objects

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KostasZigo/gitobj/testutils"
)

// TestNewBlob verifies blob creation from raw content.
func TestNewBlob(t *testing.T) {
	content := []byte("hello world\n")
	blob := NewBlob(content)

	assertOid(t, blob.Oid(), helloWorldBlobHex)
	assertBlobContent(t, blob, content)
}

// TestNewBlobFromFile verifies blob creation from filesystem file.
func TestNewBlobFromFile(t *testing.T) {
	repoPath := t.TempDir()
	content := []byte("test content\n")
	testFile := testutils.CreateTestFile(t, repoPath, "test.txt", content)

	blob, err := NewBlobFromFile(testFile)
	if err != nil {
		t.Fatalf("Failed to create blob from file: %v", err)
	}

	assertOid(t, blob.Oid(), "d670460b4b4aece5915caf5c68d12f560a9fe3e4")
	assertBlobContent(t, blob, content)
}

// TestNewBlobFromFile_NonExistent verifies error handling for missing files.
func TestNewBlobFromFile_NonExistent(t *testing.T) {
	_, err := NewBlobFromFile("/nonexistent/file.txt")

	if err == nil {
		t.Fatal("Expected error for non-existent file")
	}

	if !strings.Contains(err.Error(), "failed to read file") {
		t.Errorf("Expected error message about reading file, got: %v", err)
	}
}

// TestBlob_EmptyContent verifies blob behavior with zero-length content.
func TestBlob_EmptyContent(t *testing.T) {
	blob := NewBlob(nil)

	assertOid(t, blob.Oid(), emptyBlobHex)
	assertBlobContent(t, blob, []byte{})
}

// TestBlob_NoDependencies verifies blobs never reference other objects.
func TestBlob_NoDependencies(t *testing.T) {
	if deps := NewBlob([]byte("x")).Dependencies(); len(deps) != 0 {
		t.Fatalf("Expected no dependencies, got %v", deps)
	}
}

// TestBlob_Immutable verifies neither the input nor Body() can alter the blob.
func TestBlob_Immutable(t *testing.T) {
	content := []byte("hello world\n")
	blob := NewBlob(content)

	content[0] = 'H'
	blob.Body()[0] = 'J'

	assertOid(t, blob.Oid(), helloWorldBlobHex)
	assertBlobContent(t, blob, []byte("hello world\n"))
}

// TestBlob_Data verifies the loose object envelope.
func TestBlob_Data(t *testing.T) {
	blob := NewBlob([]byte("hello world\n"))

	expected := []byte("blob 12\x00hello world\n")
	if !bytes.Equal(blob.Data(), expected) {
		t.Fatalf("Expected data %q, got %q", expected, blob.Data())
	}
}

// TestBlob_DifferentContentDifferentHash verifies hash collision resistance.
// Different content must produce different hashes.
func TestBlob_DifferentContentDifferentHash(t *testing.T) {
	blob1 := NewBlob([]byte("content A"))
	blob2 := NewBlob([]byte("content B"))

	if blob1.Oid() == blob2.Oid() {
		t.Fatal("Different content should produce different hashes")
	}
}

// assertBlobContent verifies blob stores exact content and correct size.
func assertBlobContent(t *testing.T, blob *Blob, expectedContent []byte) {
	t.Helper()

	if blob.Size() != len(expectedContent) {
		t.Fatalf("Expected size %d, got %d", len(expectedContent), blob.Size())
	}

	if !bytes.Equal(blob.Body(), expectedContent) {
		t.Fatalf("Expected content [%q], got [%q]", expectedContent, blob.Body())
	}
}
