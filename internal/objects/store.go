package objects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/KostasZigo/gitobj/internal/constants"
	"github.com/klauspost/compress/zlib"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrCorruptObject reports a loose object whose envelope or hash is wrong.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrTypeMismatch reports an object read as the wrong kind.
	ErrTypeMismatch = errors.New("object type mismatch")
	// ErrMissingDependency reports a reference to an object absent from the store.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrObjectNotFound reports a read of an object the source does not hold.
	ErrObjectNotFound = errors.New("object not found")
)

// Source supplies raw object bodies keyed by Oid.
type Source interface {
	ReadRaw(oid Oid) (ObjectType, []byte, error)
}

// ObjectStore manages storage of Git objects under .gogit/objects.
// It also owns the persisted flag of objects: the model types stay immutable.
type ObjectStore struct {
	repoPath         string // Path to repository root
	compressionLevel int

	mu        sync.RWMutex
	persisted map[Oid]struct{}
}

// StoreOption customizes an ObjectStore.
type StoreOption func(*ObjectStore)

// WithCompressionLevel sets the zlib level used for new objects.
func WithCompressionLevel(level int) StoreOption {
	return func(s *ObjectStore) {
		s.compressionLevel = level
	}
}

func NewObjectStore(repoPath string, opts ...StoreOption) *ObjectStore {
	store := &ObjectStore{
		repoPath:         repoPath,
		compressionLevel: zlib.DefaultCompression,
		persisted:        make(map[Oid]struct{}),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *ObjectStore) objectsDir() string {
	return filepath.Join(s.repoPath, constants.Gogit, constants.Objects)
}

// objectPath returns .gogit/objects/ab/cdef123...
func (s *ObjectStore) objectPath(oid Oid) string {
	hex := oid.String()
	return filepath.Join(s.objectsDir(), hex[:constants.HashDirPrefixLength], hex[constants.HashDirPrefixLength:])
}

// Store saves an object to .gogit/objects/<first 2 chars>/<rest>
// Returns nil if object already exists
func (s *ObjectStore) Store(obj Object) error {
	oid := obj.Oid()
	objectFile := s.objectPath(oid)

	// Check if object already exists (content-addressable)
	_, err := os.Stat(objectFile)
	if err == nil {
		slog.Debug("Object with this hash already exists",
			"oid", oid.String(),
			"type", obj.Type())
		s.markPersisted(oid)
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	objectDir := filepath.Dir(objectFile)
	if err := os.MkdirAll(objectDir, constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	compressedData, err := s.compress(obj.Data())
	if err != nil {
		return fmt.Errorf("failed to compress object: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial object.
	tmp, err := os.CreateTemp(objectDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp object file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(compressedData); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object file: %w", err)
	}
	if err := os.Chmod(tmpName, constants.ObjectPerms); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set object file permissions: %w", err)
	}
	if err := os.Rename(tmpName, objectFile); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move object file into place: %w", err)
	}

	slog.Debug("Stored object", "oid", oid.String(), "type", obj.Type(), "size", len(compressedData))
	s.markPersisted(oid)
	return nil
}

func (s *ObjectStore) compress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer, err := zlib.NewWriterLevel(&buffer, s.compressionLevel)
	if err != nil {
		return nil, err
	}

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}

	// Call Close in order to flush any buffered data
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// ReadRaw reads the type and body of a loose object and checks its hash.
func (s *ObjectStore) ReadRaw(oid Oid) (ObjectType, []byte, error) {
	compressedData, err := os.ReadFile(s.objectPath(oid))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("%w: %s: %w", ErrObjectNotFound, oid, err)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read object file %s: %w", oid, err)
	}

	reader, err := zlib.NewReader(bytes.NewReader(compressedData))
	if err != nil {
		return "", nil, fmt.Errorf("%w %s: failed to create new reader for decompressed data: %w", ErrCorruptObject, oid, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("%w %s: failed to read decompressed data: %w", ErrCorruptObject, oid, err)
	}

	objectType, body, err := splitEnvelope(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w %s: %w", ErrCorruptObject, oid, err)
	}

	if actual := ComputeOid(objectType, body); actual != oid {
		return "", nil, fmt.Errorf("%w: hash mismatch: expected %s, got %s", ErrCorruptObject, oid, actual)
	}

	s.markPersisted(oid)
	return objectType, body, nil
}

// splitEnvelope parses "<type> <size>\0<body>".
func splitEnvelope(data []byte) (ObjectType, []byte, error) {
	// Find null byte separator
	nullByteIndex := bytes.IndexByte(data, constants.NullByte)
	if nullByteIndex == -1 {
		return "", nil, fmt.Errorf("invalid object format: no null byte found")
	}

	typeName, sizeText, ok := bytes.Cut(data[:nullByteIndex], []byte{constants.SpaceByte})
	if !ok {
		return "", nil, fmt.Errorf("invalid object header %q", data[:nullByteIndex])
	}
	objectType, err := ParseObjectType(string(typeName))
	if err != nil {
		return "", nil, err
	}
	size, err := strconv.Atoi(string(sizeText))
	if err != nil {
		return "", nil, fmt.Errorf("invalid object size %q: %w", sizeText, err)
	}

	// Extract content (after null byte)
	body := data[nullByteIndex+1:]
	if len(body) != size {
		return "", nil, fmt.Errorf("size mismatch: header says %d, body has %d", size, len(body))
	}
	return objectType, body, nil
}

// Read reads and parses an object from storage by oid.
func (s *ObjectStore) Read(oid Oid) (Object, error) {
	objectType, body, err := s.ReadRaw(oid)
	if err != nil {
		return nil, err
	}
	obj, err := ParseObject(objectType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s %s: %w", objectType, oid, err)
	}
	return obj, nil
}

// ReadTree reads an object and requires it to be a tree.
func (s *ObjectStore) ReadTree(oid Oid) (*Tree, error) {
	obj, err := s.Read(oid)
	if err != nil {
		return nil, err
	}
	tree, ok := obj.(*Tree)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, not a tree", ErrTypeMismatch, oid, obj.Type())
	}
	return tree, nil
}

// ReadCommit reads an object and requires it to be a commit.
func (s *ObjectStore) ReadCommit(oid Oid) (*Commit, error) {
	obj, err := s.Read(oid)
	if err != nil {
		return nil, err
	}
	commit, ok := obj.(*Commit)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, not a commit", ErrTypeMismatch, oid, obj.Type())
	}
	return commit, nil
}

// Exists checks if an object exists in storage
func (s *ObjectStore) Exists(oid Oid) bool {
	_, err := os.Stat(s.objectPath(oid))
	return err == nil
}

// IsPersisted reports whether this store has written or read oid.
func (s *ObjectStore) IsPersisted(oid Oid) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.persisted[oid]
	return ok
}

func (s *ObjectStore) markPersisted(oid Oid) {
	s.mu.Lock()
	s.persisted[oid] = struct{}{}
	s.mu.Unlock()
}

// List returns the ids of all loose objects in no particular order.
func (s *ObjectStore) List() ([]Oid, error) {
	fanout, err := os.ReadDir(s.objectsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list objects directory: %w", err)
	}

	var oids []Oid
	for _, dir := range fanout {
		if !dir.IsDir() || len(dir.Name()) != constants.HashDirPrefixLength {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.objectsDir(), dir.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list objects directory %s: %w", dir.Name(), err)
		}
		for _, file := range files {
			oid, err := ParseOid(dir.Name() + file.Name())
			if err != nil {
				// temp files and other strays
				continue
			}
			oids = append(oids, oid)
		}
	}
	return oids, nil
}

// Verify re-reads every loose object, checking its hash, its syntax and
// that its dependencies are present. It returns the number of objects
// checked and every problem found, combined.
func (s *ObjectStore) Verify(ctx context.Context) (int, error) {
	oids, err := s.List()
	if err != nil {
		return 0, err
	}

	var (
		mu       sync.Mutex
		problems error
	)
	report := func(err error) {
		mu.Lock()
		problems = multierr.Append(problems, err)
		mu.Unlock()
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for _, oid := range oids {
		oid := oid
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			obj, err := s.Read(oid)
			if err != nil {
				report(err)
				return nil
			}
			for _, dep := range obj.Dependencies() {
				if !s.Exists(dep) {
					report(fmt.Errorf("%w: %s %s references %s", ErrMissingDependency, obj.Type(), oid, dep))
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return len(oids), err
	}

	return len(oids), problems
}
