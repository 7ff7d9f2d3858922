package objects

import "fmt"

// Walk visits every object reachable from roots, breadth-first, each once.
// Gitlink entries are not followed since Tree.Dependencies omits them.
// A failing read or a non-nil error from fn stops the walk.
func Walk(src Source, roots []Oid, fn func(Object) error) error {
	seen := make(map[Oid]struct{}, len(roots))
	queue := make([]Oid, 0, len(roots))
	for _, root := range roots {
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		queue = append(queue, root)
	}

	for len(queue) > 0 {
		oid := queue[0]
		queue = queue[1:]

		objectType, body, err := src.ReadRaw(oid)
		if err != nil {
			return err
		}
		obj, err := ParseObject(objectType, body)
		if err != nil {
			return fmt.Errorf("failed to parse %s %s: %w", objectType, oid, err)
		}
		if err := fn(obj); err != nil {
			return err
		}

		for _, dep := range obj.Dependencies() {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}
	return nil
}

// MemorySource is an in-memory Source, handy for tests and for building
// objects before they are written anywhere.
type MemorySource map[Oid]Object

// Add records objects under their own ids.
func (m MemorySource) Add(objs ...Object) {
	for _, obj := range objs {
		m[obj.Oid()] = obj
	}
}

func (m MemorySource) ReadRaw(oid Oid) (ObjectType, []byte, error) {
	obj, ok := m[oid]
	if !ok {
		return "", nil, fmt.Errorf("object %s: %w", oid, ErrObjectNotFound)
	}
	return obj.Type(), obj.Body(), nil
}
