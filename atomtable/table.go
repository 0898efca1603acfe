// Package atomtable is an in-memory atom store implementing atom.Space.
//
// Atoms are deduplicated: adding a node with an existing (type, name) or a
// link with an existing (type, outgoing set) returns the existing handle.
// Incoming sets keep link insertion order.
package atomtable

import (
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
)

type nodeKey struct {
	t    atom.Type
	name string
}

var (
	_ atom.Space   = (*Table)(nil)
	_ atom.Builder = (*Table)(nil)
)

// Table is safe for concurrent use. Callbacks run without the lock held,
// over a snapshot taken when iteration starts.
type Table struct {
	mu       sync.RWMutex
	last     atom.Handle
	atoms    map[atom.Handle]*atom.Atom
	nodes    map[nodeKey]atom.Handle
	links    map[string]atom.Handle
	incoming map[atom.Handle][]atom.Handle
	logger   *zap.SugaredLogger
}

// New creates an empty table. logger may be nil.
func New(l *zap.SugaredLogger) *Table {
	return &Table{
		atoms:    make(map[atom.Handle]*atom.Atom),
		nodes:    make(map[nodeKey]atom.Handle),
		links:    make(map[string]atom.Handle),
		incoming: make(map[atom.Handle][]atom.Handle),
		logger:   logger.OrNop(l),
	}
}

// AddNode inserts a node, or returns the handle of the identical one.
func (t *Table) AddNode(typ atom.Type, name string) (atom.Handle, error) {
	if !typ.IsNode() {
		return atom.UndefinedHandle, errors.NewInvalidRequestError("%s is not a node type", typ)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := nodeKey{t: typ, name: name}
	if h, ok := t.nodes[key]; ok {
		return h, nil
	}

	h := t.allocate()
	t.atoms[h] = &atom.Atom{Handle: h, Type: typ, Name: name}
	t.nodes[key] = h

	t.logger.Debugw("Node added", logger.FieldHandle, h, logger.FieldAtomType, typ, "name", name)
	return h, nil
}

// AddLink inserts a link over existing atoms, or returns the handle of the
// identical one.
func (t *Table) AddLink(typ atom.Type, outgoing ...atom.Handle) (atom.Handle, error) {
	if !typ.IsLink() {
		return atom.UndefinedHandle, errors.NewInvalidRequestError("%s is not a link type", typ)
	}
	if len(outgoing) == 0 {
		return atom.UndefinedHandle, errors.NewInvalidRequestError("%s needs at least one member", typ)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i, member := range outgoing {
		if _, ok := t.atoms[member]; !ok {
			return atom.UndefinedHandle, errors.NewNotFoundError("member %d of %s: handle %s", i, typ, member)
		}
	}

	key := atom.LinkKey(typ, outgoing)
	if h, ok := t.links[key]; ok {
		return h, nil
	}

	h := t.allocate()
	members := make([]atom.Handle, len(outgoing))
	copy(members, outgoing)
	t.atoms[h] = &atom.Atom{Handle: h, Type: typ, Outgoing: members}
	t.links[key] = h

	seen := make(map[atom.Handle]bool, len(members))
	for _, member := range members {
		if seen[member] {
			continue
		}
		seen[member] = true
		t.incoming[member] = append(t.incoming[member], h)
	}

	t.logger.Debugw("Link added", logger.FieldHandle, h, logger.FieldAtomType, typ, "arity", len(members))
	return h, nil
}

// Remove deletes an atom that no link references. The handle stays stale
// afterwards and is never reused.
func (t *Table) Remove(h atom.Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.atoms[h]
	if !ok {
		return errors.NewNotFoundError("handle %s", h)
	}
	if n := len(t.incoming[h]); n > 0 {
		return errors.NewConflictError("%s is referenced by %d links", a, n)
	}

	if a.IsLink() {
		for _, member := range a.Outgoing {
			t.incoming[member] = without(t.incoming[member], h)
			if len(t.incoming[member]) == 0 {
				delete(t.incoming, member)
			}
		}
		delete(t.links, atom.LinkKey(a.Type, a.Outgoing))
	} else {
		delete(t.nodes, nodeKey{t: a.Type, name: a.Name})
	}
	delete(t.atoms, h)
	delete(t.incoming, h)

	t.logger.Debugw("Atom removed", logger.FieldHandle, h)
	return nil
}

// Lookup finds a node by type and name.
func (t *Table) Lookup(typ atom.Type, name string) (atom.Handle, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	h, ok := t.nodes[nodeKey{t: typ, name: name}]
	if !ok {
		return atom.UndefinedHandle, errors.NewNotFoundError("%s %q", typ, name)
	}
	return h, nil
}

// Size is the number of live atoms.
func (t *Table) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.atoms)
}

// Resolve implements atom.Resolver. The returned atom must not be modified.
func (t *Table) Resolve(h atom.Handle) (*atom.Atom, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a, ok := t.atoms[h]
	if !ok {
		return nil, errors.NewNotFoundError("handle %s", h)
	}
	return a, nil
}

// ForEachIncoming implements atom.IncomingIterator.
func (t *Table) ForEachIncoming(a *atom.Atom, fn func(link *atom.Atom) bool) (bool, error) {
	t.mu.RLock()
	handles := t.incoming[a.Handle]
	snapshot := make([]*atom.Atom, 0, len(handles))
	for _, h := range handles {
		snapshot = append(snapshot, t.atoms[h])
	}
	t.mu.RUnlock()

	for _, link := range snapshot {
		if fn(link) {
			return true, nil
		}
	}
	return false, nil
}

// ForEachOutgoing implements atom.OutgoingIterator.
func (t *Table) ForEachOutgoing(link *atom.Atom, fn func(member *atom.Atom) bool) (bool, error) {
	t.mu.RLock()
	snapshot := make([]*atom.Atom, len(link.Outgoing))
	for i, h := range link.Outgoing {
		member, ok := t.atoms[h]
		if !ok {
			t.mu.RUnlock()
			return false, errors.NewNotFoundError("member %d of %s: handle %s", i, link, h)
		}
		snapshot[i] = member
	}
	t.mu.RUnlock()

	for _, member := range snapshot {
		if fn(member) {
			return true, nil
		}
	}
	return false, nil
}

func (t *Table) allocate() atom.Handle {
	t.last++
	return t.last
}

func without(hs []atom.Handle, drop atom.Handle) []atom.Handle {
	out := hs[:0]
	for _, h := range hs {
		if h != drop {
			out = append(out, h)
		}
	}
	return out
}
