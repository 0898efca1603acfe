// Package atom defines the atomspace data model and the capabilities the
// chase core consumes from a store.
//
// Atoms are owned by a store. Callers address them through a Handle, which
// either resolves to exactly one live Atom or to ErrNotFound.
package atom

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle is an opaque, stable reference to an atom.
type Handle uint64

// UndefinedHandle never resolves.
const UndefinedHandle Handle = 0

// String renders the handle as "#<n>".
func (h Handle) String() string {
	return "#" + strconv.FormatUint(uint64(h), 10)
}

// Atom is a node or a link. Nodes carry a name; links carry an ordered
// outgoing set of member handles.
type Atom struct {
	Handle   Handle
	Type     Type
	Name     string
	Outgoing []Handle
}

// IsLink reports whether the atom has link type.
func (a *Atom) IsLink() bool {
	return a.Type.IsLink()
}

// Arity is the size of the outgoing set.
func (a *Atom) Arity() int {
	return len(a.Outgoing)
}

// String renders nodes as (ConceptNode "cat") and links as
// (InheritanceLink #1 #2).
func (a *Atom) String() string {
	if !a.IsLink() {
		return fmt.Sprintf("(%s %q)", a.Type, a.Name)
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(a.Type.String())
	for _, h := range a.Outgoing {
		b.WriteString(" ")
		b.WriteString(h.String())
	}
	b.WriteString(")")
	return b.String()
}

// LinkKey is the canonical "type:h1:h2..." identity of a link, used by
// stores to deduplicate links with the same type and outgoing set.
func LinkKey(t Type, outgoing []Handle) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(t)))
	for _, h := range outgoing {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(h), 10))
	}
	return b.String()
}
