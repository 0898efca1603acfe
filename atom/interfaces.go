package atom

// Resolver maps a handle to the atom it currently names. A handle that does
// not resolve yields an error wrapping errors.ErrNotFound.
type Resolver interface {
	Resolve(h Handle) (*Atom, error)
}

// IncomingIterator enumerates the links that list an atom in their outgoing
// set, each link once. The callback returns true to stop; the method reports
// whether it was stopped.
type IncomingIterator interface {
	ForEachIncoming(a *Atom, fn func(link *Atom) bool) (bool, error)
}

// OutgoingIterator enumerates a link's members in ascending position order
// with the same stop contract as IncomingIterator.
type OutgoingIterator interface {
	ForEachOutgoing(link *Atom, fn func(member *Atom) bool) (bool, error)
}

// Space is the full read capability set a chase needs.
//
// Implementations must not hold internal locks while invoking callbacks:
// visitors are allowed to start nested chases over the same Space.
type Space interface {
	Resolver
	IncomingIterator
	OutgoingIterator
}

// Builder is the write side shared by the stores, used by the seed loader.
type Builder interface {
	AddNode(t Type, name string) (Handle, error)
	AddLink(t Type, outgoing ...Handle) (Handle, error)
}
