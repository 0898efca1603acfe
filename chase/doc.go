// Package chase walks typed, position-addressed links around an atom.
//
// Given a start atom, a link type and two member positions, a Chaser looks
// at every link in the start atom's incoming set. A link matches when its
// type equals the requested type exactly and the start atom sits at the
// "from" position of its outgoing set. For each match the visitor receives
// the member at the "to" position (and, for LinkVisitor, the link itself).
//
//	chaser := chase.New(table)
//	chaser.Forward(cat, atom.InheritanceLink, func(parent atom.Handle) bool {
//	    fmt.Println("cat inherits from", parent)
//	    return false // keep going
//	})
//
// A visitor returns true to halt the search; the chase then returns true.
// Running out of links returns false. A start handle that does not resolve
// is not an error: it simply yields no matches.
//
// Position rules:
//   - Members are walked in ascending position order. When the member at
//     "from" is not the start atom the walk of that link stops and the link
//     yields nothing.
//   - A link only matches if both positions exist in it. Positions past the
//     end of a link, and negative positions, never match.
//   - When from == to the source check runs first, so the reported target
//     is the start atom itself.
//
// A Chaser keeps no per-call state and may be shared; visitors may start
// nested chases. Concurrency control over the store is the store's concern.
package chase
