package atom

import (
	"strconv"
	"strings"

	"github.com/teranos/atomspace/errors"
)

// Lookuper finds nodes by type and name
type Lookuper interface {
	Lookup(t Type, name string) (Handle, error)
}

// ResolveRef turns a textual atom reference into a handle:
//
//	#12               handle 12
//	PredicateNode:likes
//	cat               ConceptNode "cat"
//
// A prefix before ':' that is not a node type is part of the name.
// Handles are not checked for existence.
func ResolveRef(l Lookuper, ref string) (Handle, error) {
	if digits, ok := strings.CutPrefix(ref, "#"); ok {
		n, err := strconv.ParseUint(digits, 10, 64)
		if err != nil || n == uint64(UndefinedHandle) {
			return UndefinedHandle, errors.NewInvalidRequestError("bad handle reference %q", ref)
		}
		return Handle(n), nil
	}

	t, name := ConceptNode, ref
	if typeName, rest, ok := strings.Cut(ref, ":"); ok {
		if parsed, ok := typesByName[typeName]; ok && parsed.IsNode() {
			t, name = parsed, rest
		}
	}
	if name == "" {
		return UndefinedHandle, errors.NewInvalidRequestError("empty atom reference")
	}
	return l.Lookup(t, name)
}
