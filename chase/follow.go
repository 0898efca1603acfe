package chase

import (
	"iter"

	"github.com/teranos/atomspace/atom"
)

// Match is one visitor hit: the target atom and the link that led to it.
type Match struct {
	Target atom.Handle `json:"target"`
	Link   atom.Handle `json:"link"`
}

// Follow returns the first match only. Handy when a link type is known to
// be functional for the start atom (e.g. one EvaluationLink per predicate).
func (c *Chaser) Follow(start atom.Handle, linkType atom.Type, from, to int) (atom.Handle, bool, error) {
	found := atom.UndefinedHandle
	ok, err := c.Chase(start, linkType, from, to, func(target atom.Handle) bool {
		found = target
		return true
	})
	if err != nil || !ok {
		return atom.UndefinedHandle, false, err
	}
	return found, true, nil
}

// Collect gathers every match in incoming-set order.
func (c *Chaser) Collect(start atom.Handle, linkType atom.Type, from, to int) ([]Match, error) {
	var matches []Match
	_, err := c.ChaseLinkAware(start, linkType, from, to, func(target, link atom.Handle) bool {
		matches = append(matches, Match{Target: target, Link: link})
		return false
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// All is the range-over-func form of ChaseLinkAware. Breaking out of the
// loop stops the chase. A store error is yielded once, last.
//
//	for m, err := range chaser.All(cat, atom.InheritanceLink, chase.First, chase.Second) {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
func (c *Chaser) All(start atom.Handle, linkType atom.Type, from, to int) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		done := false
		_, err := c.ChaseLinkAware(start, linkType, from, to, func(target, link atom.Handle) bool {
			if !yield(Match{Target: target, Link: link}, nil) {
				done = true
			}
			return done
		})
		if err != nil && !done {
			yield(Match{}, err)
		}
	}
}
