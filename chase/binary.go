package chase

import "github.com/teranos/atomspace/atom"

// Positions of an ordered binary link.
const (
	First  = 0
	Second = 1
)

// Forward follows binary links of type linkType in their declared
// direction: start is the first member, the visitor gets the second.
func (c *Chaser) Forward(start atom.Handle, linkType atom.Type, visit Visitor) (bool, error) {
	return c.Chase(start, linkType, First, Second, visit)
}

// ForwardLinkAware is Forward with the link handle passed to the visitor.
func (c *Chaser) ForwardLinkAware(start atom.Handle, linkType atom.Type, visit LinkVisitor) (bool, error) {
	return c.ChaseLinkAware(start, linkType, First, Second, visit)
}

// Backward follows the same links in reverse: start is the second member,
// the visitor gets the first.
func (c *Chaser) Backward(start atom.Handle, linkType atom.Type, visit Visitor) (bool, error) {
	return c.Chase(start, linkType, Second, First, visit)
}

// BackwardLinkAware is Backward with the link handle passed to the visitor.
func (c *Chaser) BackwardLinkAware(start atom.Handle, linkType atom.Type, visit LinkVisitor) (bool, error) {
	return c.ChaseLinkAware(start, linkType, Second, First, visit)
}
