package chase

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/atomtable"
	"github.com/teranos/atomspace/errors"
)

// fixture is the a/b/c scenario: L1=Inheritance(a,b), L2=Inheritance(a,c),
// L3=Similarity(a,b).
type fixture struct {
	table      *atomtable.Table
	a, b, c    atom.Handle
	l1, l2, l3 atom.Handle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{table: atomtable.New(zaptest.NewLogger(t).Sugar())}

	var err error
	f.a, err = f.table.AddNode(atom.ConceptNode, "a")
	require.NoError(t, err)
	f.b, err = f.table.AddNode(atom.ConceptNode, "b")
	require.NoError(t, err)
	f.c, err = f.table.AddNode(atom.ConceptNode, "c")
	require.NoError(t, err)

	f.l1, err = f.table.AddLink(atom.InheritanceLink, f.a, f.b)
	require.NoError(t, err)
	f.l2, err = f.table.AddLink(atom.InheritanceLink, f.a, f.c)
	require.NoError(t, err)
	f.l3, err = f.table.AddLink(atom.SimilarityLink, f.a, f.b)
	require.NoError(t, err)
	return f
}

func (f *fixture) chaser(t *testing.T, opts ...Option) *Chaser {
	opts = append([]Option{WithLogger(zaptest.NewLogger(t).Sugar())}, opts...)
	return New(f.table, opts...)
}

func collect(targets *[]atom.Handle) Visitor {
	return func(target atom.Handle) bool {
		*targets = append(*targets, target)
		return false
	}
}

func TestForwardInheritanceScenario(t *testing.T) {
	f := newFixture(t)

	var got []atom.Handle
	stopped, err := f.chaser(t).Forward(f.a, atom.InheritanceLink, collect(&got))
	require.NoError(t, err)
	assert.False(t, stopped)
	assert.Equal(t, []atom.Handle{f.b, f.c}, got)
}

func TestNoIncomingLinks(t *testing.T) {
	f := newFixture(t)
	lonely, err := f.table.AddNode(atom.ConceptNode, "lonely")
	require.NoError(t, err)

	called := false
	stopped, err := f.chaser(t).Chase(lonely, atom.InheritanceLink, 0, 1, func(atom.Handle) bool {
		called = true
		return true
	})
	require.NoError(t, err)
	assert.False(t, stopped)
	assert.False(t, called)
}

func TestUnresolvableStart(t *testing.T) {
	f := newFixture(t)
	gone, err := f.table.AddNode(atom.ConceptNode, "gone")
	require.NoError(t, err)
	require.NoError(t, f.table.Remove(gone))

	for _, h := range []atom.Handle{gone, atom.UndefinedHandle, 12345} {
		called := false
		stopped, err := f.chaser(t).Forward(h, atom.InheritanceLink, func(atom.Handle) bool {
			called = true
			return true
		})
		require.NoError(t, err, "unresolvable start is not an error")
		assert.False(t, stopped)
		assert.False(t, called)
	}
}

func TestTypeFiltering(t *testing.T) {
	f := newFixture(t)

	var got []atom.Handle
	_, err := f.chaser(t).Forward(f.a, atom.SimilarityLink, collect(&got))
	require.NoError(t, err)
	assert.Equal(t, []atom.Handle{f.b}, got, "only L3 is a SimilarityLink")

	got = nil
	_, err = f.chaser(t).Forward(f.a, atom.Link, collect(&got))
	require.NoError(t, err)
	assert.Empty(t, got, "no subtype matching")
}

func TestPositionFiltering(t *testing.T) {
	f := newFixture(t)

	// a sits at position 0 of every link, never at position 1
	var got []atom.Handle
	_, err := f.chaser(t).Backward(f.a, atom.InheritanceLink, collect(&got))
	require.NoError(t, err)
	assert.Empty(t, got)

	// b sits at position 1 of L1 only, so forward from b finds nothing
	got = nil
	_, err = f.chaser(t).Forward(f.b, atom.InheritanceLink, collect(&got))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEarlyExitPropagates(t *testing.T) {
	f := newFixture(t)

	calls := 0
	stopped, err := f.chaser(t).Forward(f.a, atom.InheritanceLink, func(atom.Handle) bool {
		calls++
		return true
	})
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Equal(t, 1, calls)
}

func TestEarlyExitSkipsRemainingLinks(t *testing.T) {
	f := newFixture(t)
	space := &countingSpace{Space: f.table}

	calls := 0
	stopped, err := New(space).Forward(f.a, atom.InheritanceLink, func(atom.Handle) bool {
		calls++
		return true
	})
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, space.incomingSeen, "no candidate link after the halting one is examined")
	assert.Equal(t, 1, space.outgoingWalks)
}

func TestForwardBackwardSymmetry(t *testing.T) {
	f := newFixture(t)
	c := f.chaser(t)

	var forward, backward []atom.Handle
	_, err := c.Forward(f.a, atom.SimilarityLink, collect(&forward))
	require.NoError(t, err)
	_, err = c.Backward(f.b, atom.SimilarityLink, collect(&backward))
	require.NoError(t, err)

	assert.Equal(t, []atom.Handle{f.b}, forward)
	assert.Equal(t, []atom.Handle{f.a}, backward)
}

func TestLinkAwareConsistency(t *testing.T) {
	f := newFixture(t)
	c := f.chaser(t)

	var plain []atom.Handle
	_, err := c.Chase(f.a, atom.InheritanceLink, 0, 1, collect(&plain))
	require.NoError(t, err)

	var targets, links []atom.Handle
	_, err = c.ChaseLinkAware(f.a, atom.InheritanceLink, 0, 1, func(target, link atom.Handle) bool {
		targets = append(targets, target)
		links = append(links, link)
		return false
	})
	require.NoError(t, err)

	assert.Equal(t, plain, targets)
	assert.Equal(t, []atom.Handle{f.l1, f.l2}, links)

	var fwdLinks, bwdLinks []atom.Handle
	_, err = c.ForwardLinkAware(f.a, atom.SimilarityLink, func(_, link atom.Handle) bool {
		fwdLinks = append(fwdLinks, link)
		return false
	})
	require.NoError(t, err)
	_, err = c.BackwardLinkAware(f.b, atom.SimilarityLink, func(target, link atom.Handle) bool {
		assert.Equal(t, f.a, target)
		bwdLinks = append(bwdLinks, link)
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, []atom.Handle{f.l3}, fwdLinks)
	assert.Equal(t, []atom.Handle{f.l3}, bwdLinks)
}

func TestNaryPositions(t *testing.T) {
	tbl := atomtable.New(nil)
	likes, _ := tbl.AddNode(atom.PredicateNode, "likes")
	alice, _ := tbl.AddNode(atom.ConceptNode, "alice")
	bob, _ := tbl.AddNode(atom.ConceptNode, "bob")
	eval, err := tbl.AddLink(atom.EvaluationLink, likes, alice, bob)
	require.NoError(t, err)

	tests := []struct {
		name     string
		start    atom.Handle
		from, to int
		want     []atom.Handle
	}{
		{name: "predicate to first argument", start: likes, from: 0, to: 1, want: []atom.Handle{alice}},
		{name: "predicate to second argument", start: likes, from: 0, to: 2, want: []atom.Handle{bob}},
		{name: "second argument back to first", start: bob, from: 2, to: 1, want: []atom.Handle{alice}},
		{name: "second argument back to predicate", start: bob, from: 2, to: 0, want: []atom.Handle{likes}},
		{name: "wrong source slot", start: alice, from: 2, to: 0},
		{name: "target past the end", start: likes, from: 0, to: 3},
		{name: "source past the end", start: likes, from: 5, to: 1},
		{name: "negative source", start: likes, from: -1, to: 1},
		{name: "negative target", start: likes, from: 0, to: -1},
		{name: "degenerate positions report the start", start: alice, from: 1, to: 1, want: []atom.Handle{alice}},
		{name: "degenerate positions on the wrong slot", start: alice, from: 2, to: 2},
	}

	c := New(tbl)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []atom.Handle
			var links []atom.Handle
			_, err := c.ChaseLinkAware(tt.start, atom.EvaluationLink, tt.from, tt.to, func(target, link atom.Handle) bool {
				got = append(got, target)
				links = append(links, link)
				return false
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			for _, l := range links {
				assert.Equal(t, eval, l)
			}
		})
	}
}

func TestSelfLink(t *testing.T) {
	tbl := atomtable.New(nil)
	a, _ := tbl.AddNode(atom.ConceptNode, "a")
	loop, err := tbl.AddLink(atom.SimilarityLink, a, a)
	require.NoError(t, err)

	matches, err := New(tbl).Collect(a, atom.SimilarityLink, First, Second)
	require.NoError(t, err)
	assert.Equal(t, []Match{{Target: a, Link: loop}}, matches, "a self link is reported once")
}

func TestNestedChase(t *testing.T) {
	tbl := atomtable.New(nil)
	cat, _ := tbl.AddNode(atom.ConceptNode, "cat")
	mammal, _ := tbl.AddNode(atom.ConceptNode, "mammal")
	animal, _ := tbl.AddNode(atom.ConceptNode, "animal")
	tbl.AddLink(atom.InheritanceLink, cat, mammal)
	tbl.AddLink(atom.InheritanceLink, mammal, animal)

	c := New(tbl)
	var grandparents []atom.Handle
	_, err := c.Forward(cat, atom.InheritanceLink, func(parent atom.Handle) bool {
		_, err := c.Forward(parent, atom.InheritanceLink, collect(&grandparents))
		require.NoError(t, err)
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, []atom.Handle{animal}, grandparents)
}

func TestStoreErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("disk on fire")

	tests := []struct {
		name  string
		space *failingSpace
	}{
		{name: "resolve", space: &failingSpace{Space: f.table, resolveErr: boom}},
		{name: "incoming", space: &failingSpace{Space: f.table, incomingErr: boom}},
		{name: "outgoing", space: &failingSpace{Space: f.table, outgoingErr: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			stopped, err := New(tt.space).Forward(f.a, atom.InheritanceLink, func(atom.Handle) bool {
				called = true
				return false
			})
			assert.False(t, stopped)
			assert.ErrorIs(t, err, boom)
			assert.False(t, called)
		})
	}
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)
	c := f.chaser(t, WithMetrics(m), WithVerbosity(3))

	var got []atom.Handle
	_, err := c.Forward(f.a, atom.InheritanceLink, collect(&got))
	require.NoError(t, err)
	_, err = c.Forward(f.a, atom.InheritanceLink, func(atom.Handle) bool { return true })
	require.NoError(t, err)
	_, err = c.Forward(atom.Handle(999), atom.InheritanceLink, collect(&got))
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.chases))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unresolvedTot))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.earlyExits))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.matches))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.linksExamined))
}

// countingSpace records how much of the store a chase touched.
type countingSpace struct {
	atom.Space
	incomingSeen  int
	outgoingWalks int
}

func (s *countingSpace) ForEachIncoming(a *atom.Atom, fn func(*atom.Atom) bool) (bool, error) {
	return s.Space.ForEachIncoming(a, func(link *atom.Atom) bool {
		s.incomingSeen++
		return fn(link)
	})
}

func (s *countingSpace) ForEachOutgoing(link *atom.Atom, fn func(*atom.Atom) bool) (bool, error) {
	s.outgoingWalks++
	return s.Space.ForEachOutgoing(link, fn)
}

type failingSpace struct {
	atom.Space
	resolveErr  error
	incomingErr error
	outgoingErr error
}

func (s *failingSpace) Resolve(h atom.Handle) (*atom.Atom, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.Space.Resolve(h)
}

func (s *failingSpace) ForEachIncoming(a *atom.Atom, fn func(*atom.Atom) bool) (bool, error) {
	if s.incomingErr != nil {
		return false, s.incomingErr
	}
	return s.Space.ForEachIncoming(a, fn)
}

func (s *failingSpace) ForEachOutgoing(link *atom.Atom, fn func(*atom.Atom) bool) (bool, error) {
	if s.outgoingErr != nil {
		return false, s.outgoingErr
	}
	return s.Space.ForEachOutgoing(link, fn)
}
