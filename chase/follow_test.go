package chase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/errors"
)

func TestFollow(t *testing.T) {
	f := newFixture(t)
	c := f.chaser(t)

	target, ok, err := c.Follow(f.a, atom.InheritanceLink, First, Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.b, target)

	target, ok, err = c.Follow(f.c, atom.InheritanceLink, First, Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, atom.UndefinedHandle, target)

	target, ok, err = c.Follow(f.c, atom.InheritanceLink, Second, First)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.a, target)
}

func TestCollect(t *testing.T) {
	f := newFixture(t)

	matches, err := f.chaser(t).Collect(f.a, atom.InheritanceLink, First, Second)
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{Target: f.b, Link: f.l1},
		{Target: f.c, Link: f.l2},
	}, matches)

	matches, err = f.chaser(t).Collect(f.b, atom.InheritanceLink, First, Second)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestAllRangeAndBreak(t *testing.T) {
	f := newFixture(t)
	c := f.chaser(t)

	var all []Match
	for m, err := range c.All(f.a, atom.InheritanceLink, First, Second) {
		require.NoError(t, err)
		all = append(all, m)
	}
	assert.Len(t, all, 2)

	var first []Match
	for m, err := range c.All(f.a, atom.InheritanceLink, First, Second) {
		require.NoError(t, err)
		first = append(first, m)
		break
	}
	assert.Equal(t, []Match{{Target: f.b, Link: f.l1}}, first)
}

func TestAllYieldsStoreError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("cursor closed")
	c := New(&failingSpace{Space: f.table, incomingErr: boom})

	var errs []error
	for _, err := range c.All(f.a, atom.InheritanceLink, First, Second) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)

	_, err := c.Collect(f.a, atom.InheritanceLink, First, Second)
	assert.ErrorIs(t, err, boom)

	_, ok, err := c.Follow(f.a, atom.InheritanceLink, First, Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}
