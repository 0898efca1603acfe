package chase

import (
	"time"

	"go.uber.org/zap"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
)

// Visitor receives the atom found at the target position. Return true to
// stop the chase.
type Visitor func(target atom.Handle) bool

// LinkVisitor also receives the handle of the matching link.
type LinkVisitor func(target, link atom.Handle) bool

// Chaser runs chases over a Space.
type Chaser struct {
	space     atom.Space
	logger    *zap.SugaredLogger
	metrics   *Metrics
	verbosity int
}

// Option configures a Chaser.
type Option func(*Chaser)

// WithLogger sets the logger used for per-chase debug summaries.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Chaser) {
		c.logger = logger.OrNop(l)
	}
}

// WithMetrics records chase counters into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Chaser) {
		c.metrics = m
	}
}

// WithVerbosity enables per-link decision logging at logger.VerbosityTrace.
func WithVerbosity(v int) Option {
	return func(c *Chaser) {
		c.verbosity = v
	}
}

// New creates a Chaser over space.
func New(space atom.Space, opts ...Option) *Chaser {
	c := &Chaser{
		space:  space,
		logger: logger.OrNop(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chase visits the atom at position to of every link of type linkType whose
// position from holds start. It reports whether a visitor stopped the
// search. Errors only come from the underlying store.
func (c *Chaser) Chase(start atom.Handle, linkType atom.Type, from, to int, visit Visitor) (bool, error) {
	return c.chase(start, linkType, from, to, func(target, _ atom.Handle) bool {
		return visit(target)
	})
}

// ChaseLinkAware is Chase with a visitor that also receives the link handle.
func (c *Chaser) ChaseLinkAware(start atom.Handle, linkType atom.Type, from, to int, visit LinkVisitor) (bool, error) {
	return c.chase(start, linkType, from, to, visit)
}

func (c *Chaser) chase(start atom.Handle, linkType atom.Type, from, to int, visit LinkVisitor) (bool, error) {
	began := time.Now()
	c.metrics.started()

	origin, err := c.space.Resolve(start)
	if err != nil {
		if errors.IsNotFoundError(err) {
			c.metrics.unresolved()
			c.logger.Debugw("Chase start does not resolve",
				logger.FieldHandle, start,
				logger.FieldLinkType, linkType,
			)
			return false, nil
		}
		return false, err
	}

	var (
		examined int
		matched  int
		walkErr  error
	)

	stopped, err := c.space.ForEachIncoming(origin, func(link *atom.Atom) bool {
		if link.Type != linkType {
			return false
		}
		examined++

		target, ok, err := c.pursue(origin, link, from, to)
		if err != nil {
			walkErr = err
			return true
		}
		if logger.ShouldLogTrace(c.verbosity) {
			c.logger.Debugw("Link examined",
				logger.FieldLink, link.Handle,
				logger.FieldMatched, ok,
			)
		}
		if !ok {
			return false
		}

		matched++
		return visit(target, link.Handle)
	})
	if err == nil {
		err = walkErr
	}
	if err != nil {
		return false, err
	}

	c.metrics.finished(examined, matched, stopped)
	c.logger.Debugw("Chase finished",
		logger.FieldHandle, start,
		logger.FieldLinkType, linkType,
		logger.FieldFromPos, from,
		logger.FieldToPos, to,
		logger.FieldExamined, examined,
		logger.FieldMatched, matched,
		logger.FieldStopped, stopped,
		logger.FieldDurationMS, time.Since(began).Milliseconds(),
	)

	return stopped, nil
}

// pursue walks link's outgoing set, checking that origin occupies from and
// capturing the member at to. ok is false unless both happened.
func (c *Chaser) pursue(origin, link *atom.Atom, from, to int) (target atom.Handle, ok bool, err error) {
	var (
		pos      = -1
		sourceOK bool
		captured bool
		last     = max(from, to)
	)

	_, err = c.space.ForEachOutgoing(link, func(member *atom.Atom) bool {
		pos++

		if pos == from {
			if member.Handle != origin.Handle {
				sourceOK = false
				captured = false
				return true
			}
			sourceOK = true
		}
		if pos == to {
			target = member.Handle
			captured = true
		}

		return pos >= last
	})
	if err != nil {
		return atom.UndefinedHandle, false, err
	}

	if !sourceOK || !captured {
		return atom.UndefinedHandle, false, nil
	}
	return target, true, nil
}
