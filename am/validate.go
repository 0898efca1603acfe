package am

import (
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
)

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Log.Level != "" {
		if _, err := logger.ParseLevel(c.Log.Level); err != nil {
			return errors.WithHint(
				errors.Wrapf(err, "log.level %q", c.Log.Level),
				"use one of debug, info, warn, error")
		}
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr cannot be empty when metrics are enabled")
	}

	// 0 = default, negative = invalid
	if c.Graph.MaxDepth < 0 {
		return errors.Newf("graph.max_depth must be >= 0, got %d", c.Graph.MaxDepth)
	}
	if c.Graph.MaxNodes < 0 {
		return errors.Newf("graph.max_nodes must be >= 0, got %d", c.Graph.MaxNodes)
	}

	return nil
}
