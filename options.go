package schememaster

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/openfolio/schememaster/pkg/store"
)

// Option is a function that configures a SchemeMaster instance.
type Option func(*config) error

// WithStore configures an existing store to run over.
func WithStore(s store.Store) Option {
	return func(c *config) error {
		c.store = s
		return nil
	}
}

// WithStorePath configures a file-backed store rooted at path.
func WithStorePath(path string) Option {
	return func(c *config) error {
		c.storePath = path
		return nil
	}
}

// WithMatchBounds configures the name-similarity threshold and the
// auto-accept bound used by the matching pass.
func WithMatchBounds(threshold, autoAccept float64) Option {
	return func(c *config) error {
		c.threshold = threshold
		c.autoAccept = autoAccept
		return nil
	}
}

// WithAutoReconcile configures periodic re-reconciliation of the stored
// records. Zero disables it.
func WithAutoReconcile(interval time.Duration) Option {
	return func(c *config) error {
		c.reconcileInterval = interval
		return nil
	}
}

// WithLogger configures the logger used by all passes.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
