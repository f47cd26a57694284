package mdbx

import (
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/keeldb/mdbx/internal/capi"
)

type config struct {
	api        capi.API
	flags      EnvFlags
	mode       fs.FileMode
	geometry   *capi.Geometry
	maxReaders uint64
	maxMaps    uint64
	options    map[Option]uint64
	log        zerolog.Logger
}

func defaultConfig() config {
	return config{
		mode:    0o644,
		options: make(map[Option]uint64),
		log:     zerolog.Nop(),
	}
}

// OpenOption configures an environment before it is opened.
type OpenOption func(*config)

// WithFlags sets the environment flags passed to the engine's open call.
func WithFlags(flags EnvFlags) OpenOption {
	return func(c *config) { c.flags = flags }
}

// WithMode sets the file mode for datafiles the engine creates.
func WithMode(mode fs.FileMode) OpenOption {
	return func(c *config) { c.mode = mode }
}

// WithGeometry bounds the datafile size before the environment opens.
func WithGeometry(g Geometry) OpenOption {
	return func(c *config) {
		ig := g.internal()
		c.geometry = &ig
	}
}

// WithMaxReaders sets the reader slot limit.
func WithMaxReaders(n uint64) OpenOption {
	return func(c *config) { c.maxReaders = n }
}

// WithMaxMaps sets how many named maps may be opened.
func WithMaxMaps(n uint64) OpenOption {
	return func(c *config) { c.maxMaps = n }
}

// WithOption sets a runtime engine option before the environment opens.
func WithOption(opt Option, value uint64) OpenOption {
	return func(c *config) { c.options[opt] = value }
}

// WithLogger routes the environment's structured log output to l. The
// default logger discards everything.
func WithLogger(l zerolog.Logger) OpenOption {
	return func(c *config) { c.log = l }
}

// withEngine substitutes the engine implementation. The test suite injects
// an in-process engine here; the default is the native library.
func withEngine(api capi.API) OpenOption {
	return func(c *config) { c.api = api }
}
