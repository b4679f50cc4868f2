package v1

import "github.com/rs/zerolog"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	root       string
	configPath string
	source     string
	dest       string
	backend    string
	noPush     bool
	logger     *zerolog.Logger
}

// WithRoot sets the repository root, or any directory inside it. Defaults to
// the current working directory.
func WithRoot(dir string) Option {
	return func(c *clientConfig) {
		c.root = dir
	}
}

// WithConfigFile reads configuration from path instead of <root>/.jsync.yaml.
func WithConfigFile(path string) Option {
	return func(c *clientConfig) {
		c.configPath = path
	}
}

// WithSource overrides the vault journal directory.
func WithSource(dir string) Option {
	return func(c *clientConfig) {
		c.source = dir
	}
}

// WithDest overrides the site content directory.
func WithDest(dir string) Option {
	return func(c *clientConfig) {
		c.dest = dir
	}
}

// WithBackend selects "gogit" or "git".
func WithBackend(name string) Option {
	return func(c *clientConfig) {
		c.backend = name
	}
}

// WithoutPush commits without pushing.
func WithoutPush() Option {
	return func(c *clientConfig) {
		c.noPush = true
	}
}

// WithLogger replaces the default silent logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = &l
	}
}
