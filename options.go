package gpat

import "log/slog"

// engineOptions holds the configurable parts of an Engine.
type engineOptions struct {
	logger *slog.Logger
	branch string
	dryRun bool
}

// Option is a functional option for configuring an Engine.
type Option func(*engineOptions)

// WithLogger configures the engine with a logger scoped to one run.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *engineOptions) {
		opts.logger = logger
	}
}

// WithBranch sets the branch an import reads its chain from and moves. An
// empty name selects the branch HEAD points at, falling back to
// git.DefaultBranch.
func WithBranch(name string) Option {
	return func(opts *engineOptions) {
		opts.branch = name
	}
}

// WithDryRun makes the engine verify everything and count what it would do
// without writing patches, commits or references.
func WithDryRun(dryRun bool) Option {
	return func(opts *engineOptions) {
		opts.dryRun = dryRun
	}
}

// defaultOptions returns the default configuration options.
func defaultOptions() *engineOptions {
	return &engineOptions{}
}
