// SPDX-License-Identifier: MPL-2.0

package cueutil

const (
	// DefaultMaxFileSize is the largest input accepted by ParseAndDecode (5 MiB).
	DefaultMaxFileSize int64 = 5 << 20

	// FormatCUE compiles the input as CUE source.
	FormatCUE Format = "cue"
	// FormatJSON extracts the input as strict JSON; CUE-only syntax
	// (comments, unquoted keys, trailing commas) is rejected.
	FormatJSON Format = "json"
)

type (
	// Format is the syntax of the user data passed to ParseAndDecode.
	Format string

	// Option configures ParseAndDecode.
	Option func(*options)

	options struct {
		filename    string
		maxFileSize int64
		format      Format
	}
)

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		format:      FormatCUE,
	}
}

// WithFilename sets the file name used in error messages and CUE positions.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *options) { o.maxFileSize = size }
}

// WithFormat selects the input syntax. Defaults to FormatCUE.
func WithFormat(format Format) Option {
	return func(o *options) { o.format = format }
}
