package repository

import "github.com/okian/cardwatch/pkg/logger"

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	log logger.Logger
}

func newOptions(opts []Option) options {
	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
