package db

type dbOptions struct {
	isTesting  bool
	isReadOnly bool
	inMemory   bool
	path       string
}

func (o *dbOptions) dsn() string {
	if o.isTesting || o.inMemory {
		// A shared in-memory database survives database/sql's connection
		// recycling within one process.
		return "file::memory:?cache=shared"
	}
	if o.isReadOnly {
		return "file:" + o.path + "?mode=ro"
	}
	return o.path
}

func (o *dbOptions) GetIsReadOnly() bool {
	return o.isReadOnly
}

func (o *dbOptions) GetIsTesting() bool {
	return o.isTesting
}

func (o *dbOptions) GetInMemory() bool {
	return o.inMemory
}

type Option func(*dbOptions)

func WithTesting(state bool) Option {
	return func(opts *dbOptions) {
		opts.isTesting = state
	}
}

func WithReadOnly(state bool) Option {
	return func(opts *dbOptions) {
		opts.isReadOnly = state
	}
}

func WithInMemory(state bool) Option {
	return func(opts *dbOptions) {
		opts.inMemory = state
	}
}

func WithPath(path string) Option {
	return func(opts *dbOptions) {
		if path != "" {
			opts.path = path
		}
	}
}
