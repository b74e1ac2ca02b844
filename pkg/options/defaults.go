package options

const (
	// DefaultDataDir is used when no data directory is specified.
	DefaultDataDir = "."

	// DefaultBufferSize is the default reader/writer buffer size (spec.md §6).
	DefaultBufferSize = 8 * 1024

	// DefaultCompactionThreshold is the default stale-byte threshold that
	// triggers compaction (spec.md §6).
	DefaultCompactionThreshold int64 = 1 * 1024 * 1024
)

var defaultOptions = Options{
	DataDir:             DefaultDataDir,
	ReaderBufferSize:    DefaultBufferSize,
	WriterBufferSize:    DefaultBufferSize,
	CompactionThreshold: DefaultCompactionThreshold,
}

// NewDefaultOptions returns a copy of the default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
