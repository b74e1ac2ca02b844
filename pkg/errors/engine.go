package errors

import stdErrors "errors"

// Sentinel errors checkable with errors.Is, for call sites that only care
// about identity rather than the full EngineError context.
var (
	// ErrKeyNotFound is the sentinel behind EngineError values carrying
	// ErrorCodeKeyNotFound.
	ErrKeyNotFound = stdErrors.New("key not found")

	// ErrCorruptedData is the sentinel behind EngineError values carrying
	// ErrorCodeCorruptedData.
	ErrCorruptedData = stdErrors.New("corrupted data")

	// ErrUnexpectedCommandType is the sentinel behind EngineError values
	// carrying ErrorCodeUnexpectedCommandType.
	ErrUnexpectedCommandType = stdErrors.New("unexpected command type")
)

// EngineError is a specialized error type for storage-engine operations. It
// embeds baseError to inherit message/code/detail handling, then adds the
// fields that matter for pinpointing where in the generation log set a
// failure occurred.
type EngineError struct {
	*baseError
	key        string
	generation uint64
	offset     int64
	path       string
}

// newEngineError creates a new engine-specific error wrapping cause (which
// may be nil) under code, with the given sentinel joined in so errors.Is
// keeps working after the wrap.
func newEngineError(sentinel error, cause error, code ErrorCode, msg string) *EngineError {
	var joined error
	switch {
	case sentinel != nil && cause != nil:
		joined = stdErrors.Join(sentinel, cause)
	case sentinel != nil:
		joined = sentinel
	default:
		joined = cause
	}
	return &EngineError{baseError: NewBaseError(joined, code, msg)}
}

// NewIOError builds an EngineError for a filesystem or socket failure.
func NewIOError(cause error, msg string) *EngineError {
	return newEngineError(nil, cause, ErrorCodeIO, msg)
}

// NewKeyNotFoundError builds an EngineError for a remove of an absent key.
func NewKeyNotFoundError(key string) *EngineError {
	return newEngineError(ErrKeyNotFound, nil, ErrorCodeKeyNotFound, "key not found").WithKey(key)
}

// NewCorruptedDataError builds an EngineError for a checksum mismatch or a
// truncated log record.
func NewCorruptedDataError(cause error, msg string) *EngineError {
	return newEngineError(ErrCorruptedData, cause, ErrorCodeCorruptedData, msg)
}

// NewUnexpectedCommandTypeError builds an EngineError for an index entry
// that decodes to a non-Set record, or an empty command union.
func NewUnexpectedCommandTypeError(key string) *EngineError {
	return newEngineError(ErrUnexpectedCommandType, nil, ErrorCodeUnexpectedCommandType,
		"index entry did not decode to a Set record").WithKey(key)
}

// NewDeserializeError builds an EngineError for bytes that fail structural
// decoding, independent of checksum verification.
func NewDeserializeError(cause error, msg string) *EngineError {
	return newEngineError(nil, cause, ErrorCodeDeserialize, msg)
}

// NewStringError builds an EngineError from an opaque string that crossed
// the wire protocol boundary. It never carries a Go cause — only the message
// the remote side reported.
func NewStringError(msg string) *EngineError {
	return newEngineError(nil, nil, ErrorCodeString, msg)
}

// WithKey records which key was being processed when the error occurred.
func (ee *EngineError) WithKey(key string) *EngineError {
	ee.key = key
	return ee
}

// WithGeneration records which generation file was involved.
func (ee *EngineError) WithGeneration(generation uint64) *EngineError {
	ee.generation = generation
	return ee
}

// WithOffset records the byte offset within the generation file.
func (ee *EngineError) WithOffset(offset int64) *EngineError {
	ee.offset = offset
	return ee
}

// WithPath records the filesystem path involved.
func (ee *EngineError) WithPath(path string) *EngineError {
	ee.path = path
	return ee
}

// WithDetail adds contextual information while preserving the EngineError type.
func (ee *EngineError) WithDetail(key string, value any) *EngineError {
	ee.baseError.WithDetail(key, value)
	return ee
}

func (ee *EngineError) Key() string          { return ee.key }
func (ee *EngineError) Generation() uint64   { return ee.generation }
func (ee *EngineError) Offset() int64        { return ee.offset }
func (ee *EngineError) Path() string         { return ee.path }
