package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Error kinds the storage core distinguishes (spec.md §7). Every engine-level
// failure carries one of these, so callers can branch on Code() instead of
// parsing messages, and the wire protocol can stringify a code-bearing error
// without losing its category for client-side logging.
const (
	// ErrorCodeIO represents any filesystem or socket I/O failure: a failed
	// read, write, seek, open, or delete against a generation file, or a
	// network connection.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeKeyNotFound indicates a remove of a key absent from the index.
	// It is a normal, client-visible outcome, not a server-side fault.
	ErrorCodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"

	// ErrorCodeUnexpectedCommandType indicates an index entry pointed at a
	// record that decodes to something other than a Set, or whose command
	// union was empty.
	ErrorCodeUnexpectedCommandType ErrorCode = "UNEXPECTED_COMMAND_TYPE"

	// ErrorCodeCorruptedData indicates a checksum mismatch on decode, or a
	// log record cut short by the end of its generation file. Fatal
	// for the read that triggered it, and fatal for startup during recovery.
	ErrorCodeCorruptedData ErrorCode = "CORRUPTED_DATA"

	// ErrorCodeDeserialize indicates record or message bytes failed
	// structural decoding before a checksum could even be computed.
	ErrorCodeDeserialize ErrorCode = "DESERIALIZE_ERROR"

	// ErrorCodeString represents an opaque, already-stringified error that
	// crossed the wire protocol boundary and lost its original structure.
	ErrorCodeString ErrorCode = "STRING_ERROR"

	// ErrorCodeInvalidInput represents client-side configuration or argument
	// errors caught before any I/O is attempted.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal covers failures that don't fit any of the above,
	// such as programming invariants being violated.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)
