// Package codec implements the self-describing command record that every
// generation log entry is made of (spec.md §4.1): a Set or Remove, tagged
// with a schema version, a monotonic sequence number, a wall-clock
// timestamp, and a CRC32 integrity checksum over the key/value payload.
//
// Encoding is field-tagged and length-delimited rather than a fixed struct
// layout, so a future reader can skip tags it doesn't recognize instead of
// refusing the record outright. The 4-byte length prefix that frames a
// record on disk is the caller's concern (internal/genlog), not this
// package's — Encode returns only the payload bytes.
package codec

import (
	"encoding/binary"
	"hash/crc32"

	kerrors "github.com/stratadb/strata/pkg/errors"
)

// CommandKind distinguishes a Set from a Remove record.
type CommandKind uint8

const (
	// CommandSet stores a key/value pair.
	CommandSet CommandKind = 1
	// CommandRemove tombstones a key.
	CommandRemove CommandKind = 2
)

// Version is the only schema version this codec currently emits. Decode
// accepts any version it can still parse and does not reject a record by
// its version; no reader in this module checks the field either.
const Version uint32 = 1

// Field tags. Each field is written as a one-byte tag followed by a
// uvarint length and that many payload bytes, so an unrecognized tag can be
// skipped by reading its length and advancing past it.
const (
	tagVersion   = 1
	tagSequence  = 2
	tagTimestamp = 3
	tagChecksum  = 4
	tagKind      = 5
	tagKey       = 6
	tagValue     = 7
)

// Record is one Set or Remove entry in a generation log.
type Record struct {
	Version   uint32
	Sequence  uint64
	Timestamp uint64
	Checksum  uint32
	Kind      CommandKind
	Key       []byte
	Value     []byte
}

// NewSetRecord builds a Set record for key/value at the given sequence and
// timestamp, with the checksum already computed.
func NewSetRecord(sequence uint64, timestamp uint64, key, value []byte) *Record {
	r := &Record{
		Version:   Version,
		Sequence:  sequence,
		Timestamp: timestamp,
		Kind:      CommandSet,
		Key:       key,
		Value:     value,
	}
	r.Checksum = Checksum(key, value)
	return r
}

// NewRemoveRecord builds a Remove record for key at the given sequence and
// timestamp. Remove records carry no value, so the checksum is taken over
// the key alone.
func NewRemoveRecord(sequence uint64, timestamp uint64, key []byte) *Record {
	r := &Record{
		Version:   Version,
		Sequence:  sequence,
		Timestamp: timestamp,
		Kind:      CommandRemove,
		Key:       key,
	}
	r.Checksum = Checksum(key, nil)
	return r
}

// Checksum computes the CRC32 of key++value, in that fixed order, per the
// integrity invariant in spec.md §3. value may be nil (Remove records).
func Checksum(key, value []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write(key)
	if len(value) > 0 {
		h.Write(value)
	}
	return h.Sum32()
}

// Verify reports whether r's checksum field matches a fresh CRC32 of its
// key/value payload.
func Verify(r *Record) bool {
	return r.Checksum == Checksum(r.Key, r.Value)
}

// Encode serializes r into its field-tagged payload bytes. It does not
// include the on-disk length prefix.
func Encode(r *Record) []byte {
	buf := make([]byte, 0, 32+len(r.Key)+len(r.Value))

	buf = appendUint32Field(buf, tagVersion, r.Version)
	buf = appendUint64Field(buf, tagSequence, r.Sequence)
	buf = appendUint64Field(buf, tagTimestamp, r.Timestamp)
	buf = appendUint32Field(buf, tagChecksum, r.Checksum)
	buf = appendBytesField(buf, tagKind, []byte{byte(r.Kind)})
	buf = appendBytesField(buf, tagKey, r.Key)
	if r.Kind == CommandSet {
		buf = appendBytesField(buf, tagValue, r.Value)
	}

	return buf
}

// Decode reverses Encode. It tolerates and skips tags it doesn't recognize,
// so a future writer can add fields without breaking this reader. It does
// not call Verify; callers check integrity explicitly so that a corrupted
// record can be reported with the caller's own context (generation, offset).
func Decode(b []byte) (*Record, error) {
	r := &Record{}
	haveVersion, haveSequence, haveTimestamp, haveChecksum, haveKind, haveKey := false, false, false, false, false, false

	for len(b) > 0 {
		if len(b) < 1 {
			return nil, kerrors.NewDeserializeError(nil, "codec: truncated tag")
		}
		tag := b[0]
		b = b[1:]

		length, n := binary.Uvarint(b)
		if n <= 0 {
			return nil, kerrors.NewDeserializeError(nil, "codec: malformed field length")
		}
		b = b[n:]

		if uint64(len(b)) < length {
			return nil, kerrors.NewDeserializeError(nil, "codec: field length overruns record")
		}
		field := b[:length]
		b = b[length:]

		switch tag {
		case tagVersion:
			v, err := readUint32(field)
			if err != nil {
				return nil, err
			}
			r.Version = v
			haveVersion = true
		case tagSequence:
			v, err := readUint64(field)
			if err != nil {
				return nil, err
			}
			r.Sequence = v
			haveSequence = true
		case tagTimestamp:
			v, err := readUint64(field)
			if err != nil {
				return nil, err
			}
			r.Timestamp = v
			haveTimestamp = true
		case tagChecksum:
			v, err := readUint32(field)
			if err != nil {
				return nil, err
			}
			r.Checksum = v
			haveChecksum = true
		case tagKind:
			if len(field) != 1 {
				return nil, kerrors.NewDeserializeError(nil, "codec: malformed kind field")
			}
			r.Kind = CommandKind(field[0])
			haveKind = true
		case tagKey:
			r.Key = append([]byte(nil), field...)
			haveKey = true
		case tagValue:
			r.Value = append([]byte{}, field...)
		default:
			// Unknown field from a newer writer: skip, per spec.md §4.1.
		}
	}

	if !haveVersion || !haveSequence || !haveTimestamp || !haveChecksum || !haveKind || !haveKey {
		return nil, kerrors.NewDeserializeError(nil, "codec: record missing required field")
	}
	if r.Kind != CommandSet && r.Kind != CommandRemove {
		return nil, kerrors.NewDeserializeError(nil, "codec: unknown command kind")
	}

	return r, nil
}

func appendUint32Field(buf []byte, tag byte, v uint32) []byte {
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], v)
	return appendBytesField(buf, tag, scratch[:])
}

func appendUint64Field(buf []byte, tag byte, v uint64) []byte {
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], v)
	return appendBytesField(buf, tag, scratch[:])
}

func appendBytesField(buf []byte, tag byte, payload []byte) []byte {
	buf = append(buf, tag)
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(payload)))
	buf = append(buf, lenBuf[:n]...)
	buf = append(buf, payload...)
	return buf
}

func readUint32(field []byte) (uint32, error) {
	if len(field) != 4 {
		return 0, kerrors.NewDeserializeError(nil, "codec: malformed uint32 field")
	}
	return binary.BigEndian.Uint32(field), nil
}

func readUint64(field []byte) (uint64, error) {
	if len(field) != 8 {
		return 0, kerrors.NewDeserializeError(nil, "codec: malformed uint64 field")
	}
	return binary.BigEndian.Uint64(field), nil
}
