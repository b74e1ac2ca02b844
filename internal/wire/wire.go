// Package wire implements the TCP wire protocol between strata's client
// and server (spec.md §4.5–§4.6): Get/Set/Remove requests and their
// matching responses, each framed as a 4-byte big-endian length prefix
// followed by a compact binary payload.
//
// The wire codec is deliberately distinct from pkg/codec, the on-disk log
// record codec: both are binary, but the log codec carries integrity
// metadata (checksum, sequence number) that a network message has no use
// for. The endianness difference between the two — big-endian here,
// little-endian for log framing — is intentional legacy called out in
// spec.md §6 and must not be "fixed" into consistency.
package wire

import (
	"encoding/binary"

	kerrors "github.com/stratadb/strata/pkg/errors"
)

// RequestKind identifies which of the three engine operations a Request
// carries.
type RequestKind uint8

const (
	RequestGet    RequestKind = 1
	RequestSet    RequestKind = 2
	RequestRemove RequestKind = 3
)

// Request is one client call, framed and sent as a single wire message.
type Request struct {
	Kind  RequestKind
	Key   []byte
	Value []byte // only set for RequestSet
}

// ResponseStatus distinguishes a successful response from a stringified
// engine error (spec.md §4.5: "the protocol does not transport a
// structured error taxonomy").
type ResponseStatus uint8

const (
	StatusOk  ResponseStatus = 1
	StatusErr ResponseStatus = 2
)

// Response is the server's reply to one Request. Value and HasValue are
// only meaningful for a successful GetResponse: HasValue false means the
// key was not found, distinguishing Ok(None) from Ok(Some("")).
type Response struct {
	Status   ResponseStatus
	HasValue bool
	Value    []byte
	Err      string
}

// EncodeRequest serializes req into its wire payload (framing excluded).
func EncodeRequest(req *Request) []byte {
	buf := make([]byte, 0, 16+len(req.Key)+len(req.Value))
	buf = append(buf, byte(req.Kind))
	buf = appendBytes(buf, req.Key)
	if req.Kind == RequestSet {
		buf = appendBytes(buf, req.Value)
	}
	return buf
}

// DecodeRequest reverses EncodeRequest.
func DecodeRequest(b []byte) (*Request, error) {
	if len(b) < 1 {
		return nil, kerrors.NewDeserializeError(nil, "wire: empty request")
	}
	kind := RequestKind(b[0])
	b = b[1:]

	key, b, err := readBytes(b)
	if err != nil {
		return nil, err
	}

	req := &Request{Kind: kind, Key: key}
	switch kind {
	case RequestGet, RequestRemove:
		if len(b) != 0 {
			return nil, kerrors.NewDeserializeError(nil, "wire: trailing bytes in request")
		}
	case RequestSet:
		value, rest, err := readBytes(b)
		if err != nil {
			return nil, err
		}
		if len(rest) != 0 {
			return nil, kerrors.NewDeserializeError(nil, "wire: trailing bytes in request")
		}
		req.Value = value
	default:
		return nil, kerrors.NewDeserializeError(nil, "wire: unknown request kind")
	}

	return req, nil
}

// EncodeResponse serializes resp into its wire payload (framing
// excluded).
func EncodeResponse(resp *Response) []byte {
	if resp.Status == StatusErr {
		buf := make([]byte, 0, 8+len(resp.Err))
		buf = append(buf, byte(StatusErr))
		return appendBytes(buf, []byte(resp.Err))
	}

	buf := make([]byte, 0, 8+len(resp.Value))
	buf = append(buf, byte(StatusOk))
	if resp.HasValue {
		buf = append(buf, 1)
		buf = appendBytes(buf, resp.Value)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// DecodeResponse reverses EncodeResponse.
func DecodeResponse(b []byte) (*Response, error) {
	if len(b) < 1 {
		return nil, kerrors.NewDeserializeError(nil, "wire: empty response")
	}
	status := ResponseStatus(b[0])
	b = b[1:]

	switch status {
	case StatusErr:
		msg, rest, err := readBytes(b)
		if err != nil {
			return nil, err
		}
		if len(rest) != 0 {
			return nil, kerrors.NewDeserializeError(nil, "wire: trailing bytes in response")
		}
		return &Response{Status: StatusErr, Err: string(msg)}, nil
	case StatusOk:
		if len(b) < 1 {
			return nil, kerrors.NewDeserializeError(nil, "wire: truncated response")
		}
		hasValue := b[0] == 1
		b = b[1:]
		resp := &Response{Status: StatusOk, HasValue: hasValue}
		if hasValue {
			value, rest, err := readBytes(b)
			if err != nil {
				return nil, err
			}
			if len(rest) != 0 {
				return nil, kerrors.NewDeserializeError(nil, "wire: trailing bytes in response")
			}
			resp.Value = value
		} else if len(b) != 0 {
			return nil, kerrors.NewDeserializeError(nil, "wire: trailing bytes in response")
		}
		return resp, nil
	default:
		return nil, kerrors.NewDeserializeError(nil, "wire: unknown response status")
	}
}

// appendBytes appends a 4-byte big-endian length prefix followed by p.
func appendBytes(buf []byte, p []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(p)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, p...)
	return buf
}

// readBytes reads a 4-byte big-endian length prefix followed by that many
// bytes off the front of b, returning the field and the remaining bytes.
func readBytes(b []byte) (field []byte, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, kerrors.NewDeserializeError(nil, "wire: truncated length prefix")
	}
	n := binary.BigEndian.Uint32(b[:4])
	b = b[4:]
	if uint64(len(b)) < uint64(n) {
		return nil, nil, kerrors.NewDeserializeError(nil, "wire: field length overruns message")
	}
	return b[:n], b[n:], nil
}
