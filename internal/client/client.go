// Package client implements the TCP client half of strata's wire protocol
// (spec.md §4.6): connect once, then send framed Get/Set/Remove requests
// and read back their framed responses, lifting a stringified server-side
// error into a local *errors.EngineError.
package client

import (
	"net"

	"github.com/stratadb/strata/internal/wire"
	kerrors "github.com/stratadb/strata/pkg/errors"
)

// Client is a connection to one strata server.
type Client struct {
	conn net.Conn
}

// Dial connects to addr and returns a ready-to-use Client.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, kerrors.NewIOError(err, "client: dial").WithPath(addr)
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Get retrieves the value stored under key. found is false if the server
// reports the key as absent.
func (c *Client) Get(key []byte) (value []byte, found bool, err error) {
	resp, err := c.roundTrip(&wire.Request{Kind: wire.RequestGet, Key: key})
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.HasValue, nil
}

// Set stores value under key.
func (c *Client) Set(key, value []byte) error {
	_, err := c.roundTrip(&wire.Request{Kind: wire.RequestSet, Key: key, Value: value})
	return err
}

// Remove deletes key. It returns an error if the server reports the key
// as absent.
func (c *Client) Remove(key []byte) error {
	_, err := c.roundTrip(&wire.Request{Kind: wire.RequestRemove, Key: key})
	return err
}

// roundTrip sends req and returns the decoded response, turning a
// server-reported Err arm into a local error.
func (c *Client) roundTrip(req *wire.Request) (*wire.Response, error) {
	if err := wire.WriteMessage(c.conn, wire.EncodeRequest(req)); err != nil {
		return nil, err
	}

	payload, err := wire.ReadMessage(c.conn)
	if err != nil {
		return nil, err
	}

	resp, err := wire.DecodeResponse(payload)
	if err != nil {
		return nil, err
	}
	if resp.Status == wire.StatusErr {
		return nil, kerrors.NewStringError(resp.Err)
	}
	return resp, nil
}
