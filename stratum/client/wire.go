package client

import (
	"encoding/json"
	"time"

	"github.com/nimbus-mining/poolclient/internal/lib"
	"github.com/nimbus-mining/poolclient/stratum"
)

// writeRequest serializes and writes a single outgoing request line. Every
// write is issued from the strand, so lines never interleave; writeMu only
// guards the read of c.conn, not the write itself. useJSONRPC controls whether the
// top-level "jsonrpc":"2.0" member is set: NRGPROXY and ENERGISTRATUM pools
// reject or ignore it on the handshake requests, so callers that branch on
// dialect pass false for those.
func (c *Client) writeRequest(id uint64, method string, params []any, worker string, useJSONRPC bool) error {
	req := &stratum.Request{
		ID:     id,
		Method: method,
		Params: params,
		Worker: worker,
	}
	if useJSONRPC {
		req.JSONRPC = "2.0"
	}
	return c.writeLine(req)
}

// writeResponse answers a pool-initiated request (client.get_version, or an
// error for an unrecognized method) with the matching id.
func (c *Client) writeResponse(id uint64, result any, errMsg string) error {
	resp := struct {
		ID     uint64 `json:"id"`
		Result any    `json:"result,omitempty"`
		Error  any    `json:"error,omitempty"`
	}{ID: id}
	if errMsg != "" {
		resp.Error = errMsg
	} else {
		resp.Result = result
	}
	return c.writeLine(resp)
}

func (c *Client) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return lib.WrapError(ErrWrite, err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	conn := c.conn
	c.writeMu.Unlock()
	if conn == nil {
		return lib.WrapError(ErrWrite, ErrNotConnected)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(socketTimeout))
	if _, err := conn.Write(data); err != nil {
		return lib.WrapError(ErrWrite, err)
	}
	return nil
}
