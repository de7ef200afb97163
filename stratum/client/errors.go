package client

import "errors"

var (
	ErrResolve          = errors.New("client: dns resolution failed")
	ErrDial             = errors.New("client: tcp connect failed")
	ErrTLSHandshake     = errors.New("client: tls handshake failed")
	ErrTLSUntrusted     = errors.New("client: tls verification failed")
	ErrWrite            = errors.New("client: write failed")
	ErrRead             = errors.New("client: read failed")
	ErrMalformedLine    = errors.New("client: malformed json line")
	ErrProtocolRejected = errors.New("client: pool rejected handshake")
	ErrAlreadyConnecting = errors.New("client: connect already in flight")
	ErrNotConnected      = errors.New("client: not connected")
)
