package client

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/nimbus-mining/poolclient/internal/lib"
	"github.com/nimbus-mining/poolclient/stratum"
)

const (
	socketTimeout = 10 * time.Second
)

// resolve turns an endpoint's host into a FIFO queue of dial targets. DNS
// round-robin entries are tried in the order the resolver returns them.
func resolve(ctx context.Context, ep *stratum.Endpoint) ([]string, error) {
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, ep.Host)
	if err != nil {
		return nil, lib.WrapError(ErrResolve, err)
	}
	port := strconv.FormatUint(uint64(ep.Port), 10)
	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, net.JoinHostPort(ip.String(), port))
	}
	return addrs, nil
}

// dialQueue attempts each address in turn until one succeeds or the queue
// is exhausted. Each failed attempt pops its address and moves on to the
// next; a TLS failure on an otherwise successful TCP connect is fatal for
// the whole attempt rather than falling through to the next address.
func dialQueue(ctx context.Context, addrs []string, ep *stratum.Endpoint, log lib.ILogger) (net.Conn, error) {
	var lastErr error
	for len(addrs) > 0 {
		addr := addrs[0]
		addrs = addrs[1:]

		dialCtx, cancel := context.WithTimeout(ctx, socketTimeout)
		conn, err := (&net.Dialer{}).DialContext(dialCtx, "tcp", addr)
		cancel()
		if err != nil {
			log.Debugf("dial %s failed: %s", addr, err)
			lastErr = err
			continue
		}

		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetKeepAlive(true)
			_ = tcp.SetNoDelay(true)
		}
		_ = conn.SetDeadline(time.Now().Add(socketTimeout))

		if ep.SecLevel == stratum.SecNone {
			return conn, nil
		}

		tlsConn, err := handshakeTLS(conn, ep)
		if err != nil {
			conn.Close()
			return nil, err // TLS failure is fatal for this endpoint, not retried
		}
		return tlsConn, nil
	}
	if lastErr == nil {
		lastErr = ErrDial
	}
	return nil, lib.WrapError(ErrDial, lastErr)
}

func handshakeTLS(conn net.Conn, ep *stratum.Endpoint) (net.Conn, error) {
	pool, err := systemCertPool()
	if err != nil {
		return nil, lib.WrapError(ErrTLSHandshake, err)
	}

	cfg := &tls.Config{
		ServerName: ep.Host,
		RootCAs:    pool,
		MinVersion: tls.VersionTLS10,
	}
	if ep.SecLevel == stratum.SecTLS12 {
		cfg.MinVersion = tls.VersionTLS12
	}

	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(context.Background()); err != nil {
		return nil, lib.WrapError(ErrTLSUntrusted, err)
	}
	return tlsConn, nil
}
