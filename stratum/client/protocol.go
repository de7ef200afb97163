package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/nimbus-mining/poolclient/stratum"
	"github.com/nimbus-mining/poolclient/stratum/target"
)

// exitReason tells runConnection what the unified strand loop's exit means
// for the outer autodetection/retry decision.
type exitReason int

const (
	exitClosed         exitReason = iota // was working (dialect confirmed); normal disconnect, let Manager decide reconnect
	exitAutodetectFail                   // handshake failed before confirmation; caller should decrement dialect mode and retry
	exitUnrecoverable                    // a post-confirm handshake-message replay, or an id=999 authorize failure
	exitCanceled                         // ctx was canceled (explicit Disconnect / shutdown)
)

type lineMsg struct {
	data []byte
	err  error
}

type submitReq struct {
	sol stratum.Solution
}

// runConnection drives one endpoint through dialect autodetection and, once
// confirmed, the working state for as long as the connection survives. The
// whole lifecycle runs on one goroutine, the strand, which is the only
// thing that ever touches the socket.
func (c *Client) runConnection(ctx context.Context, ep *stratum.Endpoint) {
	mode := startMode(ep)

	c.setState(stateResolving)
	addrs, err := resolve(ctx, ep)
	if err != nil {
		c.log.Warnf("resolve %s failed: %s", ep.Host, err)
		c.fireDisconnected()
		return
	}

	for {
		c.setState(stateConnecting)
		conn, err := dialQueue(ctx, addrs, ep, c.log)
		if err != nil {
			if errors.Is(err, ErrTLSUntrusted) {
				c.log.Errorf("tls verification failed for %s: %s", ep, err)
				ep.MarkUnrecoverable()
			} else {
				c.log.Warnf("connect to %s failed: %s", ep, err)
			}
			c.fireDisconnected()
			return
		}

		if ep.SecLevel != stratum.SecNone {
			c.setState(stateHandshakingTLS)
		}

		c.writeMu.Lock()
		c.conn = conn
		c.writeMu.Unlock()
		c.resetPerConnectionState()

		reason := c.runStrand(ctx, conn, ep, mode)

		c.finalizeSocket(conn)

		switch reason {
		case exitClosed, exitCanceled:
			c.fireDisconnected()
			return
		case exitUnrecoverable:
			ep.MarkUnrecoverable()
			c.fireDisconnected()
			return
		case exitAutodetectFail:
			mode--
			if mode < 0 {
				ep.MarkUnrecoverable()
				c.fireDisconnected()
				return
			}
			ep.SetDialectMode(mode, false)
			c.fireDisconnected()
			// retry: next iteration dials again, same resolved addrs
		}
	}
}

func startMode(ep *stratum.Endpoint) stratum.DialectMode {
	if ep.DeclaredDialect != stratum.DialectUnknown {
		return ep.DeclaredDialect
	}
	return stratum.DialectEnergiStratum
}

// subscribeParams builds the dialect-appropriate mining.subscribe payload.
// STRATUM sends empty params with jsonrpc:"2.0"; NRGPROXY and ENERGISTRATUM
// send the login (account+path) as the sole param, an optional top-level
// worker field, and no jsonrpc member.
func subscribeParams(ep *stratum.Endpoint, mode stratum.DialectMode) (params []any, worker string, useJSONRPC bool) {
	switch mode {
	case stratum.DialectNRGProxy, stratum.DialectEnergiStratum:
		return []any{ep.LoginUser()}, ep.Worker, false
	default:
		return []any{}, "", true
	}
}

// runStrand is the single execution strand for one live connection: it owns
// the socket, the dialect handshake, and all subsequent message processing
// until the connection ends.
func (c *Client) runStrand(ctx context.Context, conn net.Conn, ep *stratum.Endpoint, mode stratum.DialectMode) exitReason {
	lines := make(chan lineMsg, 1)
	go c.readLines(conn, lines)

	ticker := time.NewTicker(WorkloopInterval)
	defer ticker.Stop()

	confirmed := false
	c.setState(stateSubscribing)
	params, worker, useJSONRPC := subscribeParams(ep, mode)
	if err := c.writeRequest(stratum.IDSubscribe, stratum.MethodSubscribe, params, worker, useJSONRPC); err != nil {
		c.log.Warnf("subscribe write failed: %s", err)
		return exitAutodetectFail
	}
	c.pleas.Enqueue(time.Now())

	for {
		select {
		case <-ctx.Done():
			return exitCanceled

		case lm := <-lines:
			if lm.err != nil {
				c.log.Debugf("connection to %s ended: %s", ep, lm.err)
				if confirmed {
					return exitClosed
				}
				return exitAutodetectFail
			}
			outcome, becameConfirmed, terminate := c.handleLine(lm.data, ep, mode, confirmed)
			if becameConfirmed {
				confirmed = true
				ep.SetDialectMode(mode, true)
			}
			if terminate {
				return outcome
			}

		case req := <-c.submitCh:
			c.doSubmit(ep, req)

		case hr := <-c.hashrateCh:
			c.doSubmitHashrate(ep, hr)

		case <-ticker.C:
			outcome, terminate := c.handleTick(confirmed)
			if terminate {
				return outcome
			}
		}
	}
}

func (c *Client) readLines(conn net.Conn, out chan<- lineMsg) {
	r := newReader(conn)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			out <- lineMsg{data: []byte(line)}
		}
		if err != nil {
			out <- lineMsg{err: err}
			return
		}
	}
}

// handleLine parses and dispatches one decoded line. It returns the exit
// reason to use if terminate is true, whether the dialect became confirmed
// on this line, and whether the strand should stop.
func (c *Client) handleLine(raw []byte, ep *stratum.Endpoint, mode stratum.DialectMode, alreadyConfirmed bool) (reason exitReason, becameConfirmed bool, terminate bool) {
	var resp stratum.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.log.Warnf("malformed stratum line, dropping: %q (%s)", string(raw), err)
		return 0, false, false
	}

	if resp.IsNotification() {
		c.handleNotification(&resp, ep)
		return 0, false, false
	}

	if resp.ID == nil {
		c.log.Warnf("stratum reply without id, dropping: %q", string(raw))
		return 0, false, false
	}

	switch *resp.ID {
	case stratum.IDSubscribe:
		return c.handleSubscribeReply(&resp, ep, mode, alreadyConfirmed)
	case stratum.IDAuthorize:
		return c.handleAuthorizeReply(&resp, ep, mode, alreadyConfirmed)
	case stratum.IDSubmit:
		c.handleSubmitReply(&resp)
		return 0, false, false
	case stratum.IDLegacyErrObserved:
		return c.handleLegacyErrObserved(&resp)
	default:
		c.log.Debugf("unhandled reply id=%v", *resp.ID)
		return 0, false, false
	}
}

func (c *Client) handleSubscribeReply(resp *stratum.Response, ep *stratum.Endpoint, mode stratum.DialectMode, alreadyConfirmed bool) (exitReason, bool, bool) {
	c.pleas.Dequeue(time.Now())

	if alreadyConfirmed {
		// a stray/duplicate reply arriving after the dialect is already
		// confirmed means the pool is misbehaving; treat the endpoint as
		// unrecoverable rather than trying to make sense of it.
		c.log.Warnf("unexpected subscribe reply after dialect confirmed")
		return exitUnrecoverable, false, true
	}

	if resp.IsError() {
		c.log.Warnf("subscribe rejected by %s: %s", ep, resp.ErrorString())
		return exitAutodetectFail, false, true
	}

	var result []json.RawMessage
	if err := json.Unmarshal(resp.Result, &result); err == nil && len(result) > 1 {
		if xn, err := decodeJSONString(result[1]); err == nil && xn != "" {
			c.setExtraNonce1(xn)
		}
	}

	c.subscribed.Store(true)

	if mode == stratum.DialectNRGProxy {
		// NRGPROXY: the subscribe reply doubles as the auth ack.
		c.authorized.Store(true)
		c.connected.Store(true)
		c.setState(stateWorking)
		if c.obs.OnConnected != nil {
			c.obs.OnConnected()
		}
		return 0, true, false
	}

	c.setState(stateAuthorizing)
	c.authPending.Store(true)
	if err := c.writeRequest(stratum.IDAuthorize, stratum.MethodAuthorize, []any{ep.LoginUser(), ep.Password}, ep.Worker, mode == stratum.DialectStratum); err != nil {
		c.log.Warnf("authorize write failed: %s", err)
		return exitAutodetectFail, false, true
	}
	c.pleas.Enqueue(time.Now())
	return 0, false, false
}

func (c *Client) handleAuthorizeReply(resp *stratum.Response, ep *stratum.Endpoint, mode stratum.DialectMode, alreadyConfirmed bool) (exitReason, bool, bool) {
	c.pleas.Dequeue(time.Now())
	c.authPending.Store(false)

	if alreadyConfirmed {
		c.log.Warnf("unexpected authorize reply after dialect confirmed")
		return exitUnrecoverable, false, true
	}

	if resp.IsError() {
		c.log.Warnf("authorize rejected by %s: %s", ep, resp.ErrorString())
		return exitAutodetectFail, false, true
	}

	c.authorized.Store(true)
	c.connected.Store(true)
	c.setState(stateWorking)
	if c.obs.OnConnected != nil {
		c.obs.OnConnected()
	}
	return 0, true, false
}

// handleLegacyErrObserved handles the non-conformant id=999 some pools echo
// back instead of the real id when mining.subscribe or mining.authorize
// fails. Neither of our own outgoing requests ever uses this id, so it can
// only mean one of those two pleas failed; which one is told apart by
// subscribed/authorized state, not by the id itself.
func (c *Client) handleLegacyErrObserved(resp *stratum.Response) (exitReason, bool, bool) {
	c.pleas.Dequeue(time.Now())

	if !resp.IsError() {
		return 0, false, false
	}

	if !c.subscribed.Load() {
		c.log.Warnf("subscribe failed (id=999): %s", resp.ErrorString())
		return exitAutodetectFail, false, true
	}
	if !c.authorized.Load() {
		c.log.Warnf("authorize failed (id=999): %s", resp.ErrorString())
		return exitUnrecoverable, false, true
	}
	return 0, false, false
}

func (c *Client) handleSubmitReply(resp *stratum.Response) {
	rtt := c.pleas.Dequeue(time.Now())
	if resp.IsError() {
		if c.obs.OnSolutionRejected != nil {
			c.obs.OnSolutionRejected(false, rtt)
		}
		return
	}
	if c.obs.OnSolutionAccepted != nil {
		c.obs.OnSolutionAccepted(false, rtt)
	}
}

func (c *Client) handleNotification(resp *stratum.Response, ep *stratum.Endpoint) {
	switch resp.Method {
	case stratum.MethodNotify:
		c.handleNotify(resp, ep)
	case stratum.MethodSetDifficulty:
		c.handleSetDifficulty(resp)
	case stratum.MethodSetExtranonce:
		c.handleSetExtranonce(resp)
	case stratum.MethodGetVersion:
		c.handleGetVersion(resp)
	default:
		c.log.Warnf("unknown stratum method %q, replying with error", resp.Method)
		c.replyError(resp, "unknown method")
	}
}

func (c *Client) handleNotify(resp *stratum.Response, ep *stratum.Endpoint) {
	var params []json.RawMessage
	if err := json.Unmarshal(resp.Params, &params); err != nil || len(params) < 9 {
		c.log.Warnf("malformed mining.notify, dropping")
		return
	}

	w := stratum.Work{
		ExtraNonce1: c.getExtraNonce1(),
		Target:      c.getNextTarget(),
	}
	w.JobID, _ = decodeJSONString(params[0])
	w.PrevHash, _ = decodeJSONString(params[1])
	w.CoinbasePart1, _ = decodeJSONString(params[2])
	w.CoinbasePart2, _ = decodeJSONString(params[3])
	_ = json.Unmarshal(params[4], &w.MerkleBranch)
	w.Version, _ = decodeJSONString(params[5])
	w.Bits, _ = decodeJSONString(params[6])
	w.Time, _ = decodeJSONString(params[7])
	_ = json.Unmarshal(params[8], &w.CleanJob)

	c.lastNotifyAtNano.Store(time.Now().UnixNano())

	prev := c.current.Load()
	resetJob := w.CleanJob || prev == nil || !prev.Equal(w)
	if resetJob {
		if c.obs.OnResetWork != nil {
			c.obs.OnResetWork()
		}
	}
	c.current.Store(&w)
	c.recordJob(w)
	if resetJob {
		if c.obs.OnWorkReceived != nil {
			c.obs.OnWorkReceived(w)
		}
	}
}

func (c *Client) handleSetDifficulty(resp *stratum.Response) {
	var params []float64
	if err := json.Unmarshal(resp.Params, &params); err != nil || len(params) < 1 {
		c.log.Warnf("malformed mining.set_difficulty, dropping")
		return
	}
	t := target.DiffToTarget(params[0])
	c.setNextTarget(t)
	// Clear current so the subsequent notify always fires,
	c.current.Store(nil)
}

func (c *Client) handleSetExtranonce(resp *stratum.Response) {
	var params []json.RawMessage
	if err := json.Unmarshal(resp.Params, &params); err != nil || len(params) < 1 {
		c.log.Warnf("malformed mining.set_extranonce, dropping")
		return
	}
	xn, err := decodeJSONString(params[0])
	if err != nil {
		return
	}
	c.setExtraNonce1(xn)
}

func (c *Client) handleGetVersion(resp *stratum.Response) {
	if resp.ID == nil {
		return
	}
	_ = c.writeResponse(*resp.ID, c.buildVersion, "")
}

func (c *Client) replyError(resp *stratum.Response, msg string) {
	if resp.ID == nil {
		return
	}
	_ = c.writeResponse(*resp.ID, nil, msg)
}

// handleTick runs one watchdog pass: it checks the oldest outstanding plea
// against the response timeout and, once the dialect is confirmed, the time
// since the last notify against the job timeout.
func (c *Client) handleTick(confirmed bool) (exitReason, bool) {
	now := time.Now()

	if c.pleas.Count() > 0 {
		age := c.pleas.OldestAge(now)
		if age > c.responseTimeout {
			if !confirmed {
				// advance autodetection as if the pool had replied with an
				// error to our outstanding subscribe/authorize request.
				c.pleas.Dequeue(now)
				return exitAutodetectFail, true
			}
			c.log.Warnf("response timeout, disconnecting")
			return exitClosed, true
		}
	}

	if confirmed {
		last := c.lastNotifyAtNano.Load()
		if last != 0 && now.Sub(time.Unix(0, last)) > c.workTimeout {
			c.log.Warnf("job timeout, disconnecting")
			return exitClosed, true
		}
	}

	return 0, false
}

func (c *Client) doSubmit(ep *stratum.Endpoint, req *submitReq) {
	now := time.Now()
	if !c.pleas.Enqueue(now) {
		if c.obs.OnSolutionRejected != nil {
			c.obs.OnSolutionRejected(true, 0)
		}
		return
	}

	params := []any{
		ep.LoginUser(),
		req.sol.JobID,
		req.sol.ExtraNonce2,
		req.sol.Time,
		req.sol.Nonce,
		req.sol.HashMixHex(),
		req.sol.BlockTxBlob,
		req.sol.MerkleRootHex(),
	}
	if err := c.writeRequest(stratum.IDSubmit, stratum.MethodSubmit, params, ep.Worker, true); err != nil {
		c.log.Warnf("submit write failed: %s", err)
		c.pleas.Dequeue(now)
	}
}

// doSubmitHashrate sends the best-effort id=9 hashrate report. No reply is
// tracked; this is fire-and-forget telemetry, not a plea the watchdog
// should ever time out on.
func (c *Client) doSubmitHashrate(ep *stratum.Endpoint, hashrate float64) {
	if hashrate <= 0 {
		return
	}
	params := []any{ep.LoginUser(), hashrate}
	if err := c.writeRequest(stratum.IDHashrate, "mining.submithashrate", params, ep.Worker, true); err != nil {
		c.log.Debugf("hashrate submit failed: %s", err)
	}
}

func (c *Client) fireDisconnected() {
	c.setState(stateIdle)
	c.connected.Store(false)
	if c.obs.OnDisconnected != nil {
		c.obs.OnDisconnected()
	}
}

func (c *Client) finalizeSocket(conn net.Conn) {
	c.setState(stateDisconnecting)
	c.writeMu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.writeMu.Unlock()
	_ = conn.Close()
	c.subscribed.Store(false)
	c.authorized.Store(false)
	c.authPending.Store(false)
	c.connected.Store(false)
	c.pleas.Clear()
}

func decodeJSONString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

