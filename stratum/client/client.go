// Package client implements the Stratum protocol state machine: a single
// TCP/TLS stream to one pool endpoint, line framing, dialect autodetection,
// subscribe/authorize/notify/submit, and a watchdog that enforces response
// and job timeouts.
package client

import (
	"bufio"
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"github.com/nimbus-mining/poolclient/internal/lib"
	"github.com/nimbus-mining/poolclient/stratum"
	"github.com/nimbus-mining/poolclient/stratum/target"
)

// Tunables governing handshake/response/job timeouts and write throttling.
const (
	InitialExtraNonce1     = "f000000f"
	WorkloopInterval       = 1000 * time.Millisecond
	DefaultResponseTimeout = 30 * time.Second
	DefaultWorkTimeout     = 180 * time.Second
	ParallelRequestLimit   = 32
	pleaRingCapacity       = 64
)

// Observers are the callbacks that must be installed before Connect is
// called. OnResetWork is called before OnWorkReceived whenever the new
// work supersedes (rather than merely follows) the current one.
type Observers struct {
	OnConnected        func()
	OnDisconnected     func()
	OnResetWork        func()
	OnWorkReceived     func(stratum.Work)
	OnSolutionAccepted func(stale bool, roundTrip time.Duration)
	OnSolutionRejected func(stale bool, roundTrip time.Duration)
}

// Client owns exactly one live transport to a single endpoint at a time.
// All its network I/O is serialized on one logical goroutine (the strand);
// everything else communicates with it via the thread-safe accessors below
// or by handing off work on the submit/hashrate channels.
type Client struct {
	log              lib.ILogger
	responseTimeout  time.Duration
	workTimeout      time.Duration
	parallelReqLimit int
	buildVersion     string

	connectMu  sync.Mutex // guards single-flight connect
	connecting atomic.Bool

	obs Observers

	// connection-scoped state, written only by the strand, read by anyone
	subscribed  atomic.Bool
	authorized  atomic.Bool
	authPending atomic.Bool
	connected   atomic.Bool
	state       atomic.Int32

	current atomic.Pointer[stratum.Work]
	jobs    *lib.BoundStackMap[stratum.Work]

	xnMu        sync.RWMutex
	extraNonce1 string

	targetMu   sync.Mutex
	nextTarget uint256.Int

	pleas *lib.PleaRing

	lastNotifyAtNano atomic.Int64

	writeMu sync.Mutex
	conn    net.Conn

	// submitCh/hashrateCh hand accepted submissions and hashrate reports to
	// whichever strand is currently running, which owns the actual wire
	// write and plea bookkeeping. Allocated once in New and read by every
	// connection attempt's strand in turn.
	submitCh   chan *submitReq
	hashrateCh chan float64

	cancelConn context.CancelFunc
}

// New constructs a Client. responseTimeout/workTimeout/parallelReqLimit
// default to package-level constants when zero.
func New(log lib.ILogger, responseTimeout, workTimeout time.Duration, parallelReqLimit int, buildVersion string) *Client {
	if responseTimeout <= 0 {
		responseTimeout = DefaultResponseTimeout
	}
	if workTimeout <= 0 {
		workTimeout = DefaultWorkTimeout
	}
	if parallelReqLimit <= 0 {
		parallelReqLimit = ParallelRequestLimit
	}
	return &Client{
		log:              log,
		responseTimeout:  responseTimeout,
		workTimeout:      workTimeout,
		parallelReqLimit: parallelReqLimit,
		buildVersion:     buildVersion,
		pleas:            lib.NewPleaRing(pleaRingCapacity),
		jobs:             lib.NewBoundStackMap[stratum.Work](jobHistorySize),
		submitCh:         make(chan *submitReq, parallelReqLimit),
		hashrateCh:       make(chan float64, 1),
	}
}

// SetObservers installs the observer callbacks. Must be called before the
// first Connect.
func (c *Client) SetObservers(o Observers) {
	c.obs = o
}

// IsConnected reports whether the client has a confirmed, authorized
// connection (subscribed && authorized), safe to call from any goroutine.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// State returns the current connection state, for diagnostics.
func (c *Client) State() string {
	return connState(c.state.Load()).String()
}

// CurrentWork returns the work currently bound to this connection, or the
// zero Work if none has arrived yet.
func (c *Client) CurrentWork() stratum.Work {
	w := c.current.Load()
	if w == nil {
		return stratum.Work{}
	}
	return *w
}

// Connect resolves and connects to ep, running the full protocol state
// machine on a new goroutine (the strand) until the connection terminates,
// at which point OnDisconnected fires and Connect's background goroutine
// exits. Connect itself returns as soon as the attempt has been launched;
// it is not safe to call again until the previous attempt has finished —
// a concurrent call is rejected outright rather than silently queued.
func (c *Client) Connect(ctx context.Context, ep *stratum.Endpoint) {
	if !c.connecting.CompareAndSwap(false, true) {
		c.log.Warnf("connect() called while a connection attempt is already in flight, ignoring")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.connectMu.Lock()
	c.cancelConn = cancel
	c.connectMu.Unlock()

	go func() {
		defer c.connecting.Store(false)
		c.runConnection(ctx, ep)
	}()
}

// Disconnect tears down the live connection, if any. Safe to call from any
// goroutine; idempotent.
func (c *Client) Disconnect() {
	c.connectMu.Lock()
	cancel := c.cancelConn
	c.connectMu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.closeSocket()
}

func (c *Client) closeSocket() {
	c.writeMu.Lock()
	conn := c.conn
	c.writeMu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// resetPerConnectionState re-initializes everything that must start fresh
// on every new connection attempt: extraNonce1, the target, the plea ring,
// and the handshake/work bookkeeping flags.
func (c *Client) resetPerConnectionState() {
	c.xnMu.Lock()
	c.extraNonce1 = InitialExtraNonce1
	c.xnMu.Unlock()

	c.targetMu.Lock()
	c.nextTarget = *target.DIFF1()
	c.targetMu.Unlock()

	c.pleas.Clear()
	c.subscribed.Store(false)
	c.authorized.Store(false)
	c.authPending.Store(false)
	c.connected.Store(false)
	c.current.Store(nil)
	c.lastNotifyAtNano.Store(0)
}

func (c *Client) setState(s connState) {
	c.state.Store(int32(s))
}

func (c *Client) getExtraNonce1() string {
	c.xnMu.RLock()
	defer c.xnMu.RUnlock()
	return c.extraNonce1
}

func (c *Client) setExtraNonce1(v string) {
	c.xnMu.Lock()
	c.extraNonce1 = v
	c.xnMu.Unlock()
}

func (c *Client) getNextTarget() uint256.Int {
	c.targetMu.Lock()
	defer c.targetMu.Unlock()
	return c.nextTarget
}

func (c *Client) setNextTarget(t *uint256.Int) {
	c.targetMu.Lock()
	c.nextTarget = *t
	c.targetMu.Unlock()
}

// newReader wraps conn in a line-buffered reader: messages are
// newline-delimited and partial lines remain buffered across reads.
func newReader(conn net.Conn) *bufio.Reader {
	return bufio.NewReaderSize(conn, 64*1024)
}
