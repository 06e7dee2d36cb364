package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"synapse-console/src/helpers"
	"synapse-console/src/logger"
	"synapse-console/src/metrics"
	"synapse-console/src/models"
	"synapse-console/src/store"
	"synapse-console/src/utils"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024
)

// State of the stream connection as seen by the presentation layer.
type State string

const (
	StateClosed     State = "closed"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
)

// -----------------------------------------------------------------------------
// Channel
// -----------------------------------------------------------------------------

// Channel keeps one receive-only connection to the event stream and routes
// decoded frames into the store. It never reconnects on its own.
type Channel struct {
	url    string
	dialer *websocket.Dialer
	store  *store.Store
	clock  *utils.MarketClock
	logger *logger.Logger

	// handlers run under hmu.RLock and only while their generation is current;
	// Disconnect bumps the generation under hmu.Lock before releasing the socket.
	hmu        sync.RWMutex
	generation uint64

	mu    sync.Mutex
	conn  *websocket.Conn
	stop  chan struct{}
	state State
}

// -----------------------------------------------------------------------------

// NewChannel builds a closed channel. clock may be nil.
func NewChannel(cfg models.MStreamConfig, st *store.Store, clock *utils.MarketClock, log *logger.Logger) *Channel {
	return &Channel{
		url: cfg.URL,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: time.Duration(cfg.HandshakeTimeoutSeconds) * time.Second,
		},
		store:  st,
		clock:  clock,
		logger: log.Named("EventStream"),
		state:  StateClosed,
	}
}

// -----------------------------------------------------------------------------

// Connect opens the stream. Without a token no dial is attempted: the channel
// stays closed and a console line explains why. An existing connection is
// detached first.
func (c *Channel) Connect(ctx context.Context, token string) error {
	if token == "" {
		c.Disconnect()
		c.store.Log(models.LogError, "Authentication token not found for WebSocket.")
		return nil
	}

	c.Disconnect()

	c.hmu.Lock()
	c.generation++
	gen := c.generation
	c.hmu.Unlock()

	c.setState(StateConnecting)
	c.store.Log(models.LogInfo, "Connecting to real-time event stream...")

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		c.deliver(gen, func() {
			c.onError(err)
			c.onClose()
		})
		c.release(gen)
		return helpers.NewNetworkError("failed to connect to event stream", err)
	}

	c.hmu.RLock()
	if gen != c.generation {
		// Disconnect ran while we were dialing
		c.hmu.RUnlock()
		conn.Close()
		return nil
	}
	stop := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.stop = stop
	c.state = StateOpen
	c.mu.Unlock()
	c.onOpen()
	c.hmu.RUnlock()

	go c.readLoop(gen, conn)
	go c.pingLoop(conn, stop)
	return nil
}

// -----------------------------------------------------------------------------

// Disconnect detaches the handlers and closes the socket. Safe to call at any time.
func (c *Channel) Disconnect() error {
	c.hmu.Lock()
	c.generation++
	c.hmu.Unlock()

	return c.teardown()
}

// -----------------------------------------------------------------------------

// State reports the connection state
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// -----------------------------------------------------------------------------

// HandleMessage classifies one frame: ticks go to the chart, signals to the
// console, everything else is dropped without touching state.
func (c *Channel) HandleMessage(raw []byte) {
	kind, tick, signal, err := classify(raw)

	switch kind {
	case kindTick:
		c.store.Dispatch(store.AppendTick{Tick: tick})
		metrics.TicksIngested.Inc()
		c.checkSession(tick)

	case kindSignal:
		logType := signal.LogType()
		c.store.Dispatch(store.AppendLog{Type: logType, Message: signal.String()})
		metrics.SignalsIngested.WithLabelValues(string(logType)).Inc()

	default:
		metrics.MessagesDropped.Inc()
		if err != nil {
			c.logger.Debug("%v", helpers.NewMalformedMessageError(err))
			return
		}
		c.logger.Debug("dropped message without tick or signal fields (%d bytes)", len(raw))
	}
}

// -----------------------------------------------------------------------------
// Event handlers
// -----------------------------------------------------------------------------

func (c *Channel) onOpen() {
	metrics.StreamConnected.Set(1)
	c.logger.Info("Connected to %s", c.url)
	c.store.Log(models.LogSuccess, "Real-time connection established.")
}

func (c *Channel) onClose() {
	metrics.StreamConnected.Set(0)
	c.store.Log(models.LogError, "Real-time connection closed.")
}

func (c *Channel) onError(err error) {
	c.logger.Error("WebSocket error: %v", err)
	c.store.Log(models.LogError, "WebSocket error. See diagnostics log for details.")
}

// -----------------------------------------------------------------------------

// deliver runs fn only if gen is still the live generation.
func (c *Channel) deliver(gen uint64, fn func()) {
	c.hmu.RLock()
	defer c.hmu.RUnlock()
	if gen == c.generation {
		fn()
	}
}

// -----------------------------------------------------------------------------

// release tears down the connection of generation gen if nobody else has.
func (c *Channel) release(gen uint64) {
	c.hmu.Lock()
	current := gen == c.generation
	if current {
		c.generation++
	}
	c.hmu.Unlock()

	if current {
		c.teardown()
	}
}

// -----------------------------------------------------------------------------

func (c *Channel) teardown() error {
	c.mu.Lock()
	conn, stop := c.conn, c.stop
	c.conn, c.stop = nil, nil
	c.state = StateClosed
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	close(stop)
	metrics.StreamConnected.Set(0)

	deadline := time.Now().Add(writeWait)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return conn.Close()
}

// -----------------------------------------------------------------------------

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Pumps
// -----------------------------------------------------------------------------

func (c *Channel) readLoop(gen uint64, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.deliver(gen, func() {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.onError(err)
				}
				c.onClose()
			})
			c.release(gen)
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		c.deliver(gen, func() { c.HandleMessage(message) })
	}
}

// -----------------------------------------------------------------------------

func (c *Channel) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Debug("ping failed: %v", err)
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (c *Channel) checkSession(tick models.MPriceTick) {
	if c.clock == nil {
		return
	}
	ts, err := time.Parse(time.RFC3339Nano, tick.Timestamp)
	if err != nil {
		return
	}
	if !c.clock.IsOpen(tick.Symbol, ts) {
		c.logger.Debug("tick for %s at %s arrived outside trading hours", tick.Symbol, tick.Timestamp)
	}
}
