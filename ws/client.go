package ws

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultPingInterval = 30 * time.Second
	defaultBaseBackoff  = time.Second
	defaultMaxBackoff   = 10 * time.Second
	defaultMaxAttempts  = 5
)

var ErrNotConnected = errors.New("websocket is not connected")

// Callback receives frames relayed from the server. Registering a new
// callback replaces the previous one, there is no multi-subscriber
// fan-out on the client side.
type Callback func(Outbound)

// Client maintains a link to a relay hub. On unclean close it
// reconnects with exponential backoff (1s, 2s, 4s, 8s, then capped at
// 10s) and gives up after MaxAttempts; a successful open resets the
// counter. While open it pings the server every PingInterval.
type Client struct {
	URL    string
	Header http.Header // carries the session cookie

	PingInterval time.Duration
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	MaxAttempts  int

	mu        sync.Mutex
	conn      *websocket.Conn
	cb        Callback
	attempts  int
	closed    bool
	reconnect *time.Timer
	pingStop  chan struct{}
}

func NewClient(url string, header http.Header) *Client {
	return &Client{
		URL:          url,
		Header:       header,
		PingInterval: defaultPingInterval,
		BaseBackoff:  defaultBaseBackoff,
		MaxBackoff:   defaultMaxBackoff,
		MaxAttempts:  defaultMaxAttempts,
	}
}

// Connect dials the relay. A manual call also resets the give-up
// state after the automatic retries were exhausted.
func (c *Client) Connect() error {
	c.mu.Lock()
	c.closed = false
	c.mu.Unlock()

	return c.dial()
}

func (c *Client) dial() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.URL, c.Header)
	if err != nil {
		zap.L().Debug("Relay dial failed", zap.Error(err))
		c.scheduleReconnect()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.attempts = 0
	c.pingStop = make(chan struct{})
	pingStop := c.pingStop
	c.mu.Unlock()

	go c.readLoop(conn)
	go c.pingLoop(conn, pingStop)

	return nil
}

// OnMessage registers the single callback invoked for every incoming
// frame, replacing any previous one
func (c *Client) OnMessage(cb Callback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

// Send relays a message frame to the server
func (c *Client) Send(frame Inbound) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(frame)
}

// Disconnect closes the link, stops the timers and clears the
// callback. No reconnect is attempted after a Disconnect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.closed = true
	c.cb = nil

	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}

	conn := c.conn
	c.conn = nil
	c.stopPingLocked()
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var frame Outbound
		if err := conn.ReadJSON(&frame); err != nil {
			conn.Close()

			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
				c.stopPingLocked()
			}
			closed := c.closed
			c.mu.Unlock()

			if !closed {
				c.scheduleReconnect()
			}
			return
		}

		c.mu.Lock()
		cb := c.cb
		c.mu.Unlock()

		if cb != nil {
			cb(frame)
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(c.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(Inbound{Type: "ping"}); err != nil {
				return
			}
		}
	}
}

func (c *Client) stopPingLocked() {
	if c.pingStop != nil {
		close(c.pingStop)
		c.pingStop = nil
	}
}

func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if c.attempts >= c.MaxAttempts {
		zap.L().Warn("Relay reconnect attempts exhausted", zap.Int("attempts", c.attempts))
		return
	}

	delay := c.reconnectDelay(c.attempts)

	if c.reconnect != nil {
		c.reconnect.Stop()
	}

	c.reconnect = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.attempts++
		closed := c.closed
		c.mu.Unlock()

		if !closed {
			c.dial()
		}
	})
}

// reconnectDelay doubles per attempt starting at BaseBackoff, capped
// at MaxBackoff
func (c *Client) reconnectDelay(attempt int) time.Duration {
	delay := c.BaseBackoff << uint(attempt)
	if delay > c.MaxBackoff || delay <= 0 {
		return c.MaxBackoff
	}

	return delay
}
