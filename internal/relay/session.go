package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	logger "github.com/PolarWolf314/tunnelrelay/internal/logging"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 30 * time.Second
	closeWriteWait   = 5 * time.Second
)

// Session is a relay connection with an explicit lifecycle.
type Session interface {
	Initialize(ctx context.Context) error
	Close(ctx context.Context) error
}

// Notification is a control message received on the listener channel.
type Notification struct {
	// Kind is "accept" for a new rendezvous connection and "request" for a
	// relayed HTTP request.
	Kind    string
	ID      string
	Address string
	Method  string
	Target  string
}

type controlMessage struct {
	Accept  *acceptCommand  `json:"accept,omitempty"`
	Request *requestCommand `json:"request,omitempty"`
}

type acceptCommand struct {
	Address string `json:"address"`
	ID      string `json:"id"`
}

type requestCommand struct {
	Address       string `json:"address"`
	ID            string `json:"id"`
	Method        string `json:"method"`
	RequestTarget string `json:"requestTarget"`
}

// HybridConnectionListener holds the listener control channel of one hybrid
// connection open. It reports incoming connections and requests but does not
// forward them.
type HybridConnectionListener struct {
	opts   Options
	log    logger.Logger
	dialer *websocket.Dialer
	scheme string

	// OnNotification, if set before Initialize, is called from the reader
	// goroutine for every control message.
	OnNotification func(Notification)

	mu      sync.Mutex
	conn    *websocket.Conn
	done    chan struct{}
	closing bool
}

// NewHybridConnectionListener returns a listener for opts. Nothing is dialed
// until Initialize.
func NewHybridConnectionListener(opts Options, log logger.Logger) *HybridConnectionListener {
	return &HybridConnectionListener{
		opts: opts,
		log:  log,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		scheme: "wss",
	}
}

// endpoint is the listener control channel address, including a fresh token.
func (l *HybridConnectionListener) endpoint(now time.Time) string {
	token := SharedAccessSignature(
		resourceURI(l.opts.ServiceBusURLHost, l.opts.ConnectionPath),
		l.opts.KeyName,
		l.opts.SharedKey.Reveal(),
		now.Add(DefaultTokenTTL),
	)

	query := url.Values{}
	query.Set("sb-hc-action", "listen")
	query.Set("sb-hc-token", token)

	endpoint := url.URL{
		Scheme:   l.scheme,
		Host:     l.opts.ServiceBusURLHost,
		Path:     "/$hc/" + l.opts.ConnectionPath,
		RawQuery: query.Encode(),
	}
	return endpoint.String()
}

// Initialize opens the control channel and starts reading notifications.
func (l *HybridConnectionListener) Initialize(ctx context.Context) error {
	if problems := l.opts.Validate(); len(problems) > 0 {
		return errors.Join(problems...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		return fmt.Errorf("listener for %s is already open", l.opts.ConnectionPath)
	}

	l.log.Infof("Connecting to hybrid connection %s on %s", l.opts.ConnectionPath, l.opts.ServiceBusURLHost)
	conn, resp, err := l.dialer.DialContext(ctx, l.endpoint(time.Now()), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to open listener (status %s): %w", resp.Status, err)
		}
		return fmt.Errorf("failed to open listener: %w", err)
	}

	l.conn = conn
	l.closing = false
	l.done = make(chan struct{})
	go l.readLoop(conn, l.done)

	l.log.Infof("Listening on %s/%s, forwarding target %s", l.opts.ServiceBusURLHost, l.opts.ConnectionPath, l.opts.InternalServiceURL)
	return nil
}

// Close sends a close frame and waits for the reader to stop or ctx to end.
func (l *HybridConnectionListener) Close(ctx context.Context) error {
	l.mu.Lock()
	conn, done := l.conn, l.done
	if conn == nil {
		l.mu.Unlock()
		return kerrors.ErrSessionClosed
	}
	l.conn = nil
	l.closing = true
	l.mu.Unlock()

	err := conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeWriteWait),
	)
	if err != nil {
		l.log.Debugf("Failed to send close frame: %v", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		l.log.Warnf("Timed out waiting for listener to close")
	}

	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("failed to close listener: %w", err)
	}
	l.log.Infof("Listener for %s closed", l.opts.ConnectionPath)
	return nil
}

func (l *HybridConnectionListener) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if !l.isClosing() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.log.Errorf("Listener control channel failed: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		notification, ok := l.decode(payload)
		if !ok {
			continue
		}
		switch notification.Kind {
		case "accept":
			l.log.Infof("Connection %s accepted at %s", notification.ID, notification.Address)
		case "request":
			l.log.Infof("Request %s %s received (%s)", notification.Method, notification.Target, notification.ID)
		}
		if l.OnNotification != nil {
			l.OnNotification(notification)
		}
	}
}

func (l *HybridConnectionListener) decode(payload []byte) (Notification, bool) {
	var msg controlMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		l.log.Debugf("Ignoring malformed control message: %v", err)
		return Notification{}, false
	}

	switch {
	case msg.Accept != nil:
		return Notification{Kind: "accept", ID: msg.Accept.ID, Address: msg.Accept.Address}, true
	case msg.Request != nil:
		return Notification{
			Kind:    "request",
			ID:      msg.Request.ID,
			Address: msg.Request.Address,
			Method:  msg.Request.Method,
			Target:  msg.Request.RequestTarget,
		}, true
	default:
		l.log.Debugf("Ignoring unknown control message")
		return Notification{}, false
	}
}

func (l *HybridConnectionListener) isClosing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closing
}
