package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tarkan2K/WLD-Final/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// readWait bounds how long a read may block; the server heartbeats well
	// inside this window once pings flow.
	readWait = 60 * time.Second

	// pingPeriod sends the application-level ping op at this interval, per
	// the v5 public stream requirement of one ping every 20 seconds.
	pingPeriod = 20 * time.Second
)

// WSClient is a single-connection client for the Bybit v5 public stream. It
// covers one dial/subscribe/read session; reconnection policy belongs to the
// caller, which creates a fresh client per attempt.
type WSClient struct {
	wsURL string
	conn  *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewWSClient creates a client for the given public stream endpoint, e.g.
// "wss://stream.bybit.com/v5/public/linear".
func NewWSClient(wsURL string) *WSClient {
	return &WSClient{
		wsURL: wsURL,
		done:  make(chan struct{}),
	}
}

// Connect dials the stream and starts the heartbeat loop.
func (w *WSClient) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("bybit/ws: connect: %w", err)
	}
	w.conn = conn

	w.conn.SetReadDeadline(time.Now().Add(readWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	go w.pingLoop()
	return nil
}

// Subscribe requests the given topics in one handshake message.
func (w *WSClient) Subscribe(topics []string) error {
	if w.conn == nil {
		return fmt.Errorf("bybit/ws: not connected")
	}
	if err := w.writeJSON(subscribeRequest{Op: "subscribe", Args: topics}); err != nil {
		return fmt.Errorf("bybit/ws: subscribe: %w", err)
	}
	return nil
}

// ReadMessage blocks until the next raw frame arrives. It returns
// domain.ErrWSDisconnect (wrapped) once the transport drops.
func (w *WSClient) ReadMessage() ([]byte, error) {
	if w.conn == nil {
		return nil, fmt.Errorf("bybit/ws: not connected")
	}
	_, message, err := w.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWSDisconnect, err)
	}
	w.conn.SetReadDeadline(time.Now().Add(readWait))
	return message, nil
}

// Close shuts down the connection and stops the heartbeat. Safe to call more
// than once.
func (w *WSClient) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		if w.conn != nil {
			w.writeMu.Lock()
			_ = w.conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			w.writeMu.Unlock()
			err = w.conn.Close()
		}
	})
	return err
}

// pingLoop sends the v5 application-level ping op to keep the stream alive.
func (w *WSClient) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if err := w.writeJSON(subscribeRequest{Op: "ping"}); err != nil {
				return
			}
		}
	}
}

// writeJSON marshals v and writes it under the write deadline. The mutex
// serializes the ping goroutine against subscribe/close writes.
func (w *WSClient) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}
