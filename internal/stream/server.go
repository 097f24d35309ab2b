package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second
)

// Submitter accepts inbound events for the panel.
type Submitter interface {
	Submit(event types.Event) bool
}

// inbound is a client frame: {"button":N} presses a button, {"refresh":true}
// asks for a fresh snapshot.
type inbound struct {
	Button  *int `json:"button"`
	Refresh bool `json:"refresh"`
}

// decodeInbound turns a client frame into a panel event.
func decodeInbound(data []byte) (types.Event, error) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return types.Event{}, fmt.Errorf("invalid frame: %w", err)
	}
	switch {
	case msg.Button != nil:
		return types.Event{Marker: types.MarkerUserAction, Payload: strconv.Itoa(*msg.Button)}, nil
	case msg.Refresh:
		return types.Ambient("stream"), nil
	default:
		return types.Event{}, errors.New("frame has neither button nor refresh")
	}
}

type Client struct {
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
}

type Server struct {
	log   *log.Logger
	hub   *Hub
	panel Submitter

	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, p Submitter, logger *log.Logger) *Server {
	return &Server{
		log:   logger,
		hub:   hub,
		panel: p,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns a mux serving the WebSocket endpoint at path.
func (s *Server) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(path, s.handleWS)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr, path string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Stream listening on %s%s", addr, path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("stream server failed: %w", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Stream upgrade failed: %v", err)
		return
	}

	c := &Client{
		conn:       conn,
		send:       make(chan []byte, s.hub.sendBuf),
		remoteAddr: r.RemoteAddr,
	}
	if !s.register(c) {
		s.log.Debug("Stream hub stopped, refusing %s", c.remoteAddr)
		_ = conn.Close()
		return
	}

	go s.writePump(c)
	s.readPump(c)
}

// register hands c to the hub. It reports false once the hub has stopped.
func (s *Server) register(c *Client) bool {
	select {
	case <-s.hub.Done():
		return false
	default:
	}
	select {
	case s.hub.register <- c:
		return true
	case <-s.hub.Done():
		return false
	}
}

func (s *Server) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Debug("Stream write to %s failed: %v", c.remoteAddr, err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.Debug("Stream ping to %s failed: %v", c.remoteAddr, err)
				return
			}
		}
	}
}

func (s *Server) readPump(c *Client) {
	defer func() {
		select {
		case s.hub.unregister <- c:
		case <-s.hub.Done():
		}
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Stream read from %s failed: %v", c.remoteAddr, err)
			}
			return
		}

		event, err := decodeInbound(data)
		if err != nil {
			s.log.Debug("Ignoring frame from %s: %v", c.remoteAddr, err)
			continue
		}
		if !s.panel.Submit(event) {
			s.log.Warn("Panel stopped, dropping frame from %s", c.remoteAddr)
			return
		}
	}
}
