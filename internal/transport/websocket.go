// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	applog "ftspreview/internal/log"
)

// WebSocketTransport serves preview frames to connected WebSocket clients.
// Frames are serialized once per broadcast and fanned out; a slow broadcast
// queue drops frames rather than stalling the preview loop.
type WebSocketTransport struct {
	addr     string
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	broadcast chan []byte
	done      chan struct{}
}

// NewWebSocketTransport starts an HTTP server on addr exposing /ws and
// begins broadcasting.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	t := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The preview is served on a trusted instrument network.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan []byte, 64),
		done:      make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", t.handleUpgrade)
	t.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		applog.Infof("transport: serving preview frames on ws://%s/ws", addr)
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("transport: websocket server: %v", err)
		}
	}()
	go t.run()

	return t
}

// Send queues a frame for broadcast. A full queue drops the frame; the next
// measurement cycle supersedes it anyway.
func (t *WebSocketTransport) Send(frame any) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	select {
	case t.broadcast <- payload:
	default:
		applog.Debugf("transport: broadcast queue full, dropping frame")
	}
	return nil
}

// Close shuts down the server and disconnects all clients.
func (t *WebSocketTransport) Close() error {
	close(t.done)

	t.mu.Lock()
	for conn := range t.clients {
		conn.Close()
	}
	t.clients = make(map[*websocket.Conn]struct{})
	t.mu.Unlock()

	if t.server != nil {
		return t.server.Close()
	}
	return nil
}

func (t *WebSocketTransport) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("transport: upgrade failed: %v", err)
		return
	}

	t.mu.Lock()
	t.clients[conn] = struct{}{}
	total := len(t.clients)
	t.mu.Unlock()
	applog.Infof("transport: client connected, %d total", total)

	// Clients never send payloads; the read loop only notices disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				t.drop(conn)
				return
			}
		}
	}()
}

func (t *WebSocketTransport) run() {
	for {
		select {
		case payload := <-t.broadcast:
			t.mu.Lock()
			for conn := range t.clients {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					applog.Warnf("transport: write failed, dropping client: %v", err)
					conn.Close()
					delete(t.clients, conn)
				}
			}
			t.mu.Unlock()
		case <-t.done:
			return
		}
	}
}

func (t *WebSocketTransport) drop(conn *websocket.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.clients[conn]; ok {
		conn.Close()
		delete(t.clients, conn)
		applog.Infof("transport: client disconnected, %d total", len(t.clients))
	}
}

var _ Transport = (*WebSocketTransport)(nil)
