package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// CheckInEvent is pushed to every connected front-desk dashboard when an
// admin marks a delegate in or out.
type CheckInEvent struct {
	UserID   uint      `json:"userId"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Status   string    `json:"status"`
	MarkedAt time.Time `json:"markedAt"`
}

// CheckInFeed is the connection hub for the live check-in stream.
type CheckInFeed struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

func NewCheckInFeed(checkOrigin func(r *http.Request) bool) *CheckInFeed {
	return &CheckInFeed{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Broadcast sends the event to every connected client, dropping the ones
// that fail to accept the write.
func (f *CheckInFeed) Broadcast(event CheckInEvent) {
	f.mu.RLock()

	if len(f.clients) == 0 {
		f.mu.RUnlock()
		return
	}

	conns := make([]*websocket.Conn, 0, len(f.clients))
	for conn := range f.clients {
		conns = append(conns, conn)
	}
	f.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		if err := conn.WriteJSON(event); err != nil {
			log.Printf("Failed to broadcast check-in to client: %v", err)
			f.remove(conn)
		}
	}
}

func (f *CheckInFeed) remove(conn *websocket.Conn) {
	f.mu.Lock()
	if _, ok := f.clients[conn]; ok {
		delete(f.clients, conn)
		conn.Close()
	}
	f.mu.Unlock()
}

// Serve upgrades the request and keeps the connection registered until the
// client goes away. Auth and role checks run before this in the chain.
func (f *CheckInFeed) Serve(ctx *gin.Context) {
	conn, err := f.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)

	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}

	f.mu.Lock()
	f.clients[conn] = true
	f.mu.Unlock()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go f.ping(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.remove(conn)
			return
		}
	}
}

func (f *CheckInFeed) ping(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		f.mu.RLock()
		_, ok := f.clients[conn]
		f.mu.RUnlock()

		if !ok {
			return
		}

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			f.remove(conn)
			return
		}

		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			f.remove(conn)
			return
		}
	}
}
