// server/ws/hub.go
package ws

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"github.com/ViniZap4/nohtz-server/domain"
)

const (
	FolderCreated = "folder_created"
	FolderDeleted = "folder_deleted"
	NoteCreated   = "note_created"
	NoteUpdated   = "note_updated"
	NoteDeleted   = "note_deleted"
)

// UserIDKey is the websocket local holding the authenticated user id.
const UserIDKey = "ws_user_id"

type Message struct {
	Type   string         `json:"type"`
	ID     int64          `json:"id,omitempty"`
	Note   *domain.Note   `json:"note,omitempty"`
	Folder *domain.Folder `json:"folder,omitempty"`
}

// writeWait bounds a single event write.
const writeWait = 5 * time.Second

type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type subscription struct {
	userID int64
	conn   Conn
	ack    chan struct{}
}

type delivery struct {
	userID int64
	msg    Message
}

// Hub fans change events out to every open connection of the owning user.
// Its client map is only touched by Run.
type Hub struct {
	clients    map[int64]map[Conn]struct{}
	broadcast  chan delivery
	register   chan subscription
	unregister chan subscription
	done       chan struct{}
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[Conn]struct{}),
		broadcast:  make(chan delivery, 256),
		register:   make(chan subscription),
		unregister: make(chan subscription),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "ws").Logger(),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, conns := range h.clients {
				for conn := range conns {
					conn.Close()
				}
			}
			h.clients = map[int64]map[Conn]struct{}{}
			return

		case sub := <-h.register:
			conns := h.clients[sub.userID]
			if conns == nil {
				conns = make(map[Conn]struct{})
				h.clients[sub.userID] = conns
			}
			conns[sub.conn] = struct{}{}

		case sub := <-h.unregister:
			// The handler is returning and the websocket adapter closes and
			// recycles the conn after it, so only forget it here.
			h.remove(sub.userID, sub.conn)
			close(sub.ack)

		case d := <-h.broadcast:
			for conn := range h.clients[d.userID] {
				if err := h.write(conn, d.msg); err != nil {
					h.logger.Warn().Err(err).Int64("user_id", d.userID).Msg("websocket write failed")
					if h.remove(d.userID, conn) {
						conn.Close()
					}
				}
			}
		}
	}
}

func (h *Hub) write(conn Conn, msg Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// remove reports whether conn was still registered.
func (h *Hub) remove(userID int64, conn Conn) bool {
	conns := h.clients[userID]
	if _, ok := conns[conn]; !ok {
		return false
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
	return true
}

// Publish queues msg for userID's connections without blocking; when the
// queue is full the event is dropped.
func (h *Hub) Publish(userID int64, msg Message) {
	select {
	case h.broadcast <- delivery{userID: userID, msg: msg}:
	default:
		h.logger.Warn().Str("type", msg.Type).Int64("user_id", userID).Msg("event queue full, dropping")
	}
}

func (h *Hub) Register(userID int64, conn Conn) {
	select {
	case h.register <- subscription{userID: userID, conn: conn}:
	case <-h.done:
		conn.Close()
	}
}

// Unregister returns once Run has forgotten conn, after which the hub never
// touches it again.
func (h *Hub) Unregister(userID int64, conn Conn) {
	sub := subscription{userID: userID, conn: conn, ack: make(chan struct{})}
	select {
	case h.unregister <- sub:
		<-sub.ack
	case <-h.done:
	}
}

// Serve is the websocket handler. Client frames are read only to notice
// when the connection goes away.
func (h *Hub) Serve(conn *websocket.Conn) {
	userID, ok := conn.Locals(UserIDKey).(int64)
	if !ok {
		conn.Close()
		return
	}

	h.Register(userID, conn)
	defer h.Unregister(userID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
