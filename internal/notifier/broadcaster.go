package notifier

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/gorilla/websocket"
)

const (
	refreshInterval = 5 * time.Second
	writeWait       = 10 * time.Second
)

// Broadcaster pushes each connected user's unread notification count over
// their websocket every refresh interval. It is the only background loop in
// the service; no write path depends on it.
type Broadcaster struct {
	clients map[uint]map[*websocket.Conn]bool // user ID -> connections
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewBroadcaster() *Broadcaster {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broadcaster{
		clients: make(map[uint]map[*websocket.Conn]bool),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (b *Broadcaster) Start() {
	log.Println("Starting notification broadcaster...")
	go b.run()
}

func (b *Broadcaster) Stop() {
	log.Println("Stopping notification broadcaster...")
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, conns := range b.clients {
		for conn := range conns {
			conn.Close()
		}
	}

	b.clients = make(map[uint]map[*websocket.Conn]bool)
}

// Register adds a connection for a user and pushes an immediate count so the
// client does not wait a full interval for its first frame.
func (b *Broadcaster) Register(userID uint, conn *websocket.Conn) {
	b.mu.Lock()
	if b.clients[userID] == nil {
		b.clients[userID] = make(map[*websocket.Conn]bool)
	}
	b.clients[userID][conn] = true
	b.mu.Unlock()

	b.push(userID, conn)
}

func (b *Broadcaster) Unregister(userID uint, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if conns, exists := b.clients[userID]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(b.clients, userID)
		}
	}
}

func (b *Broadcaster) run() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.broadcast()
		}
	}
}

func (b *Broadcaster) broadcast() {
	b.mu.RLock()
	snapshot := make(map[uint][]*websocket.Conn, len(b.clients))
	for userID, conns := range b.clients {
		for conn := range conns {
			snapshot[userID] = append(snapshot[userID], conn)
		}
	}
	b.mu.RUnlock()

	for userID, conns := range snapshot {
		for _, conn := range conns {
			b.push(userID, conn)
		}
	}
}

func (b *Broadcaster) push(userID uint, conn *websocket.Conn) {
	var count int64

	err := db.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error

	if err != nil {
		log.Printf("Failed to count unread notifications for user %d: %v", userID, err)
		return
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for user %d: %v", userID, err)
		return
	}

	err = conn.WriteJSON(map[string]interface{}{
		"type":   "unread_count",
		"unread": count,
	})

	if err != nil {
		log.Printf("Failed to push unread count to user %d: %v", userID, err)
		b.Unregister(userID, conn)
		conn.Close()
	}
}

// Global broadcaster instance
var globalBroadcaster *Broadcaster

func Initialize() {
	globalBroadcaster = NewBroadcaster()
	globalBroadcaster.Start()
}

func Shutdown() {
	if globalBroadcaster != nil {
		globalBroadcaster.Stop()
	}
}

func Register(userID uint, conn *websocket.Conn) {
	if globalBroadcaster != nil {
		globalBroadcaster.Register(userID, conn)
	}
}

func Unregister(userID uint, conn *websocket.Conn) {
	if globalBroadcaster != nil {
		globalBroadcaster.Unregister(userID, conn)
	}
}
