package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"chatsync/internal/state"
	"chatsync/internal/store"
	"chatsync/pkg/logger"
)

// Hub maintains the set of active clients and pushes them a notification
// after every committed snapshot, so each client re-queries only what it
// renders.
type Hub struct {
	clients    map[string]map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	store *store.Store
	log   *logger.Logger

	mu        sync.RWMutex
	stopChan  chan struct{}
	unsub     func()
	isRunning int32
	version   uint64
}

// commitNotice is what clients receive on every snapshot commit.
type commitNotice struct {
	Type    string `json:"type"`
	Version uint64 `json:"version"`
	Chats   int    `json:"chats"`
}

const maxConnectionsPerUser = 10

func NewHub(st *store.Store, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[string]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 256),
		store:      st,
		log:        log,
		stopChan:   make(chan struct{}),
	}
}

// Run starts the Hub.
func (h *Hub) Run() {
	atomic.StoreInt32(&h.isRunning, 1)
	defer atomic.StoreInt32(&h.isRunning, 0)

	h.unsub = h.store.Subscribe(h.onCommit)
	defer h.unsub()

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case payload := <-h.broadcast:
			h.handleBroadcast(payload)

		case <-h.stopChan:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.stopChan)
}

func (h *Hub) onCommit(s *state.Snapshot) {
	notice := commitNotice{
		Type:    "snapshot.committed",
		Version: atomic.AddUint64(&h.version, 1),
		Chats:   len(s.ChatsByID),
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warnf("hub broadcast queue full, dropping commit notice")
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[string]*Client)
	}

	if len(h.clients[client.userID]) >= maxConnectionsPerUser {
		h.log.Warnf("max connections reached for user %s, evicting oldest", client.userID)
		for id, c := range h.clients[client.userID] {
			h.removeClient(c)
			delete(h.clients[client.userID], id)
			break
		}
	}

	h.clients[client.userID][client.clientID] = client
	h.log.Infof("client %s connected for user %s", client.clientID, client.userID)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := userClients[client.clientID]; !ok {
		return
	}
	delete(userClients, client.clientID)
	h.removeClient(client)
	if len(userClients) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) handleBroadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userClients := range h.clients {
		for _, client := range userClients {
			select {
			case client.send <- payload:
			default:
				// Slow consumer; drop the notice, the next commit will
				// catch it up.
			}
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	if atomic.CompareAndSwapInt32(&client.isClosing, 0, 1) {
		close(client.send)
	}
}
