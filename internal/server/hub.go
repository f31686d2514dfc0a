// Package server coordinates client registration, inbound frame dispatch,
// and connection cleanup for the PeerChat relay via the Hub type.
package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/peerchat/relay/internal/chat"
)

// inboundFrame is one raw frame read off a client's socket, paired with the
// client so the router knows who sent it.
type inboundFrame struct {
	client  *Client
	payload []byte
}

// Hub supervises all websocket clients and feeds connection and frame events
// to the chat router. Its single Run loop is the only path from the
// transport into the router, so transport-side events reach the core in
// arrival order.
type Hub struct {
	router     *chat.Router
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates a Hub wired to the given router.
func NewHub(router *chat.Router) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		router:     router,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame, 64),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Router exposes the chat router for read-only snapshot consumers such as
// the rooms API handler.
func (h *Hub) Router() *chat.Router {
	return h.router
}

// ClientCount returns the number of currently registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Run is the hub's event loop: it registers and unregisters clients, starts
// their pumps, and hands every inbound frame to the router. Call it in its
// own goroutine; it runs until Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case frame := <-h.inbound:
			if frame.client.IsOpen() {
				h.router.HandleFrame(frame.client, frame.payload)
			}
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mutex.Lock()
	client.closed.Store(false)
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	connectionsActive.Set(float64(clientCount))
	log.Printf("Client connected from %s. Total clients: %d", client.addr, clientCount)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()

	h.router.HandleConnect(client)
}

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client)
	client.closed.Store(true)
	clientCount := len(h.clients)
	h.mutex.Unlock()

	// Close the channel after releasing the lock; Send recovers if it
	// races with a broadcast.
	close(client.send)

	connectionsActive.Set(float64(clientCount))
	log.Printf("Client disconnected from %s. Total clients: %d", client.addr, clientCount)

	h.router.HandleDisconnect(client)
}

// shutdownClients closes all active client connections.
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
				log.Printf("Error closing client connection from %s: %v", client.addr, err)
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all client
// goroutines to complete, or until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
