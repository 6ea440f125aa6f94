package ws

// Hub bertanggung jawab untuk:
//   - menyimpan koneksi client
//   - menerima event dari service lewat Publish
//   - melakukan broadcast event ke seluruh client yang terhubung

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	sendBufferSize      = 256
	broadcastBufferSize = 64
)

// ErrBroadcastFull dikembalikan Publish saat antrian broadcast penuh; event dibuang.
var ErrBroadcastFull = errors.New("ws: broadcast queue full")

// Client mewakili koneksi WebSocket
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Message adalah bentuk event yang dikirim ke dashboard.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub mengelola semua koneksi client. Map clients hanya disentuh oleh
// goroutine Run.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "ws").Logger(),
	}
}

// Run memproses register/unregister/broadcast sampai ctx selesai.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug().Int("clients", len(h.clients)).Msg("client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Debug().Int("clients", len(h.clients)).Msg("client unregistered")
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// client lambat, putuskan
					close(client.Send)
					delete(h.clients, client)
					h.logger.Warn().Msg("slow client dropped")
				}
			}
		}
	}
}

// Publish mengirim event ke seluruh client tanpa memblokir pemanggil.
func (h *Hub) Publish(eventType string, data interface{}) error {
	payload, err := json.Marshal(Message{Type: eventType, Data: data, Timestamp: time.Now()})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- payload:
		return nil
	default:
		return ErrBroadcastFull
	}
}

// ClientCount mengembalikan jumlah client terhubung. Run harus sedang berjalan.
func (h *Hub) ClientCount(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-h.done:
		return 0, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case n := <-reply:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
