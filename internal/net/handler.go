package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"

	"github.com/gorilla/websocket"
)

// Handler upgrades spectator connections and feeds their commands into the
// hub.
type Handler struct {
	hub      *Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler builds a websocket handler over the given hub.
func NewHandler(hub *Hub, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

// Handle serves one spectator session until its connection drops.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: %v", err)
		return
	}

	sess := &session{conn: conn}
	h.hub.register(sess)
	defer func() {
		h.hub.unregister(sess)
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			h.logger.Printf("discarding malformed command: %v", err)
			continue
		}
		switch cmd.Type {
		case CommandFrighten, CommandCalm, CommandKill, CommandRespawn, CommandReset, CommandTracked:
			h.hub.Enqueue(cmd)
		default:
			h.logger.Printf("unknown command type %q", cmd.Type)
		}
	}
}

// Routes registers the hub's HTTP surface on the given mux.
func (h *Handler) Routes(mux *nethttp.ServeMux) {
	mux.HandleFunc("/ws", h.Handle)
	mux.HandleFunc("/healthz", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
		w.Write([]byte("ok"))
	})
}
