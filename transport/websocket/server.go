package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/leaderboard"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
	"github.com/rocketscienceinc/ludo-backend/internal/pkg"
)

type gameManager interface {
	CreateSession(ctx context.Context, roomID, creatorID string) (*entity.Game, error)
	Join(ctx context.Context, roomID, playerID, label string) (*entity.Player, error)
	Leave(ctx context.Context, roomID, playerID string) (*entity.Game, error)
	Kick(ctx context.Context, roomID, actorID, targetID string) (*entity.Game, error)
	BeginGame(ctx context.Context, roomID string) (*entity.Game, error)
	Roll(ctx context.Context, roomID, playerID string, roll int) (*ludo.RollResult, error)
	Abort(ctx context.Context, roomID, actorID string) error
	ResolveTarget(roomID, label string) (*entity.Player, error)
	Leaderboard(bucket string) []leaderboard.Entry
}

// Server is the chat-side adapter: it translates socket messages into
// engine events and broadcasts structured outcomes back to the room. It
// never formats game text.
type Server struct {
	logger  *slog.Logger
	manager gameManager

	handlers map[string]func(ctx context.Context, message *Message, bufrw *bufio.ReadWriter) error

	roomsMutex sync.RWMutex
	rooms      map[string]map[*bufio.ReadWriter]struct{}
}

func New(logger *slog.Logger, manager gameManager) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,

		handlers: make(map[string]func(context.Context, *Message, *bufio.ReadWriter) error),
		rooms:    make(map[string]map[*bufio.ReadWriter]struct{}),
	}

	server.handlers["room:create"] = server.handleCreate
	server.handlers["room:join"] = server.handleJoin
	server.handlers["room:leave"] = server.handleLeave
	server.handlers["room:kick"] = server.handleKick
	server.handlers["room:begin"] = server.handleBegin
	server.handlers["room:roll"] = server.handleRoll
	server.handlers["room:abort"] = server.handleAbort
	server.handlers["leaderboard:get"] = server.handleLeaderboard

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  0, // connections are long-lived
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	acceptKey := pkg.GenerateAcceptKey(key)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", acceptKey)
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking")
		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()
	defer that.dropConnection(bufrw)

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, bufrw); err != nil && !errors.Is(err, errConnectionClosed) {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMessages")

	for {
		reqBody, err := readFrame(bufrw)
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, &message, bufrw); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// joinRoom subscribes a connection to a room's broadcasts.
func (that *Server) joinRoom(roomID string, bufrw *bufio.ReadWriter) {
	that.roomsMutex.Lock()
	defer that.roomsMutex.Unlock()

	if that.rooms[roomID] == nil {
		that.rooms[roomID] = make(map[*bufio.ReadWriter]struct{})
	}
	that.rooms[roomID][bufrw] = struct{}{}
}

func (that *Server) dropConnection(bufrw *bufio.ReadWriter) {
	that.roomsMutex.Lock()
	defer that.roomsMutex.Unlock()

	for roomID, conns := range that.rooms {
		delete(conns, bufrw)
		if len(conns) == 0 {
			delete(that.rooms, roomID)
		}
	}
}

// broadcast sends a message to every connection subscribed to a room.
func (that *Server) broadcast(roomID, action string, payload Payload) {
	log := that.logger.With("method", "broadcast", "room", roomID)

	that.roomsMutex.RLock()
	conns := make([]*bufio.ReadWriter, 0, len(that.rooms[roomID]))
	for conn := range that.rooms[roomID] {
		conns = append(conns, conn)
	}
	that.roomsMutex.RUnlock()

	for _, conn := range conns {
		if err := that.sendMessage(conn, action, payload); err != nil {
			log.Error("failed to send room update", "error", err)
		}
	}
}
