package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

var (
	errUnknownAction = errors.New("unknown action")
	errBadPayload    = errors.New("malformed payload")
)

type uGame interface {
	JoinGame(ctx context.Context, connID, roomID string) (entity.Slot, error)
	MakeMove(ctx context.Context, connID, roomID string, move entity.Coordinate) error
	Surrender(ctx context.Context, connID, roomID string) error
	LeaveGame(ctx context.Context, connID, roomID string) error
	Disconnect(ctx context.Context, connID string)
}

type Server struct {
	logger *slog.Logger
	uGame  uGame
	hub    *Hub

	upgrader websocket.Upgrader
	handlers map[string]func(ctx context.Context, c *client, msg *Message) error
}

func New(logger *slog.Logger, uGame uGame, hub *Hub) *Server {
	server := &Server{
		logger: logger.With("component", "ws_server"),
		uGame:  uGame,
		hub:    hub,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers[actionJoinGame] = server.handleJoinGame
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionSurrender] = server.handleSurrender
	server.handlers[actionLeaveGame] = server.handleLeaveGame

	return server
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that.Handler(ctx))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		that.hub.closeAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler upgrades requests to WebSocket connections. ctx bounds the lifetime of every connection.
func (that *Server) Handler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})
}

func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(uuid.NewString(), conn)
	that.hub.register(c)

	log.Info("WebSocket connection established", "connID", c.id)

	go c.writePump()
	go c.readPump(ctx, that)
}

func (that *Server) handleMessage(ctx context.Context, c *client, data []byte) {
	log := that.logger.With("method", "handleMessage", "connID", c.id)

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn("failed to unmarshal message", "error", err)
		that.sendError(c, "", errBadPayload)
		return
	}

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Warn("unknown action", "action", msg.Action)
		that.sendError(c, msg.Action, errUnknownAction)
		return
	}

	if err := handler(ctx, c, &msg); err != nil {
		log.Info("request rejected", "action", msg.Action, "error", err)
		that.sendError(c, msg.Action, err)
	}
}

func (that *Server) disconnect(ctx context.Context, c *client) {
	that.hub.unregister(c)
	that.uGame.Disconnect(context.WithoutCancel(ctx), c.id)

	that.logger.Info("WebSocket connection closed", "connID", c.id)
}

func (that *Server) sendError(c *client, action string, err error) {
	that.hub.Notify(c.id, actionError, ErrorPayload{Action: action, Error: errorText(err)})
}
