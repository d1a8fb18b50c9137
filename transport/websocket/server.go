package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxMessageSize = 1 << 10
	queueSize      = 16
)

type gameUseCase interface {
	GetView(ctx context.Context, sessionID string) (*entity.View, error)

	Play(ctx context.Context, sessionID string, cell int) (*entity.View, error)
	JumpTo(ctx context.Context, sessionID string, move int) (*entity.View, error)
	ToggleSortOrder(ctx context.Context, sessionID string) (*entity.View, error)
}

type eventBus interface {
	Subscribe(sessionID string, ch chan<- *entity.SessionEvent)
	Unsubscribe(ch chan<- *entity.SessionEvent)
}

type handlerFunc func(ctx context.Context, sessionID string, msg *Message) (*entity.View, error)

// Server streams the view of one session per connection and accepts game commands.
type Server struct {
	logger *slog.Logger
	game   gameUseCase
	events eventBus

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, game gameUseCase, events eventBus) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		game:   game,
		events: events,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionPlay] = server.handlePlay
	server.handlers[actionJump] = server.handleJump
	server.handlers[actionSort] = server.handleSort

	return server
}

// ServeHTTP upgrades requests for /sessions/{id}/ws.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	log := that.logger.With("method", "ServeHTTP", "session_id", sessionID)

	view, err := that.game.GetView(r.Context(), sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		http.Error(w, apperror.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get view", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log.Info("websocket connection established")

	that.serve(r.Context(), conn, sessionID, view)

	log.Info("websocket connection closed")
}

func (that *Server) serve(ctx context.Context, conn *websocket.Conn, sessionID string, view *entity.View) {
	ctx, cancel := context.WithCancel(ctx)

	events := make(chan *entity.SessionEvent, queueSize)
	replies := make(chan Message, queueSize)

	that.events.Subscribe(sessionID, events)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		that.writeLoop(ctx, conn, events, replies)
	}()

	if msg, err := viewMessage(actionState, view); err == nil {
		replies <- msg
	}

	that.readLoop(ctx, conn, sessionID, replies)

	// the writer keeps draining events until the subscription is gone
	that.events.Unsubscribe(events)
	cancel()
	<-writerDone

	_ = conn.Close()
}

// readLoop dispatches client messages until the connection fails.
func (that *Server) readLoop(ctx context.Context, conn *websocket.Conn, sessionID string, replies chan<- Message) {
	log := that.logger.With("method", "readLoop", "session_id", sessionID)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		reply := that.handleMessage(ctx, sessionID, data)

		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (that *Server) handleMessage(ctx context.Context, sessionID string, data []byte) Message {
	log := that.logger.With("method", "handleMessage", "session_id", sessionID)

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return that.errorMessage(log, "", fmt.Errorf("failed to unmarshal message: %w", err))
	}

	handler, ok := that.handlers[msg.Action]
	if !ok {
		return that.errorMessage(log, msg.Action, fmt.Errorf("%w: %q", apperror.ErrUnsupportedAction, msg.Action))
	}

	view, err := handler(ctx, sessionID, &msg)
	if err != nil {
		return that.errorMessage(log, msg.Action, err)
	}

	reply, err := viewMessage(msg.Action, view)
	if err != nil {
		return that.errorMessage(log, msg.Action, err)
	}

	return reply
}

func (that *Server) errorMessage(log *slog.Logger, action string, err error) Message {
	text, clientFault := clientError(err)
	if clientFault {
		log.Debug("message rejected", "action", action, "error", err)
	} else {
		log.Error("failed to process message", "action", action, "error", err)
	}

	msg, _ := newMessage(actionError, ErrorPayload{Action: action, Error: text})

	return msg
}

// writeLoop is the only writer of conn. After a write failure or the end of the
// session it keeps draining both channels until ctx is done.
func (that *Server) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan *entity.SessionEvent, replies <-chan Message) {
	log := that.logger.With("method", "writeLoop")

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	closed := false
	closeConn := func(code int, text string) {
		if closed {
			return
		}
		closed = true

		deadline := time.Now().Add(writeWait)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
		_ = conn.Close()
	}

	write := func(msg Message) {
		if closed {
			return
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug("failed to write message", "error", err)
			closeConn(websocket.CloseInternalServerErr, "")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-replies:
			write(msg)

		case event := <-events:
			if event.View == nil {
				if msg, err := newMessage(actionEnded, EndedPayload{SessionID: event.SessionID}); err == nil {
					write(msg)
				}
				closeConn(websocket.CloseNormalClosure, "session ended")
				continue
			}

			msg, err := viewMessage(actionState, event.View)
			if err != nil {
				log.Error("failed to marshal view", "error", err)
				continue
			}
			write(msg)

		case <-ticker.C:
			if closed {
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				closeConn(websocket.CloseGoingAway, "")
			}
		}
	}
}
