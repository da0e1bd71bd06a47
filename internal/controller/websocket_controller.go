package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/hotseat-chess/internal/middleware"
	"github.com/benbeisheim/hotseat-chess/internal/model"
	"github.com/benbeisheim/hotseat-chess/internal/service"
	"github.com/benbeisheim/hotseat-chess/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log,
	}
}

// safeConn serializes writes; broadcasts and error replies share one socket.
type safeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *safeConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func playerIDOf(c *websocket.Conn) string {
	id, _ := c.Locals(middleware.PlayerIDKey).(string)
	return id
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := playerIDOf(c)
	log := wsc.log.With().Str("game", gameID).Str("player", playerID).Logger()
	conn := &safeConn{conn: c}

	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warn().Err(err).Msg("failed to register connection")
		sendError(log, conn, err.Error())
		if errors.Is(err, model.ErrDuplicateConnection) {
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, err.Error())
			if werr := c.WriteMessage(websocket.CloseMessage, closeMsg); werr != nil {
				log.Debug().Err(werr).Msg("failed to send close frame")
			}
		}
		if cerr := c.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("failed to close connection")
		}
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, conn)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("read loop finished")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Warn().Err(err).Msg("malformed message")
			sendError(log, conn, "malformed message")
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("message rejected")
			sendError(log, conn, err.Error())
		}
	}
}

func sendError(log zerolog.Logger, conn model.Subscriber, message string) {
	if err := conn.WriteJSON(ws.ErrorMessage(message)); err != nil {
		log.Debug().Err(err).Msg("failed to send error reply")
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeActivate:
		var p ws.ActivatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid activate payload: %w", err)
		}
		_, err := wsc.gameService.Activate(gameID, playerID, model.Square{Row: p.Row, Col: p.Col})
		return err

	case ws.MessageTypeAnimationDone:
		var p ws.AnimationDonePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid animationDone payload: %w", err)
		}
		return wsc.gameService.AnimationDone(gameID, p.ID)

	case ws.MessageTypeReset:
		return wsc.gameService.Reset(gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking waits for the player's match and sends a single matchFound event.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := playerIDOf(c)
	log := wsc.log.With().Str("player", playerID).Logger()

	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	// Any read error means the client went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			log.Debug().Msg("matchmaking channel replaced")
			return
		}
		if err := c.WriteJSON(ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(event)}); err != nil {
			log.Warn().Err(err).Msg("failed to send match event")
		}
	case <-gone:
		log.Debug().Msg("left matchmaking")
	}
}
