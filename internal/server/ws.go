package server

import (
	"context"
	"errors"

	"FoodAdvisor_V0.1/internal/chatbot"
	"FoodAdvisor_V0.1/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ChatSocketHandler serves a conversation over a WebSocket. The connection is the session:
// it gets its own id and its memory is dropped when the socket closes.
func (s *Server) ChatSocketHandler(c echo.Context) error {
	logger := utility.GetLogger(c)

	// 1. Upgrade HTTP to WebSocket
	ws, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	// 2. Register Client
	sessionID := socketSessionPrefix + uuid.New().String()
	utility.RegisterClient(sessionID, ws)
	defer utility.UnregisterClient(sessionID)

	// The request context ends with the handler; the reset must still run.
	defer func() {
		if err := s.deps.Chat.Reset(context.WithoutCancel(c.Request().Context()), sessionID); err != nil {
			logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to drop socket session")
		}
	}()

	// 3. Read Loop: one frame per user message
	ctx := c.Request().Context()
	for {
		var req ChatRequest
		if err := ws.ReadJSON(&req); err != nil {
			return nil // Client went away or sent garbage
		}

		if req.Message == "" {
			if err := ws.WriteJSON(map[string]string{"error": "No message provided"}); err != nil {
				return nil
			}
			continue
		}

		var frame interface{}
		reply, err := s.deps.Chat.Chat(ctx, sessionID, req.Message)
		switch {
		case errors.Is(err, chatbot.ErrGatewayUnavailable):
			logger.Error().Err(err).Str("session_id", sessionID).Msg("Expert model unavailable")
			frame = map[string]string{"error": expertUnavailableMsg}
		case err != nil:
			logger.Error().Err(err).Str("session_id", sessionID).Msg("Socket chat turn failed")
			frame = map[string]string{"error": "Failed to process message"}
		default:
			frame = newChatResponse(reply)
		}

		if err := ws.WriteJSON(frame); err != nil {
			return nil
		}
	}
}
