package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"FoodAdvisor_V0.1/internal/chatbot"
	"FoodAdvisor_V0.1/internal/utility"
	"github.com/labstack/echo/v4"
)

const expertUnavailableMsg = "Error: The Expert model is not available on the server. Please try again later."

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// ChatRequest is one user message.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse carries the bot's answer and, once a query completes, the verdict.
type ChatResponse struct {
	Response       string          `json:"response"`
	SessionID      string          `json:"session_id"`
	State          chatbot.State   `json:"state"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// Recommendation is the classifier verdict for a completed pair.
type Recommendation struct {
	Food        string `json:"food"`
	Condition   string `json:"condition"`
	Label       string `json:"label"`
	Explanation string `json:"explanation,omitempty"`
	Impacts     string `json:"impacts,omitempty"`
}

/*=================================================================================
									HANDLERS
=================================================================================*/

// ChatHandler processes one message of a conversation.
func (s *Server) ChatHandler(c echo.Context) error {
	logger := utility.GetLogger(c)

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No message provided"})
	}

	sessionID, err := s.resolveSessionID(c, req.SessionID)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not resolve chat session")
		return sessionError(c, err)
	}
	c.Response().Header().Set(sessionHeader, sessionID)

	reply, err := s.deps.Chat.Chat(c.Request().Context(), sessionID, req.Message)
	if err != nil {
		return chatError(c, err)
	}

	return c.JSON(http.StatusOK, newChatResponse(reply))
}

// ResetSessionHandler forgets the caller's partially specified query.
func (s *Server) ResetSessionHandler(c echo.Context) error {
	sessionID, err := s.resolveSessionID(c, c.QueryParam("session_id"))
	if err != nil {
		return sessionError(c, err)
	}

	if err := s.deps.Chat.Reset(c.Request().Context(), sessionID); err != nil {
		utility.GetLogger(c).Error().Err(err).Str("session_id", sessionID).Msg("Failed to reset chat session")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reset session"})
	}
	return c.NoContent(http.StatusNoContent)
}

func chatError(c echo.Context, err error) error {
	logger := utility.GetLogger(c)

	switch {
	case errors.Is(err, chatbot.ErrGatewayUnavailable):
		logger.Error().Err(err).Msg("Expert model unavailable")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": expertUnavailableMsg})
	case errors.Is(err, chatbot.ErrMissingSession):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Session ID is required"})
	default:
		logger.Error().Err(err).Msg("Chat turn failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process message"})
	}
}

func newChatResponse(reply *chatbot.Reply) ChatResponse {
	resp := ChatResponse{
		Response:  renderReply(reply),
		SessionID: reply.SessionID,
		State:     reply.State,
	}
	if reply.Pair != nil && reply.Result != nil {
		resp.Recommendation = &Recommendation{
			Food:        reply.Pair.Food,
			Condition:   reply.Pair.Condition,
			Label:       reply.Result.Label,
			Explanation: reply.Result.Explanation,
			Impacts:     reply.Result.Impacts,
		}
	}
	return resp
}

// renderReply appends the verdict block to the bot's text once a query completed.
func renderReply(reply *chatbot.Reply) string {
	if reply.Pair == nil || reply.Result == nil {
		return reply.Response
	}

	var sb strings.Builder
	sb.WriteString(reply.Response)
	sb.WriteString("\n---\n")
	fmt.Fprintf(&sb, "**Recommendation for %s & %s: %s**",
		utility.Capitalize(reply.Pair.Food), utility.Capitalize(reply.Pair.Condition), strings.ToUpper(reply.Result.Label))

	if reply.Result.HasDetails() {
		fmt.Fprintf(&sb, "\n\n* **Reason:** %s\n* **Impacts:** %s", reply.Result.Explanation, reply.Result.Impacts)
	}
	return sb.String()
}
