package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"leavebot/internal/ai"
	"leavebot/internal/app"
	"leavebot/internal/hrapi"
	"leavebot/internal/leave"
	"leavebot/internal/transport/http/response"
)

const modelAuthMessage = "Model authentication failed. Please configure a valid API key."

type ChatHandler struct {
	chatService *app.ChatService
}

type CreateSessionRequest struct {
	EmployeeID int64  `json:"employee_id" binding:"required,gt=0"`
	FromDate   string `json:"from_date"`
	ToDate     string `json:"to_date"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Employee  string `json:"employee"`
	Overview  string `json:"overview"`
}

type SendMessageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	sess, err := h.chatService.CreateSession(c.Request.Context(), app.CreateSessionInput{
		EmployeeID: req.EmployeeID,
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, hrapi.ErrEmployeeNotFound):
			response.Error(c, http.StatusNotFound, response.CodeEmployeeNotFound, "no employee found for the given id")
		default:
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamUnavailable, "preload employee data failed")
		}
		return
	}

	response.OK(c, CreateSessionResponse{
		SessionID: sess.ID,
		Employee:  sess.Employee.Name(),
		Overview:  leave.Overview(sess.Employee, sess.LeaveBalances, sess.LeaveHistory, sess.LeaveTypes),
	})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), req.SessionID, req.Content)
	if err != nil {
		h.writeTurnError(c, err)
		return
	}
	response.OK(c, result)
}

// StreamMessage streams the final answer as server-sent events, one
// "chunk" event per text delta, closed by a "done" event carrying the full
// turn result.
func (h *ChatHandler) StreamMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	result, err := h.chatService.StreamMessage(c.Request.Context(), req.SessionID, req.Content, func(chunk string) error {
		c.SSEvent("chunk", chunk)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrAuthentication):
			c.SSEvent("error", modelAuthMessage)
		default:
			c.SSEvent("error", "answer failed")
		}
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", result)
	c.Writer.Flush()
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "session_id is required")
		return
	}

	history, err := h.chatService.History(sessionID)
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found")
		return
	}
	response.OK(c, history)
}

func (h *ChatHandler) EndSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.chatService.EndSession(sessionID); err != nil {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found")
		return
	}
	response.OK(c, gin.H{"session_id": sessionID})
}

func (h *ChatHandler) writeTurnError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found")
	case errors.Is(err, app.ErrMessageEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "message content is empty")
	case errors.Is(err, ai.ErrAuthentication):
		response.Error(c, http.StatusBadGateway, response.CodeModelAuthFailed, modelAuthMessage)
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer failed")
	}
}
