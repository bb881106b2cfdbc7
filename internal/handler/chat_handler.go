package handler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/activation_api/internal/chat"
	"github.com/GTDGit/activation_api/internal/middleware"
	"github.com/GTDGit/activation_api/internal/service"
	"github.com/GTDGit/activation_api/internal/utils"
)

var chatPingInterval = 30 * time.Second

// ChatHandler serves per-document chat over REST and websocket.
type ChatHandler struct {
	chat           *service.ChatService
	hub            *chat.Hub
	originPatterns []string
}

// NewChatHandler creates a new ChatHandler. originPatterns are the host
// patterns accepted on the websocket handshake.
func NewChatHandler(chatService *service.ChatService, hub *chat.Hub, originPatterns []string) *ChatHandler {
	return &ChatHandler{chat: chatService, hub: hub, originPatterns: originPatterns}
}

// IssueTicket handles POST /v1/documents/:id/chat/ticket
func (h *ChatHandler) IssueTicket(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	ticket, err := h.chat.IssueTicket(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Chat ticket issued", ticket)
}

// History handles GET /v1/documents/:id/chat/messages?afterId=&limit=
func (h *ChatHandler) History(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var afterID int64
	if v := c.Query("afterId"); v != "" {
		afterID, _ = strconv.ParseInt(v, 10, 64)
	}
	messages, err := h.chat.History(c.Request.Context(), middleware.GetPrincipal(c), id, afterID, queryInt(c, "limit", 100))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Chat history retrieved", messages)
}

// Send handles POST /v1/documents/:id/chat/messages
func (h *ChatHandler) Send(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	msg, err := h.chat.Send(c.Request.Context(), middleware.GetPrincipal(c), id, req.Body)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Message sent", msg)
}

type chatInbound struct {
	Body string `json:"body"`
}

type chatError struct {
	Error string `json:"error"`
}

// Stream handles GET /v1/documents/:id/chat/ws?ticket=<ticket>
// Browsers cannot set headers on a websocket handshake, so the join is
// authorized by a short-lived ticket issued over REST.
func (h *ChatHandler) Stream(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	claims, err := h.chat.Join(c.Query("ticket"), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		log.Warn().Err(err).Int("document_id", id).Msg("Chat websocket handshake failed")
		return
	}
	defer conn.CloseNow()

	clientID := fmt.Sprintf("%s-%d-%d", claims.PrincipalKind, claims.PrincipalID, time.Now().UnixNano())
	client := h.hub.Join(id, clientID)
	defer h.hub.Leave(client)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			var in chatInbound
			if err := wsjson.Read(ctx, conn, &in); err != nil {
				return
			}
			if _, err := h.chat.SendWithTicket(ctx, claims, in.Body); err != nil {
				_ = wsjson.Write(ctx, conn, chatError{Error: chatErrorMessage(err)})
				if revoked(err) {
					_ = conn.Close(websocket.StatusPolicyViolation, "access revoked")
					return
				}
			}
		}
	}()

	ticker := time.NewTicker(chatPingInterval)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-client.Messages:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "closed")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancelWrite()
			if err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
				return
			}
		case <-ticker.C:
			if _, err := h.chat.Recheck(ctx, claims); revoked(err) {
				_ = conn.Close(websocket.StatusPolicyViolation, "access revoked")
				return
			}
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		}
	}
}

// revoked reports whether err means the socket's principal lost access.
func revoked(err error) bool {
	kind := utils.ErrorKind(err)
	return kind == utils.ErrUnauthenticated || kind == utils.ErrForbidden || kind == utils.ErrNotFound
}

func chatErrorMessage(err error) string {
	if kind := utils.ErrorKind(err); kind != nil {
		return err.Error()
	}
	return "internal error"
}
