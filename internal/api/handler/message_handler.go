package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/response"
)

// MessageHandler 站内消息模块 HTTP 处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建 MessageHandler
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Send 发送消息
// POST /api/v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.messageSvc.Send(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiverNotFound):
			response.NotFound(c, 16001, "接收方不存在")
		case errors.Is(err, service.ErrMessageToSelf):
			response.BadRequest(c, 16002, "不能给自己发送消息")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ListConversation 与某用户的会话记录
// GET /api/v1/messages/:id（:id 为对方用户 ID）
func (h *MessageHandler) ListConversation(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.messageSvc.ListConversation(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// MarkRead 标记消息已读（仅接收方）
// PUT /api/v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.messageSvc.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			response.NotFound(c, 16003, "消息不存在或无权操作")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
