package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/middleware"
	"github.com/Tavhidjon/RealEstate/internal/service"
	"github.com/Tavhidjon/RealEstate/pkg/response"
)

// ChatHandler 会话处理器
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler 创建会话处理器
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.InvalidParams(c)
		return 0, false
	}
	return id, true
}

// Start 获取或创建与公司的会话
// @Summary      开始会话
// @Description  获取或创建当前用户与指定公司之间的会话，已存在时返回原会话；content 非空时附带发送第一条消息
// @Tags         会话
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body object{company_id=string,content=string} true "公司 ID 和可选的首条消息"
// @Success      200  {object}  response.Response{data=object{conversation=model.Conversation,created=bool}}
// @Failure      200  {object}  response.Response
// @Router       /chats/start [post]
func (h *ChatHandler) Start(c *gin.Context) {
	var req struct {
		CompanyID int64  `json:"company_id,string" binding:"required"`
		Content   string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	conv, created, err := h.chatService.Start(c.Request.Context(), principal, req.CompanyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if req.Content != "" {
		if _, _, err := h.chatService.Send(c.Request.Context(), principal, conv.ID, req.Content); err != nil {
			response.Error(c, err)
			return
		}
	}

	response.Success(c, gin.H{
		"conversation": conv,
		"created":      created,
	})
}

// List 会话列表
// @Summary      会话列表
// @Description  按身份返回可见会话：用户看自己的，公司代表看公司的，管理员看全部
// @Tags         会话
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Conversation}
// @Router       /chats [get]
func (h *ChatHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	conversations, err := h.chatService.List(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, conversations)
}

// Messages 拉取会话消息
// @Summary      拉取消息
// @Description  按时间升序返回会话全部消息，同时把对方发送的未读消息标记为已读
// @Tags         会话
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "会话 ID"
// @Success      200  {object}  response.Response{data=[]model.Message}
// @Failure      200  {object}  response.Response
// @Router       /chats/{id}/messages [get]
func (h *ChatHandler) Messages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	messages, _, err := h.chatService.FetchMessages(c.Request.Context(), principal, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, messages)
}

// Send 发送消息
// @Summary      发送消息
// @Description  在会话中追加一条消息
// @Tags         会话
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "会话 ID"
// @Param        request body object{content=string} true "消息内容"
// @Success      200  {object}  response.Response{data=model.Message}
// @Failure      200  {object}  response.Response
// @Router       /chats/{id}/messages [post]
func (h *ChatHandler) Send(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	msg, _, err := h.chatService.Send(c.Request.Context(), principal, id, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

// MarkRead 标记已读
// @Summary      标记已读
// @Description  把会话中对方发送的未读消息批量置为已读，重复调用是空操作
// @Tags         会话
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "会话 ID"
// @Success      200  {object}  response.Response{data=object{marked=int64}}
// @Failure      200  {object}  response.Response
// @Router       /chats/{id}/read [post]
func (h *ChatHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	n, _, _, err := h.chatService.MarkRead(c.Request.Context(), principal, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"marked": n})
}

// Close 关闭会话
// @Summary      关闭会话
// @Description  关闭后会话拒绝新消息，历史消息仍可读取
// @Tags         会话
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "会话 ID"
// @Success      200  {object}  response.Response
// @Failure      200  {object}  response.Response
// @Router       /chats/{id}/close [post]
func (h *ChatHandler) Close(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	if err := h.chatService.Close(c.Request.Context(), principal, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UnreadCounts 未读统计
// @Summary      未读统计
// @Description  当前用户各会话的未读消息数
// @Tags         会话
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ConversationUnread}
// @Router       /chats/unread [get]
func (h *ChatHandler) UnreadCounts(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	counts, err := h.chatService.UnreadCounts(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, counts)
}

// CompaniesOverview 公司列表（带会话信息）
// @Summary      公司列表
// @Description  全部公司，附带当前用户与每个公司的会话和未读数
// @Tags         会话
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.CompanyChatInfo}
// @Router       /chats/companies [get]
func (h *ChatHandler) CompaniesOverview(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	infos, err := h.chatService.CompaniesOverview(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, infos)
}
