package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/Tavhidjon/RealEstate/internal/bus"
	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/service"
)

// BroadcastEnvelope 跨节点广播信封
// 事件帧原样透传，接收节点按分组投递给本地成员
type BroadcastEnvelope struct {
	NodeID string     `json:"node_id"`
	Groups []GroupKey `json:"groups"`
	Frame  []byte     `json:"frame"`
}

// Handler 网关事件处理器
type Handler struct {
	registry    *Registry
	chatService *service.ChatService
	busClient   *bus.Client
	nodeID      string
	logger      *slog.Logger
}

// NewHandler 创建事件处理器，busClient 可以为 nil（单节点模式）
func NewHandler(registry *Registry, chatService *service.ChatService, busClient *bus.Client, nodeID string, logger *slog.Logger) *Handler {
	return &Handler{
		registry:    registry,
		chatService: chatService,
		busClient:   busClient,
		nodeID:      nodeID,
		logger:      logger,
	}
}

// HandleStream 处理会话的事件流，阻塞直到流关闭
// 单个事件的业务错误只回发 error 事件，不中断连接；
// 消息体不是合法 JSON 的坏帧同样只回发 error，帧头定长保证后续帧仍可读
func (h *Handler) HandleStream(ctx context.Context, s *Session, stream io.ReadCloser) {
	defer stream.Close()

	for {
		event, err := ReadEvent(stream)
		if err != nil {
			if errors.Is(err, ErrInvalidFrame) {
				h.logger.Debug("Malformed event frame", "conn_id", s.ID(), "error", err)
				h.sendError(s, apperrors.ErrInvalidParams)
				continue
			}
			if err != io.EOF {
				h.logger.Debug("Failed to read event", "conn_id", s.ID(), "error", err)
			}
			return
		}
		h.dispatch(ctx, s, event)
	}
}

func (h *Handler) dispatch(ctx context.Context, s *Session, event *Event) {
	switch event.Type {
	case EventSendMessage:
		h.handleSendMessage(ctx, s, event.Data)
	case EventMarkRead:
		h.handleMarkRead(ctx, s, event.Data)
	default:
		h.logger.Warn("Unknown event type", "conn_id", s.ID(), "type", event.Type)
		h.sendError(s, apperrors.ErrUnknownEventType)
	}
}

func (h *Handler) handleSendMessage(ctx context.Context, s *Session, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(s, apperrors.ErrInvalidParams)
		return
	}

	msg, conv, err := h.chatService.Send(ctx, s.Principal(), payload.ConversationID, payload.Content)
	if err != nil {
		h.logger.Warn("Send message failed",
			"conn_id", s.ID(), "conversation_id", payload.ConversationID, "error", err)
		h.sendError(s, err)
		return
	}

	frame, err := EncodeEvent(EventMessage, &MessagePayload{Message: msg})
	if err != nil {
		h.logger.Error("Failed to encode message event", "error", err)
		return
	}
	h.broadcast(conv, frame)
}

func (h *Handler) handleMarkRead(ctx context.Context, s *Session, data json.RawMessage) {
	var payload MarkReadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(s, apperrors.ErrInvalidParams)
		return
	}

	conv, role, err := h.chatService.Authorize(ctx, s.Principal(), payload.ConversationID)
	if err != nil {
		h.sendError(s, err)
		return
	}
	// 客户端声明的角色必须和服务端解析出的一致
	if payload.ReaderRole != "" && payload.ReaderRole != role {
		h.sendError(s, apperrors.ErrNotParticipant)
		return
	}

	n, _, _, err := h.chatService.MarkRead(ctx, s.Principal(), payload.ConversationID)
	if err != nil {
		h.logger.Warn("Mark read failed",
			"conn_id", s.ID(), "conversation_id", payload.ConversationID, "error", err)
		h.sendError(s, err)
		return
	}

	// Count 为 0 也广播，作为"没有变化"的确认
	frame, err := EncodeEvent(EventReadUpdated, &ReadUpdatedPayload{
		ConversationID: conv.ID,
		UpdatedBy:      s.UserID(),
		ReaderRole:     role,
		Count:          n,
	})
	if err != nil {
		h.logger.Error("Failed to encode read-updated event", "error", err)
		return
	}
	h.broadcast(conv, frame)
}

// broadcast 把事件帧投递给会话双方的分组，并转发到其他网关节点
func (h *Handler) broadcast(conv *model.Conversation, frame []byte) {
	groups := []GroupKey{UserGroup(conv.UserID), CompanyGroup(conv.CompanyID)}
	for _, key := range groups {
		h.registry.Broadcast(key, frame)
	}
	h.publishRemote(groups, frame)
}

func (h *Handler) publishRemote(groups []GroupKey, frame []byte) {
	if h.busClient == nil {
		return
	}
	envelope := &BroadcastEnvelope{
		NodeID: h.nodeID,
		Groups: groups,
		Frame:  frame,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast envelope", "error", err)
		return
	}
	if err := h.busClient.Publish(bus.SubjectChatBroadcast, data); err != nil {
		h.logger.Error("Failed to publish broadcast", "error", err)
	}
}

// HandleRemote 处理其他节点转发来的广播
func (h *Handler) HandleRemote(data []byte) {
	var envelope BroadcastEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		h.logger.Error("Failed to unmarshal broadcast envelope", "error", err)
		return
	}
	// 丢弃自己发布的回声
	if envelope.NodeID == h.nodeID {
		return
	}
	for _, key := range envelope.Groups {
		h.registry.Broadcast(key, envelope.Frame)
	}
}

// sendError 把错误事件回发给出错请求的发送方，其他人不受影响
func (h *Handler) sendError(s *Session, err error) {
	frame, encErr := EncodeEvent(EventError, &ErrorPayload{
		Code:    apperrors.GetCode(err),
		Content: apperrors.GetMessage(err),
	})
	if encErr != nil {
		h.logger.Error("Failed to encode error event", "error", encErr)
		return
	}
	if sendErr := s.Send(frame); sendErr != nil {
		h.logger.Debug("Failed to deliver error event", "conn_id", s.ID(), "error", sendErr)
	}
}
