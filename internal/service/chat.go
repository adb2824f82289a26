package service

import (
	"context"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/repository"
)

// ChatService 会话业务
// REST 接口和实时网关共用同一套授权和存储逻辑
type ChatService struct {
	chatRepo *repository.ChatRepository
}

// NewChatService 创建会话服务
func NewChatService(chatRepo *repository.ChatRepository) *ChatService {
	return &ChatService{chatRepo: chatRepo}
}

// ResolveRole 解析主体在会话中的发言角色
// 能代表公司方的主体优先按公司侧处理（代表同时是会话用户时也按公司侧）；
// 两边都不沾的返回未参与错误
func (s *ChatService) ResolveRole(principal model.Principal, conv *model.Conversation) (model.SenderRole, error) {
	if principal.CanActForCompany(conv.CompanyID) {
		return model.RoleCompany, nil
	}
	if principal.UserID == conv.UserID {
		return model.RoleUser, nil
	}
	return "", apperrors.ErrNotParticipant
}

// Start 获取或创建当前用户与公司之间的会话
func (s *ChatService) Start(ctx context.Context, principal model.Principal, companyID int64) (*model.Conversation, bool, error) {
	return s.chatRepo.GetOrCreate(ctx, principal.UserID, companyID)
}

// Authorize 校验主体可访问会话，返回会话和发言角色
func (s *ChatService) Authorize(ctx context.Context, principal model.Principal, conversationID int64) (*model.Conversation, model.SenderRole, error) {
	conv, err := s.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, "", err
	}
	role, err := s.ResolveRole(principal, conv)
	if err != nil {
		return nil, "", err
	}
	return conv, role, nil
}

// FetchMessages 拉取会话消息，同时把对方发送的未读消息翻转为已读
func (s *ChatService) FetchMessages(ctx context.Context, principal model.Principal, conversationID int64) ([]model.Message, model.SenderRole, error) {
	conv, role, err := s.Authorize(ctx, principal, conversationID)
	if err != nil {
		return nil, "", err
	}

	if _, err := s.chatRepo.MarkRead(ctx, conv.ID, role); err != nil {
		return nil, "", err
	}

	messages, err := s.chatRepo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, "", err
	}
	return messages, role, nil
}

// Send 发送消息，返回消息和所属会话
func (s *ChatService) Send(ctx context.Context, principal model.Principal, conversationID int64, content string) (*model.Message, *model.Conversation, error) {
	conv, role, err := s.Authorize(ctx, principal, conversationID)
	if err != nil {
		return nil, nil, err
	}
	msg, err := s.chatRepo.AppendMessage(ctx, conv.ID, role, content)
	if err != nil {
		return nil, nil, err
	}
	return msg, conv, nil
}

// MarkRead 标记对方消息为已读，返回翻转条数、读方角色和所属会话
func (s *ChatService) MarkRead(ctx context.Context, principal model.Principal, conversationID int64) (int64, model.SenderRole, *model.Conversation, error) {
	conv, role, err := s.Authorize(ctx, principal, conversationID)
	if err != nil {
		return 0, "", nil, err
	}
	n, err := s.chatRepo.MarkRead(ctx, conv.ID, role)
	if err != nil {
		return 0, "", nil, err
	}
	return n, role, conv, nil
}

// List 会话列表，按主体身份决定可见范围
func (s *ChatService) List(ctx context.Context, principal model.Principal) ([]model.Conversation, error) {
	switch principal.Kind {
	case model.PrincipalAdmin:
		return s.chatRepo.ListAll(ctx)
	case model.PrincipalRepresentative:
		return s.chatRepo.ListForCompany(ctx, principal.CompanyID)
	default:
		return s.chatRepo.ListForUser(ctx, principal.UserID)
	}
}

// UnreadCounts 当前用户各会话的未读统计
func (s *ChatService) UnreadCounts(ctx context.Context, principal model.Principal) ([]model.ConversationUnread, error) {
	return s.chatRepo.UnreadCountsForUser(ctx, principal.UserID)
}

// CompaniesOverview 公司列表（带当前用户的会话和未读信息）
func (s *ChatService) CompaniesOverview(ctx context.Context, principal model.Principal) ([]model.CompanyChatInfo, error) {
	return s.chatRepo.CompaniesWithChatInfo(ctx, principal.UserID)
}

// Close 关闭会话，之后拒绝新消息
func (s *ChatService) Close(ctx context.Context, principal model.Principal, conversationID int64) error {
	conv, _, err := s.Authorize(ctx, principal, conversationID)
	if err != nil {
		return err
	}
	return s.chatRepo.Deactivate(ctx, conv.ID)
}
