package model

import "time"

// SenderRole 消息发送方角色，只有两种取值
type SenderRole string

const (
	RoleUser    SenderRole = "user"    // 用户侧
	RoleCompany SenderRole = "company" // 公司侧
)

// Valid 校验角色取值
func (r SenderRole) Valid() bool {
	return r == RoleUser || r == RoleCompany
}

// Other 返回对方角色
func (r SenderRole) Other() SenderRole {
	if r == RoleUser {
		return RoleCompany
	}
	return RoleUser
}

// Conversation 用户与公司之间的会话
// (user_id, company_id) 唯一；每条新消息会更新 updated_at
type Conversation struct {
	ID        int64     `json:"id,string" db:"id"`
	UserID    int64     `json:"user_id,string" db:"user_id"`
	CompanyID int64     `json:"company_id,string" db:"company_id"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Message 会话消息
// 创建后不可变，只有 is_read 会由对方批量翻转为 true
type Message struct {
	ID             int64      `json:"id,string" db:"id"`
	ConversationID int64      `json:"conversation_id,string" db:"conversation_id"`
	SenderRole     SenderRole `json:"sender_role" db:"sender_role"`
	Content        string     `json:"content" db:"content"`
	IsRead         bool       `json:"is_read" db:"is_read"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// ConversationUnread 会话未读统计
type ConversationUnread struct {
	ConversationID int64  `json:"conversation_id,string"`
	CompanyName    string `json:"company_name"`
	Unread         int64  `json:"unread"`
}

// CompanyChatInfo 公司列表项（带当前用户的会话信息）
type CompanyChatInfo struct {
	ID          int64  `json:"id,string"`
	Name        string `json:"name"`
	Description string `json:"description"`
	HasChat     bool   `json:"has_chat"`
	ChatID      int64  `json:"chat_id,string,omitempty"`
	UnreadCount int64  `json:"unread_count"`
}
