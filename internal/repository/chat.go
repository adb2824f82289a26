package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/snowflake"
)

// ChatRepository 会话与消息数据访问
// 会话在 (user_id, company_id) 上有唯一约束，get-or-create 的幂等性由约束保证
type ChatRepository struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

// NewChatRepository 创建会话仓库
func NewChatRepository(db *pgxpool.Pool, node *snowflake.Node) *ChatRepository {
	return &ChatRepository{db: db, node: node}
}

const conversationColumns = `id, user_id, company_id, is_active, created_at, updated_at`

func scanConversation(row pgx.Row) (*model.Conversation, error) {
	conv := &model.Conversation{}
	err := row.Scan(
		&conv.ID,
		&conv.UserID,
		&conv.CompanyID,
		&conv.IsActive,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// GetOrCreate 获取或创建用户与公司之间的会话
// 并发调用下依赖唯一约束保证只创建一行；插入冲突后重读一次
func (r *ChatRepository) GetOrCreate(ctx context.Context, userID, companyID int64) (*model.Conversation, bool, error) {
	var companyExists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM companies WHERE id = $1)`, companyID,
	).Scan(&companyExists)
	if err != nil {
		return nil, false, err
	}
	if !companyExists {
		return nil, false, apperrors.ErrCompanyNotFound
	}

	selectQuery := `
		SELECT ` + conversationColumns + `
		FROM conversations WHERE user_id = $1 AND company_id = $2
	`

	// 先查已有会话
	conv, err := scanConversation(r.db.QueryRow(ctx, selectQuery, userID, companyID))
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// 尝试创建；并发冲突时 RETURNING 无行，重读即可
	insertQuery := `
		INSERT INTO conversations (id, user_id, company_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		ON CONFLICT (user_id, company_id) DO NOTHING
		RETURNING ` + conversationColumns + `
	`
	id := r.node.Generate().Int64()
	conv, err = scanConversation(r.db.QueryRow(ctx, insertQuery, id, userID, companyID))
	if err == nil {
		return conv, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	conv, err = scanConversation(r.db.QueryRow(ctx, selectQuery, userID, companyID))
	if err != nil {
		return nil, false, err
	}
	return conv, false, nil
}

// GetByID 通过 ID 获取会话
func (r *ChatRepository) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	conv, err := scanConversation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, err
	}
	return conv, nil
}

// AppendMessage 追加消息
// 消息插入和会话 updated_at 的更新在同一事务内完成
func (r *ChatRepository) AppendMessage(ctx context.Context, conversationID int64, role model.SenderRole, content string) (*model.Message, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidParams
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ErrEmptyContent
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var isActive bool
	err = tx.QueryRow(ctx,
		`SELECT is_active FROM conversations WHERE id = $1 FOR UPDATE`, conversationID,
	).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, err
	}
	if !isActive {
		return nil, apperrors.ErrConversationInactive
	}

	msg := &model.Message{
		ID:             r.node.Generate().Int64(),
		ConversationID: conversationID,
		SenderRole:     role,
		Content:        content,
		IsRead:         false,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_role, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING created_at
	`, msg.ID, msg.ConversationID, string(msg.SenderRole), msg.Content).Scan(&msg.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE conversations SET updated_at = NOW() WHERE id = $1`, conversationID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages 按时间升序返回会话全部消息，时间相同按 ID（插入顺序）排序
func (r *ChatRepository) ListMessages(ctx context.Context, conversationID int64) ([]model.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, conversation_id, sender_role, content, is_read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderRole,
			&msg.Content,
			&msg.IsRead,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkRead 将对方发送的未读消息批量置为已读，返回受影响条数
// 重复调用返回 0（幂等）
func (r *ChatRepository) MarkRead(ctx context.Context, conversationID int64, readerRole model.SenderRole) (int64, error) {
	if !readerRole.Valid() {
		return 0, apperrors.ErrInvalidParams
	}
	result, err := r.db.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_role = $2 AND is_read = FALSE
	`, conversationID, string(readerRole.Other()))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// UnreadCountsForUser 用户所有会话的未读统计（公司侧发送且未读的消息数）
func (r *ChatRepository) UnreadCountsForUser(ctx context.Context, userID int64) ([]model.ConversationUnread, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, co.name,
		       COUNT(m.id) FILTER (WHERE m.sender_role = 'company' AND m.is_read = FALSE)
		FROM conversations c
		JOIN companies co ON co.id = c.company_id
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id, co.name, c.updated_at
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []model.ConversationUnread
	for rows.Next() {
		var cu model.ConversationUnread
		if err := rows.Scan(&cu.ConversationID, &cu.CompanyName, &cu.Unread); err != nil {
			return nil, err
		}
		counts = append(counts, cu)
	}
	return counts, rows.Err()
}

// ListForUser 用户自己的会话列表，按最近活跃排序
func (r *ChatRepository) ListForUser(ctx context.Context, userID int64) ([]model.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	return r.listConversations(ctx, query, userID)
}

// ListForCompany 指定公司的会话列表（公司代表视角）
func (r *ChatRepository) ListForCompany(ctx context.Context, companyID int64) ([]model.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations WHERE company_id = $1
		ORDER BY updated_at DESC
	`
	return r.listConversations(ctx, query, companyID)
}

// ListAll 全部会话（管理员视角）
func (r *ChatRepository) ListAll(ctx context.Context) ([]model.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		ORDER BY updated_at DESC
	`
	return r.listConversations(ctx, query)
}

func (r *ChatRepository) listConversations(ctx context.Context, query string, args ...any) ([]model.Conversation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []model.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conv)
	}
	return conversations, rows.Err()
}

// Deactivate 软关闭会话，之后拒绝新消息；不更新 updated_at
func (r *ChatRepository) Deactivate(ctx context.Context, conversationID int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE conversations SET is_active = FALSE WHERE id = $1`, conversationID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrConversationNotFound
	}
	return nil
}

// CompaniesWithChatInfo 公司列表，附带当前用户与每个公司的会话信息和未读数
func (r *ChatRepository) CompaniesWithChatInfo(ctx context.Context, userID int64) ([]model.CompanyChatInfo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT co.id, co.name, co.description, c.id,
		       COUNT(m.id) FILTER (WHERE m.sender_role = 'company' AND m.is_read = FALSE)
		FROM companies co
		LEFT JOIN conversations c ON c.company_id = co.id AND c.user_id = $1
		LEFT JOIN messages m ON m.conversation_id = c.id
		GROUP BY co.id, co.name, co.description, c.id
		ORDER BY co.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []model.CompanyChatInfo
	for rows.Next() {
		var info model.CompanyChatInfo
		var chatID *int64
		if err := rows.Scan(&info.ID, &info.Name, &info.Description, &chatID, &info.UnreadCount); err != nil {
			return nil, err
		}
		if chatID != nil {
			info.HasChat = true
			info.ChatID = *chatID
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
