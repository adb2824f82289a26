package gateway

import (
	"fmt"
	"sync"
)

// GroupKind 分组类型
type GroupKind int8

const (
	GroupUser    GroupKind = iota + 1 // 用户私有分组
	GroupCompany                      // 公司共享分组
)

// GroupKey 分组标识
// 类型加 ID 的结构化键，杜绝手拼字符串带来的命名冲突
type GroupKey struct {
	Kind GroupKind `json:"kind"`
	ID   int64     `json:"id,string"`
}

// UserGroup 用户分组键
func UserGroup(userID int64) GroupKey {
	return GroupKey{Kind: GroupUser, ID: userID}
}

// CompanyGroup 公司分组键
func CompanyGroup(companyID int64) GroupKey {
	return GroupKey{Kind: GroupCompany, ID: companyID}
}

// String 仅用于日志
func (k GroupKey) String() string {
	switch k.Kind {
	case GroupUser:
		return fmt.Sprintf("user:%d", k.ID)
	case GroupCompany:
		return fmt.Sprintf("company:%d", k.ID)
	}
	return fmt.Sprintf("unknown:%d", k.ID)
}

// Registry 管理所有在线会话及其分组成员关系
type Registry struct {
	mu          sync.RWMutex
	sessions    map[int64]*Session
	groups      map[GroupKey]map[int64]*Session
	memberships map[int64]map[GroupKey]struct{} // sessionID -> 已加入的分组
}

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[int64]*Session),
		groups:      make(map[GroupKey]map[int64]*Session),
		memberships: make(map[int64]map[GroupKey]struct{}),
	}
}

// Add 注册会话
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
	r.memberships[s.ID()] = make(map[GroupKey]struct{})
}

// Join 把会话加入分组
func (r *Registry) Join(key GroupKey, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID()]; !ok {
		return
	}
	if _, ok := r.groups[key]; !ok {
		r.groups[key] = make(map[int64]*Session)
	}
	r.groups[key][s.ID()] = s
	r.memberships[s.ID()][key] = struct{}{}
}

// Leave 把会话移出分组
func (r *Registry) Leave(key GroupKey, sessionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(key, sessionID)
}

func (r *Registry) leaveLocked(key GroupKey, sessionID int64) {
	if members, ok := r.groups[key]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(r.groups, key)
		}
	}
	if keys, ok := r.memberships[sessionID]; ok {
		delete(keys, key)
	}
}

// Remove 注销会话并退出其全部分组
// 对同一会话只生效一次，之后的调用是空操作
func (r *Registry) Remove(sessionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return
	}
	for key := range r.memberships[sessionID] {
		r.leaveLocked(key, sessionID)
	}
	delete(r.memberships, sessionID)
	delete(r.sessions, sessionID)
}

// Get 获取会话
func (r *Registry) Get(sessionID int64) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[sessionID]
}

// Members 分组当前成员快照
func (r *Registry) Members(key GroupKey) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.groups[key]
	if !ok {
		return nil
	}
	out := make([]*Session, 0, len(members))
	for _, s := range members {
		out = append(out, s)
	}
	return out
}

// Broadcast 向分组全部成员投递事件帧，返回成功投递数
// 单个接收方的失败（队列满、已关闭）不影响其他成员
func (r *Registry) Broadcast(key GroupKey, frame []byte) int {
	delivered := 0
	for _, s := range r.Members(key) {
		if err := s.Send(frame); err == nil {
			delivered++
		}
	}
	return delivered
}

// Count 在线会话数
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
