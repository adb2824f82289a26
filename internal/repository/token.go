package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Tavhidjon/RealEstate/internal/model"
)

const (
	// tokenUserPrefix 用户Token前缀: user:token:{user_id}:{device_id} -> accessToken
	tokenUserPrefix = "user:token:"
	// tokenInfoPrefix Token信息前缀: token:info:{accessToken} -> principal JSON
	tokenInfoPrefix = "token:info:"
)

// TokenPrincipal 存储在 Redis 中的认证主体信息
// REST 中间件和实时网关共用同一份，登出后两侧同时失效
type TokenPrincipal struct {
	UserID    int64               `json:"user_id"`
	Kind      model.PrincipalKind `json:"kind"`
	CompanyID int64               `json:"company_id,omitempty"`
	DeviceID  string              `json:"device_id"`
}

// Principal 转换为领域主体
func (t *TokenPrincipal) Principal() model.Principal {
	return model.Principal{UserID: t.UserID, Kind: t.Kind, CompanyID: t.CompanyID}
}

// TokenRepository Token 数据访问层
type TokenRepository struct {
	rdb *redis.Client
}

// NewTokenRepository 创建 Token Repository
func NewTokenRepository(rdb *redis.Client) *TokenRepository {
	return &TokenRepository{rdb: rdb}
}

func buildUserTokenKey(userID int64, deviceID string) string {
	return fmt.Sprintf("%s%d:%s", tokenUserPrefix, userID, deviceID)
}

func buildTokenInfoKey(accessToken string) string {
	return tokenInfoPrefix + accessToken
}

// SaveToken 保存Token到Redis
// 1. user:token:{user_id}:{device_id} -> accessToken
// 2. token:info:{accessToken} -> principal JSON
func (r *TokenRepository) SaveToken(ctx context.Context, info *TokenPrincipal, accessToken string, expiration time.Duration) error {
	userTokenKey := buildUserTokenKey(info.UserID, info.DeviceID)
	tokenInfoKey := buildTokenInfoKey(accessToken)

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal token principal: %w", err)
	}

	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, userTokenKey, accessToken, expiration)
	pipe.Set(ctx, tokenInfoKey, infoJSON, expiration)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// GetPrincipalByToken 根据Token获取主体信息，不存在返回 nil
func (r *TokenRepository) GetPrincipalByToken(ctx context.Context, accessToken string) (*TokenPrincipal, error) {
	key := buildTokenInfoKey(accessToken)
	data, err := r.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var info TokenPrincipal
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token principal: %w", err)
	}
	return &info, nil
}

// DeleteToken 删除Token（登出时使用）
func (r *TokenRepository) DeleteToken(ctx context.Context, accessToken string) error {
	return r.rdb.Del(ctx, buildTokenInfoKey(accessToken)).Err()
}

// DeleteOldToken 删除旧Token（重新登录时清理旧Token）
func (r *TokenRepository) DeleteOldToken(ctx context.Context, userID int64, deviceID string) error {
	userTokenKey := buildUserTokenKey(userID, deviceID)
	oldToken, err := r.rdb.Get(ctx, userTokenKey).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	return r.rdb.Del(ctx, buildTokenInfoKey(oldToken)).Err()
}

// RefreshTokenExpire 刷新Token的过期时间
func (r *TokenRepository) RefreshTokenExpire(ctx context.Context, info *TokenPrincipal, accessToken string, expiration time.Duration) error {
	userTokenKey := buildUserTokenKey(info.UserID, info.DeviceID)
	tokenInfoKey := buildTokenInfoKey(accessToken)

	pipe := r.rdb.Pipeline()
	pipe.Expire(ctx, userTokenKey, expiration)
	pipe.Expire(ctx, tokenInfoKey, expiration)
	_, err := pipe.Exec(ctx)
	return err
}
