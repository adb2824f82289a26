package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/jwt"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/repository"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=50"`
	Username string `json:"username" binding:"required,min=1,max=50"`
	Phone    string `json:"phone"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"device_id"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	UserID       int64  `json:"user_id,string"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// AuthService 认证服务
// 登录成功后把主体信息写入 Redis，REST 中间件和实时网关统一从这里取
type AuthService struct {
	userRepo   *repository.UserRepository
	tokenRepo  *repository.TokenRepository
	jwtService *jwt.Service
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, tokenRepo *repository.TokenRepository, jwtService *jwt.Service) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
	}
}

// Register 用户注册
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Username:     req.Username,
		Phone:        req.Phone,
		Status:       model.UserStatusNormal,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 用户登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Status != model.UserStatusNormal {
		return nil, apperrors.ErrUserDisabled
	}

	return s.issueTokens(ctx, user, req.DeviceID)
}

// RefreshToken 刷新 Token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status != model.UserStatusNormal {
		return nil, apperrors.ErrUserDisabled
	}

	return s.issueTokens(ctx, user, claims.DeviceID)
}

// Logout 登出，使当前 AccessToken 失效
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	return s.tokenRepo.DeleteToken(ctx, accessToken)
}

// Authenticate 验证 AccessToken 并返回主体
// 先校验 JWT 签名和过期，再确认 Redis 中仍然在线（未被登出）
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (model.Principal, error) {
	if _, err := s.jwtService.ValidateAccessToken(accessToken); err != nil {
		return model.Principal{}, mapTokenError(err)
	}

	info, err := s.tokenRepo.GetPrincipalByToken(ctx, accessToken)
	if err != nil {
		return model.Principal{}, err
	}
	if info == nil {
		return model.Principal{}, apperrors.ErrTokenInvalid
	}
	return info.Principal(), nil
}

// Profile 获取用户资料
func (s *AuthService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfileRequest 资料更新请求
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50"`
	Phone    string `json:"phone"`
}

// UpdateProfile 更新用户资料
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Username = req.Username
	user.Phone = req.Phone
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// issueTokens 签发 Token 对并写入 Redis，同设备旧 Token 被替换
func (s *AuthService) issueTokens(ctx context.Context, user *model.User, deviceID string) (*LoginResponse, error) {
	tokenPair, err := s.jwtService.GenerateTokenPair(user.ID, deviceID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.DeleteOldToken(ctx, user.ID, deviceID); err != nil {
		return nil, err
	}

	principal := model.PrincipalFromUser(user)
	info := &repository.TokenPrincipal{
		UserID:    principal.UserID,
		Kind:      principal.Kind,
		CompanyID: principal.CompanyID,
		DeviceID:  deviceID,
	}
	if err := s.tokenRepo.SaveToken(ctx, info, tokenPair.AccessToken, s.jwtService.GetAccessExpire()); err != nil {
		return nil, err
	}

	return &LoginResponse{
		UserID:       user.ID,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    tokenPair.ExpiresAt,
	}, nil
}

func mapTokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperrors.ErrTokenExpired
	}
	return apperrors.ErrTokenInvalid
}
