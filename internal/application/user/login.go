package user

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/reviewclub/internal/domain/user"
	"github.com/xiebiao/reviewclub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/reviewclub/pkg/jwt"
)

// LoginUseCase 管理员登录用例
// 设计说明：
// 1. 验证邮箱密码
// 2. 生成JWT Token对
// 3. 保存会话到Redis
// sessionStore允许为nil(测试或无Redis部署),此时跳过会话步骤
type LoginUseCase struct {
	userService        user.Service
	jwtManager         *jwt.Manager
	sessionStore       *redis.SessionStore
	refreshTokenExpire time.Duration
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	refreshTokenExpire time.Duration,
) *LoginUseCase {
	return &LoginUseCase{
		userService:        userService,
		jwtManager:         jwtManager,
		sessionStore:       sessionStore,
		refreshTokenExpire: refreshTokenExpire,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// 1. 验证邮箱密码（调用领域服务）
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 生成JWT Token对
	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	// 3. 保存会话到Redis
	// 会话有效期 = Refresh Token有效期
	if uc.sessionStore != nil {
		sessionData := map[string]interface{}{
			"user_id":  u.ID,
			"email":    u.Email,
			"nickname": u.Nickname,
			"login_at": time.Now().Unix(),
		}
		if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.refreshTokenExpire); err != nil {
			// 会话保存失败不影响登录,只记录日志
			log.Printf("保存会话失败: %v", err)
		}
	}

	// 4. 返回登录响应
	return &LoginResponse{
		User: UserInfo{
			ID:       u.ID,
			Email:    u.Email,
			Nickname: u.Nickname,
		},
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 管理员登出用例
type LogoutUseCase struct {
	sessionStore      *redis.SessionStore
	accessTokenExpire time.Duration
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore *redis.SessionStore, accessTokenExpire time.Duration) *LogoutUseCase {
	return &LogoutUseCase{
		sessionStore:      sessionStore,
		accessTokenExpire: accessTokenExpire,
	}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	if uc.sessionStore == nil {
		return nil
	}

	// 1. 删除会话
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}

	// 2. 将Access Token加入黑名单（防止Token在过期前继续使用）
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.accessTokenExpire)
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间（秒）
}

// UserInfo 用户信息
type UserInfo struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}
