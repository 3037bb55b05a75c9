package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jae1jeong/meeting-resv-sub000/config"
	"github.com/jae1jeong/meeting-resv-sub000/internal/dto"
	"github.com/jae1jeong/meeting-resv-sub000/internal/model"
	"github.com/jae1jeong/meeting-resv-sub000/internal/repository"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/jwt"
)

func newTestAuthConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
	}
}

// setupTestAuthService rdb 传 nil：黑名单与限流降级路径
func setupTestAuthService() (AuthService, *mockUserRepo, *jwt.Manager) {
	cfg := newTestAuthConfig()
	userRepo := newMockUserRepo()
	repo := &repository.Repository{User: userRepo}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	return NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop()), userRepo, jwtMgr
}

// seedUser 测试中用 MinCost 加速 bcrypt
func seedUser(t *testing.T, repo *mockUserRepo, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	user := &model.User{
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         "member",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("写入测试用户失败: %v", err)
	}
	return user
}

func TestRegister_Success(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()

	result, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "张三",
		Email:    "zhangsan@test.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register 应成功，但返回错误: %v", err)
	}
	if result.Email != "zhangsan@test.com" {
		t.Errorf("期望 Email=zhangsan@test.com，实际=%s", result.Email)
	}

	saved, err := userRepo.GetByID(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("注册后查询用户失败: %v", err)
	}
	if saved.Role != "member" {
		t.Errorf("新注册用户角色应为 member，实际=%s", saved.Role)
	}
	if saved.PasswordHash == "password123" {
		t.Error("密码不应明文存储")
	}
}

func TestRegister_EmailExists(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	seedUser(t, userRepo, "dup@test.com", "password123")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "李四",
		Email:    "dup@test.com",
		Password: "password456",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc, userRepo, jwtMgr := setupTestAuthService()
	user := seedUser(t, userRepo, "login@test.com", "password123")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "login@test.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("Token 对不应为空")
	}
	if result.User.ID != user.UserID {
		t.Errorf("期望 User.ID=%s，实际=%s", user.UserID, result.User.ID)
	}

	claims, err := jwtMgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("解析 AccessToken 失败: %v", err)
	}
	if claims.UserID != user.UserID || claims.TokenType != "access" {
		t.Errorf("AccessToken 声明不正确: %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	seedUser(t, userRepo, "login@test.com", "password123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "login@test.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	// 不存在的用户与密码错误返回同一错误，不泄露账号是否存在
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@test.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestRefreshToken_Success(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	seedUser(t, userRepo, "refresh@test.com", "password123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "refresh@test.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), &dto.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("RefreshToken 应成功，但返回错误: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Error("新 Token 对不应为空")
	}
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	svc, userRepo, jwtMgr := setupTestAuthService()
	user := seedUser(t, userRepo, "refresh@test.com", "password123")

	// 用 access token 冒充 refresh token
	accessToken, err := jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}

	_, err = svc.RefreshToken(context.Background(), &dto.RefreshRequest{
		RefreshToken: accessToken,
	})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestRefreshToken_InvalidToken(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.RefreshToken(context.Background(), &dto.RefreshRequest{
		RefreshToken: "invalid.token.string",
	})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestRefreshToken_UserDeleted(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	user := seedUser(t, userRepo, "gone@test.com", "password123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "gone@test.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	// 用户被删除后 refresh token 立即失效
	if err := userRepo.Delete(context.Background(), user.UserID, "admin-1"); err != nil {
		t.Fatalf("删除用户失败: %v", err)
	}

	_, err = svc.RefreshToken(context.Background(), &dto.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestLogout_NilRedisDegrades(t *testing.T) {
	svc, userRepo, jwtMgr := setupTestAuthService()
	user := seedUser(t, userRepo, "logout@test.com", "password123")

	token, err := jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}
	claims, err := jwtMgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}

	// Redis 不可用时登出降级为无操作，不报错
	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Errorf("Logout 在 Redis 降级时应成功，实际: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	user := seedUser(t, userRepo, "pwd@test.com", "old-password")
	ctx := context.Background()

	// 原密码错误
	err := svc.ChangePassword(ctx, user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "new-password-123",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("期望 ErrWrongPassword，实际: %v", err)
	}

	// 正确修改
	err = svc.ChangePassword(ctx, user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "old-password",
		NewPassword: "new-password-123",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功，实际: %v", err)
	}

	// 新密码可登录，旧密码不可
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "pwd@test.com", Password: "new-password-123"}); err != nil {
		t.Errorf("新密码登录应成功，实际: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "pwd@test.com", Password: "old-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码登录应失败，实际: %v", err)
	}
}

func TestGetCurrentUser(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	user := seedUser(t, userRepo, "me@test.com", "password123")

	result, err := svc.GetCurrentUser(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("GetCurrentUser 失败: %v", err)
	}
	if result.Email != "me@test.com" {
		t.Errorf("期望 Email=me@test.com，实际=%s", result.Email)
	}

	if _, err := svc.GetCurrentUser(context.Background(), "no-such-user"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
